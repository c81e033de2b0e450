// Package cpu implements the control unit the clock drives: the register
// file, the ALU facade wrapping the arith package, the branch-condition
// evaluator, and the five-state Fetch/Decode/Execute/Stall/MemoryComp
// machine that ties them together with the memory subsystem.
package cpu

import "relay64/codec"

// RegCount is the number of addressable registers.
const RegCount = 15

// RegFile holds the 15 program-visible registers. Register 0 is read-only;
// indices at or above RegCount silently no-op on write and read as zero.
type RegFile struct {
	regs [RegCount]codec.Word
}

// NewRegFile returns a register file with every register zeroed.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// Write stores data in register idx. Writes to register 0 or to any index
// outside 1..14 are silently discarded.
func (r *RegFile) Write(idx int, data codec.Word) {
	if idx > 0 && idx < RegCount {
		r.regs[idx] = data
	}
}

// Read returns the contents of register idx, or zero if idx is out of
// range.
func (r *RegFile) Read(idx int) codec.Word {
	if idx >= 0 && idx < RegCount {
		return r.regs[idx]
	}
	return 0
}
