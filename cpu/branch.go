package cpu

import "relay64/isa"

// BranchUnit evaluates a branch condition against the ALU's Z/N flags.
type BranchUnit struct{}

// NewBranchUnit returns a BranchUnit. It carries no state of its own: the
// condition flags it reads live on the ALU.
func NewBranchUnit() *BranchUnit {
	return &BranchUnit{}
}

// Taken reports whether cond is satisfied given the current Z (zero) and N
// (negative) flags.
func (BranchUnit) Taken(cond isa.BranchCondition, z, n bool) bool {
	switch cond {
	case isa.BAlways:
		return true
	case isa.BEQ:
		return z
	case isa.BNE:
		return !z
	case isa.BLT:
		return n
	case isa.BGT:
		return !z && !n
	case isa.BLE:
		return z || n
	case isa.BGE:
		return z || !n
	default:
		return false
	}
}
