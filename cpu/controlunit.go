package cpu

import (
	"fmt"
	"io"
	"os"

	"relay64/asm"
	"relay64/codec"
	"relay64/isa"
	"relay64/mem"
)

// State is one of the five control-unit states: Fetch, Decode, Execute,
// Stall, and MemoryComp.
type State int

const (
	Fetch State = iota
	Decode
	Execute
	Stall
	MemoryComp
)

func (s State) String() string {
	switch s {
	case Fetch:
		return "Fetch"
	case Decode:
		return "Decode"
	case Execute:
		return "Execute"
	case Stall:
		return "Stall"
	case MemoryComp:
		return "MemoryComp"
	default:
		return "Unknown"
	}
}

// wordStride is the address distance between consecutive instruction
// words: addresses count bits, so the program counter advances by one full
// Word (64) per Fetch.
const wordStride = codec.WordBits

// ControlUnit is the clock-driven state machine that owns the ALU, the
// register file, the program counter, the two memory-interface registers
// (MIR/MDR) and the data access manager.
type ControlUnit struct {
	ALU    *ALU
	Regs   *RegFile
	Branch *BranchUnit
	DAM    *mem.DataAccessManager

	PC  codec.Addr
	MIR codec.Word // memory instruction register
	MDR codec.Word // memory data register

	State State
	Halt  bool

	memoryInstrStall bool
	memoryDataStall  bool
	decoded          isa.ParsedInstruction

	// Out receives OUT instruction output lines; defaults to os.Stdout.
	Out io.Writer
}

// NewControlUnit wires a fresh control unit around dam, starting in Fetch
// at address 0 with every register and flag cleared.
func NewControlUnit(dam *mem.DataAccessManager) *ControlUnit {
	return &ControlUnit{
		ALU:    NewALU(),
		Regs:   NewRegFile(),
		Branch: NewBranchUnit(),
		DAM:    dam,
		State:  Fetch,
		Out:    os.Stdout,
	}
}

// resolve reads an operand's value: a register reference reads the
// register file, a literal returns its already sign-extended 64-bit
// pattern directly.
func (c *ControlUnit) resolve(op isa.Operand) codec.Word {
	if op.Reg {
		return c.Regs.Read(int(op.Value))
	}
	return op.Value
}

// Tick advances the control unit by one cycle.
func (c *ControlUnit) Tick() {
	switch c.State {
	case Fetch:
		c.tickFetch()
	case Decode:
		c.tickDecode()
	case Execute:
		c.tickExecute()
	case Stall:
		c.tickStall()
	case MemoryComp:
		c.tickMemoryComp()
	}
}

func (c *ControlUnit) tickFetch() {
	data, hit := c.DAM.Read(c.PC)
	if hit {
		c.MIR = data
		c.State = Decode
	} else {
		c.memoryInstrStall = true
		c.State = Stall
	}

	// PC increments through the ALU with incr=true so flags are untouched;
	// a carry out of the 48-bit address space wraps the PC to zero.
	sum, carryOut := c.ALU.Add(c.PC, wordStride, true)
	if carryOut || sum>>codec.AddrBits != 0 {
		c.PC = 0
	} else {
		c.PC = sum
	}
}

func (c *ControlUnit) tickDecode() {
	c.decoded.Clear()

	if c.MIR == 0 {
		c.State = Fetch
		return
	}

	c.decoded = asm.Decode(c.MIR)
	c.State = Execute
}

func (c *ControlUnit) tickExecute() {
	switch c.decoded.Type {
	case isa.ADD, isa.SUB, isa.MULT, isa.AND, isa.OR, isa.XOR:
		val0 := c.resolve(c.decoded.Op0)
		val1 := c.resolve(c.decoded.Op1)

		var result codec.Word
		switch c.decoded.Type {
		case isa.ADD:
			result, _ = c.ALU.Add(val0, val1, false)
		case isa.SUB:
			result, _ = c.ALU.Sub(val0, val1)
		case isa.MULT:
			result = c.ALU.Mult(val0, val1)
		default:
			result = c.ALU.Bitwise(val0, val1, c.decoded.Type)
		}
		c.Regs.Write(c.decoded.Rd, result)
		c.State = Fetch

	case isa.NOT:
		val0 := c.resolve(c.decoded.Op0)
		c.Regs.Write(c.decoded.Rd, c.ALU.Bitwise(val0, 0, isa.NOT))
		c.State = Fetch

	case isa.FLIP:
		val0 := c.resolve(c.decoded.Op0)
		c.Regs.Write(c.decoded.Rd, c.flip(val0))
		c.State = Fetch

	case isa.CMP:
		val0 := c.resolve(c.decoded.Op0)
		val1 := c.resolve(c.decoded.Op1)
		c.ALU.Sub(val0, val1)
		c.State = Fetch

	case isa.STR:
		c.DAM.Write(c.decoded.Address, c.Regs.Read(c.decoded.Rd))
		c.State = Fetch

	case isa.LDR:
		data, hit := c.DAM.Read(c.decoded.Address)
		if !hit {
			c.memoryDataStall = true
			c.State = Stall
			return
		}
		c.MDR = data
		c.Regs.Write(c.decoded.Rd, c.MDR)
		c.State = Fetch

	case isa.B:
		if c.Branch.Taken(c.decoded.Cond, c.ALU.Z, c.ALU.N) {
			if c.decoded.Op0.Reg {
				c.PC = c.Regs.Read(int(c.decoded.Op0.Value))
			} else {
				c.PC = c.decoded.Address
			}
		}
		c.State = Fetch

	case isa.HLT:
		c.Halt = true

	case isa.OUT:
		value := c.Regs.Read(c.decoded.Rd)
		c.emitOut(value)
		c.State = Fetch

	default: // OTH and anything unrecognized: no-op
		c.State = Fetch
	}
}

// flip two's-complement-negates val0. The MSB-set case inverts the bits
// then adds one through the ALU; the MSB-clear case subtracts one then
// inverts the bits. Two routes to the same negation, chosen by the sign
// of the operand.
func (c *ControlUnit) flip(val0 codec.Word) codec.Word {
	if val0>>63 == 1 {
		inverted := c.ALU.Bitwise(val0, 0, isa.NOT)
		sum, _ := c.ALU.Add(inverted, 1, false)
		return sum
	}
	diff, _ := c.ALU.Sub(val0, 1)
	return c.ALU.Bitwise(diff, 0, isa.NOT)
}

// emitOut prints the OUT line: the register's two's-complement decimal
// value, or a %c rendering when the ASCII flag is set and the value lies
// in 0..128 inclusive. Other values print as decimal even with the flag.
func (c *ControlUnit) emitOut(value codec.Word) {
	signed := codec.ToSigned(codec.FromUnsigned(value, codec.WordBits))
	if c.decoded.ASCII && signed >= 0 && signed <= 128 {
		fmt.Fprintf(c.Out, "R%d OUTPUT: %c\n", c.decoded.Rd, rune(signed))
		return
	}
	fmt.Fprintf(c.Out, "R%d OUTPUT: %d\n", c.decoded.Rd, signed)
}

func (c *ControlUnit) tickStall() {
	data, ready := c.DAM.StallRead()
	if !ready {
		return
	}

	if c.memoryInstrStall {
		c.memoryInstrStall = false
		c.MIR = data
		c.State = Decode
	} else if c.memoryDataStall {
		c.memoryDataStall = false
		c.MDR = data
		c.State = MemoryComp
	}
}

func (c *ControlUnit) tickMemoryComp() {
	c.Regs.Write(c.decoded.Rd, c.MDR)
	c.State = Fetch
}
