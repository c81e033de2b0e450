package cpu

import (
	"relay64/arith"
	"relay64/codec"
	"relay64/isa"
)

// ALU is the thin facade the control unit's Execute state calls into: it
// forwards every operation to the arith package's adder/multiplier/
// bitwise unit and updates the Z/N/O condition flags the branch unit
// reads.
type ALU struct {
	Z bool // zero flag
	N bool // negative flag
	O bool // overflow (carry/borrow out of the adder; false for mult/bitwise)
}

// NewALU returns an ALU with all flags clear.
func NewALU() *ALU {
	return &ALU{}
}

// setFlags derives Z and N from the two's-complement value of result and
// records carryOut as O. Z and N are mutually exclusive: a zero result
// forces N false regardless of its bit pattern.
func (a *ALU) setFlags(result codec.Word, carryOut bool) {
	if codec.ToSigned(codec.FromUnsigned(result, codec.WordBits)) == 0 {
		a.Z = true
		a.N = false
	} else {
		a.Z = false
		a.N = result>>63 == 1
	}
	a.O = carryOut
}

// Add computes a+b. When incr is true (used exclusively for program-counter
// increment) the condition flags are left untouched.
func (a *ALU) Add(x, y codec.Word, incr bool) (codec.Word, bool) {
	result, carry := arith.AddSub64(x, y, false, true)
	if !incr {
		a.setFlags(result, carry)
	}
	return result, carry
}

// Sub computes a-b and updates the condition flags.
func (a *ALU) Sub(x, y codec.Word) (codec.Word, bool) {
	result, borrow := arith.AddSub64(x, y, false, false)
	a.setFlags(result, borrow)
	return result, borrow
}

// Mult computes a*b and updates the condition flags; O is always false
// since the multiplier reports no carry/borrow.
func (a *ALU) Mult(x, y codec.Word) codec.Word {
	result := arith.Multiply(x, y)
	a.setFlags(result, false)
	return result
}

// Bitwise dispatches to the bitwise unit for op and updates the condition
// flags; O is always false.
func (a *ALU) Bitwise(x, y codec.Word, op isa.InstrType) codec.Word {
	result := arith.Bitwise(op, x, y)
	a.setFlags(result, false)
	return result
}
