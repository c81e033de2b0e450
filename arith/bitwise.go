package arith

import (
	"relay64/codec"
	"relay64/isa"
)

// Bitwise applies op (one of isa.AND, isa.OR, isa.XOR, isa.NOT) bitwise
// across a and b, 64 gates wide. For isa.NOT, b is ignored and a is
// inverted.
func Bitwise(op isa.InstrType, a, b codec.Word) codec.Word {
	abits := codec.FromUnsigned(a, 64)
	bbits := codec.FromUnsigned(b, 64)
	out := make(codec.Bits, 64)
	for i := 0; i < 64; i++ {
		switch op {
		case isa.AND:
			out[i] = abits[i] && bbits[i]
		case isa.OR:
			out[i] = abits[i] || bbits[i]
		case isa.XOR:
			out[i] = abits[i] != bbits[i]
		case isa.NOT:
			out[i] = !abits[i]
		default:
			out[i] = false
		}
	}
	return codec.ToUnsigned(out)
}
