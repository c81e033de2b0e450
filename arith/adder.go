// Package arith implements the minimal arithmetic primitives the ALU is
// built from: a ripple-carry adder/subtractor, a shift-add multiplier, and
// a bitwise unit. Each is a structural composition of smaller fixed-width
// stages: the adder chains 16-bit blocks of nibble blocks of single-bit
// full adders, taking codec.Word at the boundary rather than modeling the
// gate layer below the full adder as separate objects.
package arith

import "relay64/codec"

// fullAddSub is a single-bit full adder/subtractor.
func fullAddSub(a, b, cin, add bool) (out, cout bool) {
	if add {
		andAB := a && b
		xorAB := a != b
		andXorCin := xorAB && cin
		cout = andAB || andXorCin
		out = xorAB != cin
		return out, cout
	}
	notA := !a
	and0 := notA && b
	xorAB := a != b
	notXorAB := !xorAB
	and1 := notXorAB && cin
	borrow := and0 || and1
	diff := xorAB != cin
	return diff, borrow
}

// addSubNibble ripples a 4-bit add/subtract through four full adders.
func addSubNibble(a, b [4]bool, cin, add bool) (out [4]bool, cout bool) {
	c := cin
	for i := 0; i < 4; i++ {
		out[i], c = fullAddSub(a[i], b[i], c, add)
	}
	return out, c
}

// addSub16 chains four nibble blocks.
func addSub16(a, b [16]bool, cin, add bool) (out [16]bool, cout bool) {
	c := cin
	for blk := 0; blk < 4; blk++ {
		var an, bn [4]bool
		copy(an[:], a[blk*4:blk*4+4])
		copy(bn[:], b[blk*4:blk*4+4])
		var rn [4]bool
		rn, c = addSubNibble(an, bn, c, add)
		copy(out[blk*4:blk*4+4], rn[:])
	}
	return out, c
}

// AddSub64 performs a + b + cin (add=true) or a - b - cin (add=false) as a
// chain of four 16-bit ripple-carry blocks, each a chain of four 4-bit
// nibble blocks. cout is the final carry (add) or borrow (subtract).
func AddSub64(a, b codec.Word, cin, add bool) (codec.Word, bool) {
	abits := codec.FromUnsigned(a, 64)
	bbits := codec.FromUnsigned(b, 64)

	var a16, b16 [4][16]bool
	for blk := 0; blk < 4; blk++ {
		for i := 0; i < 16; i++ {
			a16[blk][i] = bool(abits[blk*16+i])
			b16[blk][i] = bool(bbits[blk*16+i])
		}
	}

	var out16 [4][16]bool
	c := cin
	for blk := 0; blk < 4; blk++ {
		out16[blk], c = addSub16(a16[blk], b16[blk], c, add)
	}

	out := make(codec.Bits, 64)
	for blk := 0; blk < 4; blk++ {
		for i := 0; i < 16; i++ {
			out[blk*16+i] = out16[blk][i]
		}
	}
	return codec.ToUnsigned(out), c
}
