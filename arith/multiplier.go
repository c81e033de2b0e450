package arith

import "relay64/codec"

// Multiply computes a * b with a shift-add-style loop built entirely from
// AddSub64: b is the counter. If b's sign bit is set, the counter is
// negated first and the sign remembered; the accumulator is then built by
// repeatedly adding a and decrementing the counter by one, both through
// the adder/subtractor, until the counter reaches zero. If the sign was
// remembered, the accumulator is negated before it is returned. This is a
// deliberately slow O(|b|) model, not a Wallace-tree multiplier: the
// accumulator and counter are local to one call; the accumulator starts at
// zero and the counter starts at b (or its negation).
func Multiply(a, b codec.Word) codec.Word {
	negate := b>>63 == 1

	counter := b
	if negate {
		counter, _ = AddSub64(0, b, false, false)
	}

	var acc codec.Word
	for counter != 0 {
		acc, _ = AddSub64(acc, a, false, true)
		counter, _ = AddSub64(counter, 1, false, false)
	}

	if negate {
		acc, _ = AddSub64(0, acc, false, false)
	}
	return acc
}
