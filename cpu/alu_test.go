package cpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relay64/cpu"
	"relay64/isa"
)

var _ = Describe("ALU", func() {
	It("sets the zero flag and clears negative on a zero result", func() {
		a := cpu.NewALU()
		a.Sub(5, 5)
		Expect(a.Z).To(BeTrue())
		Expect(a.N).To(BeFalse())
	})

	It("sets the negative flag on a negative result", func() {
		a := cpu.NewALU()
		a.Sub(3, 10)
		Expect(a.Z).To(BeFalse())
		Expect(a.N).To(BeTrue())
	})

	It("does not disturb flags on an incr add", func() {
		a := cpu.NewALU()
		a.Sub(5, 5) // Z=true, N=false
		a.Add(100, 1, true)
		Expect(a.Z).To(BeTrue())
		Expect(a.N).To(BeFalse())
	})

	It("reports overflow via O on the adder's carry-out", func() {
		a := cpu.NewALU()
		_, carry := a.Add(^uint64(0), 1, false)
		Expect(carry).To(BeTrue())
		Expect(a.O).To(BeTrue())
	})

	It("clears O for multiply and bitwise results", func() {
		a := cpu.NewALU()
		a.Mult(6, 7)
		Expect(a.O).To(BeFalse())
		a.Bitwise(0xFF, 0x0F, isa.AND)
		Expect(a.O).To(BeFalse())
	})
})

var _ = Describe("BranchUnit", func() {
	b := cpu.NewBranchUnit()

	It("always takes an unconditional branch", func() {
		Expect(b.Taken(isa.BAlways, false, false)).To(BeTrue())
	})

	It("takes BEQ only when Z is set", func() {
		Expect(b.Taken(isa.BEQ, true, false)).To(BeTrue())
		Expect(b.Taken(isa.BEQ, false, false)).To(BeFalse())
	})

	It("takes BGT only when neither Z nor N is set", func() {
		Expect(b.Taken(isa.BGT, false, false)).To(BeTrue())
		Expect(b.Taken(isa.BGT, true, false)).To(BeFalse())
		Expect(b.Taken(isa.BGT, false, true)).To(BeFalse())
	})

	It("takes BLE when either Z or N is set", func() {
		Expect(b.Taken(isa.BLE, true, false)).To(BeTrue())
		Expect(b.Taken(isa.BLE, false, true)).To(BeTrue())
		Expect(b.Taken(isa.BLE, false, false)).To(BeFalse())
	})
})
