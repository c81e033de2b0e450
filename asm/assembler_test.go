package asm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relay64/asm"
	"relay64/isa"
)

var _ = Describe("Parse", func() {
	It("parses a three-operand arithmetic instruction with two literals", func() {
		pi, err := asm.Parse("ADD R1, #3, #4")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.ADD))
		Expect(pi.Rd).To(Equal(1))
		Expect(pi.Op0).To(Equal(isa.Operand{Reg: false, Value: 3}))
		Expect(pi.Op1).To(Equal(isa.Operand{Reg: false, Value: 4}))
	})

	It("parses a register operand mixed with a literal", func() {
		pi, err := asm.Parse("ADD R2, R1, #5")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Op0).To(Equal(isa.Operand{Reg: true, Value: 1}))
		Expect(pi.Op1).To(Equal(isa.Operand{Reg: false, Value: 5}))
	})

	It("parses a negative literal", func() {
		pi, err := asm.Parse("MULT R1, #-3, #4")
		Expect(err).NotTo(HaveOccurred())
		Expect(int64(pi.Op0.Value)).To(Equal(int64(-3)))
	})

	It("parses NOT with a single operand", func() {
		pi, err := asm.Parse("NOT R1, #0")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.NOT))
		Expect(pi.Rd).To(Equal(1))
	})

	It("parses CMP with no destination register", func() {
		pi, err := asm.Parse("CMP R1, #0")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.CMP))
		Expect(pi.Op0).To(Equal(isa.Operand{Reg: true, Value: 1}))
	})

	It("parses LDR with a hex address", func() {
		pi, err := asm.Parse("LDR R1 0x00000100")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.LDR))
		Expect(pi.Rd).To(Equal(1))
		Expect(pi.Address).To(Equal(uint64(0x100)))
	})

	It("parses an unconditional branch", func() {
		pi, err := asm.Parse("B 0x00000040")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.B))
		Expect(pi.Cond).To(Equal(isa.BAlways))
		Expect(pi.Address).To(Equal(uint64(0x40)))
	})

	It("parses a conditional branch mnemonic", func() {
		pi, err := asm.Parse("BEQ 0x00000040")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Cond).To(Equal(isa.BEQ))
	})

	It("treats any unrecognized B-prefixed mnemonic as a branch with the OTH condition", func() {
		pi, err := asm.Parse("BZZ 0x00000040")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.B))
		Expect(pi.Cond).To(Equal(isa.BOTH))
	})

	It("parses OUT with the decimal format flag", func() {
		pi, err := asm.Parse("OUT D R1")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.ASCII).To(BeFalse())
		Expect(pi.Rd).To(Equal(1))
	})

	It("parses OUT with the ASCII format flag", func() {
		pi, err := asm.Parse("OUT A R1")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.ASCII).To(BeTrue())
	})

	It("parses HLT with no operands", func() {
		pi, err := asm.Parse("HLT")
		Expect(err).NotTo(HaveOccurred())
		Expect(pi.Type).To(Equal(isa.HLT))
	})
})

var _ = Describe("Encode/Decode round-trip", func() {
	It("round-trips an arithmetic instruction", func() {
		pi, _ := asm.Parse("ADD R2, R1, #5")
		word := asm.Encode(pi)
		decoded := asm.Decode(word)
		Expect(decoded.Type).To(Equal(pi.Type))
		Expect(decoded.Rd).To(Equal(pi.Rd))
		Expect(decoded.Op0).To(Equal(pi.Op0))
		Expect(decoded.Op1.Reg).To(Equal(pi.Op1.Reg))
		Expect(int64(decoded.Op1.Value)).To(Equal(int64(5)))
	})

	It("round-trips a negative literal", func() {
		pi, _ := asm.Parse("MULT R1, #-3, #4")
		decoded := asm.Decode(asm.Encode(pi))
		Expect(int64(decoded.Op0.Value)).To(Equal(int64(-3)))
	})

	It("round-trips an LDR address", func() {
		pi, _ := asm.Parse("LDR R3 0x00000200")
		decoded := asm.Decode(asm.Encode(pi))
		Expect(decoded.Rd).To(Equal(3))
		Expect(decoded.Address).To(Equal(uint64(0x200)))
	})

	It("round-trips a branch with the reg0-flag/address bit offsets agreeing", func() {
		pi, _ := asm.Parse("BLE 0x00000300")
		decoded := asm.Decode(asm.Encode(pi))
		Expect(decoded.Cond).To(Equal(isa.BLE))
		Expect(decoded.Address).To(Equal(uint64(0x300)))
	})

	It("round-trips a register-indirect branch target", func() {
		pi := isa.ParsedInstruction{Type: isa.B, Cond: isa.BAlways, Op0: isa.Operand{Reg: true, Value: 7}}
		decoded := asm.Decode(asm.Encode(pi))
		Expect(decoded.Op0).To(Equal(isa.Operand{Reg: true, Value: 7}))
	})

	It("decodes an opcode nibble outside the enum as OTH", func() {
		decoded := asm.Decode(15) // opcode nibble 15, no defined InstrType
		Expect(decoded.Type).To(Equal(isa.OTH))
	})
})
