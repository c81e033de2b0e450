package cpu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relay64/asm"
	"relay64/cpu"
	"relay64/mem"
)

// loadProgram assembles each line into a consecutive word-aligned address
// starting at 0, matching the instruction loader's aligned layout.
func loadProgram(m *mem.Memory, lines ...string) {
	addr := uint64(0)
	for _, line := range lines {
		word, err := asm.Assemble(line)
		Expect(err).NotTo(HaveOccurred())
		m.Write(addr, word)
		addr += 64
	}
}

// run ticks the control unit and the bus together until HLT, matching the
// clock's Tick/Run loop, bounded so a bug can't hang the test suite.
func run(cu *cpu.ControlUnit, m *mem.Memory, bus *mem.Bus) {
	for i := 0; i < 10_000 && !cu.Halt; i++ {
		cu.Tick()
		bus.Tick(m)
	}
	Expect(cu.Halt).To(BeTrue(), "program did not halt within the cycle budget")
}

func newMachine() (*cpu.ControlUnit, *mem.Memory, *mem.Bus) {
	m := mem.NewMemory()
	bus := mem.NewBus()
	dam := mem.NewDataAccessManager(m, bus)
	return cpu.NewControlUnit(dam), m, bus
}

var _ = Describe("ControlUnit end-to-end scenarios", func() {
	It("adds two immediates and reports the result", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m, "ADD R1, #3, #4", "OUT D R1", "HLT")

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R1 OUTPUT: 7"))
	})

	It("adds a register operand to an immediate", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m, "ADD R1, #10, #20", "ADD R2, R1, #5", "OUT D R2", "HLT")

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R2 OUTPUT: 35"))
	})

	It("sets the zero flag on a matching subtract and takes the branch", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m,
			"SUB R1, #5, #5", // Z=1
			"BEQ 0x00000100",
			"OUT D R1",   // skipped
			"HLT",        // skipped
		)
		m.Write(0x100, mustAssemble("OUT D R1"))
		m.Write(0x140, mustAssemble("HLT"))

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R1 OUTPUT: 0"))
		Expect(strings.Count(out.String(), "OUTPUT")).To(Equal(1))
	})

	It("loads a preloaded memory value with LDR", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		m.Write(0x200, 42)
		loadProgram(m, "LDR R1 0x00000200", "OUT D R1", "HLT")

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R1 OUTPUT: 42"))
	})

	It("stores a computed value and loads it back", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m,
			"ADD R1, #99, #0",
			"STR R1 0x00000300",
			"LDR R2 0x00000300",
			"OUT D R2",
			"HLT",
		)

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R2 OUTPUT: 99"))
	})

	It("multiplies a negative multiplicand", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m, "MULT R1, #-3, #4", "OUT D R1", "HLT")

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R1 OUTPUT: -12"))
	})

	It("computes bitwise NOT of zero as -1", func() {
		cu, m, bus := newMachine()
		var out bytes.Buffer
		cu.Out = &out
		loadProgram(m, "NOT R1, #0", "OUT D R1", "HLT")

		run(cu, m, bus)

		Expect(out.String()).To(ContainSubstring("R1 OUTPUT: -1"))
	})
})

func mustAssemble(line string) uint64 {
	word, err := asm.Assemble(line)
	if err != nil {
		panic(err)
	}
	return word
}

var _ = Describe("Cache eviction under sustained LDR traffic", func() {
	It("evicts the oldest L1 entry into L2, not out of the hierarchy", func() {
		cu, m, bus := newMachine()
		cu.Out = &bytes.Buffer{}

		// Data lives far above the small instruction program so the two
		// regions of this word-addressed, von Neumann memory don't collide.
		const dataBase = uint64(0x10000)
		for i := 0; i < mem.L1Capacity+1; i++ {
			m.Write(dataBase+uint64(i)*64, uint64(i+1))
		}

		var lines []string
		for i := 0; i < mem.L1Capacity+1; i++ {
			lines = append(lines, "LDR R1 0x"+hex8(dataBase+uint64(i)*64))
		}
		lines = append(lines, "LDR R2 0x"+hex8(dataBase))
		lines = append(lines, "HLT")
		loadProgram(m, lines...)

		run(cu, m, bus)

		Expect(cu.DAM.L1.Index(dataBase)).To(BeFalse())
		Expect(cu.DAM.L2.Index(dataBase)).To(BeTrue())
		Expect(cu.Regs.Read(2)).To(Equal(uint64(1)))
	})
})

func hex8(v uint64) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}
	return string(b)
}
