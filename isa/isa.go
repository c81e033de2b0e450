// Package isa defines the instruction set this simulator executes: the
// opcode enumeration, branch-condition enumeration, and the parsed form an
// assembly line is reduced to before encoding. The enum numbering is part
// of the wire format: the opcode nibble of every encoded instruction word
// stores these values directly.
package isa

// InstrType identifies the operation an instruction word encodes.
type InstrType int

const (
	OTH InstrType = iota
	ADD
	SUB
	B
	LDR
	STR
	HLT
	OUT
	MULT
	CMP
	AND
	OR
	XOR
	NOT
	FLIP
)

var instrNames = map[InstrType]string{
	OTH:  "OTH",
	ADD:  "ADD",
	SUB:  "SUB",
	MULT: "MULT",
	LDR:  "LDR",
	STR:  "STR",
	B:    "B",
	CMP:  "CMP",
	HLT:  "HLT",
	OUT:  "OUT",
	AND:  "AND",
	OR:   "OR",
	XOR:  "XOR",
	NOT:  "NOT",
	FLIP: "FLIP",
}

func (t InstrType) String() string {
	if name, ok := instrNames[t]; ok {
		return name
	}
	return "OTH"
}

// BranchCondition selects which condition, if any, gates a branch.
type BranchCondition int

const (
	BAlways BranchCondition = iota
	BEQ
	BNE
	BLT
	BGT
	BLE
	BGE
	BOTH
)

var branchNames = map[BranchCondition]string{
	BAlways: "B",
	BEQ:     "BEQ",
	BNE:     "BNE",
	BLT:     "BLT",
	BGT:     "BGT",
	BLE:     "BLE",
	BGE:     "BGE",
	BOTH:    "OTH",
}

func (c BranchCondition) String() string {
	if name, ok := branchNames[c]; ok {
		return name
	}
	return "OTH"
}

// Operand is one arithmetic/bitwise/branch operand: either a register
// reference (Reg true, Value the register index) or an immediate (Reg
// false, Value the sign-extended 64-bit pattern the 16-bit literal field
// decodes to).
type Operand struct {
	Reg   bool
	Value uint64
}

// ParsedInstruction is the intermediate form produced by the assembler's
// line parser and consumed by its encoder, and symmetrically produced by
// the control unit's decode stage for dispatch to the ALU/branch unit. It
// is a tagged variant keyed on Type: each instruction form only ever reads
// the fields its own encoding in asm uses.
type ParsedInstruction struct {
	Type InstrType
	Cond BranchCondition

	// Rd is the destination register for ADD/SUB/MULT/AND/OR/XOR/NOT/FLIP/
	// LDR/STR/OUT.
	Rd int

	// Op0/Op1 are the two operands for ADD/SUB/MULT/AND/OR/XOR/CMP; NOT and
	// FLIP use only Op0. For B, Op0 carries the reg0-flag/register-index
	// pair for a register-indirect branch target.
	Op0 Operand
	Op1 Operand

	// Address is the 48-bit word-aligned target for LDR/STR, and the
	// branch target for B when Op0.Reg is false.
	Address uint64

	// ASCII selects the OUT instruction's display form.
	ASCII bool
}

// Clear resets a ParsedInstruction to its zero value in place, letting the
// assembler and control unit reuse one instance across lines/ticks instead
// of allocating a fresh struct each time.
func (p *ParsedInstruction) Clear() {
	*p = ParsedInstruction{}
}
