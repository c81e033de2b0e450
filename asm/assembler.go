// Package asm implements the two-phase assembler: Parse turns one line of
// assembly text into an isa.ParsedInstruction, Encode packs that
// intermediate form into a 64-bit instruction word, and Decode is Encode's
// exact inverse, used by the control unit's Decode state.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"relay64/codec"
	"relay64/isa"
)

var mnemonicTypes = map[string]isa.InstrType{
	"ADD":  isa.ADD,
	"SUB":  isa.SUB,
	"MULT": isa.MULT,
	"LDR":  isa.LDR,
	"STR":  isa.STR,
	"HLT":  isa.HLT,
	"OUT":  isa.OUT,
	"CMP":  isa.CMP,
	"AND":  isa.AND,
	"OR":   isa.OR,
	"XOR":  isa.XOR,
	"NOT":  isa.NOT,
	"FLIP": isa.FLIP,
}

var branchConditions = map[string]isa.BranchCondition{
	"B":   isa.BAlways,
	"BEQ": isa.BEQ,
	"BNE": isa.BNE,
	"BLT": isa.BLT,
	"BGT": isa.BGT,
	"BLE": isa.BLE,
	"BGE": isa.BGE,
}

// typeOf returns the InstrType a mnemonic selects; any unrecognized
// mnemonic starting with 'B' falls through to isa.B. conditionOf then gives
// such a mnemonic the isa.BOTH condition, which the branch unit never takes.
func typeOf(mnemonic string) isa.InstrType {
	if t, ok := mnemonicTypes[mnemonic]; ok {
		return t
	}
	if strings.HasPrefix(mnemonic, "B") {
		return isa.B
	}
	return isa.OTH
}

// conditionOf derives the branch condition from a B{cond} mnemonic.
func conditionOf(mnemonic string) isa.BranchCondition {
	if c, ok := branchConditions[mnemonic]; ok {
		return c
	}
	return isa.BOTH
}

// trimOperand strips the R/#/, decoration the tokenizer leaves attached to
// an operand token.
func trimOperand(tok string) string {
	return strings.NewReplacer("R", "", "#", "", ",", "").Replace(tok)
}

func parseLiteral(tok string) (int64, error) {
	return strconv.ParseInt(trimOperand(tok), 10, 16)
}

func parseRegister(tok string) (int, error) {
	n, err := strconv.Atoi(trimOperand(tok))
	return n, err
}

// parseOperand reads a register-or-literal operand: a leading '#' marks a
// literal, anything else (conventionally 'R') marks a register reference.
func parseOperand(tok string) (isa.Operand, error) {
	if strings.HasPrefix(tok, "#") {
		lit, err := parseLiteral(tok)
		if err != nil {
			return isa.Operand{}, fmt.Errorf("parse literal %q: %w", tok, err)
		}
		return isa.Operand{Reg: false, Value: uint64(lit)}, nil
	}
	reg, err := parseRegister(tok)
	if err != nil {
		return isa.Operand{}, fmt.Errorf("parse register %q: %w", tok, err)
	}
	return isa.Operand{Reg: true, Value: uint64(reg)}, nil
}

func parseHexAddress(tok string) (uint64, error) {
	tok = strings.TrimPrefix(tok, "0x")
	tok = strings.TrimPrefix(tok, "0X")
	val, err := strconv.ParseUint(tok, 16, 48)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", tok, err)
	}
	return val, nil
}

// Parse converts one line of assembly text into a ParsedInstruction.
// Tokens are separated by single spaces; operand tokens carry trailing
// commas that trimOperand strips along with their R/# sigil.
func Parse(line string) (isa.ParsedInstruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return isa.ParsedInstruction{}, fmt.Errorf("empty instruction line")
	}

	var pi isa.ParsedInstruction
	pi.Type = typeOf(fields[0])

	switch pi.Type {
	case isa.ADD, isa.SUB, isa.MULT, isa.AND, isa.OR, isa.XOR:
		if len(fields) < 4 {
			return pi, fmt.Errorf("%s: expected 3 operands, got %d", fields[0], len(fields)-1)
		}
		rd, err := parseRegister(fields[1])
		if err != nil {
			return pi, err
		}
		pi.Rd = rd
		if pi.Op0, err = parseOperand(fields[2]); err != nil {
			return pi, err
		}
		if pi.Op1, err = parseOperand(fields[3]); err != nil {
			return pi, err
		}

	case isa.NOT, isa.FLIP:
		if len(fields) < 3 {
			return pi, fmt.Errorf("%s: expected 1 operand, got %d", fields[0], len(fields)-1)
		}
		rd, err := parseRegister(fields[1])
		if err != nil {
			return pi, err
		}
		pi.Rd = rd
		if pi.Op0, err = parseOperand(fields[2]); err != nil {
			return pi, err
		}

	case isa.CMP:
		if len(fields) < 3 {
			return pi, fmt.Errorf("CMP: expected 2 operands, got %d", len(fields)-1)
		}
		var err error
		if pi.Op0, err = parseOperand(fields[1]); err != nil {
			return pi, err
		}
		if pi.Op1, err = parseOperand(fields[2]); err != nil {
			return pi, err
		}

	case isa.LDR, isa.STR:
		if len(fields) < 3 {
			return pi, fmt.Errorf("%s: expected register and address, got %d operands", fields[0], len(fields)-1)
		}
		rd, err := parseRegister(fields[1])
		if err != nil {
			return pi, err
		}
		pi.Rd = rd
		if pi.Address, err = parseHexAddress(fields[2]); err != nil {
			return pi, err
		}

	case isa.B:
		if len(fields) < 2 {
			return pi, fmt.Errorf("%s: expected an address operand", fields[0])
		}
		pi.Cond = conditionOf(fields[0])
		addr, err := parseHexAddress(fields[1])
		if err != nil {
			return pi, err
		}
		pi.Address = addr

	case isa.OUT:
		if len(fields) < 3 {
			return pi, fmt.Errorf("OUT: expected a format and a register operand")
		}
		pi.ASCII = strings.HasPrefix(fields[1], "A")
		rd, err := parseRegister(fields[2])
		if err != nil {
			return pi, err
		}
		pi.Rd = rd

	case isa.HLT:
		// no operands

	default:
		return pi, fmt.Errorf("unrecognized mnemonic %q", fields[0])
	}

	return pi, nil
}

// bitRange writes the low `count` bits of val into bits[start:start+count],
// little-endian.
func bitRange(bits codec.Bits, start, count int, val uint64) {
	src := codec.FromUnsigned(val, count)
	copy(bits[start:start+count], src)
}

// readRange returns count bits starting at start.
func readRange(bits codec.Bits, start, count int) codec.Bits {
	out := make(codec.Bits, count)
	copy(out, bits[start:start+count])
	return out
}

// Encode packs a ParsedInstruction into its 64-bit instruction word. The B
// instruction's register-vs-address duality is encoded the same way the
// other forms flag their operands: bit 8 is the reg0-flag, bits 9..57 hold
// the 48-bit address or register index.
func Encode(pi isa.ParsedInstruction) codec.Word {
	bits := make(codec.Bits, codec.WordBits)
	bitRange(bits, 0, 4, uint64(pi.Type))

	switch pi.Type {
	case isa.ADD, isa.SUB, isa.MULT, isa.AND, isa.OR, isa.XOR:
		bitRange(bits, 4, 4, uint64(pi.Rd))
		bits[8] = pi.Op0.Reg
		bitRange(bits, 9, 16, pi.Op0.Value)
		bits[25] = pi.Op1.Reg
		bitRange(bits, 26, 16, pi.Op1.Value)

	case isa.NOT, isa.FLIP:
		bitRange(bits, 4, 4, uint64(pi.Rd))
		bits[8] = pi.Op0.Reg
		bitRange(bits, 9, 16, pi.Op0.Value)

	case isa.CMP:
		bits[4] = pi.Op0.Reg
		bitRange(bits, 5, 16, pi.Op0.Value)
		bits[21] = pi.Op1.Reg
		bitRange(bits, 22, 16, pi.Op1.Value)

	case isa.LDR, isa.STR:
		bitRange(bits, 4, 4, uint64(pi.Rd))
		bitRange(bits, 8, codec.AddrBits, pi.Address)

	case isa.B:
		bitRange(bits, 4, 4, uint64(pi.Cond))
		bits[8] = pi.Op0.Reg
		if pi.Op0.Reg {
			bitRange(bits, 9, codec.AddrBits, pi.Op0.Value)
		} else {
			bitRange(bits, 9, codec.AddrBits, pi.Address)
		}

	case isa.OUT:
		bitRange(bits, 4, 4, uint64(pi.Rd))
		bits[8] = pi.ASCII

	case isa.HLT:
		// opcode nibble only

	}

	return codec.ToUnsigned(bits)
}

// Decode unpacks a 64-bit instruction word back into a ParsedInstruction,
// the exact inverse of Encode.
func Decode(word codec.Word) isa.ParsedInstruction {
	bits := codec.FromUnsigned(word, codec.WordBits)

	var pi isa.ParsedInstruction
	opcode := codec.ToUnsigned(readRange(bits, 0, 4))
	pi.Type = isa.InstrType(opcode)
	if pi.Type < isa.OTH || pi.Type > isa.FLIP {
		pi.Type = isa.OTH
	}

	switch pi.Type {
	case isa.ADD, isa.SUB, isa.MULT, isa.AND, isa.OR, isa.XOR:
		pi.Rd = int(codec.ToUnsigned(readRange(bits, 4, 4)))
		pi.Op0 = decodeOperand(bits[8], readRange(bits, 9, 16))
		pi.Op1 = decodeOperand(bits[25], readRange(bits, 26, 16))

	case isa.NOT, isa.FLIP:
		pi.Rd = int(codec.ToUnsigned(readRange(bits, 4, 4)))
		pi.Op0 = decodeOperand(bits[8], readRange(bits, 9, 16))

	case isa.CMP:
		pi.Op0 = decodeOperand(bits[4], readRange(bits, 5, 16))
		pi.Op1 = decodeOperand(bits[21], readRange(bits, 22, 16))

	case isa.LDR, isa.STR:
		pi.Rd = int(codec.ToUnsigned(readRange(bits, 4, 4)))
		pi.Address = codec.ToUnsigned(readRange(bits, 8, codec.AddrBits))

	case isa.B:
		pi.Cond = isa.BranchCondition(codec.ToUnsigned(readRange(bits, 4, 4)))
		addrBits := readRange(bits, 9, codec.AddrBits)
		if bits[8] {
			pi.Op0 = isa.Operand{Reg: true, Value: codec.ToUnsigned(addrBits[0:4])}
		} else {
			pi.Address = codec.ToUnsigned(addrBits)
		}

	case isa.OUT:
		pi.Rd = int(codec.ToUnsigned(readRange(bits, 4, 4)))
		pi.ASCII = bits[8]
	}

	return pi
}

// decodeOperand reconstructs an Operand from its reg-flag bit and its
// 16-bit field: a register operand's index is the low 4 bits of the
// field, a literal operand's value is its 16-bit two's-complement pattern
// sign-extended to 64 bits so negative immediates add and multiply
// correctly.
func decodeOperand(reg bool, field codec.Bits) isa.Operand {
	if reg {
		return isa.Operand{Reg: true, Value: codec.ToUnsigned(field[0:4])}
	}
	return isa.Operand{Reg: false, Value: uint64(codec.ToSigned(field))}
}

// Assemble parses and encodes one line of assembly text in a single step.
func Assemble(line string) (codec.Word, error) {
	pi, err := Parse(line)
	if err != nil {
		return 0, err
	}
	return Encode(pi), nil
}
