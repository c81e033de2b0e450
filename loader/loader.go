// Package loader populates main memory from the two program input files:
// a regular-expression-gated data image and an assembly instruction
// image.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"relay64/asm"
	"relay64/codec"
	"relay64/isa"
	"relay64/mem"
)

var (
	addrPattern = regexp.MustCompile(`^0x[0-9A-F]{8}$`)
	hexPattern  = regexp.MustCompile(`^[0-9A-F]+$`)
	decPattern  = regexp.MustCompile(`^-?[0-9]+$`)
	binPattern  = regexp.MustCompile(`^[01]+$`)
)

func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "//")
}

// extendReplicatingHigh zero- or sign-extends bits to 64 by repeating its
// current high bit, matching the data image's hex-literal rule; it
// truncates instead if bits is already longer than 64.
func extendReplicatingHigh(bits codec.Bits) codec.Bits {
	if len(bits) > codec.WordBits {
		return bits[:codec.WordBits]
	}
	out := make(codec.Bits, codec.WordBits)
	copy(out, bits)
	if len(bits) > 0 {
		high := bits[len(bits)-1]
		for i := len(bits); i < codec.WordBits; i++ {
			out[i] = high
		}
	}
	return out
}

// decodeBinaryLiteral converts a textual binary literal (MSB-first, as
// written) into little-endian bits, zero-extended to 64.
func decodeBinaryLiteral(s string) codec.Bits {
	bits := make(codec.Bits, len(s))
	for i := 0; i < len(s); i++ {
		bits[i] = s[len(s)-1-i] == '1'
	}
	return codec.SetSize(bits, codec.WordBits)
}

// LoadDataImage reads path, a sequence of `0xAAAAAAAA/0tVVV...` lines
// (t one of x/d/b selecting hex, decimal, or binary data; invalid or
// comment/blank lines are skipped), and writes each into m.
func LoadDataImage(path string, m *mem.Memory) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open data image: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if isComment(line) {
			continue
		}

		parts := strings.SplitN(line, "/", 2)
		if len(parts) != 2 {
			continue
		}
		addrHex := parts[0]
		if !addrPattern.MatchString(addrHex) {
			continue
		}
		addr := codec.ToUnsigned(codec.HexToBits(addrHex[2:]))

		rest := parts[1]
		if len(rest) < 2 {
			continue
		}
		datatype := rest[1]
		data := rest[2:]

		var word codec.Bits
		switch datatype {
		case 'x':
			if !hexPattern.MatchString(data) {
				continue
			}
			word = extendReplicatingHigh(codec.HexToBits(data))
		case 'd':
			n, err := strconv.ParseInt(data, 10, 64)
			if err != nil || !decPattern.MatchString(data) {
				continue
			}
			word = codec.FromSigned(n)
		case 'b':
			if !binPattern.MatchString(data) {
				continue
			}
			word = decodeBinaryLiteral(data)
		default:
			continue
		}

		m.Write(addr, codec.ToUnsigned(word))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read data image: %w", err)
	}
	return nil
}

// instrPrefixWidth is the fixed column width load_memory skips before the
// assembly text begins on each instruction-image line (typically a
// "0xHHHHHHHHHHHH|" address annotation that exists for a human reader,
// not the assembler).
const instrPrefixWidth = 15

// LoadInstructionImage reads path one line at a time, strips its fixed
// 15-column prefix and any further leading spaces, assembles what
// remains, and writes it at consecutive 64-bit-stride addresses starting
// at 0. The address counter advances by 64 for every source line,
// including ones that are blank or comments after the prefix is
// stripped, so a branch target written as a raw address in the source
// stays aligned with the assembled layout.
func LoadInstructionImage(path string, m *mem.Memory) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open instruction image: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	addr := uint64(0)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) <= instrPrefixWidth {
			addr += codec.WordBits
			continue
		}

		rest := line[instrPrefixWidth:]
		rest = strings.TrimLeft(rest, " ")

		if isComment(rest) {
			addr += codec.WordBits
			continue
		}

		// A line that won't assemble is written as an OTH word the control
		// unit no-ops past, rather than aborting the load.
		word, err := asm.Assemble(rest)
		if err != nil {
			word = asm.Encode(isa.ParsedInstruction{Type: isa.OTH})
		}
		m.Write(addr, word)
		addr += codec.WordBits
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read instruction image: %w", err)
	}
	return nil
}
