// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/bedrock/pkg/encoding"
)

func parseInstruction(ident string) InstructionType {
	if strings.EqualFold(ident, "JMP") {
		return INSTRUCTION_JMP
	} else if strings.EqualFold(ident, "RHI") {
		return INSTRUCTION_RHI
	} else if strings.EqualFold(ident, "SET") {
		return INSTRUCTION_SET
	} else if strings.EqualFold(ident, "LOD") {
		return INSTRUCTION_LOD
	} else if strings.EqualFold(ident, "STO") {
		return INSTRUCTION_STO
	} else if strings.EqualFold(ident, "ADD") {
		return INSTRUCTION_ADD
	} else if strings.EqualFold(ident, "SUB") {
		return INSTRUCTION_SUB
	} else if strings.EqualFold(ident, "MUL") {
		return INSTRUCTION_MUL
	} else if strings.EqualFold(ident, "DIV") {
		return INSTRUCTION_DIV
	} else if strings.EqualFold(ident, "SHL") {
		return INSTRUCTION_SHL
	} else if strings.EqualFold(ident, "SHR") {
		return INSTRUCTION_SHR
	} else if strings.EqualFold(ident, "AND") {
		return INSTRUCTION_AND
	} else if strings.EqualFold(ident, "LOR") {
		return INSTRUCTION_LOR
	} else if strings.EqualFold(ident, "NOT") {
		return INSTRUCTION_NOT
	} else if strings.EqualFold(ident, "BSR") {
		return INSTRUCTION_BSR
	} else if strings.EqualFold(ident, "BSW") {
		return INSTRUCTION_BSW
	}

	return INSTRUCTION_INVALID
}

func parseRegister(ident string) (uint16, bool) {
	if len(ident) != 2 || (ident[0] != 'r' && ident[0] != 'R') {
		return 0, false
	}

	switch c := ident[1] | 0x20; {
	case c >= '0' && c <= '9':
		return uint16(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint16(c-'a') + 10, true
	}

	return 0, false
}

// parseLiteral accepts hexadecimal in the formats 0x28, x28 and 28.
func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	var result uint16

	if i := strings.IndexAny(token.Value, "xX"); i == 0 || i == 1 {
		value, err := encoding.DecodeHex(token.Value)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		result = value
	} else {
		value, err := strconv.ParseUint(token.Value, 16, 16)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		result = uint16(value)
	}

	if bits < LITERAL_WORD {
		limit := uint16(1) << bits

		if result >= limit {
			return 0, &OversizedLiteralError{token.Position, limit, result}
		}
	}

	return result, nil
}

// tokenize splits the source into whitespace- or comma-separated
// tokens, dropping ';' comments and recording source positions for
// error reporting and symbol tables.
func tokenize(input io.Reader) []Token {
	var tokens []Token
	var scanner = bufio.NewScanner(input)

	var lineByte int64 = 0
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()

		start := -1

		flush := func(end int) {
			if start < 0 {
				return
			}

			tokens = append(tokens, Token{
				Position: Cursor{
					Line:     line,
					Column:   start + 1,
					Byte:     lineByte + int64(start),
					Size:     int64(end - start),
					LineByte: lineByte,
				},
				Value: text[start:end],
			})

			start = -1
		}

	scan:
		for i, char := range text {
			switch {
			case char == ';':
				flush(i)
				break scan

			case unicode.IsSpace(char) || char == ',':
				flush(i)

			default:
				if start < 0 {
					start = i
				}
			}
		}

		flush(len(text))

		lineByte += int64(len(text)) + 1
	}

	return tokens
}

// AssembleBedrockSource turns bedrock assembly into a word stream
// destined for the given base address. Labels declare as 'name:' and
// resolve to absolute addresses; a 'set' of a label beyond 8 bits
// expands to a set/shl/set/lor sequence through rf, and forward
// references always take the long form so they can be backpatched.
// All gathered errors are returned together.
func AssembleBedrockSource(input io.ReadSeeker, base uint16, symtable *SymTable) (result []uint16, errs []error) {
	type labelRef struct {
		Label    string
		Offset   int
		Position Cursor
	}

	var labels = make(map[string]uint16)
	var labelRefs []labelRef

	result = make([]uint16, 0, 64)
	errs = make([]error, 0)

	tokens := tokenize(input)
	pos := 0

	next := func(after *Token) (*Token, bool) {
		if pos >= len(tokens) {
			errs = append(errs, &UnexpectedEOFError{after.Position})
			return nil, false
		}

		token := &tokens[pos]
		pos++

		return token, true
	}

	register := func(after *Token) (uint16, bool) {
		token, ok := next(after)

		if !ok {
			return 0, false
		}

		value, ok := parseRegister(token.Value)

		if !ok {
			errs = append(
				errs, &InvalidRegisterError{token.Position, token.Value},
			)
			return 0, false
		}

		return value, true
	}

	literal := func(after *Token, bits LiteralType) (uint16, bool) {
		token, ok := next(after)

		if !ok {
			return 0, false
		}

		value, err := parseLiteral(token, bits)

		if err != nil {
			errs = append(errs, err)
			return 0, false
		}

		return value, true
	}

	emit := func(word uint16) {
		result = append(result, word)
	}

	// The long form of loading an address: high byte, shifted into
	// place, or'd with the low byte staged through rf.
	emitAddress := func(dst, addr uint16) {
		hi := addr >> 8
		lo := addr & 0xFF

		emit(encoding.Pack(INSTRUCTION_SET.opcode(), dst, hi>>4, hi&0xF))
		emit(encoding.Pack(INSTRUCTION_SHL.opcode(), dst, 8, dst))
		emit(encoding.Pack(INSTRUCTION_SET.opcode(), 0xF, lo>>4, lo&0xF))
		emit(encoding.Pack(INSTRUCTION_LOR.opcode(), dst, dst, 0xF))
	}

	for pos < len(tokens) {
		token := &tokens[pos]
		pos++

		if strings.HasSuffix(token.Value, ":") {
			label := token.Value[:len(token.Value)-1]

			if _, exists := labels[label]; exists {
				errs = append(
					errs, &RedeclaredLabelError{token.Position, label},
				)
				continue
			}

			addr := base + uint16(len(result))
			labels[label] = addr

			if symtable != nil {
				symtable.Labels[addr] = label
			}

			continue
		}

		inst := parseInstruction(token.Value)

		if inst == INSTRUCTION_INVALID {
			errs = append(
				errs, &UnknownIdentifierError{token.Position, token.Value},
			)
			continue
		}

		if symtable != nil {
			symtable.Symbols[base+uint16(len(result))] = token.Position.LineByte
		}

		switch inst {
		case INSTRUCTION_JMP, INSTRUCTION_ADD, INSTRUCTION_SUB,
			INSTRUCTION_MUL, INSTRUCTION_DIV, INSTRUCTION_AND,
			INSTRUCTION_LOR:
			dst, ok := register(token)
			if !ok {
				continue
			}

			src1, ok := register(token)
			if !ok {
				continue
			}

			src0, ok := register(token)
			if !ok {
				continue
			}

			emit(encoding.Pack(inst.opcode(), dst, src1, src0))

		case INSTRUCTION_RHI:
			dst, ok := register(token)
			if !ok {
				continue
			}

			emit(encoding.Pack(inst.opcode(), dst, 0, 0))

		case INSTRUCTION_SET:
			dst, ok := register(token)
			if !ok {
				continue
			}

			operand, ok := next(token)
			if !ok {
				continue
			}

			value, err := parseLiteral(operand, LITERAL_IMM8)

			if err == nil {
				emit(encoding.Pack(inst.opcode(), dst, value>>4, value&0xF))
			} else if _, oversized := err.(*OversizedLiteralError); oversized {
				errs = append(errs, err)
			} else if addr, exists := labels[operand.Value]; exists {
				if addr>>8 != 0 {
					emitAddress(dst, addr)
				} else {
					emit(encoding.Pack(
						inst.opcode(), dst, addr>>4, addr&0xF,
					))
				}
			} else {
				labelRefs = append(labelRefs, labelRef{
					operand.Value, len(result), operand.Position,
				})
				emitAddress(dst, 0)
			}

		case INSTRUCTION_LOD, INSTRUCTION_NOT, INSTRUCTION_BSR:
			dst, ok := register(token)
			if !ok {
				continue
			}

			src0, ok := register(token)
			if !ok {
				continue
			}

			emit(encoding.Pack(inst.opcode(), dst, 0, src0))

		case INSTRUCTION_STO, INSTRUCTION_BSW:
			src1, ok := register(token)
			if !ok {
				continue
			}

			src0, ok := register(token)
			if !ok {
				continue
			}

			emit(encoding.Pack(inst.opcode(), 0, src1, src0))

		case INSTRUCTION_SHL, INSTRUCTION_SHR:
			dst, ok := register(token)
			if !ok {
				continue
			}

			count, ok := literal(token, LITERAL_IMM4)
			if !ok {
				continue
			}

			src0, ok := register(token)
			if !ok {
				continue
			}

			emit(encoding.Pack(inst.opcode(), dst, count, src0))
		}
	}

	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		result[ref.Offset] |= addr >> 8
		result[ref.Offset+2] |= addr & 0xFF
	}

	if int(base)+len(result) > 1<<16 {
		errs = append(errs, &OversizedBinaryError{})
	}

	return result, errs
}
