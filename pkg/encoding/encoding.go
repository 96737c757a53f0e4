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

package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// An instruction word splits into four nibbles, most significant first:
//
//	|OP   |DST  |SRC1 |SRC0 |
//	[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
//
// Every 4-bit opcode value is assigned semantics, so decoding is a
// total function.
type Instruction struct {
	Opcode uint16
	Dst    uint16
	Src1   uint16
	Src0   uint16
}

var mnemonics = [16]string{
	"jmp", "rhi", "set", "lod", "sto", "add", "sub", "mul",
	"div", "shl", "shr", "and", "lor", "not", "bsr", "bsw",
}

// Decode splits a raw word into its four instruction fields.
func Decode(word uint16) Instruction {
	return Instruction{
		Opcode: word >> 12,
		Dst:    (word >> 8) & 0xF,
		Src1:   (word >> 4) & 0xF,
		Src0:   word & 0xF,
	}
}

// Encode packs the four instruction fields back into a word. Inverse
// of Decode for any word.
func Encode(inst Instruction) uint16 {
	return Pack(inst.Opcode, inst.Dst, inst.Src1, inst.Src0)
}

// Pack builds an instruction word from four nibble values. Each field
// is masked to 4 bits.
func Pack(opcode, dst, src1, src0 uint16) uint16 {
	return (opcode&0xF)<<12 | (dst&0xF)<<8 | (src1&0xF)<<4 | (src0 & 0xF)
}

func (inst Instruction) String() string {
	switch inst.Opcode {
	case 0x2: // set takes an 8-bit immediate
		return fmt.Sprintf(
			"set r%x, %#02x", inst.Dst, inst.Src1<<4|inst.Src0,
		)
	case 0x9, 0xA: // shifts take a 4-bit literal count
		return fmt.Sprintf(
			"%s r%x, %#x, r%x",
			mnemonics[inst.Opcode], inst.Dst, inst.Src1, inst.Src0,
		)
	default:
		return fmt.Sprintf(
			"%s r%x, r%x, r%x",
			mnemonics[inst.Opcode], inst.Dst, inst.Src1, inst.Src0,
		)
	}
}

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

func SwapEndian(value uint16) uint16 {
	return (value >> 8) | (value << 8)
}
