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

package encoding_test

import (
	"testing"

	"github.com/lassandro/bedrock/pkg/encoding"
)

// Decoding and re-encoding must reproduce every possible word.
func TestDecodeRoundTrip(t *testing.T) {
	for word := 0; word < 1<<16; word++ {
		inst := encoding.Decode(uint16(word))

		if have := encoding.Encode(inst); have != uint16(word) {
			t.Fatalf(
				"Round trip mismatch\nwant:%#04x\nhave:%#04x",
				word,
				have,
			)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	inst := encoding.Decode(0xABCD)

	if inst.Opcode != 0xA || inst.Dst != 0xB ||
		inst.Src1 != 0xC || inst.Src0 != 0xD {
		t.Fatalf(
			"Field mismatch\nwant:{0xa 0xb 0xc 0xd}\nhave:%+v",
			inst,
		)
	}
}

func TestPackMasksFields(t *testing.T) {
	if have := encoding.Pack(0x1F, 0x10, 0x12, 0x13); have != 0xF023 {
		t.Fatalf("Pack mismatch\nwant:0xf023\nhave:%#04x", have)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		Word   uint16
		Result string
	}{
		{0x0312, "jmp r3, r1, r2"},
		{0x20AB, "set r2, 0xab"},
		{0x9184, "shl r1, 0x8, r4"},
		{0xA240, "shr r2, 0x4, r0"},
		{0xF010, "bsw r0, r1, r0"},
	}

	for _, test := range tests {
		if have := encoding.Decode(test.Word).String(); have != test.Result {
			t.Errorf(
				"Disassembly mismatch for %#04x"+
					"\nwant:%s\nhave:%s",
				test.Word,
				test.Result,
				have,
			)
		}
	}
}

func TestDecodeHex(t *testing.T) {
	for _, input := range []string{"0x1A2B", "x1A2B", "0x1a2b"} {
		result, err := encoding.DecodeHex(input)

		if err != nil {
			t.Fatal(err)
		}

		if result != 0x1A2B {
			t.Fatalf(
				"Hex decode mismatch\nwant:0x1a2b\nhave:%#04x",
				result,
			)
		}
	}

	if _, err := encoding.DecodeHex("1A2B"); err == nil {
		t.Fatal("Expected unprefixed hex to fail")
	}
}

func TestDecodeInt(t *testing.T) {
	for _, input := range []string{"#123", "123"} {
		result, err := encoding.DecodeInt(input)

		if err != nil {
			t.Fatal(err)
		}

		if result != 123 {
			t.Fatalf("Int decode mismatch\nwant:123\nhave:%d", result)
		}
	}
}
