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

package assembler_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/bedrock/pkg/assembler"
)

type testCase struct {
	Name   string
	Base   uint16
	Source string
	Result []uint16
}

func testAssembleSuccess(t *testing.T, test *testCase) {
	t.Helper()

	result, errs := assembler.AssembleBedrockSource(
		strings.NewReader(test.Source), test.Base, nil,
	)

	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	if !reflect.DeepEqual(result, test.Result) {
		t.Fatalf(
			"Binary mismatch\nwant:%04x\nhave:%04x",
			test.Result,
			result,
		)
	}
}

func testAssembleFailure(t *testing.T, source string, expected error) {
	t.Helper()

	_, errs := assembler.AssembleBedrockSource(
		strings.NewReader(source), 0x0, nil,
	)

	if len(errs) == 0 {
		t.Fatalf("Expected error %T, assembly succeeded", expected)
	}

	for _, err := range errs {
		if reflect.TypeOf(err) == reflect.TypeOf(expected) {
			return
		}
	}

	t.Fatalf("Expected error %T\nhave:%v", expected, errs)
}

func TestAssembleInstructions(t *testing.T) {
	tests := []testCase{
		{
			Name:   "Jump",
			Source: "jmp r2, r0, r1",
			Result: []uint16{0x0201},
		},
		{
			Name:   "ReadHigh",
			Source: "rhi r3",
			Result: []uint16{0x1300},
		},
		{
			Name:   "SetImmediate",
			Source: "set r0, 0xab",
			Result: []uint16{0x20AB},
		},
		{
			Name:   "SetBareHex",
			Source: "set rb, 28",
			Result: []uint16{0x2B28},
		},
		{
			Name:   "LoadStore",
			Source: "lod r0, r2\nsto r0, r1",
			Result: []uint16{0x3002, 0x4001},
		},
		{
			Name:   "Arithmetic",
			Source: "add r2, r1, r0\nsub r3, r1, r2\nmul r4, r1, r0\ndiv r5, r1, r0",
			Result: []uint16{0x5210, 0x6312, 0x7410, 0x8510},
		},
		{
			Name:   "Shifts",
			Source: "shl r1, 8, r4\nshr r2, 4, r0",
			Result: []uint16{0x9184, 0xA240},
		},
		{
			Name:   "Logic",
			Source: "and r2, r1, r0\nlor r3, r1, r0\nnot r1, r2",
			Result: []uint16{0xB210, 0xC310, 0xD102},
		},
		{
			Name:   "Bus",
			Source: "bsr r2, r0\nbsw r1, r0",
			Result: []uint16{0xE200, 0xF010},
		},
		{
			Name:   "MixedCase",
			Source: "SET R0, 0x7\nBSW R1, R0",
			Result: []uint16{0x2007, 0xF010},
		},
		{
			Name:   "Comments",
			Source: "set r0, 0x7 ; halt code\n; full line comment\nbsw r1, r0",
			Result: []uint16{0x2007, 0xF010},
		},
	}

	for i := range tests {
		test := &tests[i]

		t.Run(test.Name, func(t *testing.T) {
			testAssembleSuccess(t, test)
		})
	}
}

func TestAssembleLabels(t *testing.T) {
	tests := []testCase{
		{
			Name:   "BackwardShort",
			Base:   0x28,
			Source: "loop: add r0, r0, r1\nset r2, loop",
			Result: []uint16{
				0x5001, // add r0, r0, r1
				0x2228, // set r2, 0x28
			},
		},
		{
			Name:   "BackwardLong",
			Base:   0x1000,
			Source: "loop: add r0, r0, r1\nset r2, loop",
			Result: []uint16{
				0x5001, // add r0, r0, r1
				0x2210, // set r2, 0x10
				0x9282, // shl r2, 8, r2
				0x2F00, // set rf, 0x00
				0xC22F, // lor r2, r2, rf
			},
		},
		{
			Name:   "Forward",
			Source: "set r2, done\njmp r0, r2, r2\ndone: set r0, 0x7",
			Result: []uint16{
				0x2200, // set r2, 0x00
				0x9282, // shl r2, 8, r2
				0x2F05, // set rf, 0x05
				0xC22F, // lor r2, r2, rf
				0x0022, // jmp r0, r2, r2
				0x2007, // set r0, 0x7
			},
		},
	}

	for i := range tests {
		test := &tests[i]

		t.Run(test.Name, func(t *testing.T) {
			testAssembleSuccess(t, test)
		})
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		Name     string
		Source   string
		Expected error
	}{
		{
			"InvalidRegister",
			"add r2, r1, rx",
			&assembler.InvalidRegisterError{},
		},
		{
			"InvalidLiteral",
			"shl r1, zz, r4",
			&assembler.InvalidLiteralError{},
		},
		{
			"OversizedShiftCount",
			"shl r1, x10, r4",
			&assembler.OversizedLiteralError{},
		},
		{
			"OversizedImmediate",
			"set r0, 0x1ff",
			&assembler.OversizedLiteralError{},
		},
		{
			"RedeclaredLabel",
			"loop:\nloop:",
			&assembler.RedeclaredLabelError{},
		},
		{
			"UnknownLabel",
			"set r2, missing",
			&assembler.UnknownLabelError{},
		},
		{
			"UnknownIdentifier",
			"frobnicate r0",
			&assembler.UnknownIdentifierError{},
		},
		{
			"UnexpectedEOF",
			"add r2, r1",
			&assembler.UnexpectedEOFError{},
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			testAssembleFailure(t, test.Source, test.Expected)
		})
	}
}

func TestAssembleErrorPositions(t *testing.T) {
	_, errs := assembler.AssembleBedrockSource(
		strings.NewReader("set r0, 0x1\nadd r2, r1, rx\n"), 0x0, nil,
	)

	if len(errs) != 1 {
		t.Fatalf("Expected a single error, have %v", errs)
	}

	err, ok := errs[0].(assembler.TokenError)

	if !ok {
		t.Fatalf("Expected a TokenError, have %T", errs[0])
	}

	pos := err.GetPosition()

	if pos.Line != 2 || pos.Column != 13 {
		t.Fatalf(
			"Position mismatch\nwant:02:13\nhave:%02d:%02d",
			pos.Line,
			pos.Column,
		)
	}
}

func TestAssembleSymTable(t *testing.T) {
	symtable := &assembler.SymTable{
		Symbols: make(map[uint16]int64),
		Labels:  make(map[uint16]string),
	}

	source := "set r0, 0x7\nloop: set r1, 0x1\nbsw r1, r0\n"

	_, errs := assembler.AssembleBedrockSource(
		strings.NewReader(source), 0x28, symtable,
	)

	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	if have := symtable.Labels[0x29]; have != "loop" {
		t.Errorf("Label mismatch\nwant:loop\nhave:%s", have)
	}

	wantSymbols := map[uint16]int64{
		0x28: 0,  // set r0, 0x7
		0x29: 12, // loop: set r1, 0x1
		0x2A: 30, // bsw r1, r0
	}

	if !reflect.DeepEqual(symtable.Symbols, wantSymbols) {
		t.Errorf(
			"Symbol mismatch\nwant:%v\nhave:%v",
			wantSymbols,
			symtable.Symbols,
		)
	}
}
