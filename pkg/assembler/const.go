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

const (
	LITERAL_IMM4 LiteralType = 4
	LITERAL_IMM8             = 8
	LITERAL_WORD             = 16
)

const (
	// Assembly Instructions, in machine opcode order
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_JMP
	INSTRUCTION_RHI
	INSTRUCTION_SET
	INSTRUCTION_LOD
	INSTRUCTION_STO
	INSTRUCTION_ADD
	INSTRUCTION_SUB
	INSTRUCTION_MUL
	INSTRUCTION_DIV
	INSTRUCTION_SHL
	INSTRUCTION_SHR
	INSTRUCTION_AND
	INSTRUCTION_LOR
	INSTRUCTION_NOT
	INSTRUCTION_BSR
	INSTRUCTION_BSW
)

// opcode converts an instruction to its 4-bit machine encoding.
func (inst InstructionType) opcode() uint16 {
	return uint16(inst - INSTRUCTION_JMP)
}
