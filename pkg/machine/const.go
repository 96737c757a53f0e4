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

package machine

const (
	OP_JMP uint16 = 0x0
	OP_RHI        = 0x1
	OP_SET        = 0x2
	OP_LOD        = 0x3
	OP_STO        = 0x4
	OP_ADD        = 0x5
	OP_SUB        = 0x6
	OP_MUL        = 0x7
	OP_DIV        = 0x8
	OP_SHL        = 0x9
	OP_SHR        = 0xA
	OP_AND        = 0xB
	OP_LOR        = 0xC
	OP_NOT        = 0xD
	OP_BSR        = 0xE
	OP_BSW        = 0xF
)

// Bus ports. Reads and writes on the same port can carry different
// meanings: the disk control ports read back the sector count and
// write an operation trigger. Ports outside this set read 0 and
// ignore writes.
const (
	PORT_CONSOLE  uint16 = 0x0000
	PORT_DISK0_OP        = 0x0001
	PORT_DISK0_SECTOR    = 0x0002
	PORT_DISK0_ADDRESS   = 0x0003
	PORT_DISK1_OP        = 0x0004
	PORT_DISK1_SECTOR    = 0x0005
	PORT_DISK1_ADDRESS   = 0x0006
	PORT_HALT            = 0x0007
)

// Values written to an operation port to trigger a transfer.
const (
	DISK_READ  uint16 = 0
	DISK_WRITE uint16 = 1
)

const (
	WORD_SIZE    = 2
	SECTOR_SIZE  = 512
	SECTOR_WORDS = SECTOR_SIZE / WORD_SIZE
)

// Console reads return CONSOLE_EOF once the input stream is
// exhausted. Successful reads are masked to 8 bits, so the sentinel
// never collides with real input.
const CONSOLE_EOF uint16 = 0xFFFF
