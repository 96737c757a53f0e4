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

// BootFirmware is the machine's read-only boot ROM. It triggers a
// disk0 read of sector zero into address 0 and jumps to the first
// mutable address (0x28). Writes below the firmware size are
// discarded, so the read lands at 0x28 onward; with no disk attached
// the trigger is a no-op and the zero word at 0x28 chains back into
// the ROM's line-oriented hex assembler, which accepts words as four
// hex digits plus a newline and executes the buffer on an empty line.
var BootFirmware = []uint16{
	// Read the disk0 sector count over the bus
	0x2001, // set  r0, 0x1
	0xEB00, // bsr  rb, r0

	// Set the assembly area base to the first mutable address
	0x2B28, // set  rb, 0x28

	// Enter the boot shim
	0x2108, // set  r1, 0x8
	0x0201, // jmp  r2, r0, r1

	0x210A, // set  r1, 0xa
	0x0211, // jmp  r2, r1, r1
	0xC000, // lor  r0, r0, r0  ; nop

	// Read disk0 sector zero over ourselves, jump to the buffer
	0xF0C0, // bsw  rc, r0
	0x00BB, // jmp  r0, rb, rb

	// Wait for input
	0xE20C, // bsr  r2, rc

	// If char did not equal '\n', skip the execute jump
	0x210A, // set  r1, 0xa
	0x6021, // sub  r0, r2, r1  ; r0 is zero if char == '\n'
	0x2110, // set  r1, 0x10
	0x0001, // jmp  r0, r0, r1

	// Jump to the code buffer
	0x00BB, // jmp  r0, rb, rb

	// Decide range of character
	0x203A, // set  r0, 0x3a    ; r0 = ':'
	0x8002, // div  r0, r0, r2  ; r0 = r2 / r0 (zero iff. r2 < ':')

	// Jump if not decimal to the letter computation
	0x2118, // set  r1, 0x18
	0x0101, // jmp  r1, r0, r1

	// Compute decimal and skip the letter computation
	0x2030, // set  r0, 0x30    ; r0 = '0'
	0x6002, // sub  r0, r0, r2  ; r0 = r2 - r0
	0x211A, // set  r1, 0x1a
	0x0111, // jmp  r1, r1, r1

	// Compute letter
	0x2057, // set  r0, 0x57    ; r0 = 'a' - 10
	0x6002, // sub  r0, r0, r2  ; r0 = r2 - r0

	// Shift the digit in
	0x9F4F, // shl  rf, 0x4, rf
	0xCF0F, // lor  rf, r0, rf

	// Advance the digit counter
	0x2201, // set  r2, 0x1
	0x5EE2, // add  re, re, r2
	0x2003, // set  r0, 0x3
	0xB00E, // and  r0, r0, re

	// Skip the write until four digits are in
	0x2126, // set  r1, 0x26
	0x0101, // jmp  r1, r0, r1

	// Write the word into the buffer
	0x50BD, // add  r0, rb, rd
	0x40F0, // sto  rf, r0
	0x5D2D, // add  rd, r2, rd

	// Dispose of the trailing newline
	0xE00C, // bsr  r0, rc

	// Loop
	0x210A, // set  r1, 0xa
	0x0001, // jmp  r0, r0, r1
}
