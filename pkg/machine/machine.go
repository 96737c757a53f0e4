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

import (
	"io"

	"github.com/lassandro/bedrock/pkg/encoding"
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x0000
	}

	for i := range mc.Memory.ram {
		mc.Memory.ram[i] = 0x0000
	}

	mc.Program = 0x0000
	mc.Overflow = 0x0000
	mc.Halted = false
}

// Step fetches, decodes and executes one instruction. The program
// counter advances before execution, so a taken jump links the
// address of the following word. Only backing store I/O can fail.
func (mc *Machine) Step() error {
	inst := encoding.Decode(mc.State.Memory.Read(mc.State.Program))
	mc.State.Program++

	regs := &mc.State.Registers

	switch inst.Opcode {
	// JMP  |0000    |DST  |SRC1 |SRC0 | Conditional jump with link
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JMP:
		if regs[inst.Src1] != 0 {
			// Read the target before the link lands, so a dst that
			// aliases src0 still jumps to the old value
			target := regs[inst.Src0]
			regs[inst.Dst] = mc.State.Program
			mc.State.Program = target
		}

	// RHI  |0001    |DST  |---- |---- | Read overflow register
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RHI:
		regs[inst.Dst] = mc.State.Overflow

	// SET  |0010    |DST  |IMM8       | Load 8-bit immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SET:
		regs[inst.Dst] = inst.Src1<<4 | inst.Src0

	// LOD  |0011    |DST  |---- |SRC0 | Load from memory
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LOD:
		regs[inst.Dst] = mc.State.Memory.Read(regs[inst.Src0])

	// STO  |0100    |---- |SRC1 |SRC0 | Store to memory
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STO:
		mc.State.Memory.Write(regs[inst.Src0], regs[inst.Src1])

	// ADD  |0101    |DST  |SRC1 |SRC0 | Wide addition
	// SUB  |0110    |DST  |SRC1 |SRC0 | Wide subtraction
	// MUL  |0111    |DST  |SRC1 |SRC0 | Wide multiplication
	// DIV  |1000    |DST  |SRC1 |SRC0 | Wide division
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	//
	// Operands widen to 32 bits: the low half lands in dst, the high
	// half in the overflow register. Division by zero yields
	// 0xFFFFFFFF instead of failing.
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		a := uint32(regs[inst.Src0])
		b := uint32(regs[inst.Src1])

		var c uint32

		switch inst.Opcode {
		case OP_ADD:
			c = a + b
		case OP_SUB:
			c = a - b
		case OP_MUL:
			c = a * b
		case OP_DIV:
			if b != 0 {
				c = a / b
			} else {
				c = 0xFFFFFFFF
			}
		}

		regs[inst.Dst] = uint16(c)
		mc.State.Overflow = uint16(c >> 16)

	// SHL  |1001    |DST  |IMM4 |SRC0 | Logical shift left
	// SHR  |1010    |DST  |IMM4 |SRC0 | Logical shift right
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	//
	// The shift count is the literal src1 field, not a register.
	case OP_SHL:
		regs[inst.Dst] = regs[inst.Src0] << inst.Src1

	case OP_SHR:
		regs[inst.Dst] = regs[inst.Src0] >> inst.Src1

	// AND  |1011    |DST  |SRC1 |SRC0 | Bitwise and
	// LOR  |1100    |DST  |SRC1 |SRC0 | Bitwise or
	// NOT  |1101    |DST  |---- |SRC0 | Bitwise complement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_AND:
		regs[inst.Dst] = regs[inst.Src0] & regs[inst.Src1]

	case OP_LOR:
		regs[inst.Dst] = regs[inst.Src0] | regs[inst.Src1]

	case OP_NOT:
		regs[inst.Dst] = ^regs[inst.Src0]

	// BSR  |1110    |DST  |---- |SRC0 | Bus read, port in reg[src0]
	// BSW  |1111    |---- |SRC1 |SRC0 | Bus write, value in reg[src1]
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BSR:
		value, err := mc.busRead(regs[inst.Src0])

		if err != nil {
			return err
		}

		regs[inst.Dst] = value

	case OP_BSW:
		if err := mc.busWrite(regs[inst.Src0], regs[inst.Src1]); err != nil {
			return err
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}

// Run steps the machine until a non-zero write to the halt port or a
// fatal backing store failure. The halting instruction completes
// before the loop exits.
func (mc *Machine) Run() error {
	for !mc.State.Halted {
		if err := mc.Step(); err != nil {
			return err
		}
	}

	return nil
}

func (mc *Machine) busRead(port uint16) (uint16, error) {
	var result uint16

	switch port {
	case PORT_CONSOLE:
		result = CONSOLE_EOF

		if mc.Devices != nil && mc.Devices.Keyboard != nil {
			key, err := mc.Devices.Keyboard.ReadByte()

			if err == nil {
				result = uint16(key)
			} else if err != io.EOF {
				return 0, err
			}
		}

	case PORT_DISK0_OP:
		result = mc.Disk0.SectorCount

	case PORT_DISK0_SECTOR:
		if mc.Disk0.Attached() {
			result = mc.Disk0.Sector
		}

	case PORT_DISK0_ADDRESS:
		if mc.Disk0.Attached() {
			result = mc.Disk0.Address
		}

	case PORT_DISK1_OP:
		result = mc.Disk1.SectorCount

	case PORT_DISK1_SECTOR:
		if mc.Disk1.Attached() {
			result = mc.Disk1.Sector
		}

	case PORT_DISK1_ADDRESS:
		if mc.Disk1.Attached() {
			result = mc.Disk1.Address
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.BusRead(port, mc)
	}

	return result, nil
}

func (mc *Machine) busWrite(port uint16, value uint16) error {
	switch port {
	case PORT_CONSOLE:
		if mc.Devices != nil && mc.Devices.Display != nil {
			if err := mc.Devices.Display.WriteByte(byte(value)); err != nil {
				return err
			}

			if err := mc.Devices.Display.Flush(); err != nil {
				return err
			}
		}

	case PORT_DISK0_OP:
		if err := mc.diskOperation(&mc.Disk0, value); err != nil {
			return err
		}

	case PORT_DISK0_SECTOR:
		if mc.Disk0.Attached() {
			mc.Disk0.Sector = value
		}

	case PORT_DISK0_ADDRESS:
		if mc.Disk0.Attached() {
			mc.Disk0.Address = value
		}

	case PORT_DISK1_OP:
		if err := mc.diskOperation(&mc.Disk1, value); err != nil {
			return err
		}

	case PORT_DISK1_SECTOR:
		if mc.Disk1.Attached() {
			mc.Disk1.Sector = value
		}

	case PORT_DISK1_ADDRESS:
		if mc.Disk1.Attached() {
			mc.Disk1.Address = value
		}

	case PORT_HALT:
		if value != 0 {
			mc.State.Halted = true
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.BusWrite(port, mc)
	}

	return nil
}
