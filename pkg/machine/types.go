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
	"bufio"
)

type DeviceHandler struct {
	Keyboard *bufio.Reader
	Display  *bufio.Writer
}

type MachineState struct {
	Registers [16]uint16

	Program uint16

	// Overflow holds the high half of the last wide arithmetic
	// result. Only add, sub, mul and div write it; only rhi reads it.
	Overflow uint16

	Memory Memory

	Halted bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	BusRead(port uint16, mc *Machine)
	BusWrite(port uint16, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Disk0    DiskController
	Disk1    DiskController
	Debugger MachineDebugger

	// StrictDisk halts the machine when a triggered operation names
	// an out-of-range sector on an attached disk. The default policy
	// drops the operation silently.
	StrictDisk bool
}

// NewMachine builds a halted-at-reset machine whose low addresses
// shadow the given firmware words. A nil firmware maps the entire
// address space as mutable memory.
func NewMachine(firmware []uint16) *Machine {
	mc := &Machine{}
	mc.State.Memory = NewMemory(firmware)
	return mc
}
