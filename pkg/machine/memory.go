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
	"encoding/binary"
	"errors"
	"io"
)

// Memory is the machine's word-addressed storage. Addresses below the
// firmware size read from a fixed firmware table and discard writes;
// every address at or above it maps into mutable memory, offset by
// the firmware size. Addresses wrap by virtue of their 16-bit type.
type Memory struct {
	firmware []uint16
	ram      []uint16
}

func NewMemory(firmware []uint16) Memory {
	return Memory{
		firmware: firmware,
		ram:      make([]uint16, (1<<16)-len(firmware)),
	}
}

func (m *Memory) Read(addr uint16) uint16 {
	if int(addr) < len(m.firmware) {
		return m.firmware[addr]
	}

	return m.ram[int(addr)-len(m.firmware)]
}

func (m *Memory) Write(addr uint16, value uint16) {
	if int(addr) >= len(m.firmware) {
		m.ram[int(addr)-len(m.firmware)] = value
	}
}

// FirmwareSize reports the first mutable address.
func (m *Memory) FirmwareSize() uint16 {
	return uint16(len(m.firmware))
}

// LoadBin resets the machine and fills mutable memory from a
// big-endian word image. The image appears at address
// FirmwareSize() onward. Loading fails fast when the image exceeds
// the mutable address space.
func (mc *Machine) LoadBin(reader io.Reader) error {
	mc.State.Reset()

	scratch := make([]byte, 2)
	ram := mc.State.Memory.ram
	index := 0

	for {
		_, err := io.ReadFull(reader, scratch)

		if err == io.EOF {
			return nil
		} else if err == io.ErrUnexpectedEOF {
			return errors.New("Odd-length program image")
		} else if err != nil {
			return err
		}

		if index >= len(ram) {
			return errors.New("Program image exceeds mutable memory")
		}

		ram[index] = binary.BigEndian.Uint16(scratch)
		index++
	}
}
