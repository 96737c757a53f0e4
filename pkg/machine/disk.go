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
	"io"
)

// DiskController models one sector-addressed block device. A
// controller with no backing store is inert: selections and triggers
// are no-ops and its status ports read 0. Backing store I/O failures
// are fatal to the whole machine, not per-operation conditions.
type DiskController struct {
	backing io.ReadWriteSeeker

	SectorCount uint16
	Sector      uint16
	Address     uint16
}

// Attach hands the controller its backing store for the machine's
// lifetime. The sector count comes from the store's current size,
// capped at 0xFFFF.
func (dc *DiskController) Attach(backing io.ReadWriteSeeker) error {
	size, err := backing.Seek(0, io.SeekEnd)

	if err != nil {
		return err
	}

	sectors := size / SECTOR_SIZE
	if sectors > 0xFFFF {
		sectors = 0xFFFF
	}

	dc.backing = backing
	dc.SectorCount = uint16(sectors)

	return nil
}

func (dc *DiskController) Attached() bool {
	return dc.backing != nil
}

// transfer moves the selected sector between the backing store and
// memory, one sector of big-endian words, high byte first. The memory
// side starts at the transfer address and wraps like any other
// access. Bounds have already been checked by the bus.
func (dc *DiskController) transfer(mem *Memory, control uint16) error {
	if _, err := dc.backing.Seek(
		int64(dc.Sector)*SECTOR_SIZE, io.SeekStart,
	); err != nil {
		return err
	}

	buf := make([]byte, SECTOR_SIZE)

	if control == DISK_READ {
		if _, err := io.ReadFull(dc.backing, buf); err != nil {
			return err
		}

		for i := 0; i < SECTOR_WORDS; i++ {
			mem.Write(
				dc.Address+uint16(i),
				binary.BigEndian.Uint16(buf[i*WORD_SIZE:]),
			)
		}
	} else {
		for i := 0; i < SECTOR_WORDS; i++ {
			binary.BigEndian.PutUint16(
				buf[i*WORD_SIZE:],
				mem.Read(dc.Address+uint16(i)),
			)
		}

		if _, err := dc.backing.Write(buf); err != nil {
			return err
		}
	}

	return nil
}

// diskOperation applies the policy around a trigger write: inert
// controllers and unknown control values drop the request, and an
// out-of-range sector either drops it or, under StrictDisk, halts the
// machine.
func (mc *Machine) diskOperation(dc *DiskController, control uint16) error {
	if !dc.Attached() {
		return nil
	}

	if control != DISK_READ && control != DISK_WRITE {
		return nil
	}

	if dc.Sector >= dc.SectorCount {
		if mc.StrictDisk {
			mc.State.Halted = true
		}
		return nil
	}

	return dc.transfer(&mc.State.Memory, control)
}
