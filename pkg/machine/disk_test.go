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

package machine_test

import (
	"errors"
	"io"
	"testing"

	"github.com/lassandro/bedrock/pkg/machine"
)

// diskImage is a fixed-size in-memory backing store.
type diskImage struct {
	data []byte
	off  int64
}

func newDiskImage(sectors int) *diskImage {
	return &diskImage{data: make([]byte, sectors*machine.SECTOR_SIZE)}
}

func (d *diskImage) Read(p []byte) (int, error) {
	if d.off >= int64(len(d.data)) {
		return 0, io.EOF
	}

	n := copy(p, d.data[d.off:])
	d.off += int64(n)

	return n, nil
}

func (d *diskImage) Write(p []byte) (int, error) {
	if d.off+int64(len(p)) > int64(len(d.data)) {
		return 0, errors.New("write past end of disk image")
	}

	n := copy(d.data[d.off:], p)
	d.off += int64(n)

	return n, nil
}

func (d *diskImage) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		d.off = offset
	case io.SeekCurrent:
		d.off += offset
	case io.SeekEnd:
		d.off = int64(len(d.data)) + offset
	}

	return d.off, nil
}

// stepBusWrite runs a single bsw instruction against the port, going
// through the fetch/decode path rather than poking the controller.
func stepBusWrite(t *testing.T, mc *machine.Machine, port, value uint16) {
	t.Helper()

	mc.State.Registers[0] = port
	mc.State.Registers[1] = value
	mc.State.Memory.Write(mc.State.Program, 0xF010) // bsw r1, r0

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}
}

func stepBusRead(t *testing.T, mc *machine.Machine, port uint16) uint16 {
	t.Helper()

	mc.State.Registers[0] = port
	mc.State.Memory.Write(mc.State.Program, 0xE200) // bsr r2, r0

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	return mc.State.Registers[2]
}

func TestDiskRoundTrip(t *testing.T) {
	mc := machine.NewMachine(nil)

	if err := mc.Disk0.Attach(newDiskImage(4)); err != nil {
		t.Fatal(err)
	}

	const base = uint16(0x4000)

	for i := uint16(0); i < machine.SECTOR_WORDS; i++ {
		mc.State.Memory.Write(base+i, i*3+1)
	}

	stepBusWrite(t, mc, machine.PORT_DISK0_SECTOR, 3)
	stepBusWrite(t, mc, machine.PORT_DISK0_ADDRESS, base)
	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_WRITE)

	for i := uint16(0); i < machine.SECTOR_WORDS; i++ {
		mc.State.Memory.Write(base+i, 0)
	}

	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_READ)

	for i := uint16(0); i < machine.SECTOR_WORDS; i++ {
		want := i*3 + 1
		if have := mc.State.Memory.Read(base + i); have != want {
			t.Fatalf(
				"Sector word mismatch at %#04x"+
					"\nwant:%#04x\nhave:%#04x",
				base+i,
				want,
				have,
			)
		}
	}
}

func TestDiskStatusPorts(t *testing.T) {
	mc := machine.NewMachine(nil)

	if err := mc.Disk1.Attach(newDiskImage(7)); err != nil {
		t.Fatal(err)
	}

	stepBusWrite(t, mc, machine.PORT_DISK1_SECTOR, 2)
	stepBusWrite(t, mc, machine.PORT_DISK1_ADDRESS, 0x0123)

	if have := stepBusRead(t, mc, machine.PORT_DISK1_OP); have != 7 {
		t.Errorf("Sector count mismatch\nwant:7\nhave:%d", have)
	}

	if have := stepBusRead(t, mc, machine.PORT_DISK1_SECTOR); have != 2 {
		t.Errorf("Sector mismatch\nwant:2\nhave:%d", have)
	}

	if have := stepBusRead(t, mc, machine.PORT_DISK1_ADDRESS); have != 0x0123 {
		t.Errorf("Address mismatch\nwant:0x0123\nhave:%#04x", have)
	}
}

// An unattached controller absorbs every selection and trigger and
// reads 0 on all of its status ports.
func TestDiskInert(t *testing.T) {
	mc := machine.NewMachine(nil)

	stepBusWrite(t, mc, machine.PORT_DISK0_SECTOR, 5)
	stepBusWrite(t, mc, machine.PORT_DISK0_ADDRESS, 0x4000)
	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_READ)
	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_WRITE)

	for _, port := range []uint16{
		machine.PORT_DISK0_OP,
		machine.PORT_DISK0_SECTOR,
		machine.PORT_DISK0_ADDRESS,
	} {
		if have := stepBusRead(t, mc, port); have != 0 {
			t.Errorf(
				"Status port mismatch at %#04x"+
					"\nwant:0\nhave:%#04x",
				port,
				have,
			)
		}
	}

	if mc.State.Halted {
		t.Error("Inert controller halted the machine")
	}

	if have := mc.State.Memory.Read(0x4000); have != 0 {
		t.Errorf("Memory unexpectedly changed\nwant:0\nhave:%#04x", have)
	}
}

func TestDiskOutOfRangeDropped(t *testing.T) {
	mc := machine.NewMachine(nil)

	if err := mc.Disk0.Attach(newDiskImage(1)); err != nil {
		t.Fatal(err)
	}

	stepBusWrite(t, mc, machine.PORT_DISK0_SECTOR, 5)
	stepBusWrite(t, mc, machine.PORT_DISK0_ADDRESS, 0x4000)
	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_READ)

	if mc.State.Halted {
		t.Error("Dropped operation halted the machine")
	}

	if have := mc.State.Memory.Read(0x4000); have != 0 {
		t.Errorf("Memory unexpectedly changed\nwant:0\nhave:%#04x", have)
	}
}

func TestDiskOutOfRangeStrict(t *testing.T) {
	mc := machine.NewMachine(nil)
	mc.StrictDisk = true

	if err := mc.Disk0.Attach(newDiskImage(1)); err != nil {
		t.Fatal(err)
	}

	stepBusWrite(t, mc, machine.PORT_DISK0_SECTOR, 5)
	stepBusWrite(t, mc, machine.PORT_DISK0_OP, machine.DISK_READ)

	if !mc.State.Halted {
		t.Error("Strict mode did not halt on an out-of-range sector")
	}
}

func TestDiskSectorCountCap(t *testing.T) {
	mc := machine.NewMachine(nil)

	if err := mc.Disk0.Attach(newDiskImage(0x10001)); err != nil {
		t.Fatal(err)
	}

	if have := mc.Disk0.SectorCount; have != 0xFFFF {
		t.Errorf("Sector count mismatch\nwant:0xffff\nhave:%#04x", have)
	}
}
