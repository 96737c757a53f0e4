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

package main

import (
	"bufio"
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/lassandro/bedrock/pkg/assembler"
	"github.com/lassandro/bedrock/pkg/debugger"
	"github.com/lassandro/bedrock/pkg/machine"
)

var helpvar bool
var debugvar bool
var strictvar bool
var imagevar string
var shouldexit bool

const usage = "bedrock [options] [disk0 [disk1]]\n" +
	"  Pass '--' in place of disk0 to attach only the second disk"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&strictvar, "strict", false,
		"Halts on out-of-range disk sectors instead of dropping them")
	flag.StringVar(&imagevar, "image", "",
		"Boots a raw program image instead of the boot firmware")
	flag.Parse()
}

func attachDisk(dc *machine.DiskController, path string) (*os.File, error) {
	if path == "--" {
		return nil, nil
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0644)

	if err != nil {
		return nil, err
	}

	if err := dc.Attach(file); err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}

func bedrock() int {
	if helpvar {
		fmt.Println(usage)
		return 0
	}

	args := flag.Args()

	if len(args) > 2 {
		log.Println(usage)
		return 1
	}

	var mc *machine.Machine

	if imagevar != "" {
		mc = machine.NewMachine(nil)
	} else {
		mc = machine.NewMachine(machine.BootFirmware)
	}

	mc.StrictDisk = strictvar

	var dh machine.DeviceHandler
	dh.Keyboard = bufio.NewReader(os.Stdin)
	dh.Display = bufio.NewWriter(os.Stdout)
	mc.Devices = &dh

	for i, dc := range []*machine.DiskController{&mc.Disk0, &mc.Disk1} {
		if i >= len(args) {
			break
		}

		file, err := attachDisk(dc, args[i])

		if err != nil {
			log.Println(err)
			return 1
		}

		if file != nil {
			defer file.Close()
		}
	}

	if imagevar != "" {
		file, err := os.Open(imagevar)

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		if err := mc.LoadBin(file); err != nil {
			log.Println(err)
			return 1
		}

		if debugvar {
			setupDebugger(mc, file)
		}
	} else if debugvar {
		setupDebugger(mc, nil)
	}

	enterRawTerm()
	defer exitRawTerm()

	if debugvar {
		debugREPL(mc.Debugger.(*debugger.Debugger), mc)
	}

	for !shouldexit && !mc.State.Halted {
		if err := mc.Step(); err != nil {
			dh.Display.Flush()
			log.Println(err)
			return 1
		}
	}

	dh.Display.Flush()

	return 0
}

// setupDebugger wires the debug CLI into the machine, loading the
// symbol table written alongside the program image when one exists.
func setupDebugger(mc *machine.Machine, binary *os.File) {
	var dbg debugger.Debugger
	dbg.HandleBreak = handleBreak
	dbg.HandleRead = handleRead
	dbg.HandleWrite = handleWrite
	dbg.Binary = binary
	mc.Debugger = &dbg

	if imagevar != "" {
		filename := filepath.Dir(imagevar) + "/" + strings.ReplaceAll(
			filepath.Base(imagevar), filepath.Ext(imagevar), ".bdb",
		)

		if file, err := os.Open(filename); err == nil {
			var symtable assembler.SymTable

			if err := gob.NewDecoder(file).Decode(&symtable); err == nil {
				dbg.SymTable = &symtable
			} else {
				log.Println("Error loading symbol file")
				log.Println(err)
			}

			file.Close()
		}

		if dbg.SymTable != nil && dbg.SymTable.Source != "" {
			if file, err := os.Open(dbg.SymTable.Source); err == nil {
				dbg.Source = file
			} else {
				log.Println("Error loading source file")
				log.Println(err)
			}
		}
	}

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			fmt.Println()
			dbg.Break = true
		}
	}()
}

func main() {
	os.Exit(bedrock())
}
