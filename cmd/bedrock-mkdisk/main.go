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
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lassandro/bedrock/pkg/machine"
)

var helpvar bool
var sectorsvar uint
var bootvar string

const usage = "bedrock-mkdisk [-sectors n] [-boot image] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.UintVar(
		&sectorsvar, "sectors", 1024,
		"Sets the disk size in 512-byte sectors",
	)
	flag.StringVar(
		&bootvar, "boot", "",
		"Seeds the start of the disk with the given binary image",
	)
	flag.Parse()
}

func bedrock_mkdisk() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	if sectorsvar == 0 || sectorsvar > 0xFFFF {
		log.Println("Sector count must be between 1 and 65535")
		return 1
	}

	size := int64(sectorsvar) * machine.SECTOR_SIZE

	var boot []byte

	if bootvar != "" {
		var err error
		boot, err = os.ReadFile(bootvar)

		if err != nil {
			log.Println(err)
			return 1
		}

		if len(boot)%machine.WORD_SIZE != 0 {
			log.Printf("%s is not a whole number of words", bootvar)
			return 1
		}

		if int64(len(boot)) > size {
			log.Printf("%s does not fit on a %d sector disk",
				bootvar, sectorsvar)
			return 1
		}
	}

	// O_EXCL: an existing image is never clobbered.
	file, err := os.OpenFile(
		args[0], os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666,
	)

	if err != nil {
		log.Println(err)
		return 1
	}

	defer file.Close()

	if err := file.Truncate(size); err != nil {
		log.Println(err)
		return 1
	}

	if len(boot) > 0 {
		if _, err := file.WriteAt(boot, 0); err != nil {
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(bedrock_mkdisk())
}
