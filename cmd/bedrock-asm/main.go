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
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lassandro/bedrock/pkg/assembler"
	"github.com/lassandro/bedrock/pkg/machine"
)

var helpvar bool
var debugvar bool
var hexvar bool
var outvar string
var basevar uint

const usage = "bedrock-asm [-debug] [-hex] [-base addr] [-out outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.bdb'",
	)
	flag.BoolVar(
		&hexvar, "hex", false,
		"Treats the input as lines of four-digit hex words, the same "+
			"format the boot firmware accepts over the console",
	)
	flag.UintVar(
		&basevar, "base", uint(len(machine.BootFirmware)),
		"Sets the address the binary will be loaded at, used to resolve "+
			"labels to absolute addresses",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

// assembleHex parses the firmware monitor's input format: one word per
// line as four hex digits, blank lines and ';' comments ignored.
func assembleHex(input io.Reader) ([]uint16, []error) {
	var result []uint16
	var errs []error

	scanner := bufio.NewScanner(input)
	line := 0

	for scanner.Scan() {
		line++

		text := scanner.Text()

		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = text[:i]
		}

		text = strings.TrimSpace(text)

		if text == "" {
			continue
		}

		value, err := strconv.ParseUint(text, 16, 16)

		if err != nil || len(text) != 4 {
			errs = append(errs, fmt.Errorf(
				"%02d:01: '%s' is not a four-digit hex word", line, text,
			))
			continue
		}

		result = append(result, uint16(value))
	}

	return result, errs
}

func bedrock_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var infile string
	var input io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.bin"
		}
	} else {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else {
			if stat.IsDir() {
				log.Printf("%s is not a valid assembly file", filename)
				return 1
			}
		}

		input = file
		infile = file.Name()
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.ReplaceAll(
				filename, filepath.Ext(filename), ".bin",
			)
		}
	}

	var symtable assembler.SymTable
	var symtarget *assembler.SymTable = nil

	if debugvar && !hexvar {
		if input != os.Stdin {
			var err error
			if symtable.Source, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				symtable.Source = ""
			}
		}
		symtable.Symbols = make(map[uint16]int64)
		symtable.Labels = make(map[uint16]string)
		symtarget = &symtable
	}

	var result []uint16
	var errs []error

	if hexvar {
		result, errs = assembleHex(input)
	} else {
		result, errs = assembler.AssembleBedrockSource(
			input, uint16(basevar), symtarget,
		)
	}

	if len(errs) > 0 {

		if input == os.Stdin || hexvar {
			for _, err := range errs {
				log.Println(err)
			}
		} else {
			for _, err := range errs {
				if tokenErr, ok := err.(assembler.TokenError); ok {
					cursor := tokenErr.GetPosition()

					if _, err := input.Seek(
						cursor.LineByte, io.SeekStart,
					); err != nil {
						panic(err)
					}

					line, _ := bufio.NewReader(input).ReadString('\n')
					line = strings.TrimSuffix(line, "\n")

					underlinefmt := fmt.Sprintf(
						"%% %ds%s",
						int(cursor.Byte-cursor.LineByte)+1,
						strings.Repeat("~", int(cursor.Size)-1),
					)

					log.Printf(
						"%s\n%s\n\033[31m%s\033[0m",
						err,
						line,
						fmt.Sprintf(underlinefmt, "^"),
					)
				} else {
					log.Println(err)
				}
			}
		}

		return 1
	}

	{
		buffer := new(bytes.Buffer)

		if err := binary.Write(buffer, binary.BigEndian, result); err != nil {
			log.Println("Error writing output file")
			log.Println(err)
			return 1
		}

		if err := os.WriteFile(outvar, buffer.Bytes(), 0666); err != nil {
			log.Println("Error writing output file")
			log.Println(err)
			return 1
		}
	}

	if debugvar && !hexvar {
		filename := filepath.Dir(outvar) + "/" + strings.ReplaceAll(
			filepath.Base(outvar), filepath.Ext(outvar), ".bdb",
		)

		if file, err := os.OpenFile(
			filename, os.O_WRONLY|os.O_CREATE, 0666,
		); err == nil {
			if err := gob.NewEncoder(file).Encode(symtable); err != nil {
				log.Println("Error writing symbol table")
				log.Println(err)
				return 1
			}

			file.Close()
		} else {
			log.Println("Error creating symbol table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(bedrock_asm())
}
