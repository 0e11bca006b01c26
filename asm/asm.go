// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/db47h/intcode/internal/xio"
	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
)

var mnemonics = map[string]vm.Opcode{
	"add":  vm.OpAdd,
	"mul":  vm.OpMul,
	"in":   vm.OpIn,
	"out":  vm.OpOut,
	"jt":   vm.OpJt,
	"jnz":  vm.OpJt,
	"jf":   vm.OpJf,
	"jz":   vm.OpJf,
	"lt":   vm.OpLt,
	"eq":   vm.OpEq,
	"arb":  vm.OpArb,
	"rbo":  vm.OpArb,
	"hlt":  vm.OpHlt,
	"halt": vm.OpHlt,
}

var modePrefix = [...]string{
	vm.Position:  "",
	vm.Immediate: "#",
	vm.Relative:  "@",
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting program and error if any.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (prog []vm.Cell, err error) {
	p := newParser()
	return p.Parse(name, r)
}

// Disassemble writes a disassembly of the instruction at position pc in the
// given slice to the specified io.Writer and returns the position of the next
// instruction and any write error. Cells that do not decode to a valid
// instruction are written as .dat directives. An error is returned if pc is out
// of range.
func Disassemble(i []vm.Cell, pc int, w io.Writer) (next int, err error) {
	if pc < 0 || pc >= len(i) {
		return pc, errors.Errorf("address %d out of range [0, %d)", pc, len(i))
	}
	ew := xio.NewErrWriter(w)

	in, err := vm.Decode(i[pc])
	if err != nil {
		io.WriteString(ew, ".dat ")
		io.WriteString(ew, strconv.FormatInt(int64(i[pc]), 10))
		return pc + 1, ew.Err
	}
	io.WriteString(ew, in.Op.String())
	pc++
	for k := 0; k < in.Op.Params(); k++ {
		ew.Write([]byte{' '})
		if pc >= len(i) {
			io.WriteString(ew, "???")
			continue
		}
		io.WriteString(ew, modePrefix[in.Modes[k]])
		io.WriteString(ew, strconv.FormatInt(int64(i[pc]), 10))
		pc++
	}
	return pc, ew.Err
}

// DisassembleAll writes a disassembly of all cells in the given slice to
// the specified io.Writer. The base argument specifies the real address of the
// first cell (i[0]). It will return any write error.
func DisassembleAll(i []vm.Cell, base int, w io.Writer) error {
	ew := xio.NewErrWriter(w)
	for pc := 0; pc < len(i); {
		fmt.Fprintf(ew, "% 10d\t", base+pc)
		pc, _ = Disassemble(i, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
