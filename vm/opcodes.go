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

package vm

import "strconv"

// Opcode is the operation part of an instruction word.
type Opcode Cell

// Intcode Virtual Machine Opcodes.
const (
	OpAdd Opcode = 1
	OpMul Opcode = 2
	OpIn  Opcode = 3
	OpOut Opcode = 4
	OpJt  Opcode = 5
	OpJf  Opcode = 6
	OpLt  Opcode = 7
	OpEq  Opcode = 8
	OpArb Opcode = 9
	OpHlt Opcode = 99
)

var opcodes = map[Opcode]struct {
	name   string
	params int
	dst    int // index of the write target parameter, -1 if none
}{
	OpAdd: {"add", 3, 2},
	OpMul: {"mul", 3, 2},
	OpIn:  {"in", 1, 0},
	OpOut: {"out", 1, -1},
	OpJt:  {"jt", 2, -1},
	OpJf:  {"jf", 2, -1},
	OpLt:  {"lt", 3, 2},
	OpEq:  {"eq", 3, 2},
	OpArb: {"arb", 1, -1},
	OpHlt: {"hlt", 0, -1},
}

// Valid returns true if op is a known opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

// Params returns the number of parameters expected by op.
func (op Opcode) Params() int {
	return opcodes[op].params
}

// Dst returns the index of the parameter op writes to, or -1 if op does not
// write to memory.
func (op Opcode) Dst() int {
	if o, ok := opcodes[op]; ok {
		return o.dst
	}
	return -1
}

func (op Opcode) String() string {
	if o, ok := opcodes[op]; ok {
		return o.name
	}
	return "op(" + strconv.FormatInt(int64(op), 10) + ")"
}

// Mode is a parameter addressing mode.
type Mode uint8

// Parameter addressing modes.
const (
	Position Mode = iota
	Immediate
	Relative
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Opcode
	Modes [3]Mode
}

// Len returns the number of cells used by the instruction, including the
// instruction word.
func (in Instruction) Len() int {
	return in.Op.Params() + 1
}

// Word encodes the instruction back into an instruction word.
func (in Instruction) Word() Cell {
	w := Cell(0)
	for k := in.Op.Params() - 1; k >= 0; k-- {
		w = w*10 + Cell(in.Modes[k])
	}
	return w*100 + Cell(in.Op)
}

// Decode decodes the instruction word w. The returned error is a *Error with
// Errno set to MalformedProgram for an unknown opcode or InvalidAddressingMode
// for an invalid parameter mode, including immediate mode write targets.
func Decode(w Cell) (Instruction, error) {
	var in Instruction
	if w < 0 {
		return in, &Error{Errno: MalformedProgram, Word: w}
	}
	in.Op = Opcode(w % 100)
	if !in.Op.Valid() {
		return in, &Error{Errno: MalformedProgram, Word: w}
	}
	m := w / 100
	for k := 0; k < in.Op.Params(); k++ {
		mode := Mode(m % 10)
		if mode > Relative || (mode == Immediate && k == in.Op.Dst()) {
			return in, &Error{Errno: InvalidAddressingMode, Word: w}
		}
		in.Modes[k] = mode
		m /= 10
	}
	return in, nil
}
