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

import "github.com/pkg/errors"

// Status is the state of an instance after a call to Run or Step.
type Status int

// VM execution status.
const (
	Running Status = iota
	Halted
	AwaitingInput
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case AwaitingInput:
		return "awaiting input"
	}
	return "unknown"
}

// decode decodes the instruction at PC and resolves its parameters to
// addresses.
func (i *Instance) decode(params *[3]Cell) (Instruction, error) {
	w, err := i.read(Cell(i.PC))
	if err != nil {
		return Instruction{}, err
	}
	in, err := Decode(w)
	if err != nil {
		e := err.(*Error)
		e.PC = i.PC
		return in, e
	}
	for k := 0; k < in.Op.Params(); k++ {
		a := Cell(i.PC + k + 1)
		switch in.Modes[k] {
		case Position:
			if a, err = i.read(a); err != nil {
				return in, err
			}
		case Relative:
			v, err := i.read(a)
			if err != nil {
				return in, err
			}
			a = i.RB + v
		}
		params[k] = a
	}
	return in, nil
}

// Step executes a single instruction. The returned Status is Running if the
// instance can continue.
//
// If the instruction is an input instruction and no input is available, Step
// returns AwaitingInput and the PC is left unchanged.
func (i *Instance) Step() (Status, error) {
	var p [3]Cell
	in, err := i.decode(&p)
	if err != nil {
		return Running, err
	}
	var a, b Cell
	switch in.Op.Params() {
	case 3, 2:
		if b, err = i.read(p[1]); err != nil {
			return Running, err
		}
		fallthrough
	case 1:
		if in.Op != OpIn {
			if a, err = i.read(p[0]); err != nil {
				return Running, err
			}
		}
	}
	switch in.Op {
	case OpAdd:
		err = i.write(p[2], a+b)
	case OpMul:
		err = i.write(p[2], a*b)
	case OpIn:
		// the target must be valid before input is consumed
		if err = i.check(p[0]); err != nil {
			return Running, err
		}
		var ok bool
		a, ok, err = i.in()
		if err != nil {
			return Running, err
		}
		if !ok {
			return AwaitingInput, nil
		}
		err = i.write(p[0], a)
	case OpOut:
		err = i.out(a)
	case OpJt:
		if a != 0 {
			i.PC = int(b)
			i.insCount++
			return Running, nil
		}
	case OpJf:
		if a == 0 {
			i.PC = int(b)
			i.insCount++
			return Running, nil
		}
	case OpLt:
		var r Cell
		if a < b {
			r = 1
		}
		err = i.write(p[2], r)
	case OpEq:
		var r Cell
		if a == b {
			r = 1
		}
		err = i.write(p[2], r)
	case OpArb:
		i.RB += a
	case OpHlt:
		return Halted, nil
	}
	if err != nil {
		return Running, err
	}
	i.PC += in.Len()
	i.insCount++
	return Running, nil
}

// Run starts execution of the VM until the program halts or an input
// instruction finds no input available.
//
// If an error occurs, the PC will point to the instruction that triggered the
// error and memory is left as it was before that instruction. Errors raised by
// the VM itself are of type *Error.
//
// Run can be called again after it returned AwaitingInput in order to resume
// execution. Calling Run on a halted instance returns Halted.
func (i *Instance) Run() (st Status, err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "Recovered error @pc=%d/%d, rb %d", i.PC, len(i.Mem), i.RB)
			default:
				panic(e)
			}
		}
	}()
	i.insCount = 0
	for {
		st, err = i.Step()
		if st != Running || err != nil {
			return st, err
		}
	}
}
