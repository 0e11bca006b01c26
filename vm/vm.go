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

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Cell is the raw type stored in a memory location.
type Cell int64

// DefaultMemLimit is the default maximum number of memory cells of an Instance.
const DefaultMemLimit = 16 << 20

// Instance represents an Intcode VM instance.
type Instance struct {
	PC       int    // Program Counter (aka. Instruction Pointer)
	RB       Cell   // Relative Base
	Mem      []Cell // Memory
	image    []Cell
	limit    int
	pad      int
	insCount int64
	input    *Queue
	output   *Queue
	conIn    runeReader
	conOut   io.Writer
	prompt   string
}

// runeReader is the console input. fmt.Fscan does not read ahead on an
// io.RuneScanner.
type runeReader interface {
	io.Reader
	io.RuneScanner
}

// Option interface
type Option func(*Instance) error

// Input binds the input queue. Passing a nil queue restores console input.
func Input(q *Queue) Option {
	return func(i *Instance) error { i.input = q; return nil }
}

// Output binds the output queue. Passing a nil queue restores console output.
func Output(q *Queue) Option {
	return func(i *Instance) error { i.output = q; return nil }
}

// ConsoleInput sets the reader used by IN instructions when no input queue is
// bound. Values are read as whitespace separated decimal integers.
func ConsoleInput(r io.Reader) Option {
	return func(i *Instance) error {
		switch rs := r.(type) {
		case nil:
			i.conIn = nil
		case runeReader:
			i.conIn = rs
		default:
			i.conIn = bufio.NewReader(r)
		}
		return nil
	}
}

// ConsoleOutput sets the writer used by OUT instructions when no output queue
// is bound. Each value is written on its own line. If w implements
// Flush() error, it will be flushed after each value and before each console
// read.
func ConsoleOutput(w io.Writer) Option {
	return func(i *Instance) error { i.conOut = w; return nil }
}

// Prompt sets a prompt string written to the console output before reading a
// value from the console input. The default is no prompt.
func Prompt(s string) Option {
	return func(i *Instance) error { i.prompt = s; return nil }
}

// MemLimit sets the maximum number of memory cells. Accessing an address
// beyond the limit raises a MemoryFault. The default is DefaultMemLimit.
// The limit cannot be lower than the current memory size.
func MemLimit(n int) Option {
	return func(i *Instance) error {
		if n < len(i.Mem) {
			return errors.Errorf("memory limit %d lower than memory size %d", n, len(i.Mem))
		}
		i.limit = n
		return nil
	}
}

// Pad grows memory to at least n cells. The padding is kept across calls to
// Reset.
func Pad(n int) Option {
	return func(i *Instance) error {
		if n > i.limit {
			return errors.Errorf("padding %d exceeds memory limit %d", n, i.limit)
		}
		if n > i.pad {
			i.pad = n
		}
		i.grow(n)
		return nil
	}
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new Intcode Virtual Machine instance.
//
// The program is copied into the instance's memory, so the same program can be
// used to create several instances. Options are applied in order by calling
// SetOptions; MemLimit should therefore appear before Pad.
func New(prog []Cell, opts ...Option) (*Instance, error) {
	i := &Instance{
		Mem:   slices.Clone(prog),
		image: slices.Clone(prog),
		limit: DefaultMemLimit,
	}
	if i.Mem == nil {
		i.Mem = []Cell{}
	}
	if len(prog) > i.limit {
		i.limit = len(prog)
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// Reset restores the memory to the program the instance was created with, zero
// padded to the size requested with Pad, and resets the PC and relative base
// to 0. I/O bindings are left untouched.
func (i *Instance) Reset() {
	i.Mem = append(i.Mem[:0], i.image...)
	i.grow(i.pad)
	i.PC = 0
	i.RB = 0
	i.insCount = 0
}

// Clone returns a copy of the VM instance with its own memory. The clone has
// the same console configuration but no queues bound.
func (i *Instance) Clone() *Instance {
	c := *i
	c.Mem = slices.Clone(i.Mem)
	c.input = nil
	c.output = nil
	return &c
}

// InstructionCount returns the number of instructions executed by the last
// call to Run.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Peek returns the value at address addr.
func (i *Instance) Peek(addr Cell) (Cell, error) {
	return i.read(addr)
}

// Poke stores v at address addr, growing memory if needed.
func (i *Instance) Poke(addr, v Cell) error {
	return i.write(addr, v)
}

// Dump writes the VM memory as program text to the specified io.Writer.
func (i *Instance) Dump(w io.Writer) error {
	return Encode(w, i.Mem)
}
