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

// List of VM faults for Errno.
const (
	MalformedProgram = Errno(iota + 1)
	MemoryFault
	NoInputAvailable
	NoOutputAvailable
	InvalidAddressingMode
	IOError
)

var strError = [...]string{
	"",
	"malformed program",
	"memory fault",
	"no input available",
	"no output available",
	"invalid addressing mode",
	"I/O error",
}

// Errno describes the nature of a VM fault.
type Errno int

func (e Errno) Error() string {
	if e > 0 && int(e) < len(strError) {
		return strError[e]
	}
	return "errno " + strconv.Itoa(int(e))
}

// Error describes the cause and the context of a VM fault.
type Error struct {
	Errno Errno // nature of the fault
	Err   error // underlying error when Errno is IOError
	PC    int   // address of the faulting instruction
	Word  Cell  // faulting instruction word
	Addr  Cell  // offending address when Errno is MemoryFault
}

func (e *Error) Error() string {
	msg := "intcode: "
	if e.Err != nil {
		msg += e.Err.Error()
	} else {
		msg += e.Errno.Error()
	}
	switch e.Errno {
	case MalformedProgram, InvalidAddressingMode:
		msg += " " + strconv.FormatInt(int64(e.Word), 10)
	case MemoryFault:
		msg += " " + strconv.FormatInt(int64(e.Addr), 10)
	}
	return msg + " at pc " + strconv.Itoa(e.PC)
}

// Is reports whether target is the Errno of e.
func (e *Error) Is(target error) bool {
	errno, ok := target.(Errno)
	return ok && errno == e.Errno
}

// Unwrap returns the underlying I/O error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Cause implements the causer interface of github.com/pkg/errors.
func (e *Error) Cause() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Errno
}

func (i *Instance) newError(errno Errno, addr Cell, err error) error {
	var w Cell
	if i.PC >= 0 && i.PC < len(i.Mem) {
		w = i.Mem[i.PC]
	}
	return &Error{Errno: errno, Err: err, PC: i.PC, Word: w, Addr: addr}
}
