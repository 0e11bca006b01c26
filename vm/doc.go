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

// Package vm implements the Intcode virtual machine.
//
// An Intcode program is a list of signed 64 bits integers that serves as both
// code and data. Instructions are made of a two digit opcode and up to three
// parameters, the addressing mode of each parameter being encoded in the
// higher decimal digits of the instruction word:
//
//	ABCDE
//	 1002
//
//	DE - two-digit opcode,      02 == opcode 2
//	 C - mode of 1st parameter,  0 == position mode
//	 B - mode of 2nd parameter,  1 == immediate mode
//	 A - mode of 3rd parameter,  0 == position mode (omitted leading zero)
//
// Supported opcodes:
//
//	opcode	asm	params	description
//	------	---	------	-----------------------------------------------------
//	1	add	a b c	c = a + b
//	2	mul	a b c	c = a * b
//	3	in	a	a = next input value, suspend if none available
//	4	out	a	output a
//	5	jt	a b	jump to b if a != 0
//	6	jf	a b	jump to b if a == 0
//	7	lt	a b c	c = 1 if a < b, else 0
//	8	eq	a b c	c = 1 if a == b, else 0
//	9	arb	a	add a to the relative base
//	99	hlt		halt
//
// Execution is synchronous and cooperative. Run executes instructions until the
// program halts or until an input instruction finds its input Queue empty, in
// which case it returns AwaitingInput and leaves the PC on that instruction.
// Pushing values to the input Queue and calling Run again resumes execution.
// This makes it possible to connect several instances with shared queues and
// drive them in turn from a single goroutine (see package pipeline).
//
// Instances without input or output queues fall back to console I/O: values are
// read from and written to the io.Reader and io.Writer configured with the
// ConsoleInput and ConsoleOutput options, one integer per line.
//
// Memory grows on demand: reading past the end of memory yields 0 and writing
// past it extends memory up to the written address. Addresses that are negative
// or beyond the configured limit (see MemLimit) raise a MemoryFault.
package vm
