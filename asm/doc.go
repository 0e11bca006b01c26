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

// Package asm provides utility functions to assemble and disassemble Intcode
// programs.
//
// Supported assembler mnemonics:
//
//	Instructions take as many operands as listed in the "params" column. The
//	last operand of add, mul, lt and eq, as well as the operand of in, is a
//	write target and cannot use immediate mode.
//
//	opcode	asm	alias	params	description
//	------	---	-----	------	--------------------------------------------------
//	1	add		a b c	c = a + b
//	2	mul		a b c	c = a * b
//	3	in		a	a = input
//	4	out		a	output a
//	5	jt	jnz	a b	jump to b if a != 0
//	6	jf	jz	a b	jump to b if a == 0
//	7	lt		a b c	c = a < b
//	8	eq		a b c	c = a == b
//	9	arb	rbo	a	relative base += a
//	99	hlt	halt		halt
//
// Operands:
//
// The addressing mode of an operand is selected by its prefix:
//
//	x	position mode: the operand is the value at address x
//	#x	immediate mode: the operand is x itself
//	@x	relative mode: the operand is the value at address relative base + x
//
// where x is an integer literal, a character literal, a named constant or a
// label. For example:
//
//	add #1 counter counter	( increment the value at address counter )
//	out @-1			( output the value just below the relative base )
//	jt #1 #loop		( unconditional jump to loop )
//
// Comments:
//
// Comments are placed between parentheses, i.e. '(' and ')'. The body of the
// comment must be separated from the enclosing parentheses by a space:
//
//	( this is a valid comment )
//	( this is a
//	  rather long
//	  multiline comment )
//
// Literals and label/const identifiers:
//
// Input is split at white space (space, tab or new line) into tokens. Operand
// tokens are resolved as follows:
//
//	- If a token can be converted to a Go integer (see strconv.ParseInt), it will
//	  be converted to an integer literal.
//	- If it is a Go character literal between single quotes, it will be converted to
//	  the corresponding integer literal.
//	- If a token is the name of a defined constant, it will be replaced by the
//	  constant's value.
//	- Any other token is considered to be a label.
//
// Labels:
//
// Labels are defined by prefixing them with a colon (:) and can be used as
// operand value anywhere. Forward references are ok:
//
//	:loop	in counter
//		jt counter #loop
//		hlt
//	:counter .dat 0
//
// Assembler directives:
//
//	.equ <IDENTIFIER> <value>
//
// defines a constant value. The value must be an integer value, named constant
// or character literal.
//
//	.org <value>
//
// Will place the next instruction at the address specified by the given integer
// literal or named constant. Skipped cells are zero.
//
//	.dat <value>
//
// Will compile the specified integer value, named constant, character literal or
// label address as-is. This is primarily used for data storage:
//
//	:table	.dat 65
//		.dat 'B'
package asm
