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

// The intcode command line tool loads and runs Intcode programs with the
// github.com/db47h/intcode/vm package.
//
// Usage:
//
//	-asm
//		  assemble the program source before running
//	-debug
//		  enable debug diagnostics
//	-disasm
//		  disassemble the program and exit
//	-dump
//		  dump VM state and memory upon exit
//	-e text
//		  program text, overrides -program
//	-feedback
//		  connect the last amplifier to the first one
//	-in list
//		  comma separated input list; the console is used if not set
//	-mem int
//		  memory limit in cells (default 16777216)
//	-noshrink
//		  when saving, don't trim trailing zeros
//	-o filename
//		  save memory to filename upon exit
//	-pad n
//		  pre-allocate memory to n cells
//	-phases list
//		  run an amplifier network with the given phase settings list
//	-program filename
//		  load program from file filename (default "input.txt")
//	-q	only log errors
//	-search
//		  search the phase settings permutation yielding the highest signal
//	-set addr=value
//		  patch memory with addr=value before running (can be specified multiple times)
//	-trace
//		  log every executed instruction, implies -debug
//
// Without -in, the program reads its input from stdin and writes one output
// value per line to stdout. When stdin is a terminal, the user is prompted with
// "Enter an Integer: ".
//
// With -in, input values are queued beforehand and the outputs printed once the
// program stops. Running out of input is reported as an error.
//
// -phases runs one instance of the program per phase setting, each one reading
// its phase setting, then its input signal, from the output of the previous
// one. The first instance gets the -in values. With -feedback, the output of the
// last instance is fed back to the first one until all instances halt. With
// -search, every permutation of the phase settings is tried with an initial
// signal of 0, and the highest signal is printed along with the phase settings
// that produced it.
//
// -set is typically used to patch a program before running it, e.g.:
//
//	intcode -program day2.txt -set 1=12 -set 2=2 -dump
//
// -debug will print a full stacktrace should the VM crash.
package main
