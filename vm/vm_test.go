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

package vm_test

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
)

func TestRun_suspend(t *testing.T) {
	in, out := vm.NewQueue(), vm.NewQueue()
	prog := C{3, 0, 4, 0, 99}
	i, err := vm.New(prog, vm.Input(in), vm.Output(out))
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 2; n++ {
		st, err := i.Run()
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if st != vm.AwaitingInput {
			t.Fatalf("run %d: expected %v, got %v", n, vm.AwaitingInput, st)
		}
		if i.PC != 0 || !equal(C(i.Mem), prog) {
			t.Fatalf("run %d: state changed while suspended: pc %d, mem %v", n, i.PC, i.Mem)
		}
	}
	in.Push(5)
	st, err := i.Run()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if st != vm.Halted {
		t.Fatalf("expected %v, got %v", vm.Halted, st)
	}
	if !equal(C(out.Values()), C{5}) || in.Len() != 0 {
		t.Errorf("expected output [5] and empty input, got %v and %v", out.Values(), in.Values())
	}
	// halted instances stay halted
	if st, err = i.Run(); st != vm.Halted || err != nil {
		t.Errorf("expected %v, got %v, %v", vm.Halted, st, err)
	}
}

// counter reads a value, increments it, outputs it and loops while the result
// is below 10.
var counter = C{3, 20, 1001, 20, 1, 20, 4, 20, 1007, 20, 10, 21, 1005, 21, 0, 99}

func TestRun_feedback(t *testing.T) {
	qa, qb := vm.NewQueue(0), vm.NewQueue()
	a, err := vm.New(counter, vm.Input(qa), vm.Output(qb))
	if err != nil {
		t.Fatal(err)
	}
	b, err := vm.New(counter, vm.Input(qb), vm.Output(qa))
	if err != nil {
		t.Fatal(err)
	}
	machines := []*vm.Instance{a, b}
	halted := make([]bool, len(machines))
	for rounds := 0; !(halted[0] && halted[1]); rounds++ {
		if rounds > 100 {
			t.Fatal("pipeline did not halt")
		}
		for k, m := range machines {
			if halted[k] {
				continue
			}
			st, err := m.Run()
			if err != nil {
				t.Fatalf("machine %d: %+v", k, err)
			}
			halted[k] = st == vm.Halted
		}
	}
	if qa.Len() != 0 || !equal(C(qb.Values()), C{11}) {
		t.Errorf("unexpected queues: a %v, b %v", qa.Values(), qb.Values())
	}
	if v, _ := a.Peek(20); v != 11 {
		t.Errorf("machine a: expected 11, got %d", v)
	}
	if v, _ := b.Peek(20); v != 10 {
		t.Errorf("machine b: expected 10, got %d", v)
	}
}

var faults = [...]struct {
	name  string
	code  string
	noIO  bool
	errno vm.Errno
	pc    int
	addr  vm.Cell
}{
	{"bad_opcode", "98,0", false, vm.MalformedProgram, 0, 0},
	{"zero_opcode", "0", false, vm.MalformedProgram, 0, 0},
	{"negative_word", "1105,1,4,99,-3", false, vm.MalformedProgram, 4, 0},
	{"imm_write_in", "103,0,99", false, vm.InvalidAddressingMode, 0, 0},
	{"imm_write_add", "11101,1,1,0,99", false, vm.InvalidAddressingMode, 0, 0},
	{"bad_mode", "301,0,0,0,99", false, vm.InvalidAddressingMode, 0, 0},
	{"negative_write", "1,0,0,-1,99", false, vm.MemoryFault, 0, -1},
	{"negative_read", "4,-5,99", false, vm.MemoryFault, 0, -5},
	{"negative_relative", "204,-1,99", false, vm.MemoryFault, 0, -1},
	{"jump_past_end", "1105,1,50", false, vm.MalformedProgram, 50, 0},
	{"negative_jump", "1105,1,-3", false, vm.MemoryFault, -3, -3},
	{"no_input", "3,0,99", true, vm.NoInputAvailable, 0, 0},
	{"no_output", "104,1,99", true, vm.NoOutputAvailable, 0, 0},
}

func TestRun_faults(t *testing.T) {
	for _, test := range faults {
		prog := parse(t, test.code)
		var opts []vm.Option
		if !test.noIO {
			opts = append(opts, vm.Input(vm.NewQueue()), vm.Output(vm.NewQueue()))
		}
		i, err := vm.New(prog, opts...)
		if err != nil {
			t.Fatal(err)
		}
		_, err = i.Run()
		if !errors.Is(err, test.errno) {
			t.Errorf("%s: expected %v, got %v", test.name, test.errno, err)
			continue
		}
		e, ok := err.(*vm.Error)
		if !ok {
			t.Errorf("%s: expected *vm.Error, got %T", test.name, err)
			continue
		}
		if e.PC != test.pc || i.PC != test.pc {
			t.Errorf("%s: expected pc %d, got %d (instance pc %d)", test.name, test.pc, e.PC, i.PC)
		}
		if test.errno == vm.MemoryFault && e.Addr != test.addr {
			t.Errorf("%s: expected address %d, got %d", test.name, test.addr, e.Addr)
		}
		if test.pc == 0 && !equal(C(i.Mem), prog) {
			t.Errorf("%s: memory modified by faulting instruction: %v", test.name, i.Mem)
		}
	}
}

func TestMemLimit(t *testing.T) {
	prog := C{1101, 1, 1, 100, 99}
	i, err := vm.New(prog, vm.MemLimit(10))
	if err != nil {
		t.Fatal(err)
	}
	_, err = i.Run()
	if e, ok := err.(*vm.Error); !ok || e.Errno != vm.MemoryFault || e.Addr != 100 {
		t.Errorf("expected memory fault at 100, got %v", err)
	}
	if _, err = vm.New(prog, vm.MemLimit(4)); err == nil {
		t.Error("expected error for limit lower than program size")
	}
	if _, err = vm.New(prog, vm.MemLimit(10), vm.Pad(11)); err == nil {
		t.Error("expected error for padding over limit")
	}
	i, err = vm.New(prog, vm.Pad(100))
	if err != nil {
		t.Fatal(err)
	}
	if len(i.Mem) != 100 || !equal(C(i.Mem[:len(prog)]), prog) {
		t.Errorf("bad padding: len %d, %v", len(i.Mem), i.Mem[:len(prog)])
	}
	// the limit cannot shrink below padded memory
	if _, err = vm.New(prog, vm.Pad(100), vm.MemLimit(50)); err == nil {
		t.Error("expected error for limit lower than padded memory size")
	}
	if err = i.SetOptions(vm.MemLimit(99)); err == nil {
		t.Error("expected error for limit lower than memory size")
	}
	if err = i.SetOptions(vm.MemLimit(100)); err != nil {
		t.Fatal(err)
	}
	if _, err = i.Peek(99); err != nil {
		t.Errorf("padded cell not accessible: %v", err)
	}
}

func TestRun_inputFault(t *testing.T) {
	// IN with a relative target below 0
	in := vm.NewQueue(42)
	i, err := vm.New(C{109, -10, 203, 0, 99}, vm.Input(in), vm.Output(vm.NewQueue()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = i.Run()
	if e, ok := err.(*vm.Error); !ok || e.Errno != vm.MemoryFault || e.Addr != -10 || e.PC != 2 {
		t.Fatalf("expected memory fault at -10, pc 2, got %v", err)
	}
	if in.Len() != 1 {
		t.Errorf("input consumed by faulting instruction: %d values left", in.Len())
	}
	if v, _ := in.Last(); v != 42 {
		t.Errorf("expected 42 in input queue, got %d", v)
	}
}

func TestConsole(t *testing.T) {
	var b bytes.Buffer
	w := bufio.NewWriter(&b)
	i, err := vm.New(C{3, 0, 1002, 0, 2, 0, 4, 0, 99},
		vm.ConsoleInput(strings.NewReader("  21\n")),
		vm.ConsoleOutput(w),
		vm.Prompt("? "))
	if err != nil {
		t.Fatal(err)
	}
	st, err := i.Run()
	if err != nil || st != vm.Halted {
		t.Fatalf("expected %v, got %v, %+v", vm.Halted, st, err)
	}
	if b.String() != "? 42\n" {
		t.Errorf("expected %q, got %q", "? 42\n", b.String())
	}

	// console closed
	i, err = vm.New(C{3, 0, 99}, vm.ConsoleInput(strings.NewReader("")))
	if err != nil {
		t.Fatal(err)
	}
	_, err = i.Run()
	if !errors.Is(err, vm.IOError) || !errors.Is(err, io.EOF) {
		t.Errorf("expected I/O error wrapping io.EOF, got %v", err)
	}
}

func TestConsole_queueBound(t *testing.T) {
	r := strings.NewReader("1\n")
	out := vm.NewQueue()
	i, err := vm.New(C{3, 0, 4, 0, 99}, vm.ConsoleInput(r), vm.Input(vm.NewQueue()), vm.Output(out))
	if err != nil {
		t.Fatal(err)
	}
	st, err := i.Run()
	if err != nil || st != vm.AwaitingInput {
		t.Fatalf("expected %v, got %v, %v", vm.AwaitingInput, st, err)
	}
	if r.Len() != 2 {
		t.Error("console read while an input queue is bound")
	}
	// unbinding the input queue restores console input
	if err = i.SetOptions(vm.Input(nil)); err != nil {
		t.Fatal(err)
	}
	if st, err = i.Run(); err != nil || st != vm.Halted {
		t.Fatalf("expected %v, got %v, %v", vm.Halted, st, err)
	}
	if !equal(C(out.Values()), C{1}) {
		t.Errorf("expected [1], got %v", out.Values())
	}
}

func TestReset(t *testing.T) {
	prog := C{1, 0, 0, 0, 99}
	i, err := vm.New(prog)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 2; n++ {
		if _, err = i.Run(); err != nil {
			t.Fatal(err)
		}
		if !equal(C(i.Mem), C{2, 0, 0, 0, 99}) {
			t.Fatalf("run %d: unexpected memory %v", n, i.Mem)
		}
		if i.InstructionCount() != 1 {
			t.Errorf("run %d: expected 1 instruction, got %d", n, i.InstructionCount())
		}
		i.Reset()
		if i.PC != 0 || i.RB != 0 || !equal(C(i.Mem), prog) {
			t.Fatalf("run %d: bad reset: pc %d, rb %d, mem %v", n, i.PC, i.RB, i.Mem)
		}
	}
	if prog[0] != 1 {
		t.Error("program modified by instance")
	}
}

func TestReset_pad(t *testing.T) {
	prog := C{1101, 1, 1, 9, 99}
	i, err := vm.New(prog, vm.Pad(10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = i.Run(); err != nil {
		t.Fatal(err)
	}
	if i.Mem[9] != 2 {
		t.Fatalf("expected mem[9] = 2, got %d", i.Mem[9])
	}
	i.Reset()
	if len(i.Mem) != 10 || !equal(C(i.Mem[:len(prog)]), prog) || i.Mem[9] != 0 {
		t.Errorf("bad reset: len %d, %v", len(i.Mem), i.Mem)
	}
}

func TestClone(t *testing.T) {
	in := vm.NewQueue()
	i, err := vm.New(C{109, 3, 3, 0, 4, 0, 99}, vm.Input(in), vm.Output(vm.NewQueue()))
	if err != nil {
		t.Fatal(err)
	}
	if st, _ := i.Run(); st != vm.AwaitingInput {
		t.Fatalf("expected %v, got %v", vm.AwaitingInput, st)
	}
	c := i.Clone()
	cin, cout := vm.NewQueue(8), vm.NewQueue()
	if err = c.SetOptions(vm.Input(cin), vm.Output(cout)); err != nil {
		t.Fatal(err)
	}
	if c.PC != 2 || c.RB != 3 {
		t.Fatalf("clone state: pc %d, rb %d", c.PC, c.RB)
	}
	if st, err := c.Run(); st != vm.Halted || err != nil {
		t.Fatalf("expected %v, got %v, %v", vm.Halted, st, err)
	}
	if !equal(C(cout.Values()), C{8}) {
		t.Errorf("expected [8], got %v", cout.Values())
	}
	if i.Mem[0] != 109 || i.PC != 2 {
		t.Errorf("original instance modified by clone: pc %d, %v", i.PC, i.Mem)
	}
}

func TestPeekPoke(t *testing.T) {
	i, err := vm.New(C{1, 0, 0, 0, 99}, vm.MemLimit(64))
	if err != nil {
		t.Fatal(err)
	}
	if err = i.Poke(0, 2); err != nil {
		t.Fatal(err)
	}
	if err = i.Poke(20, 5); err != nil {
		t.Fatal(err)
	}
	if len(i.Mem) != 21 {
		t.Errorf("expected memory size 21, got %d", len(i.Mem))
	}
	if v, err := i.Peek(20); v != 5 || err != nil {
		t.Errorf("expected 5, got %d, %v", v, err)
	}
	if v, err := i.Peek(40); v != 0 || err != nil || len(i.Mem) != 21 {
		t.Errorf("expected 0 without growing memory, got %d, %v, len %d", v, err, len(i.Mem))
	}
	for _, a := range []vm.Cell{-1, 64} {
		if _, err = i.Peek(a); !errors.Is(err, vm.MemoryFault) {
			t.Errorf("peek %d: expected memory fault, got %v", a, err)
		}
		if err = i.Poke(a, 1); !errors.Is(err, vm.MemoryFault) {
			t.Errorf("poke %d: expected memory fault, got %v", a, err)
		}
	}
}

func TestStep(t *testing.T) {
	i, err := vm.New(C{1101, 1, 2, 0, 1105, 1, 7, 99})
	if err != nil {
		t.Fatal(err)
	}
	for _, pc := range []int{4, 7} {
		st, err := i.Step()
		if err != nil || st != vm.Running {
			t.Fatalf("expected %v, got %v, %v", vm.Running, st, err)
		}
		if i.PC != pc {
			t.Fatalf("expected pc %d, got %d", pc, i.PC)
		}
	}
	if st, err := i.Step(); st != vm.Halted || err != nil {
		t.Fatalf("expected %v, got %v, %v", vm.Halted, st, err)
	}
	if i.Mem[0] != 3 || i.PC != 7 {
		t.Errorf("unexpected state: pc %d, %v", i.PC, i.Mem)
	}
}

func TestDecode(t *testing.T) {
	data := [...]struct {
		word  vm.Cell
		op    vm.Opcode
		modes [3]vm.Mode
		len   int
	}{
		{1002, vm.OpMul, [3]vm.Mode{vm.Position, vm.Immediate, vm.Position}, 4},
		{21101, vm.OpAdd, [3]vm.Mode{vm.Immediate, vm.Immediate, vm.Relative}, 4},
		{203, vm.OpIn, [3]vm.Mode{vm.Relative}, 2},
		{1105, vm.OpJt, [3]vm.Mode{vm.Immediate, vm.Immediate}, 3},
		{99, vm.OpHlt, [3]vm.Mode{}, 1},
	}
	for _, d := range data {
		in, err := vm.Decode(d.word)
		if err != nil {
			t.Errorf("%d: %v", d.word, err)
			continue
		}
		if in.Op != d.op || in.Modes != d.modes || in.Len() != d.len {
			t.Errorf("%d: expected %v %v %d, got %v %v %d", d.word, d.op, d.modes, d.len, in.Op, in.Modes, in.Len())
		}
		if in.Word() != d.word {
			t.Errorf("%d: encoded back as %d", d.word, in.Word())
		}
	}
}

func Benchmark_Run(b *testing.B) {
	prog := parse(b, cmp8)
	in, out := vm.NewQueue(), vm.NewQueue()
	i, err := vm.New(prog, vm.Input(in), vm.Output(out))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for c := 0; c < b.N; c++ {
		i.Reset()
		in.Push(9)
		out.Reset()
		if _, err = i.Run(); err != nil {
			b.Fatal(err)
		}
	}
}
