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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/internal/config"
	"github.com/db47h/intcode/pipeline"
	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const prompt = "Enter an Integer: "

// cellList is a comma separated list of cells. It can be specified multiple
// times, values are appended.
type cellList struct {
	set    bool
	values []vm.Cell
}

func (l *cellList) String() string {
	if l == nil {
		return ""
	}
	s := make([]string, len(l.values))
	for k, v := range l.values {
		s[k] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(s, ",")
}

func (l *cellList) Set(s string) error {
	v, err := vm.Parse("list", strings.NewReader(s))
	if err != nil {
		return err
	}
	l.values = append(l.values, v...)
	l.set = true
	return nil
}

func (l *cellList) Get() interface{} { return l.values }

type patch struct {
	addr, value vm.Cell
}

// patchList is a list of addr=value memory patches.
type patchList []patch

func (p *patchList) String() string { return "" }
func (p *patchList) Set(s string) error {
	a, v, ok := strings.Cut(s, "=")
	if !ok {
		return errors.Errorf("invalid patch %q, expected addr=value", s)
	}
	addr, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid patch address")
	}
	value, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid patch value")
	}
	*p = append(*p, patch{vm.Cell(addr), vm.Cell(value)})
	return nil
}
func (p *patchList) Get() interface{} { return *p }

var (
	debug       bool
	quiet       bool
	trace       bool
	dump        bool
	disasm      bool
	assemble    bool
	feedback    bool
	search      bool
	noShrink    bool
	outFileName string
	inputs      cellList
	phases      cellList
	patches     patchList
)

func loadProgram(fileName, src string) ([]vm.Cell, error) {
	if src == "" && !assemble {
		return vm.Load(fileName)
	}
	var r io.Reader
	name := "<cmdline>"
	if src != "" {
		r = strings.NewReader(src)
	} else {
		f, err := os.Open(fileName)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load program")
		}
		defer f.Close()
		r, name = bufio.NewReader(f), fileName
	}
	if assemble {
		return asm.Assemble(name, r)
	}
	return vm.Parse(name, r)
}

// traceRun runs the instance one instruction at a time and logs every
// instruction at debug level.
func traceRun(logger *log.Logger, i *vm.Instance) (vm.Status, error) {
	var sb strings.Builder
	for {
		sb.Reset()
		if i.PC < len(i.Mem) {
			if _, err := asm.Disassemble(i.Mem, i.PC, &sb); err != nil {
				return vm.Running, err
			}
		}
		logger.Debug("Step",
			log.Int("pc", i.PC),
			log.Int("rb", int(i.RB)),
			log.String("ins", sb.String()))
		st, err := i.Step()
		if st != vm.Running || err != nil {
			return st, err
		}
	}
}

func runNetwork(logger *log.Logger, prog []vm.Cell, memLimit int, w io.Writer) error {
	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithMemLimit(memLimit)}
	if search {
		best, order, err := pipeline.MaxSignal(prog, phases.values, feedback, opts...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%d %v\n", best, order)
		return err
	}
	n, err := pipeline.New(prog, phases.values, feedback, opts...)
	if err != nil {
		return err
	}
	v, err := n.Run(inputs.values...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, v)
	return err
}

func runVM(logger *log.Logger, i *vm.Instance, w *bufio.Writer) error {
	var out *vm.Queue
	if inputs.set {
		out = vm.NewQueue()
		if err := i.SetOptions(vm.Input(vm.NewQueue(inputs.values...)), vm.Output(out)); err != nil {
			return err
		}
	} else {
		opts := []vm.Option{vm.ConsoleInput(os.Stdin), vm.ConsoleOutput(w)}
		if isTerminal(os.Stdin) {
			opts = append(opts, vm.Prompt(prompt))
		}
		if err := i.SetOptions(opts...); err != nil {
			return err
		}
	}

	var st vm.Status
	var err error
	if trace {
		st, err = traceRun(logger, i)
	} else {
		st, err = i.Run()
	}
	if out != nil {
		for _, v := range out.Values() {
			fmt.Fprintln(w, v)
		}
	}
	if err != nil {
		return err
	}
	logger.Debug("Program stopped", log.String("status", st.String()), log.Int("instructions", int(i.InstructionCount())))
	if st == vm.AwaitingInput {
		return errors.Errorf("program awaiting input at pc %d: input list exhausted", i.PC)
	}
	if outFileName != "" {
		return vm.Save(outFileName, i.Mem, !noShrink)
	}
	return nil
}

func atExit(logger *log.Logger, i *vm.Instance, err error) {
	if err == nil {
		return
	}
	logger.Error("Execution failed", err)
	if debug {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		if i != nil {
			if i.PC >= 0 && i.PC < len(i.Mem) {
				fmt.Fprintf(os.Stderr, "PC: %v (%v), RB: %v\n", i.PC, i.Mem[i.PC], i.RB)
			} else {
				fmt.Fprintf(os.Stderr, "PC: %v, RB: %v\n", i.PC, i.RB)
			}
		}
	}
	os.Exit(1)
}

func main() {
	var err error
	var i *vm.Instance

	fileName := flag.String("program", "input.txt", "load program from file `filename`")
	src := flag.String("e", "", "program `text`, overrides -program")
	memLimit := flag.Int("mem", vm.DefaultMemLimit, "memory limit in cells")
	pad := flag.Int("pad", 0, "pre-allocate memory to `n` cells")
	flag.Var(&inputs, "in", "comma separated input `list`; the console is used if not set")
	flag.Var(&patches, "set", "patch memory with `addr=value` before running (can be specified multiple times)")
	flag.Var(&phases, "phases", "run an amplifier network with the given phase settings `list`")
	flag.BoolVar(&feedback, "feedback", false, "connect the last amplifier to the first one")
	flag.BoolVar(&search, "search", false, "search the phase settings permutation yielding the highest signal")
	flag.BoolVar(&assemble, "asm", false, "assemble the program source before running")
	flag.BoolVar(&disasm, "disasm", false, "disassemble the program and exit")
	flag.BoolVar(&dump, "dump", false, "dump VM state and memory upon exit")
	flag.StringVar(&outFileName, "o", "", "save memory to `filename` upon exit")
	flag.BoolVar(&noShrink, "noshrink", false, "when saving, don't trim trailing zeros")
	flag.BoolVar(&trace, "trace", false, "log every executed instruction, implies -debug")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	flag.BoolVar(&quiet, "q", false, "only log errors")
	flag.Parse()

	if trace {
		debug = true
	}
	logger := config.CreateLogger(debug, quiet)
	if !quiet {
		logger.Info("intcode", log.String("version", buildinfo.Version(version, commit, date)))
	}

	stdout := bufio.NewWriter(os.Stdout)
	defer func() {
		if err == nil && dump && i != nil {
			err = dumpVM(i, stdout)
		}
		if e := stdout.Flush(); err == nil {
			err = e
		}
		atExit(logger, i, err)
	}()

	prog, err := loadProgram(*fileName, *src)
	if err != nil {
		return
	}
	logger.Debug("Program loaded", log.Int("cells", len(prog)))

	i, err = vm.New(prog, vm.MemLimit(*memLimit), vm.Pad(*pad))
	if err != nil {
		return
	}
	for _, p := range patches {
		if err = i.Poke(p.addr, p.value); err != nil {
			err = errors.Wrapf(err, "patch %d=%d", p.addr, p.value)
			return
		}
	}

	switch {
	case disasm:
		err = asm.DisassembleAll(i.Mem, 0, stdout)
	case phases.set:
		err = runNetwork(logger, i.Mem, *memLimit, stdout)
	default:
		err = runVM(logger, i, stdout)
	}
}
