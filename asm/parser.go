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
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/db47h/intcode/vm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const maxErrors = 10

func isIdentRune(ch rune, i int) bool {
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

type labelSite struct {
	pos     scanner.Position
	address int
}

type label struct {
	labelSite
	uses []labelSite
}

// pending is an instruction waiting for its operands.
type pending struct {
	pos  scanner.Position
	name string
	addr int
	in   vm.Instruction
	n    int
}

type parser struct {
	i       []vm.Cell
	pc      int
	end     int
	s       scanner.Scanner
	labels  map[string]*label
	consts  map[string]labelSite
	cstName string
	cstPos  scanner.Position
	ins     *pending
	errs    ErrAsm
}

func newParser() *parser {
	p := new(parser)
	p.labels = make(map[string]*label)
	p.consts = make(map[string]labelSite)
	return p
}

func (p *parser) error(pos scanner.Position, msg string) {
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	if len(p.errs) < maxErrors {
		p.errs = append(p.errs, ErrorEntry{pos, msg})
	}
}

func (p *parser) failed() bool {
	return len(p.errs) >= maxErrors
}

func (p *parser) write(v vm.Cell) {
	for p.pc >= len(p.i) {
		p.i = append(p.i, make([]vm.Cell, 1024)...)
	}
	p.i[p.pc] = v
	p.pc++
	if p.pc > p.end {
		p.end = p.pc
	}
}

func (p *parser) useLabel(name string) {
	lbl := p.labels[name]
	if lbl == nil {
		lbl = &label{
			// use current position as valid temp position
			labelSite{p.s.Position, -1},
			nil,
		}
		p.labels[name] = lbl
	}
	lbl.uses = append(lbl.uses, labelSite{p.s.Position, p.pc})
}

// value converts s to an integer. ok is false if s should be considered a
// label.
func (p *parser) value(s string) (v vm.Cell, ok bool) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return vm.Cell(n), true
	}
	if len(s) > 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
		if err != nil || tail != "" {
			p.error(p.s.Position, "Invalid character literal "+s)
			return 0, true
		}
		return vm.Cell(r), true
	}
	if c, ok := p.consts[s]; ok {
		return vm.Cell(c.address), true
	}
	return 0, false
}

// operand compiles one operand of the pending instruction.
func (p *parser) operand(s string) {
	var mode vm.Mode
	switch s[0] {
	case '#':
		mode = vm.Immediate
		s = s[1:]
	case '@':
		mode = vm.Relative
		s = s[1:]
	}
	if s == "" {
		p.error(p.s.Position, "Empty operand")
		return
	}
	ins := p.ins
	if mode == vm.Immediate && ins.n == ins.in.Op.Dst() {
		p.error(p.s.Position, "Immediate mode write target for "+ins.name+": #"+s)
	}
	ins.in.Modes[ins.n] = mode
	ins.n++
	if v, ok := p.value(s); ok {
		p.write(v)
	} else {
		p.useLabel(s)
		p.write(0)
	}
	if ins.n == ins.in.Op.Params() {
		p.i[ins.addr] = ins.in.Word()
		p.ins = nil
	}
}

func (p *parser) checkPending() {
	if p.ins != nil {
		p.error(p.ins.pos, "Missing operand for "+p.ins.name)
		p.ins = nil
	}
}

// Parse does the parsing and compiling.
func (p *parser) Parse(name string, r io.Reader) ([]vm.Cell, error) {
	// state:
	// 0: accept anything
	// 2: accept integer or const (for .org directive)
	// 3: accept integer or const (for .equ value)
	// 4: accept integer, const or label (for .dat)
	var state int

	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.error(s.Position, msg)
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents
	p.s.Filename = name

	for tok := p.s.Scan(); !p.failed() && tok != scanner.EOF; tok = p.s.Scan() {
		if tok != scanner.Ident {
			p.error(p.s.Position, "Unexpected character "+strconv.QuoteRune(tok))
			continue
		}
		s := p.s.TokenText()

		if s == "(" {
			// skip comments
			for ; !p.failed() && tok != scanner.EOF && (tok != scanner.Ident || p.s.TokenText() != ")"); tok = p.s.Scan() {
			}
			if tok == scanner.EOF {
				p.error(p.s.Position, "Unterminated comment")
				break
			}
			continue
		}

		if p.ins != nil && s[0] != ':' && s[0] != '.' {
			if _, ok := mnemonics[s]; !ok {
				p.operand(s)
				continue
			}
		}

		switch state {
		case 2, 3:
			v, ok := p.value(s)
			if !ok {
				p.error(p.s.Position, "Unexpected label as directive argument: "+s)
			} else if state == 2 {
				if v < 0 {
					p.error(p.s.Position, "Negative .org address: "+s)
				} else {
					p.pc = int(v)
				}
			} else {
				p.consts[p.cstName] = labelSite{p.cstPos, int(v)}
			}
			state = 0
			continue
		case 4:
			if v, ok := p.value(s); ok {
				p.write(v)
			} else {
				p.useLabel(s)
				p.write(0)
			}
			state = 0
			continue
		}

		p.checkPending()

		switch s[0] {
		case ':':
			n := s[1:]
			if len(n) == 0 {
				p.error(p.s.Position, "Empty label name")
				break
			}
			if cst, ok := p.consts[n]; ok {
				p.error(p.s.Position, "Label redefinition: "+n+", previously defined as a constant here: "+cst.pos.String())
				break
			}
			if l, ok := p.labels[n]; ok {
				if l.address != -1 {
					p.error(p.s.Position, "Label redefinition: "+n+", previous definition here: "+l.pos.String())
				}
				l.address = p.pc
				l.pos = p.s.Position
			} else {
				p.labels[n] = &label{
					labelSite{p.s.Position, p.pc},
					nil,
				}
			}
		case '.':
			switch s {
			case ".org":
				state = 2
			case ".dat":
				state = 4
			case ".equ":
				t := p.s.Scan()
				if t != scanner.Ident {
					p.error(p.s.Position, ".equ: expected identifier, got "+p.s.TokenText())
					break
				}
				p.cstName = p.s.TokenText()
				if l, ok := p.labels[p.cstName]; ok {
					p.error(p.s.Position, ".equ: redefinition of "+p.cstName+", previously defined/used as a label here: "+l.pos.String())
					break
				}
				p.cstPos = p.s.Position
				state = 3
			default:
				p.error(p.s.Position, "Unknown directive: "+s)
			}
		default:
			op, ok := mnemonics[s]
			if !ok {
				p.error(p.s.Position, "Unknown instruction: "+s)
				break
			}
			p.ins = &pending{pos: p.s.Position, name: s, addr: p.pc, in: vm.Instruction{Op: op}}
			p.write(vm.Cell(op))
			if op.Params() == 0 {
				p.ins = nil
			}
		}
	}
	p.checkPending()
	if state != 0 {
		p.error(p.s.Position, "Missing directive argument")
	}

	// write labels
	names := maps.Keys(p.labels)
	slices.Sort(names)
	for _, n := range names {
		l := p.labels[n]
		if l.address == -1 {
			p.error(l.uses[0].pos, "Undefined label "+n)
			continue
		}
		for _, u := range l.uses {
			p.i[u.address] = vm.Cell(l.address)
		}
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.i[:p.end:p.end], nil
}

// ErrorEntry is an assembly error with the position where it occurred.
type ErrorEntry struct {
	Pos scanner.Position
	Msg string
}

// ErrAsm is the error type returned by Assemble. It holds up to 10 errors.
type ErrAsm []ErrorEntry

func (e ErrAsm) Error() string {
	var b strings.Builder
	for k, err := range e {
		if k > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Pos.String())
		b.WriteString(": ")
		b.WriteString(err.Msg)
	}
	return b.String()
}
