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
	"os"
	"strconv"
	"text/scanner"

	"github.com/db47h/intcode/internal/xio"
	"github.com/pkg/errors"
)

// check returns a MemoryFault if addr is out of bounds.
func (i *Instance) check(addr Cell) error {
	if addr < 0 || addr >= Cell(i.limit) {
		return i.newError(MemoryFault, addr, nil)
	}
	return nil
}

func (i *Instance) read(addr Cell) (Cell, error) {
	if err := i.check(addr); err != nil {
		return 0, err
	}
	if addr >= Cell(len(i.Mem)) {
		return 0, nil
	}
	return i.Mem[addr], nil
}

func (i *Instance) write(addr, v Cell) error {
	if err := i.check(addr); err != nil {
		return err
	}
	if addr >= Cell(len(i.Mem)) {
		i.grow(int(addr) + 1)
	}
	i.Mem[addr] = v
	return nil
}

// grow extends memory to at least n cells. New cells are zeroed.
func (i *Instance) grow(n int) {
	if n <= len(i.Mem) {
		return
	}
	if n <= cap(i.Mem) {
		l := len(i.Mem)
		i.Mem = i.Mem[:n]
		for k := l; k < n; k++ {
			i.Mem[k] = 0
		}
		return
	}
	c := 2 * cap(i.Mem)
	if c < n {
		c = n
	}
	if c > i.limit {
		c = i.limit
	}
	m := make([]Cell, n, c)
	copy(m, i.Mem)
	i.Mem = m
}

func scanError(s *scanner.Scanner, msg string) error {
	pos := s.Position
	if !pos.IsValid() {
		pos = s.Pos()
	}
	return errors.Errorf("%s: %s", pos, msg)
}

// Parse reads a program from r. Programs are comma separated lists of decimal
// integers. White space is allowed between tokens and a trailing comma is
// accepted.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
func Parse(name string, r io.Reader) ([]Cell, error) {
	var (
		s    scanner.Scanner
		err  error
		prog []Cell
	)
	s.Init(r)
	s.Mode = scanner.ScanInts
	s.Filename = name
	s.Error = func(s *scanner.Scanner, msg string) {
		if err == nil {
			err = scanError(s, msg)
		}
	}

	// state:
	// 0: need integer or EOF
	// 1: need comma or EOF
	var state int
	neg := false
	for tok := s.Scan(); err == nil && tok != scanner.EOF; tok = s.Scan() {
		switch {
		case state == 0 && tok == '-' && !neg:
			neg = true
		case state == 0 && tok == scanner.Int:
			t := s.TokenText()
			if neg {
				t = "-" + t
			}
			n, e := strconv.ParseInt(t, 10, 64)
			if e != nil {
				return nil, scanError(&s, "invalid integer "+t)
			}
			prog = append(prog, Cell(n))
			neg = false
			state = 1
		case state == 1 && tok == ',':
			state = 0
		default:
			return nil, scanError(&s, "unexpected "+strconv.Quote(s.TokenText()))
		}
	}
	if err == nil && neg {
		err = scanError(&s, "unexpected end of input after '-'")
	}
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Load loads a program from file fileName.
func Load(fileName string) ([]Cell, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	prog, err := Parse(fileName, bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return prog, nil
}

// Encode writes mem as a comma separated list of integers followed by a new
// line to w.
func Encode(w io.Writer, mem []Cell) error {
	ew := xio.NewErrWriter(w)
	for k, v := range mem {
		if k > 0 {
			ew.Write([]byte{','})
		}
		io.WriteString(ew, strconv.FormatInt(int64(v), 10))
	}
	ew.Write([]byte{'\n'})
	return ew.Err
}

// Save saves mem to file fileName. If shrink is true, trailing zero cells are
// not saved.
func Save(fileName string, mem []Cell, shrink bool) (err error) {
	if shrink {
		end := len(mem)
		for end > 0 && mem[end-1] == 0 {
			end--
		}
		mem = mem[:end]
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if e := w.Flush(); err == nil && e != nil {
			err = errors.Wrap(e, "write failed")
		}
		if e := f.Close(); err == nil && e != nil {
			err = errors.Wrap(e, "close failed")
		}
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	if err = Encode(w, mem); err != nil {
		return errors.Wrap(err, "save failed")
	}
	return nil
}
