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
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

type flusher interface {
	Flush() error
}

// Queue is a FIFO of cells used for VM input and output. A Queue can be bound
// as the output of an instance and as the input of another one. Queues are not
// safe for concurrent use.
type Queue struct {
	buf  []Cell
	head int
}

// NewQueue returns a new queue holding the given values.
func NewQueue(values ...Cell) *Queue {
	return &Queue{buf: append([]Cell(nil), values...)}
}

// Push appends values to the end of the queue.
func (q *Queue) Push(values ...Cell) {
	if q.head > 0 && q.head == len(q.buf) {
		q.buf, q.head = q.buf[:0], 0
	}
	q.buf = append(q.buf, values...)
}

// Pop removes the value at the front of the queue and returns it. The returned
// bool is false if the queue is empty.
func (q *Queue) Pop() (Cell, bool) {
	if q.head >= len(q.buf) {
		return 0, false
	}
	v := q.buf[q.head]
	q.head++
	if q.head == len(q.buf) {
		q.buf, q.head = q.buf[:0], 0
	}
	return v, true
}

// Len returns the number of values in the queue.
func (q *Queue) Len() int {
	return len(q.buf) - q.head
}

// Values returns the values in the queue, front first. The returned slice must
// not be modified.
func (q *Queue) Values() []Cell {
	return q.buf[q.head:]
}

// Last returns the value at the back of the queue. The returned bool is false
// if the queue is empty.
func (q *Queue) Last() (Cell, bool) {
	if q.Len() == 0 {
		return 0, false
	}
	return q.buf[len(q.buf)-1], true
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.buf, q.head = q.buf[:0], 0
}

// in reads a value for an IN instruction. ok is false if the instruction must
// suspend.
func (i *Instance) in() (v Cell, ok bool, err error) {
	if i.input != nil {
		v, ok = i.input.Pop()
		return v, ok, nil
	}
	if i.conIn == nil {
		return 0, false, i.newError(NoInputAvailable, 0, nil)
	}
	if i.conOut != nil {
		if i.prompt != "" {
			if _, err = io.WriteString(i.conOut, i.prompt); err != nil {
				return 0, false, i.newError(IOError, 0, errors.Wrap(err, "prompt failed"))
			}
		}
		if f, ok := i.conOut.(flusher); ok {
			if err = f.Flush(); err != nil {
				return 0, false, i.newError(IOError, 0, errors.Wrap(err, "flush failed"))
			}
		}
	}
	var n int64
	if _, err = fmt.Fscan(i.conIn, &n); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, false, i.newError(IOError, 0, errors.Wrap(err, "console read failed"))
	}
	return Cell(n), true, nil
}

// out writes v for an OUT instruction.
func (i *Instance) out(v Cell) error {
	if i.output != nil {
		i.output.Push(v)
		return nil
	}
	if i.conOut == nil {
		return i.newError(NoOutputAvailable, 0, nil)
	}
	b := strconv.AppendInt(make([]byte, 0, 21), int64(v), 10)
	b = append(b, '\n')
	if _, err := i.conOut.Write(b); err != nil {
		return i.newError(IOError, 0, errors.Wrap(err, "console write failed"))
	}
	if f, ok := i.conOut.(flusher); ok {
		if err := f.Flush(); err != nil {
			return i.newError(IOError, 0, errors.Wrap(err, "flush failed"))
		}
	}
	return nil
}
