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

// Package pipeline connects several Intcode VM instances with shared queues
// and drives them cooperatively.
//
// A Network is a ring or a chain of instances running the same program. Queue k
// is the input of instance k and the output of instance k-1. Each queue starts
// with the phase setting of its instance. In a chain, the last instance writes
// to a separate result queue; in a feedback network it writes to queue 0.
//
// Instances are run in turn, each one until it halts or waits for input, from a
// single goroutine. No locking is involved.
package pipeline

import (
	"fmt"

	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/slices"
)

// ErrDeadlock is returned by Run when every running instance is waiting for
// input that no other instance will produce.
var ErrDeadlock = errors.New("pipeline: all machines awaiting input")

// Error reports a fault in one instance of a network.
type Error struct {
	Index int // index of the faulting instance
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline: machine %d: %v", e.Index, e.Err)
}

// Unwrap returns the instance error.
func (e *Error) Unwrap() error { return e.Err }

// Cause implements the causer interface of github.com/pkg/errors.
func (e *Error) Cause() error { return e.Err }

// Network is a set of connected VM instances.
type Network struct {
	machines []*vm.Instance
	queues   []*vm.Queue
	out      *vm.Queue
	tail     *vm.Queue // output of the last instance, drained into out
	last     vm.Cell
	hasOut   bool
	logger   *log.Logger
	memLimit int
}

// Option interface
type Option func(*Network)

// WithLogger sets the logger used to trace scheduling at debug level.
func WithLogger(l *log.Logger) Option {
	return func(n *Network) { n.logger = l }
}

// WithMemLimit sets the memory limit of each instance. See vm.MemLimit.
func WithMemLimit(limit int) Option {
	return func(n *Network) { n.memLimit = limit }
}

// New creates a network of len(phases) instances running prog. If feedback is
// true, the output of the last instance is connected to the input of the first.
func New(prog []vm.Cell, phases []vm.Cell, feedback bool, opts ...Option) (*Network, error) {
	if len(phases) == 0 {
		return nil, errors.New("pipeline: no phase settings")
	}
	n := &Network{memLimit: vm.DefaultMemLimit}
	for _, opt := range opts {
		opt(n)
	}
	base, err := vm.New(prog, vm.MemLimit(n.memLimit))
	if err != nil {
		return nil, errors.Wrap(err, "pipeline")
	}
	n.queues = make([]*vm.Queue, len(phases))
	for k, p := range phases {
		n.queues[k] = vm.NewQueue(p)
	}
	n.out = vm.NewQueue()
	if feedback {
		n.out = n.queues[0]
	}
	n.tail = vm.NewQueue()
	n.machines = make([]*vm.Instance, len(phases))
	for k := range phases {
		out := n.tail
		if k < len(phases)-1 {
			out = n.queues[k+1]
		}
		m := base.Clone()
		if err = m.SetOptions(vm.Input(n.queues[k]), vm.Output(out)); err != nil {
			return nil, errors.Wrap(err, "pipeline")
		}
		n.machines[k] = m
	}
	return n, nil
}

// Machines returns the instances of the network.
func (n *Network) Machines() []*vm.Instance {
	return n.machines
}

// Output returns the queue written to by the last instance.
func (n *Network) Output() *vm.Queue {
	return n.out
}

// Run pushes input to the first instance and runs all instances in turn until
// they have all halted. It returns the last value output by the last instance.
// Values left in a feedback queue by the caller are not output values: if the
// last instance never outputs anything, Run returns an error.
//
// A fault in any instance stops the network and is reported as an *Error.
func (n *Network) Run(input ...vm.Cell) (vm.Cell, error) {
	n.queues[0].Push(input...)
	halted := make([]bool, len(n.machines))
	running := len(n.machines)
	for round := 0; running > 0; round++ {
		progress := false
		for k, m := range n.machines {
			if halted[k] {
				continue
			}
			st, err := m.Run()
			if k == len(n.machines)-1 {
				n.forward()
			}
			if err != nil {
				if n.logger != nil {
					n.logger.Error("Machine fault", err, log.Int("machine", k))
				}
				return 0, &Error{Index: k, Err: err}
			}
			if m.InstructionCount() > 0 {
				progress = true
			}
			if st == vm.Halted {
				halted[k] = true
				running--
				progress = true
			}
			if n.logger != nil {
				n.logger.Debug("Machine suspended",
					log.Int("round", round),
					log.Int("machine", k),
					log.String("status", st.String()),
					log.Int("instructions", int(m.InstructionCount())))
			}
		}
		if !progress {
			return 0, ErrDeadlock
		}
	}
	if !n.hasOut {
		return 0, errors.New("pipeline: no output")
	}
	return n.last, nil
}

// forward moves the values output by the last instance to the output queue and
// records the most recent one.
func (n *Network) forward() {
	for v, ok := n.tail.Pop(); ok; v, ok = n.tail.Pop() {
		n.last, n.hasOut = v, true
		n.out.Push(v)
	}
}

// MaxSignal runs a network for every permutation of phases, with an initial
// input of 0, and returns the highest output signal and the corresponding
// phase settings.
func MaxSignal(prog []vm.Cell, phases []vm.Cell, feedback bool, opts ...Option) (best vm.Cell, order []vm.Cell, err error) {
	p := slices.Clone(phases)
	found := false
	try := func() error {
		n, err := New(prog, p, feedback, opts...)
		if err != nil {
			return err
		}
		v, err := n.Run(0)
		if err != nil {
			return errors.Wrapf(err, "phases %v", p)
		}
		if !found || v > best {
			best, order, found = v, slices.Clone(p), true
		}
		return nil
	}

	// Heap's algorithm
	c := make([]int, len(p))
	if err = try(); err != nil {
		return 0, nil, err
	}
	for k := 1; k < len(p); {
		if c[k] < k {
			if k%2 == 0 {
				p[0], p[k] = p[k], p[0]
			} else {
				p[c[k]], p[k] = p[k], p[c[k]]
			}
			if err = try(); err != nil {
				return 0, nil, err
			}
			c[k]++
			k = 1
		} else {
			c[k] = 0
			k++
		}
	}
	return best, order, nil
}
