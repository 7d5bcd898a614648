/*
 * rv32ima - goroutine-driven run loop
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package machine

import (
	"log/slog"
	"sync"
	"time"
)

// Runner drives a Machine's step loop on its own goroutine so a host
// (a CLI, a test harness, a debugger front end) can issue Stop from
// another goroutine and still observe a clean shutdown. There is no
// wall-clock ticker here: mtime advances once per retired instruction
// inside Machine.Step, never on its own schedule, so Runner contributes
// nothing but lifecycle management.
type Runner struct {
	m      *Machine
	wg     sync.WaitGroup
	done   chan struct{}
	result chan error
}

// NewRunner wraps m in a stoppable background run loop.
func NewRunner(m *Machine) *Runner {
	return &Runner{
		m:      m,
		done:   make(chan struct{}),
		result: make(chan error, 1),
	}
}

// Start runs m's step loop on a new goroutine until it stops itself
// (Run returns an error) or Stop is called. Start returns immediately.
func (r *Runner) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.done:
				r.result <- nil
				return
			default:
			}
			if err := r.m.Step(); err != nil {
				r.result <- err
				return
			}
		}
	}()
}

// Stop requests the run loop to exit and waits for it, up to one
// second, logging a warning if the deadline is exceeded rather than
// blocking forever.
func (r *Runner) Stop() {
	close(r.done)
	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		slog.Warn("rv32ima: timed out waiting for run loop to stop")
	}
}

// Wait blocks until the run loop exits on its own (guest termination or
// unrecoverable error) and returns the terminal error, or nil if it was
// stopped via Stop before that happened.
func (r *Runner) Wait() error {
	return <-r.result
}
