/*
 * rv32ima - machine-level error taxonomy
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

import "fmt"

// ExecutionTerminatedError is returned by Step/Run when the guest
// program has stopped running by design: a normal _exit, an unhandled
// trap with no mtvec installed (an EBREAK the debug hook does not
// consume is such a trap).
// The host distinguishes these by Cause.
type ExecutionTerminatedError struct {
	Cause    string
	ExitCode int32
}

func (e *ExecutionTerminatedError) Error() string {
	return fmt.Sprintf("machine: execution terminated (%s), exit code %d", e.Cause, e.ExitCode)
}

// InvariantViolationError is raised only when debug invariant checks
// are enabled; it always terminates the run.
type InvariantViolationError struct {
	Rule   string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("machine: invariant violated (%s): %s", e.Rule, e.Detail)
}
