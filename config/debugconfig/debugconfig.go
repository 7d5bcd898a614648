/*
 * rv32ima - trace category selection
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

// Package debugconfig parses the --trace flag's comma-separated
// category list into a set the caller can query, the same named-
// category idiom the teacher used for per-subsystem debug selection,
// narrowed to the handful of categories this machine actually has.
package debugconfig

import (
	"fmt"
	"strings"
)

// Recognized trace categories.
const (
	Step    = "step"    // function-entry trace (machine.Machine.Trace)
	Trap    = "trap"    // architectural traps taken
	Syscall = "syscall" // Newlib syscall dispatch
	MMIO    = "mmio"    // peripheral register reads/writes
)

var known = map[string]bool{Step: true, Trap: true, Syscall: true, MMIO: true}

// Categories is a parsed --trace value.
type Categories map[string]bool

// Enabled reports whether name was requested.
func (c Categories) Enabled(name string) bool { return c[name] }

// Parse splits a comma-separated category list, rejecting anything not
// in the known set so a typo in a flag doesn't silently do nothing.
func Parse(spec string) (Categories, error) {
	cats := Categories{}
	if strings.TrimSpace(spec) == "" {
		return cats, nil
	}
	for _, name := range strings.Split(spec, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown trace category %q", name)
		}
		cats[name] = true
	}
	return cats, nil
}
