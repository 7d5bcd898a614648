/*
 * rv32ima - debug-mode invariant checks
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

import "bytes"

// checkInvariants runs the debug-mode-only sanity checks spec.md §4.6
// lists. It costs nothing when InvariantCheck is false, since Step
// only calls it when that flag is set. Every field a check depends
// on is optional (zero value disables that check): a machine built
// without symbol information just runs fewer checks, not none.
func (m *Machine) checkInvariants() error {
	if m.CPU.X[0] != 0 {
		return &InvariantViolationError{
			Rule:   "zero-register",
			Detail: "x0 is nonzero",
		}
	}

	if m.CPU.PC < m.Mem.Base() || m.CPU.PC >= m.Mem.Base()+m.Mem.Size() {
		return &InvariantViolationError{
			Rule:   "pc-in-bounds",
			Detail: "pc outside ram range",
		}
	}

	// Gated on the configured range being known and on gp != 0: crt0
	// sets gp and sp together, so sp is not checked before that.
	if m.StackBottom != 0 && m.StackTop != 0 && m.CPU.X[3] != 0 {
		sp := m.CPU.X[2]
		if sp > m.StackTop || sp < m.StackBottom {
			return &InvariantViolationError{
				Rule:   "stack-bounds",
				Detail: "sp outside configured stack range",
			}
		}
	}

	if m.HeapEnd != 0 && m.StackBottom != 0 {
		if m.HeapEnd+256 > m.StackBottom {
			return &InvariantViolationError{
				Rule:   "heap-stack-gap",
				Detail: "heap_end within 256 bytes of stack_bottom",
			}
		}
		if m.HeapEnd&0x3 != 0 {
			return &InvariantViolationError{
				Rule:   "heap-end-alignment",
				Detail: "heap_end is not 4-byte aligned",
			}
		}
	}

	if len(m.TextSnap) != 0 {
		cur, err := m.Mem.LoadBinary(m.TextBase, len(m.TextSnap))
		if err != nil {
			return err
		}
		if !bytes.Equal(cur, m.TextSnap) {
			return &InvariantViolationError{
				Rule:   "text-immutable",
				Detail: "bytes under .text changed since load",
			}
		}
	}

	return nil
}
