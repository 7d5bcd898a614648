/*
 * rv32ima - CPU state and register access
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

// Package cpu implements the RV32IMAC instruction interpreter: the
// architectural register file, the CSR file, the trap machine, the
// machine timer, and decode caches. It executes one instruction at a
// time; the enclosing fetch/tick/commit loop lives in package machine.
package cpu

import (
	"fmt"

	"github.com/ccattuto/rv32ima/emu/memory"
)

// TrapError is returned by Execute32, Execute16 and TimerTick when a
// trap was taken but no handler
// is installed (mtvec == 0): a fatal condition the caller must treat
// as execution-terminated.
type TrapError struct {
	Cause uint32
	Name  string
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("cpu: unhandled trap cause=0x%x (%s), no mtvec installed", e.Cause, e.Name)
}

// ECallHandler is invoked when ECALL executes while mtvec == 0. It is
// the external-collaborator hook spec.md §1 describes (typically the
// Newlib syscall dispatcher); it returns true if it fully handled the
// call (so CPU should continue, not trap), along with an error if
// execution should stop (e.g. _exit was requested).
type ECallHandler func(c *CPU) (handled bool, err error)

// DebugHook is invoked for EBREAK with a7 >= debugHookBase; purely
// diagnostic, no architectural effect.
type DebugHook func(c *CPU, a7 uint32)

// CPU holds one hart's architectural state: general registers, PC,
// the CSR file, the LR/SC reservation (delegated to Memory, which
// shares the same address space), decode caches, and the authoritative
// 64-bit timer counters.
type CPU struct {
	X      [32]uint32
	PC     uint32
	NextPC uint32

	CSR [4096]uint32

	Mem *memory.Memory

	rvcEnabled bool
	alignMask  uint32 // cached: 0x1 when RVC enabled, 0x3 otherwise

	mtime    uint64
	mtimecmp uint64

	mtimeLoStage    uint32
	mtimeHiStage    uint32
	mtimeLoDirty    bool
	mtimeHiDirty    bool
	mtimecmpLoStage uint32
	mtimecmpHiStage uint32
	mtimecmpLoDirty bool
	mtimecmpHiDirty bool

	cache32 map[uint32]decoded32
	cache16 map[uint16]decoded16

	ECall ECallHandler
	Debug DebugHook
}

// New constructs a CPU attached to mem, with RVC enabled by default
// (misa.C set) and the read-only identity CSRs left at their zero
// reset values (this simulator reports vendor/arch/impl/hart ID 0).
func New(mem *memory.Memory) *CPU {
	c := &CPU{
		Mem:        mem,
		rvcEnabled: true,
		cache32:    make(map[uint32]decoded32),
		cache16:    make(map[uint16]decoded16),
	}
	c.CSR[csrMisa] = misaReset
	c.recomputeAlignMask()
	return c
}

// RegisterInitMode selects how x1-x31 are seeded at reset; x0 is
// always zero regardless of mode.
type RegisterInitMode int

const (
	RegInitZero RegisterInitMode = iota
	RegInitRandom
	RegInitLiteral
)

// ResetRegisters seeds x1-x31 per mode. For RegInitRandom, randomSource
// is called once per register; for RegInitLiteral, literal is
// broadcast to every register.
func (c *CPU) ResetRegisters(mode RegisterInitMode, literal uint32, randomSource func() uint32) {
	for i := 1; i < 32; i++ {
		switch mode {
		case RegInitZero:
			c.X[i] = 0
		case RegInitRandom:
			c.X[i] = randomSource()
		case RegInitLiteral:
			c.X[i] = literal
		}
	}
	c.X[0] = 0
}

// RVCEnabled reports whether misa.C is currently set.
func (c *CPU) RVCEnabled() bool { return c.rvcEnabled }

// SetRVCEnabled sets or clears misa bit 2 and recaches the alignment
// mask, per DESIGN.md's resolution of the "cache lazily vs at write
// time" open question in spec.md §9: this simulator caches at write
// time.
func (c *CPU) SetRVCEnabled(enabled bool) {
	c.rvcEnabled = enabled
	if enabled {
		c.CSR[csrMisa] |= 1 << 2
	} else {
		c.CSR[csrMisa] &^= 1 << 2
	}
	c.recomputeAlignMask()
}

func (c *CPU) recomputeAlignMask() {
	if c.rvcEnabled {
		c.alignMask = 0x1
	} else {
		c.alignMask = 0x3
	}
}

// AlignMask returns the cached branch/jump target alignment mask.
func (c *CPU) AlignMask() uint32 { return c.alignMask }

// enforceZeroRegister restores x0 == 0, called after every handler per
// spec.md §4.3 step 3.
func (c *CPU) enforceZeroRegister() {
	c.X[0] = 0
}

// AssertExternalInterrupt sets mip.MEIP; ClearExternalInterrupt clears
// it. These are the only paths by which a peripheral requests an IRQ.
func (c *CPU) AssertExternalInterrupt() {
	c.CSR[csrMip] |= 1 << mipMEIPBit
}

func (c *CPU) ClearExternalInterrupt() {
	c.CSR[csrMip] &^= 1 << mipMEIPBit
}
