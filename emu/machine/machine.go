/*
 * rv32ima - the step loop binding CPU, Memory, and peripherals together
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

// Package machine owns a CPU and a Memory and drives the fetch/
// execute/tick/commit loop spec.md §4.6 describes. It also carries the
// optional debug invariant checker and register/function trace
// formatter, and the goroutine-based Runner that lets a host respond
// to signals while the deterministic step loop runs.
package machine

import (
	"log/slog"

	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/emu/memory"
	"github.com/ccattuto/rv32ima/util/hex"
)

// Machine is the root from which all simulator state is reachable;
// there is no other global state (spec.md §9).
type Machine struct {
	CPU *cpu.CPU
	Mem *memory.Memory

	TimerEnabled bool

	// Debug/trace configuration.
	InvariantCheck bool
	Trace          bool
	Log            *slog.Logger

	// Symbol/boundary information discovered from the loaded image,
	// used by the invariant checker and the trace formatter.
	StackTop    uint32
	StackBottom uint32
	HeapStart   uint32
	HeapEnd     uint32
	TextBase    uint32
	TextSnap    []byte
	FuncSymbols map[uint32]string
}

// New constructs a Machine over an existing CPU and Memory. Both are
// typically wired together by the caller beforehand (peripherals
// registered on mem, ecall handler installed on c).
func New(c *cpu.CPU, mem *memory.Memory) *Machine {
	return &Machine{
		CPU: c,
		Mem: mem,
		Log: slog.Default(),
	}
}

// Step executes exactly one instruction: parcel fetch, execute,
// optional timer tick, peripheral ticks, PC commit — the state
// machine of spec.md §4.6, in order.
func (m *Machine) Step() error {
	if m.InvariantCheck {
		if err := m.checkInvariants(); err != nil {
			return err
		}
	}
	if m.Trace {
		m.traceFunctionEntry()
	}

	pc := m.CPU.PC
	low, err := m.Mem.LoadHalf(pc, false)
	if err != nil {
		return err
	}

	var stepErr error
	if uint16(low)&0x3 == 0x3 {
		high, herr := m.Mem.LoadHalf(pc+2, false)
		if herr != nil {
			return herr
		}
		inst := (uint32(uint16(high)) << 16) | uint32(uint16(low))
		stepErr = m.CPU.Execute32(inst)
	} else {
		stepErr = m.CPU.Execute16(uint16(low))
	}
	if stepErr != nil {
		return m.translateCPUError(stepErr)
	}

	if m.TimerEnabled {
		if tErr := m.CPU.TimerTick(); tErr != nil {
			return m.translateCPUError(tErr)
		}
	}
	m.Mem.TickPeripherals()

	m.CPU.PC = m.CPU.NextPC
	return nil
}

// Run steps until an error is returned (normal termination or an
// unrecoverable condition) and returns it unmodified for the caller to
// classify per spec.md §7's propagation policy.
func (m *Machine) Run() error {
	for {
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// translateCPUError maps a *cpu.TrapError (taken with no mtvec
// installed) to the host-visible ExecutionTerminatedError; any other
// error (a memory.AccessError, or an ExecutionTerminatedError raised
// directly by a syscall handler through the ecall hook) passes through
// unchanged.
func (m *Machine) translateCPUError(err error) error {
	if te, ok := err.(*cpu.TrapError); ok {
		return &ExecutionTerminatedError{
			Cause:    "unhandled trap: " + te.Error(),
			ExitCode: -1,
		}
	}
	return err
}

func (m *Machine) traceFunctionEntry() {
	if name, ok := m.FuncSymbols[m.CPU.PC]; ok {
		m.Log.Debug("enter", "pc", hex.Word(m.CPU.PC), "func", name)
	}
}
