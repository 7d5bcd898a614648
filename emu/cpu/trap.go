/*
 * rv32ima - trap entry and MRET bypass
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

package cpu

var causeNames = map[uint32]string{
	causeInstAddrMisaligned: "instruction-address-misaligned",
	causeIllegalInst:        "illegal-instruction",
	causeBreakpoint:         "breakpoint",
	causeLoadAddrMisalign:   "load-address-misaligned",
	causeStoreAddrMisalign:  "store/amo-address-misaligned",
	causeECallFromM:         "ecall-from-m-mode",
	causeMachineTimerIRQ:    "machine-timer-interrupt",
	causeMachineExternalIRQ: "machine-external-interrupt",
}

func causeName(cause uint32) string {
	if n, ok := causeNames[cause]; ok {
		return n
	}
	return "unknown"
}

// trap enters the trap handler at mtvec per spec.md §4.4. sync
// distinguishes synchronous traps (resume at the faulting pc) from
// asynchronous interrupts (resume at next_pc). Returns a *TrapError if
// no handler is installed (mtvec == 0); the caller must treat that as
// fatal.
func (c *CPU) trap(cause uint32, mtval uint32, sync bool) error {
	mtvec := c.CSR[csrMtvec]
	if mtvec == 0 {
		return &TrapError{Cause: cause, Name: causeName(cause)}
	}

	if sync {
		c.CSR[csrMepc] = c.PC
	} else {
		c.CSR[csrMepc] = c.NextPC
	}
	c.CSR[csrMcause] = cause
	c.CSR[csrMtval] = mtval

	mstatus := c.CSR[csrMstatus]
	mie := (mstatus >> mstatusMIEBit) & 1
	mstatus = setBit(mstatus, mstatusMPIEBit, mie != 0)
	mstatus = setBit(mstatus, mstatusMIEBit, false)
	c.CSR[csrMstatus] = mstatus

	c.NextPC = mtvec &^ 0x3
	return nil
}

// bypassedTrapReturn is used when the emulator itself fully services a
// trap without transferring control to the guest's handler (e.g. ECALL
// serviced directly by the Newlib syscall dispatcher). It writes the
// trap CSRs for observability but forces MPIE=1 and leaves MIE alone,
// since control returns to the instruction stream immediately rather
// than through MRET.
func (c *CPU) bypassedTrapReturn(cause uint32) {
	c.CSR[csrMepc] = c.PC
	c.CSR[csrMcause] = cause
	c.CSR[csrMtval] = 0
	c.CSR[csrMstatus] = setBit(c.CSR[csrMstatus], mstatusMPIEBit, true)
}

func setBit(v uint32, bit int, set bool) uint32 {
	if set {
		return v | (1 << uint(bit))
	}
	return v &^ (1 << uint(bit))
}

// handleMRET implements the MRET instruction: mstatus.MIE <- MPIE,
// MPIE <- 1, next_pc <- mepc (subject to the caller's alignment
// check).
func (c *CPU) handleMRET() {
	mstatus := c.CSR[csrMstatus]
	mpie := (mstatus >> mstatusMPIEBit) & 1
	mstatus = setBit(mstatus, mstatusMIEBit, mpie != 0)
	mstatus = setBit(mstatus, mstatusMPIEBit, true)
	c.CSR[csrMstatus] = mstatus
	c.NextPC = c.CSR[csrMepc]
}
