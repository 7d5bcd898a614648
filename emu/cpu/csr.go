/*
 * rv32ima - CSR file read/write classification and mtime/mtimecmp commit
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

// readOnlyCSRs trap on any effective write attempt.
var readOnlyCSRs = map[uint32]bool{
	csrMvendorid: true,
	csrMarchid:   true,
	csrMimpid:    true,
	csrMhartid:   true,
}

// writeIgnoredCSRs silently drop writes but still answer reads with
// the last stored value.
var writeIgnoredCSRs = map[uint32]bool{
	csrMisa:      true,
	csrMinstret:  true,
	csrMinstretH: true,
	csrTselect:   true,
	csrTdata1:    true,
	csrTdata2:    true,
}

func csrIsReadOnly(addr uint32) bool    { return readOnlyCSRs[addr] }
func csrIsWriteIgnored(addr uint32) bool { return writeIgnoredCSRs[addr] }

// readCSR returns the current value of addr. The four timer shadow
// registers are derived from the authoritative 64-bit counters rather
// than from the CSR array, per spec.md §4.3's closing paragraph.
func (c *CPU) readCSR(addr uint32) uint32 {
	switch addr {
	case csrMtimeLo:
		return uint32(c.mtime)
	case csrMtimeHi:
		return uint32(c.mtime >> 32)
	case csrMtimecmpL:
		return uint32(c.mtimecmp)
	case csrMtimecmpH:
		return uint32(c.mtimecmp >> 32)
	default:
		return c.CSR[addr&0xFFF]
	}
}

// writeCSR performs the side-effecting write for addr, applying the
// mstatus.MPP-forcing, mtvec-masking, and mtime/mtimecmp half-written
// commit rules from spec.md §3/§4.3, and silently drops writes to the
// write-ignored CSRs. It does not check read-only classification — the
// SYSTEM-opcode CSR handler (execCSR in system.go) does that before
// calling in, since only it knows whether the write is "effective" for
// CSRRS/CSRRC purposes.
func (c *CPU) writeCSR(addr uint32, value uint32) {
	switch addr {
	case csrMstatus:
		c.CSR[csrMstatus] = forceMPP(value)
	case csrMtvec:
		c.CSR[csrMtvec] = value &^ 0x3
	case csrMtimeLo:
		c.WriteMtimeLo(value)
	case csrMtimeHi:
		c.WriteMtimeHi(value)
	case csrMtimecmpL:
		c.WriteMtimecmpLo(value)
	case csrMtimecmpH:
		c.WriteMtimecmpHi(value)
	case csrMisa, csrMinstret, csrMinstretH, csrTselect, csrTdata1, csrTdata2:
		// write-ignored: nothing to do, reads still return the stored value
	default:
		c.CSR[addr&0xFFF] = value
	}
}

// forceMPP sets mstatus bits [12:11] to 0b11: only machine mode is
// supported, so MPP can never legally hold anything else.
func forceMPP(mstatus uint32) uint32 {
	return (mstatus &^ (0x3 << mstatusMPPLo)) | (0x3 << mstatusMPPLo)
}

// TimerSource is implemented by *CPU and consumed by
// peripherals.MachineTimer so the MMIO mirror and the CSR shadows
// never diverge: both paths share the same authoritative counters and
// the same half-written commit discipline.
type TimerSource interface {
	ReadMtimeLo() uint32
	ReadMtimeHi() uint32
	ReadMtimecmpLo() uint32
	ReadMtimecmpHi() uint32
	WriteMtimeLo(uint32)
	WriteMtimeHi(uint32)
	WriteMtimecmpLo(uint32)
	WriteMtimecmpHi(uint32)
}

func (c *CPU) ReadMtimeLo() uint32 { return uint32(c.mtime) }
func (c *CPU) ReadMtimeHi() uint32 { return uint32(c.mtime >> 32) }

// WriteMtimeLo/WriteMtimeHi stage one half of mtime. A write to only
// one half leaves the composed 64-bit mtime unchanged; the value is
// recomposed only once both halves have been written since the last
// commit (spec.md §3, §8).
func (c *CPU) WriteMtimeLo(v uint32) {
	c.mtimeLoStage = v
	c.mtimeLoDirty = true
	c.commitMtimeIfReady()
}

func (c *CPU) WriteMtimeHi(v uint32) {
	c.mtimeHiStage = v
	c.mtimeHiDirty = true
	c.commitMtimeIfReady()
}

func (c *CPU) commitMtimeIfReady() {
	if c.mtimeLoDirty && c.mtimeHiDirty {
		c.mtime = uint64(c.mtimeHiStage)<<32 | uint64(c.mtimeLoStage)
		c.mtimeLoDirty = false
		c.mtimeHiDirty = false
		c.recomputeMTIP()
	}
}

func (c *CPU) ReadMtimecmpLo() uint32 { return uint32(c.mtimecmp) }
func (c *CPU) ReadMtimecmpHi() uint32 { return uint32(c.mtimecmp >> 32) }

func (c *CPU) WriteMtimecmpLo(v uint32) {
	c.mtimecmpLoStage = v
	c.mtimecmpLoDirty = true
	c.commitMtimecmpIfReady()
}

func (c *CPU) WriteMtimecmpHi(v uint32) {
	c.mtimecmpHiStage = v
	c.mtimecmpHiDirty = true
	c.commitMtimecmpIfReady()
}

func (c *CPU) commitMtimecmpIfReady() {
	if c.mtimecmpLoDirty && c.mtimecmpHiDirty {
		c.mtimecmp = uint64(c.mtimecmpHiStage)<<32 | uint64(c.mtimecmpLoStage)
		c.mtimecmpLoDirty = false
		c.mtimecmpHiDirty = false
		c.recomputeMTIP()
	}
}

// recomputeMTIP updates mip.MTIP to mtime >= mtimecmp. Called when a
// CSR/MMIO write commits both halves of either counter; a write of a
// single half does not call it.
func (c *CPU) recomputeMTIP() {
	asserted := c.mtime >= c.mtimecmp
	c.CSR[csrMip] = setBit(c.CSR[csrMip], mipMTIPBit, asserted)
}

// Mtime and Mtimecmp expose the authoritative 64-bit counters for
// tests and for the machine step loop's timer tick.
func (c *CPU) Mtime() uint64     { return c.mtime }
func (c *CPU) Mtimecmp() uint64  { return c.mtimecmp }
func (c *CPU) SetMtime(v uint64) { c.mtime = v }
