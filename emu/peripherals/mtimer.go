/*
 * rv32ima - machine timer MMIO mirror
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

package peripherals

// TimerSource is the subset of *cpu.CPU the machine timer MMIO mirror
// needs. Defined here rather than imported from package cpu to avoid a
// peripherals -> cpu dependency; *cpu.CPU satisfies it structurally.
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

// MachineTimer exposes the CPU's authoritative mtime/mtimecmp counters
// as two independent MMIO register pairs at caller-supplied bases
// (the default memory map puts mtimecmp at 0x0200_4000 and mtime at
// 0x0200_BFF8, the layout a standard RISC-V CLINT uses). It holds no
// state of its own and defers every read/write to TimerSource so the
// CSR shadow path and the MMIO path can never diverge.
type MachineTimer struct {
	timer        TimerSource
	mtimeBase    uint32
	mtimecmpBase uint32
}

// NewMachineTimer constructs a mirror over src, mapping mtime at
// mtimeBase..mtimeBase+8 and mtimecmp at mtimecmpBase..mtimecmpBase+8.
func NewMachineTimer(src TimerSource, mtimeBase, mtimecmpBase uint32) *MachineTimer {
	return &MachineTimer{timer: src, mtimeBase: mtimeBase, mtimecmpBase: mtimecmpBase}
}

// MachineTimer has no Base/End of its own; mtime and mtimecmp are
// rarely adjacent in a real memory map, so it is registered with the
// bus as two views instead of one contiguous range (see
// MTimeView/MTimecmpView below).

// MTimeView adapts the mtime half of a MachineTimer to the
// memory.Peripheral contract.
type MTimeView struct{ t *MachineTimer }

func (m *MachineTimer) MTimeView() MTimeView { return MTimeView{t: m} }

func (v MTimeView) Base() uint32 { return v.t.mtimeBase }
func (v MTimeView) End() uint32  { return v.t.mtimeBase + 8 }

func (v MTimeView) Read32(addr uint32) uint32 {
	if addr-v.t.mtimeBase == 4 {
		return v.t.timer.ReadMtimeHi()
	}
	return v.t.timer.ReadMtimeLo()
}

func (v MTimeView) Write32(addr uint32, value uint32) {
	if addr-v.t.mtimeBase == 4 {
		v.t.timer.WriteMtimeHi(value)
		return
	}
	v.t.timer.WriteMtimeLo(value)
}

// MTimecmpView adapts the mtimecmp half.
type MTimecmpView struct{ t *MachineTimer }

func (m *MachineTimer) MTimecmpView() MTimecmpView { return MTimecmpView{t: m} }

func (v MTimecmpView) Base() uint32 { return v.t.mtimecmpBase }
func (v MTimecmpView) End() uint32  { return v.t.mtimecmpBase + 8 }

func (v MTimecmpView) Read32(addr uint32) uint32 {
	if addr-v.t.mtimecmpBase == 4 {
		return v.t.timer.ReadMtimecmpHi()
	}
	return v.t.timer.ReadMtimecmpLo()
}

func (v MTimecmpView) Write32(addr uint32, value uint32) {
	if addr-v.t.mtimecmpBase == 4 {
		v.t.timer.WriteMtimecmpHi(value)
		return
	}
	v.t.timer.WriteMtimecmpLo(value)
}
