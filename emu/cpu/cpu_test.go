package cpu

/*
 * rv32ima - CPU unit tests
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

import (
	"testing"

	"github.com/ccattuto/rv32ima/emu/memory"
)

func newTestCPU(ramSize uint32) *CPU {
	m := memory.New(0, ramSize)
	return New(m)
}

func step32(t *testing.T, c *CPU, inst uint32) error {
	t.Helper()
	err := c.Execute32(inst)
	c.PC = c.NextPC
	return err
}

// --- universal invariants ---

func TestZeroRegisterAlwaysZero(t *testing.T) {
	c := newTestCPU(64)
	// addi x0, x0, 5 — attempted write to x0 must be discarded.
	inst := uint32(0x00500013) // addi x0, x0, 5 encoding: imm=5, rs1=0, funct3=0, rd=0, opcode=0x13
	if err := step32(t, c, inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.X[0] != 0 {
		t.Errorf("x0 = %d, want 0", c.X[0])
	}
}

func TestReadOnlyCSRWriteTraps(t *testing.T) {
	c := newTestCPU(64)
	c.CSR[csrMtvec] = 0x1000 // install a handler so trap() doesn't go fatal
	before := c.CSR[csrMhartid]
	// csrrw x1, mhartid, x2  (addr=0xF14, funct3=001, rs1=2, rd=1)
	inst := encodeI(0xF14, 2, 0b001, 1, opSystem)
	err := step32(t, c, inst)
	if err != nil {
		t.Fatalf("trap on read-only CSR should be handled internally, not returned: %v", err)
	}
	if c.CSR[csrMcause] != causeIllegalInst {
		t.Errorf("mcause = %d, want %d", c.CSR[csrMcause], causeIllegalInst)
	}
	if c.CSR[csrMhartid] != before {
		t.Errorf("mhartid changed: got %d want %d", c.CSR[csrMhartid], before)
	}
}

func TestReservationClearedAfterStoreAndSC(t *testing.T) {
	c := newTestCPU(64)
	c.Mem.SetReservation(0)
	_ = c.Mem.StoreWord(16, 0)
	if c.Mem.CheckReservation(0) {
		t.Error("non-atomic store must clear the reservation")
	}

	// sc.w x3, x0, (x0): funct5=00011, funct3=010
	c.Mem.SetReservation(0)
	sc := (uint32(amoFunct5SC) << 27) | (0 << 20) | (0 << 15) | (0b010 << 12) | (3 << 7) | opAmo
	if err := step32(t, c, sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mem.CheckReservation(0) {
		t.Error("completed SC.W must clear the reservation")
	}
}

func TestMtimeHalfWriteDiscipline(t *testing.T) {
	c := newTestCPU(64)
	c.WriteMtimeLo(0x1234)
	if c.Mtime() != 0 {
		t.Errorf("mtime changed after writing only the low half: got %d", c.Mtime())
	}
	c.WriteMtimeHi(0x0)
	if c.Mtime() != 0x1234 {
		t.Errorf("mtime = 0x%x, want 0x1234 after both halves written", c.Mtime())
	}
}

func TestMtimecmpHalfWriteDiscipline(t *testing.T) {
	c := newTestCPU(64)
	c.WriteMtimecmpHi(0x1)
	if c.Mtimecmp() != 0 {
		t.Errorf("mtimecmp changed after writing only the high half")
	}
	c.WriteMtimecmpLo(0x2)
	want := uint64(1)<<32 | 2
	if c.Mtimecmp() != want {
		t.Errorf("mtimecmp = 0x%x, want 0x%x", c.Mtimecmp(), want)
	}
}

func TestMRETTransitions(t *testing.T) {
	c := newTestCPU(64)
	c.CSR[csrMstatus] = setBit(0, mstatusMPIEBit, true)
	c.CSR[csrMepc] = 0x100
	err := step32(t, c, instMRET)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mstatus := c.CSR[csrMstatus]
	if mstatus&(1<<mstatusMIEBit) == 0 {
		t.Error("MIE should be set from MPIE")
	}
	if mstatus&(1<<mstatusMPIEBit) == 0 {
		t.Error("MPIE should be forced to 1")
	}
	if c.PC != 0x100 {
		t.Errorf("pc = 0x%x, want 0x100", c.PC)
	}
}

// --- algebraic / round-trip laws ---

func TestSignExtensionLawLBAfterSB(t *testing.T) {
	c := newTestCPU(64)
	// addi x1, x0, -1
	_ = step32(t, c, encodeI(0xFFF, 0, 0b000, 1, opImm))
	// sb x1, 0(x0)
	_ = step32(t, c, encodeS(0, 1, 0, 0b000, opStore))
	// lb x2, 0(x0)
	_ = step32(t, c, encodeI(0, 0, 0b000, 2, opLoad))
	if int32(c.X[2]) != -1 {
		t.Errorf("LB after SB of -1 got %d, want -1", int32(c.X[2]))
	}
	// lbu x3, 0(x0)
	_ = step32(t, c, encodeI(0, 0, 0b100, 3, opLoad))
	if c.X[3] != 0xFF {
		t.Errorf("LBU after SB of -1 got 0x%x, want 0xff", c.X[3])
	}
}

func TestAMOAddLinearizability(t *testing.T) {
	c := newTestCPU(64)
	_ = c.Mem.StoreWord(0, 10)
	// base register is x0 (address 0); x2 = 5
	c.X[2] = 5
	// amoadd.w x3, x2, (x0): funct5=00000, funct3=010
	inst := (uint32(amoFunct5ADD) << 27) | (2 << 20) | (0 << 15) | (0b010 << 12) | (3 << 7) | opAmo
	if err := step32(t, c, inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.X[3] != 10 {
		t.Errorf("rd (old value) = %d, want 10", c.X[3])
	}
	v, _ := c.Mem.LoadWord(0)
	if v != 15 {
		t.Errorf("mem after amoadd = %d, want 15", v)
	}
}

func TestDivisionLawTruncating(t *testing.T) {
	cases := []struct{ a, b int32 }{
		{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {1, 3},
	}
	for _, tc := range cases {
		q := sdiv(tc.a, tc.b)
		r := srem(tc.a, tc.b)
		if tc.a != q*tc.b+r {
			t.Errorf("division law broken for a=%d b=%d: q=%d r=%d", tc.a, tc.b, q, r)
		}
	}
}

// --- literal end-to-end scenarios from spec.md §8 ---

func TestScenario3AMOReservation(t *testing.T) {
	c := newTestCPU(64)
	sp := uint32(0)
	c.X[2] = sp // sp register
	c.X[10] = 0 // a0
	c.X[11] = 0 // a1
	c.X[5] = 0  // t0

	// lr.w a0, (sp)
	lr := (uint32(amoFunct5LR) << 27) | (0 << 20) | (2 << 15) | (0b010 << 12) | (10 << 7) | opAmo
	if err := step32(t, c, lr); err != nil {
		t.Fatalf("lr.w: %v", err)
	}
	// sw x0, 0(sp)
	sw := encodeS(0, 0, 2, 0b010, opStore)
	if err := step32(t, c, sw); err != nil {
		t.Fatalf("sw: %v", err)
	}
	// sc.w a1, t0, (sp)
	sc := (uint32(amoFunct5SC) << 27) | (5 << 20) | (2 << 15) | (0b010 << 12) | (11 << 7) | opAmo
	if err := step32(t, c, sc); err != nil {
		t.Fatalf("sc.w: %v", err)
	}
	if c.X[11] != 1 {
		t.Errorf("a1 = %d, want 1 (sc.w must fail after intervening store)", c.X[11])
	}
}

func TestScenario4TimerInterrupt(t *testing.T) {
	c := newTestCPU(64)
	c.CSR[csrMstatus] = setBit(0, mstatusMIEBit, true)
	c.CSR[csrMie] = 1 << mieMTIEBit
	c.CSR[csrMtvec] = 0x2000
	c.WriteMtimeLo(0)
	c.WriteMtimeHi(0)
	c.WriteMtimecmpLo(3)
	c.WriteMtimecmpHi(0)

	c.PC = 0x40
	c.NextPC = 0x44
	var err error
	for i := 0; i < 3; i++ {
		err = c.TimerTick()
		if err == nil {
			c.PC = c.NextPC
		}
	}
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if c.CSR[csrMcause] != causeMachineTimerIRQ {
		t.Errorf("mcause = 0x%x, want 0x%x", c.CSR[csrMcause], causeMachineTimerIRQ)
	}
	if c.CSR[csrMepc] != 0x44 {
		t.Errorf("mepc = 0x%x, want 0x44 (next_pc at the triggering tick)", c.CSR[csrMepc])
	}
	mstatus := c.CSR[csrMstatus]
	if mstatus&(1<<mstatusMIEBit) != 0 {
		t.Error("MIE should be cleared after trap entry")
	}
	if mstatus&(1<<mstatusMPIEBit) == 0 {
		t.Error("MPIE should hold the prior MIE value (1)")
	}
}

func TestScenario5RVCDisabledAlignment(t *testing.T) {
	c := newTestCPU(256)
	c.CSR[csrMtvec] = 0x4000
	c.SetRVCEnabled(false)
	c.X[5] = 0 // t0, chosen so t0+2 is 2-byte- but not 4-byte-aligned
	c.PC = 0x80

	// jalr x0, 2(t0)
	jalr := encodeI(2, 5, 0b000, 0, opJalr)
	if err := step32(t, c, jalr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CSR[csrMcause] != causeInstAddrMisaligned {
		t.Errorf("mcause = %d, want %d", c.CSR[csrMcause], causeInstAddrMisaligned)
	}
	if c.CSR[csrMtval] != 2 {
		t.Errorf("mtval = %d, want 2", c.CSR[csrMtval])
	}

	c.PC = 0x80
	c.CSR[csrMcause] = 0xDEAD
	c.SetRVCEnabled(true)
	if err := step32(t, c, jalr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CSR[csrMcause] == causeInstAddrMisaligned {
		t.Error("expected no trap once RVC (and 2-byte alignment) is enabled")
	}
	if c.PC != 2 {
		t.Errorf("pc = %d, want 2", c.PC)
	}
}

func TestScenario6SignedDivisionCorner(t *testing.T) {
	a := uint32(0x80000000)
	b := uint32(0xFFFFFFFF)
	if q := sdiv(int32(a), int32(b)); uint32(q) != 0x80000000 {
		t.Errorf("DIV(INT_MIN,-1) = 0x%x, want 0x80000000", uint32(q))
	}
	if r := srem(int32(a), int32(b)); r != 0 {
		t.Errorf("REM(INT_MIN,-1) = %d, want 0", r)
	}
	if q := sdiv(int32(a), 0); uint32(q) != 0xFFFFFFFF {
		t.Errorf("DIV(x,0) = 0x%x, want 0xffffffff", uint32(q))
	}
	if r := srem(int32(a), 0); uint32(r) != a {
		t.Errorf("REM(x,0) = 0x%x, want 0x%x", uint32(r), a)
	}
}

func TestDecodeCacheCoherence(t *testing.T) {
	c := newTestCPU(64)
	inst := encodeI(5, 1, 0b000, 2, opImm)
	first := c.decode32(inst)
	second := c.decode32(inst)
	if first != second {
		t.Errorf("cached decode %+v differs from second decode %+v", first, second)
	}
	fresh := &CPU{cache32: make(map[uint32]decoded32)}
	refetch := fresh.decode32(inst)
	if refetch != first {
		t.Errorf("re-decoding from scratch %+v differs from the cached value %+v", refetch, first)
	}
}

// --- small local encoder helpers, mirroring the standard RV32 field layout ---

func encodeI(imm uint32, rs1, funct3, rd, opcode uint32) uint32 {
	return ((imm & 0xFFF) << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeS(imm uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	hi := (imm >> 5) & 0x7F
	lo := imm & 0x1F
	return (hi << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (lo << 7) | opcode
}
