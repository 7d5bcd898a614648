package asmtest

/*
 * rv32ima - encoder self-checks
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

	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/emu/memory"
)

func newCPU() *cpu.CPU {
	return cpu.New(memory.New(0, 64))
}

func TestADDIExecutesAsExpected(t *testing.T) {
	c := newCPU()
	if err := c.Execute32(ADDI(5, 0, -3)); err != nil {
		t.Fatal(err)
	}
	if got := int32(c.X[5]); got != -3 {
		t.Errorf("x5 = %d, want -3", got)
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	c := newCPU()
	c.X[1] = 10
	c.X[2] = 3
	if err := c.Execute32(ADD(3, 1, 2)); err != nil {
		t.Fatal(err)
	}
	if c.X[3] != 13 {
		t.Errorf("x3 = %d, want 13", c.X[3])
	}
	if err := c.Execute32(SUB(4, 1, 2)); err != nil {
		t.Fatal(err)
	}
	if c.X[4] != 7 {
		t.Errorf("x4 = %d, want 7", c.X[4])
	}
}

func TestMulDivRoundTrip(t *testing.T) {
	c := newCPU()
	c.X[1] = 6
	c.X[2] = 7
	if err := c.Execute32(MUL(3, 1, 2)); err != nil {
		t.Fatal(err)
	}
	if c.X[3] != 42 {
		t.Errorf("x3 = %d, want 42", c.X[3])
	}
	if err := c.Execute32(DIVU(4, 3, 2)); err != nil {
		t.Fatal(err)
	}
	if c.X[4] != 6 {
		t.Errorf("x4 = %d, want 6", c.X[4])
	}
}

func TestLoadStoreWordRoundTrip(t *testing.T) {
	c := newCPU()
	c.X[1] = 0xCAFEBABE
	c.X[2] = 16
	if err := c.Execute32(SW(2, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := c.Execute32(LW(3, 2, 0)); err != nil {
		t.Fatal(err)
	}
	if c.X[3] != 0xCAFEBABE {
		t.Errorf("x3 = %#x, want 0xcafebabe", c.X[3])
	}
}

func TestBranchTakenAdvancesNextPCByOffset(t *testing.T) {
	c := newCPU()
	c.X[1] = 5
	c.X[2] = 5
	if err := c.Execute32(BEQ(1, 2, 8)); err != nil {
		t.Fatal(err)
	}
	if c.NextPC != 8 {
		t.Errorf("NextPC = %#x, want 8", c.NextPC)
	}
}

func TestLuiAuipcRoundTrip(t *testing.T) {
	c := newCPU()
	if err := c.Execute32(LUI(1, 0x12345000)); err != nil {
		t.Fatal(err)
	}
	if c.X[1] != 0x12345000 {
		t.Errorf("x1 = %#x, want 0x12345000", c.X[1])
	}
	c.PC = 0x100
	if err := c.Execute32(AUIPC(2, 0x1000)); err != nil {
		t.Fatal(err)
	}
	if c.X[2] != 0x1100 {
		t.Errorf("x2 = %#x, want 0x1100", c.X[2])
	}
}

func TestLRSCRoundTrip(t *testing.T) {
	c := newCPU()
	c.X[1] = 32
	c.X[2] = 99
	if err := c.Execute32(LRW(3, 1, false, false)); err != nil {
		t.Fatal(err)
	}
	if err := c.Execute32(SCW(4, 1, 2, false, false)); err != nil {
		t.Fatal(err)
	}
	if c.X[4] != 0 {
		t.Errorf("sc.w result = %d, want 0 (success)", c.X[4])
	}
	if c.X[3] != 0 {
		t.Errorf("lr.w loaded %d, want 0", c.X[3])
	}
}

func TestCompressedLiAndAddi(t *testing.T) {
	c := newCPU()
	c.SetRVCEnabled(true)
	if err := c.Execute16(CLI(10, 7)); err != nil {
		t.Fatal(err)
	}
	if c.X[10] != 7 {
		t.Errorf("a0 = %d, want 7", c.X[10])
	}
	if err := c.Execute16(CADDI(10, -2)); err != nil {
		t.Fatal(err)
	}
	if c.X[10] != 5 {
		t.Errorf("a0 = %d, want 5", c.X[10])
	}
}

func TestCompressedMvAndEbreak(t *testing.T) {
	c := newCPU()
	c.SetRVCEnabled(true)
	c.X[11] = 42
	if err := c.Execute16(CMV(10, 11)); err != nil {
		t.Fatal(err)
	}
	if c.X[10] != 42 {
		t.Errorf("a0 = %d, want 42", c.X[10])
	}
	if err := c.Execute16(CEBREAK()); err == nil {
		t.Error("expected ebreak with no mtvec installed to report an error")
	}
}

func TestCompressedStackPointerLoadStore(t *testing.T) {
	c := newCPU()
	c.SetRVCEnabled(true)
	c.X[2] = 0 // sp
	c.X[10] = 0x1234

	if err := c.Execute16(CSWSP(10, 4)); err != nil {
		t.Fatal(err)
	}
	if err := c.Execute16(CLWSP(11, 4)); err != nil {
		t.Fatal(err)
	}
	if c.X[11] != 0x1234 {
		t.Errorf("a1 = %#x, want 0x1234", c.X[11])
	}
}
