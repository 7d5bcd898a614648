package memory

/*
 * rv32ima - Memory unit tests
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

import "testing"

type fakePeripheral struct {
	base, end uint32
	last      uint32
	reg       uint32
}

func (f *fakePeripheral) Base() uint32 { return f.base }
func (f *fakePeripheral) End() uint32  { return f.end }
func (f *fakePeripheral) Read32(addr uint32) uint32 {
	f.last = addr
	return f.reg
}
func (f *fakePeripheral) Write32(addr uint32, value uint32) {
	f.last = addr
	f.reg = value
}

func TestByteSignExtension(t *testing.T) {
	m := New(0, 16)
	if err := m.StoreByte(0, 0xFF); err != nil {
		t.Fatalf("StoreByte: %v", err)
	}
	signed, err := m.LoadByte(0, true)
	if err != nil || signed != -1 {
		t.Errorf("signed load got %d, %v want -1, nil", signed, err)
	}
	unsigned, err := m.LoadByte(0, false)
	if err != nil || unsigned != 0xFF {
		t.Errorf("unsigned load got %d, %v want 255, nil", unsigned, err)
	}
}

func TestHalfSignExtension(t *testing.T) {
	m := New(0, 16)
	_ = m.StoreHalf(0, 0x8000)
	signed, _ := m.LoadHalf(0, true)
	if signed != -32768 {
		t.Errorf("signed half got %d want -32768", signed)
	}
	unsigned, _ := m.LoadHalf(0, false)
	if unsigned != 0x8000 {
		t.Errorf("unsigned half got %d want 32768", unsigned)
	}
}

func TestWordAlignedAndUnaligned(t *testing.T) {
	m := New(0, 16)
	if err := m.StoreWord(4, 0xDEADBEEF); err != nil {
		t.Fatalf("aligned store: %v", err)
	}
	v, err := m.LoadWord(4)
	if err != nil || v != 0xDEADBEEF {
		t.Errorf("aligned load got 0x%08x, %v", v, err)
	}

	if err := m.StoreByte(9, 0xEF); err != nil {
		t.Fatal(err)
	}
	_ = m.StoreByte(10, 0xBE)
	_ = m.StoreByte(11, 0xAD)
	_ = m.StoreByte(12, 0xDE)
	v, err = m.LoadWord(9)
	if err != nil || v != 0xDEADBEEF {
		t.Errorf("unaligned load got 0x%08x, %v", v, err)
	}
}

func TestOutOfBoundsErrors(t *testing.T) {
	m := New(0, 8)
	if _, err := m.LoadWord(8); err == nil {
		t.Error("expected AccessError for word load past end")
	}
	if _, err := m.LoadByte(1000, false); err == nil {
		t.Error("expected AccessError for byte load far out of bounds")
	}
}

func TestBaseAddrOffset(t *testing.T) {
	m := New(0x80000000, 16)
	if err := m.StoreWord(0x80000000, 1); err != nil {
		t.Fatalf("store at base: %v", err)
	}
	if _, err := m.LoadWord(0); err == nil {
		t.Error("address below base must fault")
	}
}

func TestCStringRoundTrip(t *testing.T) {
	m := New(0, 64)
	msg := "hello"
	_ = m.StoreBinary(0, append([]byte(msg), 0))
	s, err := m.LoadCString(0, 32)
	if err != nil || s != msg {
		t.Errorf("got %q, %v want %q, nil", s, err, msg)
	}
}

func TestCStringOverrunFaults(t *testing.T) {
	m := New(0, 64)
	_ = m.StoreBinary(0, []byte("no nul terminator here......."))
	if _, err := m.LoadCString(0, 8); err == nil {
		t.Error("expected AccessError when NUL is not found within maxLen")
	}
}

func TestMMIOWordDispatch(t *testing.T) {
	m := New(0, 16)
	p := &fakePeripheral{base: 0x1000, end: 0x1010, reg: 0x55AA}
	m.RegisterPeripheral(p)

	v, err := m.LoadWord(0x1004)
	if err != nil || v != 0x55AA {
		t.Errorf("MMIO load got 0x%x, %v", v, err)
	}
	if err := m.StoreWord(0x1008, 42); err != nil {
		t.Fatal(err)
	}
	if p.reg != 42 {
		t.Errorf("MMIO write did not reach peripheral, got %d", p.reg)
	}
}

func TestReservationClearedByStore(t *testing.T) {
	m := New(0, 16)
	m.SetReservation(4)
	if !m.CheckReservation(4) {
		t.Fatal("reservation should be valid")
	}
	_ = m.StoreWord(8, 0)
	if m.CheckReservation(4) {
		t.Error("a non-atomic store anywhere must clear the reservation")
	}
}

func TestReservationClearedByHalfAndByteStore(t *testing.T) {
	m := New(0, 16)
	m.SetReservation(4)
	_ = m.StoreByte(0, 1)
	if m.CheckReservation(4) {
		t.Error("store byte must clear reservation")
	}
	m.SetReservation(4)
	_ = m.StoreHalf(0, 1)
	if m.CheckReservation(4) {
		t.Error("store half must clear reservation")
	}
}
