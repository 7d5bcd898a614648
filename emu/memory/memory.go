/*
 * rv32ima - Flat byte-addressable RAM plus MMIO dispatch
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

// Package memory implements the byte-addressable RAM and word-granular
// MMIO bus that the CPU fetches instructions and operands through.
package memory

import "fmt"

// Padding appended after the backing array so that an aligned word
// access at the last legal address never runs off the slice.
const tailPad = 4

// AccessError is raised for out-of-bounds RAM access or a C-string scan
// that runs past MaxLen without finding a NUL terminator.
type AccessError struct {
	Addr uint32
	Op   string // "load-byte", "load-half", "load-word", "store-byte", ...
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("memory: %s at 0x%08x out of bounds", e.Op, e.Addr)
}

// Peripheral is the word-granular MMIO device contract. Memory dispatches
// any word access whose address falls in [Base, End) to the matching
// peripheral; byte/half access to such a range is not supported (callers
// must not issue one — see Memory.LoadByte/LoadHalf).
type Peripheral interface {
	Base() uint32
	End() uint32
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}

// Ticker is implemented by peripherals that want to run logic once per
// retired instruction (e.g. a UART polling its backing connection).
type Ticker interface {
	Tick()
}

type peripheralEntry struct {
	base uint32
	end  uint32
	dev  Peripheral
}

// Memory is the RAM + MMIO bus owned by a single Machine. It is not safe
// for concurrent use; one hart, one Memory.
type Memory struct {
	base        uint32 // base_addr: where RAM is mapped in the address space
	size        uint32
	bytes       []byte
	peripherals []peripheralEntry

	// Reservation for LR.W/SC.W, tracked here because it is addressed
	// against physical RAM addresses, same coordinate space as loads
	// and stores.
	reservationValid bool
	reservationAddr  uint32
}

// New allocates size bytes of RAM mapped starting at base.
func New(base, size uint32) *Memory {
	return &Memory{
		base:  base,
		size:  size,
		bytes: make([]byte, size+tailPad),
	}
}

// Size returns the RAM size in bytes (not counting MMIO ranges or the
// trailing pad).
func (m *Memory) Size() uint32 { return m.size }

// Base returns the address at which RAM is mapped.
func (m *Memory) Base() uint32 { return m.base }

// RegisterPeripheral adds p's [Base,End) range to the MMIO dispatch
// table. Ranges are linear-scanned on each word access; this module
// targets a handful of peripherals, not a full address-space simulator,
// so a sorted or interval-tree lookup is not warranted.
func (m *Memory) RegisterPeripheral(p Peripheral) {
	m.peripherals = append(m.peripherals, peripheralEntry{base: p.Base(), end: p.End(), dev: p})
}

// TickPeripherals calls Tick on every registered peripheral that
// implements Ticker, in registration order.
func (m *Memory) TickPeripherals() {
	for _, e := range m.peripherals {
		if t, ok := e.dev.(Ticker); ok {
			t.Tick()
		}
	}
}

func (m *Memory) peripheralFor(addr uint32) Peripheral {
	for _, e := range m.peripherals {
		if addr >= e.base && addr < e.end {
			return e.dev
		}
	}
	return nil
}

func (m *Memory) inRAM(addr uint32, width uint32) bool {
	if addr < m.base {
		return false
	}
	off := addr - m.base
	return off+width <= m.size
}

// ClearReservation invalidates the LR/SC reservation. Called after any
// non-atomic store, any completed SC.W, and may be called on trap entry.
func (m *Memory) ClearReservation() {
	m.reservationValid = false
}

// SetReservation records addr as the outstanding LR.W reservation.
func (m *Memory) SetReservation(addr uint32) {
	m.reservationValid = true
	m.reservationAddr = addr
}

// CheckReservation reports whether addr matches a still-valid
// reservation. It does not clear the reservation; the caller (SC.W)
// clears it unconditionally after checking.
func (m *Memory) CheckReservation(addr uint32) bool {
	return m.reservationValid && m.reservationAddr == addr
}

// LoadByte reads one byte from RAM. MMIO ranges do not support byte
// access; callers must route MMIO through LoadWord.
func (m *Memory) LoadByte(addr uint32, signed bool) (int32, error) {
	if !m.inRAM(addr, 1) {
		return 0, &AccessError{Addr: addr, Op: "load-byte"}
	}
	b := m.bytes[addr-m.base]
	if signed {
		return int32(int8(b)), nil
	}
	return int32(b), nil
}

// StoreByte writes one byte to RAM and clears the LR/SC reservation.
func (m *Memory) StoreByte(addr uint32, value uint8) error {
	if !m.inRAM(addr, 1) {
		return &AccessError{Addr: addr, Op: "store-byte"}
	}
	m.bytes[addr-m.base] = value
	m.ClearReservation()
	return nil
}

// LoadHalf reads a 16-bit little-endian half-word from RAM.
func (m *Memory) LoadHalf(addr uint32, signed bool) (int32, error) {
	if !m.inRAM(addr, 2) {
		return 0, &AccessError{Addr: addr, Op: "load-half"}
	}
	off := addr - m.base
	v := uint16(m.bytes[off]) | uint16(m.bytes[off+1])<<8
	if signed {
		return int32(int16(v)), nil
	}
	return int32(v), nil
}

// StoreHalf writes a 16-bit little-endian half-word to RAM and clears
// the LR/SC reservation.
func (m *Memory) StoreHalf(addr uint32, value uint16) error {
	if !m.inRAM(addr, 2) {
		return &AccessError{Addr: addr, Op: "store-half"}
	}
	off := addr - m.base
	m.bytes[off] = byte(value)
	m.bytes[off+1] = byte(value >> 8)
	m.ClearReservation()
	return nil
}

// LoadWord reads a 32-bit little-endian word. If addr falls inside a
// registered MMIO range, the read is delegated to that peripheral;
// otherwise it comes from RAM. RV32I permits misaligned word access in
// this simulator, so aligned and unaligned addresses share one path.
func (m *Memory) LoadWord(addr uint32) (uint32, error) {
	if p := m.peripheralFor(addr); p != nil {
		return p.Read32(addr), nil
	}
	if !m.inRAM(addr, 4) {
		return 0, &AccessError{Addr: addr, Op: "load-word"}
	}
	off := addr - m.base
	return uint32(m.bytes[off]) | uint32(m.bytes[off+1])<<8 |
		uint32(m.bytes[off+2])<<16 | uint32(m.bytes[off+3])<<24, nil
}

// StoreWord writes a 32-bit little-endian word, delegating to MMIO when
// applicable, and clears the LR/SC reservation for a non-MMIO store.
func (m *Memory) StoreWord(addr uint32, value uint32) error {
	if p := m.peripheralFor(addr); p != nil {
		p.Write32(addr, value)
		return nil
	}
	if !m.inRAM(addr, 4) {
		return &AccessError{Addr: addr, Op: "store-word"}
	}
	off := addr - m.base
	m.bytes[off] = byte(value)
	m.bytes[off+1] = byte(value >> 8)
	m.bytes[off+2] = byte(value >> 16)
	m.bytes[off+3] = byte(value >> 24)
	m.ClearReservation()
	return nil
}

// LoadBinary copies n bytes starting at addr out of RAM. Used by the
// loader and by peripherals (e.g. the block device) performing DMA.
func (m *Memory) LoadBinary(addr uint32, n int) ([]byte, error) {
	if !m.inRAM(addr, uint32(n)) {
		return nil, &AccessError{Addr: addr, Op: "load-binary"}
	}
	off := addr - m.base
	out := make([]byte, n)
	copy(out, m.bytes[off:off+uint32(n)])
	return out, nil
}

// StoreBinary copies data into RAM starting at addr.
func (m *Memory) StoreBinary(addr uint32, data []byte) error {
	if !m.inRAM(addr, uint32(len(data))) {
		return &AccessError{Addr: addr, Op: "store-binary"}
	}
	off := addr - m.base
	copy(m.bytes[off:off+uint32(len(data))], data)
	m.ClearReservation()
	return nil
}

// LoadCString reads a NUL-terminated string starting at addr, scanning
// at most maxLen bytes. If no NUL is found within maxLen, it raises
// AccessError rather than returning a truncated string.
func (m *Memory) LoadCString(addr uint32, maxLen int) (string, error) {
	for i := 0; i < maxLen; i++ {
		b, err := m.LoadByte(addr+uint32(i), false)
		if err != nil {
			return "", err
		}
		if b == 0 {
			buf, _ := m.LoadBinary(addr, i)
			return string(buf), nil
		}
	}
	return "", &AccessError{Addr: addr, Op: "load-cstring"}
}
