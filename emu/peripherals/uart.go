/*
 * rv32ima - UART peripheral, stdin/stdout bridged
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

// Package peripherals implements the concrete MMIO devices the core
// deliberately keeps outside its own engineering budget: a UART, a
// block device, and a machine-timer MMIO mirror.
package peripherals

import "io"

// RXEmpty is returned by a read of RX when no input byte is buffered.
const RXEmpty = 0x80000000

// UART register offsets from its base.
const (
	regTX = 0x0
	regRX = 0x4
)

// rxBacklog bounds how many unread input bytes queue up behind the
// guest; once that many are queued, the reader goroutine blocks until
// the guest reads RX again.
const rxBacklog = 256

// UART is a single-byte-at-a-time serial console mapped at
// base..base+8: TX at +0 (write sends a byte, read returns 0), RX at
// +4 (read returns the next buffered byte in its low 8 bits, or
// RXEmpty when none is buffered). Modeled on SerialTTY's in/out
// register pair; the network connection is replaced by a background
// goroutine reading from in (typically os.Stdin) so that Tick, called
// once per retired instruction, never blocks the core regardless of
// what in actually is.
type UART struct {
	rx  chan byte
	out io.Writer

	base uint32

	rxByte  uint32
	rxReady bool

	// NotifyRX, if set, is called whenever a byte becomes available in
	// rxByte — the hook a Machine uses to call AssertExternalInterrupt
	// on the CPU when the guest has opted into UART-driven interrupts.
	NotifyRX func()
}

// NewUART constructs a UART at base, reading from in on a background
// goroutine and writing to out synchronously. The reader goroutine
// exits when in returns an error (EOF on a finite test fixture, a
// closed stdin on shutdown).
func NewUART(base uint32, in io.Reader, out io.Writer) *UART {
	u := &UART{base: base, out: out, rx: make(chan byte, rxBacklog)}
	go u.readLoop(in)
	return u
}

func (u *UART) readLoop(in io.Reader) {
	var b [1]byte
	for {
		n, err := in.Read(b[:])
		if n > 0 {
			u.rx <- b[0]
		}
		if err != nil {
			return
		}
	}
}

func (u *UART) Base() uint32 { return u.base }
func (u *UART) End() uint32  { return u.base + 0x8 }

// Read32 implements memory.Peripheral.
func (u *UART) Read32(addr uint32) uint32 {
	switch addr - u.base {
	case regRX:
		if u.rxReady {
			u.rxReady = false
			return u.rxByte
		}
		return RXEmpty
	default: // regTX
		return 0
	}
}

// Write32 implements memory.Peripheral. A write to TX sends one byte
// immediately; the device has no internal transmit buffering.
func (u *UART) Write32(addr uint32, value uint32) {
	if addr-u.base == regTX {
		u.out.Write([]byte{byte(value)})
	}
}

// Tick implements memory.Ticker: it drains at most one byte from the
// background reader into the RX register, per instruction retired,
// never blocking even when in has no data ready.
func (u *UART) Tick() {
	if u.rxReady {
		return
	}
	select {
	case b := <-u.rx:
		u.rxByte = uint32(b)
		u.rxReady = true
		if u.NotifyRX != nil {
			u.NotifyRX()
		}
	default:
	}
}
