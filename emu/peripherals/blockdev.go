/*
 * rv32ima - block device peripheral (DMA to/from guest RAM)
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

import "io"

// BlockDevice register offsets from its base.
const (
	regCMD    = 0x0  // 0 = read block into RAM, 1 = write block from RAM
	regBLK    = 0x4  // logical block number
	regPTR    = 0x8  // guest RAM address for the DMA transfer
	regCTRL   = 0xC  // writing 1 latches CMD/BLK/PTR and executes synchronously
	regSTATUS = 0x10 // 1 = ready; since every operation is synchronous this
	// is also the idle value, it never reads back 0 from a Read32 call
)

const (
	cmdRead  = 0
	cmdWrite = 1

	blockSize = 512

	statusReady = 1 << 0
	// statusError is set in addition to statusReady after a failed
	// operation — the device is still idle and ready for the next
	// command, but the caller should check this bit too. Not part of
	// the MMIO table's literal bit, an additive diagnostic signal.
	statusError = 1 << 1
)

// ramDMA is the subset of *memory.Memory the block device needs; kept
// as an interface so unit tests can fake it without a real Memory.
type ramDMA interface {
	LoadBinary(addr uint32, n int) ([]byte, error)
	StoreBinary(addr uint32, data []byte) error
}

// BlockDevice is a synchronous DMA-capable block store mapped at
// base..base+0x14, backed by an io.ReaderAt/io.WriterAt (an os.File or
// an in-memory image for tests). Operations complete within the same
// Write32 call that triggers them; there is no asynchronous completion
// interrupt, matching the core's single-hart, no-blocking-in-core
// design note.
type BlockDevice struct {
	base  uint32
	media io.ReaderAt
	wmedia io.WriterAt
	mem   ramDMA

	cmd, blk, ptr uint32
	status        uint32
}

// NewBlockDevice constructs a BlockDevice at base, backed by media for
// reads and wmedia for writes (the same value, cast twice, for a
// read-write backing file), performing DMA against mem.
func NewBlockDevice(base uint32, media io.ReaderAt, wmedia io.WriterAt, mem ramDMA) *BlockDevice {
	return &BlockDevice{base: base, media: media, wmedia: wmedia, mem: mem, status: statusReady}
}

func (b *BlockDevice) Base() uint32 { return b.base }
func (b *BlockDevice) End() uint32  { return b.base + 0x14 }

func (b *BlockDevice) Read32(addr uint32) uint32 {
	switch addr - b.base {
	case regCMD:
		return b.cmd
	case regBLK:
		return b.blk
	case regPTR:
		return b.ptr
	case regSTATUS:
		return b.status
	default:
		return 0
	}
}

func (b *BlockDevice) Write32(addr uint32, value uint32) {
	switch addr - b.base {
	case regCMD:
		b.cmd = value
	case regBLK:
		b.blk = value
	case regPTR:
		b.ptr = value
	case regCTRL:
		if value&1 != 0 {
			b.execute()
		}
	}
}

func (b *BlockDevice) execute() {
	off := int64(b.blk) * blockSize
	switch b.cmd {
	case cmdRead:
		buf := make([]byte, blockSize)
		n, err := b.media.ReadAt(buf, off)
		if err != nil && err != io.EOF {
			b.status = statusReady | statusError
			return
		}
		if serr := b.mem.StoreBinary(b.ptr, buf[:n]); serr != nil {
			b.status = statusReady | statusError
			return
		}
		b.status = statusReady
	case cmdWrite:
		buf, err := b.mem.LoadBinary(b.ptr, blockSize)
		if err != nil {
			b.status = statusReady | statusError
			return
		}
		if b.wmedia == nil {
			b.status = statusReady | statusError
			return
		}
		if _, werr := b.wmedia.WriteAt(buf, off); werr != nil {
			b.status = statusReady | statusError
			return
		}
		b.status = statusReady
	default:
		b.status = statusReady | statusError
	}
}
