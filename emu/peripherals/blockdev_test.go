package peripherals

import (
	"bytes"
	"testing"
)

type fakeMem struct {
	data [4096]byte
}

func (f *fakeMem) LoadBinary(addr uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	copy(out, f.data[addr:int(addr)+n])
	return out, nil
}

func (f *fakeMem) StoreBinary(addr uint32, data []byte) error {
	copy(f.data[addr:], data)
	return nil
}

func TestBlockDeviceReadDMAsIntoRAM(t *testing.T) {
	media := bytes.NewReader(bytes.Repeat([]byte{0xAB}, blockSize*2))
	mem := &fakeMem{}
	dev := NewBlockDevice(0x10010000, media, nil, mem)

	dev.Write32(0x10010000+regBLK, 1)
	dev.Write32(0x10010000+regPTR, 0x100)
	dev.Write32(0x10010000+regCMD, cmdRead)
	dev.Write32(0x10010000+regCTRL, 1)

	if s := dev.Read32(0x10010000 + regSTATUS); s&statusError != 0 {
		t.Fatalf("status = %#x, want error bit clear", s)
	}
	if mem.data[0x100] != 0xAB {
		t.Errorf("mem[0x100] = %#x, want 0xAB", mem.data[0x100])
	}
}

func TestBlockDeviceWriteDMAsFromRAM(t *testing.T) {
	var backing bytes.Buffer
	backing.Write(make([]byte, blockSize))
	media := bytes.NewReader(backing.Bytes())
	w := &sliceWriterAt{buf: make([]byte, blockSize)}
	mem := &fakeMem{}
	for i := 0; i < blockSize; i++ {
		mem.data[0x200+i] = 0xCD
	}

	dev := NewBlockDevice(0x10010000, media, w, mem)
	dev.Write32(0x10010000+regBLK, 0)
	dev.Write32(0x10010000+regPTR, 0x200)
	dev.Write32(0x10010000+regCMD, cmdWrite)
	dev.Write32(0x10010000+regCTRL, 1)

	if s := dev.Read32(0x10010000 + regSTATUS); s&statusError != 0 {
		t.Fatalf("status = %#x, want error bit clear", s)
	}
	for i, b := range w.buf {
		if b != 0xCD {
			t.Fatalf("w.buf[%d] = %#x, want 0xCD", i, b)
			break
		}
	}
}

func TestBlockDeviceUnknownCommandSetsError(t *testing.T) {
	media := bytes.NewReader(make([]byte, blockSize))
	mem := &fakeMem{}
	dev := NewBlockDevice(0x10010000, media, nil, mem)

	dev.Write32(0x10010000+regCMD, 99)
	dev.Write32(0x10010000+regCTRL, 1)

	if s := dev.Read32(0x10010000 + regSTATUS); s&statusError == 0 {
		t.Errorf("status = %#x, want error bit set for unknown command", s)
	}
}

type sliceWriterAt struct{ buf []byte }

func (s *sliceWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n := copy(s.buf[off:], p)
	return n, nil
}
