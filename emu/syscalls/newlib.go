/*
 * rv32ima - Newlib syscall ABI dispatcher
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

// Package syscalls implements the Newlib syscall ABI a bare-metal
// guest's C runtime expects behind ECALL: exit, heap growth, and a
// small hosted-I/O surface. It is registered as the CPU's ECallHandler
// and never touches architectural state beyond the registers and
// memory the ABI itself specifies.
package syscalls

import (
	"io"
	"os"

	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/emu/machine"
)

// Newlib RISC-V syscall numbers, selected by a7.
const (
	sysExit     = 93
	sysSbrk     = 214
	sysWrite    = 64
	sysRead     = 63
	sysOpenat   = 1024
	sysClose    = 57
	sysLseek    = 62
	sysFstat    = 80
	sysIsatty   = 89
	sysKill     = 129
	sysGetpid   = 172
	sysUmask    = 60
	sysMkdirat  = 34
	sysUnlinkat = 35
)

var atFDCWD int32 = -100

// A minimal errno set, enough to report the conditions this dispatcher
// can actually hit; values match Linux/amd64 syscall.Errno numbering,
// which is what Newlib guests built against a Linux-hosted toolchain
// expect to see echoed back as -errno. Typed int32 variables, so that
// uint32(-errX) is a two's-complement conversion, not a constant one.
var (
	errEBADF   int32 = 9
	errEPERM   int32 = 1
	errEEXIST  int32 = 17
	errENOENT  int32 = 2
	errEISDIR  int32 = 21
	errEIO     int32 = 5
	errENOSYS  int32 = 38
	errENOTSUP int32 = 95
)

// Dispatcher owns the hosted-I/O state a Newlib guest's syscalls need:
// the fd table, the umask, and the heap break. It is the external
// collaborator spec.md §1 keeps out of the core's budget, installed as
// (*cpu.CPU).ECall.
type Dispatcher struct {
	// HostFS opts into passthrough for close/lseek/openat/mkdirat/
	// unlinkat; when false (the default) those return -ENOSYS so a
	// guest image cannot touch the host filesystem beyond what
	// _write/_read on fds 0-2 already allow.
	HostFS bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	heapEnd     uint32
	stackBottom uint32

	files  map[int32]*os.File
	nextFD int32
	umask  uint32
}

// NewDispatcher constructs a Dispatcher with heap growth bounded by
// stackBottom, the initial break at heapStart, and stdio bridged to
// the host's standard streams.
func NewDispatcher(heapStart, stackBottom uint32) *Dispatcher {
	return &Dispatcher{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		heapEnd:     heapStart,
		stackBottom: stackBottom,
		files:       make(map[int32]*os.File),
		nextFD:      3,
		umask:       0o022,
	}
}

// HeapEnd reports the current break, for wiring into a Machine's
// invariant-check state.
func (d *Dispatcher) HeapEnd() uint32 { return d.heapEnd }

// Handle implements cpu.ECallHandler.
func (d *Dispatcher) Handle(c *cpu.CPU) (bool, error) {
	switch c.X[17] {
	case sysExit:
		return d.handleExit(c)
	case sysSbrk:
		return d.handleSbrk(c)
	case sysWrite:
		return d.handleWrite(c)
	case sysRead:
		return d.handleRead(c)
	case sysOpenat:
		return d.handleOpenat(c)
	case sysClose:
		return d.handleClose(c)
	case sysLseek:
		return d.handleLseek(c)
	case sysFstat:
		return d.handleFstat(c)
	case sysIsatty:
		return d.handleIsatty(c)
	case sysKill:
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	case sysGetpid:
		c.X[10] = 1
		return true, nil
	case sysUmask:
		return d.handleUmask(c)
	case sysMkdirat:
		return d.handleMkdirat(c)
	case sysUnlinkat:
		return d.handleUnlinkat(c)
	default:
		return false, nil
	}
}

func (d *Dispatcher) handleExit(c *cpu.CPU) (bool, error) {
	code := int32(c.X[10])
	return true, &machine.ExecutionTerminatedError{Cause: "_exit", ExitCode: code}
}

func (d *Dispatcher) handleSbrk(c *cpu.CPU) (bool, error) {
	increment := c.X[10]
	oldEnd := d.heapEnd
	newEnd := oldEnd + increment
	if newEnd >= d.stackBottom {
		c.X[10] = 0xFFFFFFFF
		return true, nil
	}
	d.heapEnd = newEnd
	c.X[10] = oldEnd
	return true, nil
}

func (d *Dispatcher) handleWrite(c *cpu.CPU) (bool, error) {
	fd := int32(c.X[10])
	addr, count := c.X[11], c.X[12]
	data, err := c.Mem.LoadBinary(addr, int(count))
	if err != nil {
		return true, err
	}

	var w io.Writer
	switch fd {
	case 1:
		w = d.Stdout
	case 2:
		w = d.Stderr
	default:
		f, ok := d.files[fd]
		if !ok {
			c.X[10] = uint32(-errEBADF)
			return true, nil
		}
		w = f
	}
	n, werr := w.Write(data)
	if werr != nil {
		c.X[10] = uint32(-errEIO)
		return true, nil
	}
	c.X[10] = uint32(n)
	return true, nil
}

func (d *Dispatcher) handleRead(c *cpu.CPU) (bool, error) {
	fd := int32(c.X[10])
	addr, count := c.X[11], c.X[12]

	var r io.Reader
	switch fd {
	case 0:
		r = d.Stdin
	default:
		f, ok := d.files[fd]
		if !ok {
			c.X[10] = uint32(-errEBADF)
			return true, nil
		}
		r = f
	}
	buf := make([]byte, count)
	n, rerr := r.Read(buf)
	if rerr != nil && n == 0 {
		c.X[10] = 0 // EOF
		return true, nil
	}
	if serr := c.Mem.StoreBinary(addr, buf[:n]); serr != nil {
		return true, serr
	}
	c.X[10] = uint32(n)
	return true, nil
}

func (d *Dispatcher) handleOpenat(c *cpu.CPU) (bool, error) {
	if int32(c.X[10]) != atFDCWD {
		c.X[10] = uint32(-errENOTSUP)
		return true, nil
	}
	if !d.HostFS {
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	}
	path, err := c.Mem.LoadCString(c.X[11], 4096)
	if err != nil {
		return true, err
	}
	mode := c.X[13] &^ d.umask
	f, oerr := os.OpenFile(path, int(c.X[12]), os.FileMode(mode))
	if oerr != nil {
		c.X[10] = uint32(-errEIO)
		return true, nil
	}
	fd := d.nextFD
	d.nextFD++
	d.files[fd] = f
	c.X[10] = uint32(fd)
	return true, nil
}

func (d *Dispatcher) handleClose(c *cpu.CPU) (bool, error) {
	if !d.HostFS {
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	}
	fd := int32(c.X[10])
	f, ok := d.files[fd]
	if !ok {
		c.X[10] = uint32(-errEBADF)
		return true, nil
	}
	delete(d.files, fd)
	if err := f.Close(); err != nil {
		c.X[10] = uint32(-errEIO)
		return true, nil
	}
	c.X[10] = 0
	return true, nil
}

func (d *Dispatcher) handleLseek(c *cpu.CPU) (bool, error) {
	if !d.HostFS {
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	}
	fd := int32(c.X[10])
	f, ok := d.files[fd]
	if !ok {
		c.X[10] = uint32(-errEBADF)
		return true, nil
	}
	off, werr := f.Seek(int64(int32(c.X[11])), int(c.X[12]))
	if werr != nil {
		c.X[10] = uint32(-errEIO)
		return true, nil
	}
	c.X[10] = uint32(off)
	return true, nil
}

func (d *Dispatcher) handleFstat(c *cpu.CPU) (bool, error) {
	fd := int32(c.X[10])
	bufAddr := c.X[11]

	var mode uint32
	var size uint64
	switch {
	case fd == 0 || fd == 1 || fd == 2:
		mode = 0o020666 // S_IFCHR | 0666: pretend every standard stream is a tty
	default:
		f, ok := d.files[fd]
		if !ok {
			c.X[10] = uint32(-errEBADF)
			return true, nil
		}
		info, serr := f.Stat()
		if serr != nil {
			c.X[10] = uint32(-errEIO)
			return true, nil
		}
		mode = uint32(info.Mode())
		size = uint64(info.Size())
	}

	buf := make([]byte, 88)
	putLE32(buf, 4, mode)
	putLE64(buf, 16, size)
	if err := c.Mem.StoreBinary(bufAddr, buf); err != nil {
		return true, err
	}
	c.X[10] = 0
	return true, nil
}

func (d *Dispatcher) handleIsatty(c *cpu.CPU) (bool, error) {
	fd := int32(c.X[10])
	if fd == 0 || fd == 1 || fd == 2 {
		c.X[10] = 1
		return true, nil
	}
	if _, ok := d.files[fd]; ok {
		c.X[10] = 0
		return true, nil
	}
	c.X[10] = uint32(-errEBADF)
	return true, nil
}

func (d *Dispatcher) handleUmask(c *cpu.CPU) (bool, error) {
	old := d.umask
	d.umask = c.X[10] & 0o777
	c.X[10] = old
	return true, nil
}

func (d *Dispatcher) handleMkdirat(c *cpu.CPU) (bool, error) {
	if int32(c.X[10]) != atFDCWD {
		c.X[10] = uint32(-errENOTSUP)
		return true, nil
	}
	if !d.HostFS {
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	}
	path, err := c.Mem.LoadCString(c.X[11], 4096)
	if err != nil {
		return true, err
	}
	mode := os.FileMode(c.X[12] &^ d.umask)
	switch merr := os.Mkdir(path, mode); {
	case merr == nil:
		c.X[10] = 0
	case os.IsExist(merr):
		c.X[10] = uint32(-errEEXIST)
	case os.IsPermission(merr):
		c.X[10] = uint32(-errEPERM)
	default:
		c.X[10] = uint32(-errEIO)
	}
	return true, nil
}

func (d *Dispatcher) handleUnlinkat(c *cpu.CPU) (bool, error) {
	if int32(c.X[10]) != atFDCWD {
		c.X[10] = uint32(-errENOTSUP)
		return true, nil
	}
	if !d.HostFS {
		c.X[10] = uint32(-errENOSYS)
		return true, nil
	}
	path, err := c.Mem.LoadCString(c.X[11], 4096)
	if err != nil {
		return true, err
	}
	rerr := os.Remove(path)
	switch {
	case rerr == nil:
		c.X[10] = 0
	case os.IsNotExist(rerr):
		c.X[10] = uint32(-errENOENT)
	case os.IsPermission(rerr):
		c.X[10] = uint32(-errEPERM)
	default:
		c.X[10] = uint32(-errEIO)
	}
	return true, nil
}

func putLE32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func putLE64(buf []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(v >> (8 * i))
	}
}
