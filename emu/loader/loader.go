/*
 * rv32ima - ELF and flat-binary guest image loader
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

// Package loader places a guest image into Memory before the machine's
// first Step: either a statically-linked ELF with PT_LOAD segments, or
// a flat binary loaded at offset 0 with entry 0.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
)

// ramWriter is the subset of *memory.Memory the loader needs.
type ramWriter interface {
	StoreBinary(addr uint32, data []byte) error
	Base() uint32
	Size() uint32
}

// Image describes what got loaded: the entry point, the symbols a
// debug session cares about, and optionally a .text snapshot for the
// invariant checker to compare against later.
type Image struct {
	Entry uint32

	StackTop    uint32
	StackBottom uint32
	HeapStart   uint32

	HasStackTop    bool
	HasStackBottom bool
	HasHeapStart   bool

	// Funcs maps STT_FUNC symbol addresses to names, for trace output.
	Funcs map[uint32]string

	TextBase uint32
	Text     []byte
}

// LoadError reports a malformed image; the caller reports this before
// execution begins.
type LoadError struct {
	Path   string
	Detail string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

// wantedSymbols are pulled out of the symbol table when present; every
// other STT_FUNC symbol is still recorded in Image.Funcs.
const (
	symStackTop    = "__stack_top"
	symStackBottom = "__stack_bottom"
	symHeapStart   = "__heap_start"
)

// Load reads path and places its contents into mem. It tries ELF
// first; any file that isn't a valid ELF (wrong magic) is treated as a
// flat binary loaded at mem.Base() (offset 0 of RAM) with its entry at
// that same address, per the external loader contract.
func Load(path string, mem ramWriter, snapshotText bool) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) >= 4 && bytes.Equal(data[:4], []byte(elf.ELFMAG)) {
		return loadELF(path, data, mem, snapshotText)
	}
	return loadFlat(path, data, mem)
}

func loadFlat(path string, data []byte, mem ramWriter) (*Image, error) {
	if err := mem.StoreBinary(mem.Base(), data); err != nil {
		return nil, &LoadError{Path: path, Detail: "flat image does not fit in RAM: " + err.Error()}
	}
	return &Image{Entry: mem.Base()}, nil
}

func loadELF(path string, data []byte, mem ramWriter, snapshotText bool) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Path: path, Detail: "not a valid ELF: " + err.Error()}
	}
	defer f.Close()

	if f.Machine != elf.EM_RISCV {
		return nil, &LoadError{Path: path, Detail: fmt.Sprintf("unexpected ELF machine %v, want EM_RISCV", f.Machine)}
	}
	if f.Class != elf.ELFCLASS32 {
		return nil, &LoadError{Path: path, Detail: "expected a 32-bit ELF"}
	}

	img := &Image{Entry: uint32(f.Entry), Funcs: map[uint32]string{}}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		buf := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(buf, 0); err != nil {
			return nil, &LoadError{Path: path, Detail: "reading PT_LOAD segment: " + err.Error()}
		}
		if err := mem.StoreBinary(uint32(prog.Paddr), buf); err != nil {
			return nil, &LoadError{Path: path, Detail: fmt.Sprintf("segment at %#x does not fit in RAM: %s", prog.Paddr, err)}
		}
		// Zero-fill the bss portion (Memsz beyond Filesz) explicitly,
		// since RAM may hold non-zero init data or a prior image.
		if prog.Memsz > prog.Filesz {
			if err := mem.StoreBinary(uint32(prog.Paddr)+uint32(prog.Filesz), make([]byte, prog.Memsz-prog.Filesz)); err != nil {
				return nil, &LoadError{Path: path, Detail: "zero-filling bss: " + err.Error()}
			}
		}
	}

	syms, _ := f.Symbols()
	for _, sym := range syms {
		switch sym.Name {
		case symStackTop:
			img.StackTop = uint32(sym.Value)
			img.HasStackTop = true
		case symStackBottom:
			img.StackBottom = uint32(sym.Value)
			img.HasStackBottom = true
		case symHeapStart:
			img.HeapStart = uint32(sym.Value)
			img.HasHeapStart = true
		}
		if elf.ST_TYPE(sym.Info) == elf.STT_FUNC && sym.Name != "" {
			img.Funcs[uint32(sym.Value)] = sym.Name
		}
	}

	if snapshotText {
		if sec := f.Section(".text"); sec != nil {
			text, err := sec.Data()
			if err == nil {
				img.TextBase = uint32(sec.Addr)
				img.Text = text
			}
		}
	}

	return img, nil
}
