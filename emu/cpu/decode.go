/*
 * rv32ima - instruction field decode and content-addressed caches
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

package cpu

import "github.com/ccattuto/rv32ima/emu/rvc"

// decode32 extracts the fixed fields of a 32-bit instruction, using
// the content-addressed cache keyed by inst>>2 so that the same bit
// pattern is never re-decoded. Self-modifying code stays coherent for
// free: a changed instruction word is a different cache key.
func (c *CPU) decode32(inst uint32) decoded32 {
	key := inst >> 2
	if d, ok := c.cache32[key]; ok {
		return d
	}
	d := decoded32{
		opcode: inst & 0x7F,
		rd:     (inst >> 7) & 0x1F,
		funct3: (inst >> 12) & 0x7,
		rs1:    (inst >> 15) & 0x1F,
		rs2:    (inst >> 20) & 0x1F,
		funct7: (inst >> 25) & 0x7F,
	}
	c.cache32[key] = d
	return d
}

// decode16 expands a compressed parcel and decodes the resulting
// 32-bit word, caching both steps keyed by the raw 16-bit value.
func (c *CPU) decode16(parcel uint16) decoded16 {
	if d, ok := c.cache16[parcel]; ok {
		return d
	}
	expansion, ok := rvc.Expand(parcel)
	d := decoded16{valid: ok}
	if ok {
		d.expansion = expansion
		d.fields = decoded32{
			opcode: expansion & 0x7F,
			rd:     (expansion >> 7) & 0x1F,
			funct3: (expansion >> 12) & 0x7,
			rs1:    (expansion >> 15) & 0x1F,
			rs2:    (expansion >> 20) & 0x1F,
			funct7: (expansion >> 25) & 0x7F,
		}
	}
	c.cache16[parcel] = d
	return d
}

func signExtend32(v uint32, bit int) int32 {
	shift := uint(31 - bit)
	return int32(v<<shift) >> shift
}

// immI extracts the I-type (OP-IMM/LOAD/JALR) sign-extended immediate.
func immI(inst uint32) int32 {
	return signExtend32(inst>>20, 11)
}

// immS extracts the S-type (STORE) sign-extended immediate.
func immS(inst uint32) int32 {
	v := ((inst >> 25) << 5) | ((inst >> 7) & 0x1F)
	return signExtend32(v, 11)
}

// immB extracts the B-type (BRANCH) sign-extended immediate.
func immB(inst uint32) int32 {
	b12 := (inst >> 31) & 0x1
	b11 := (inst >> 7) & 0x1
	b10_5 := (inst >> 25) & 0x3F
	b4_1 := (inst >> 8) & 0xF
	v := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return signExtend32(v, 12)
}

// immU extracts the U-type (LUI/AUIPC) immediate (already shifted into
// its final position, low 12 bits zero).
func immU(inst uint32) int32 {
	return int32(inst &^ 0xFFF)
}

// immJ extracts the J-type (JAL) sign-extended immediate.
func immJ(inst uint32) int32 {
	b20 := (inst >> 31) & 0x1
	b19_12 := (inst >> 12) & 0xFF
	b11 := (inst >> 20) & 0x1
	b10_1 := (inst >> 21) & 0x3FF
	v := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return signExtend32(v, 20)
}
