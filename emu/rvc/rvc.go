/*
 * rv32ima - RVC (compressed instruction) expansion
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

// Package rvc expands 16-bit RVC (compressed) parcels into their
// equivalent 32-bit RV32I/M/A encodings. Expand is a pure function: it
// touches no CPU or memory state, so its result is safe to cache keyed
// only by the 16-bit value.
package rvc

// Opcode values of the 32-bit encodings Expand may produce.
const (
	opLoad   = 0x03
	opImm    = 0x13
	opAuipc  = 0x17
	opStore  = 0x23
	opOp     = 0x33
	opLui    = 0x37
	opBranch = 0x63
	opJalr   = 0x67
	opJal    = 0x6F
	opSystem = 0x73
)

const ebreak32 = 0x00100073

// creg maps a 3-bit compressed register field to the full x8-x15 range.
func creg(bits uint16) uint32 {
	return uint32(bits&0x7) + 8
}

func signExtend(v uint32, bit int) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}

func encodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeI(imm uint32, rs1, funct3, rd, opcode uint32) uint32 {
	return ((imm & 0xFFF) << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeS(imm uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	hi := (imm >> 5) & 0x7F
	lo := imm & 0x1F
	return (hi << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (lo << 7) | opcode
}

func encodeB(imm uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	b12 := (imm >> 12) & 0x1
	b11 := (imm >> 11) & 0x1
	b10_5 := (imm >> 5) & 0x3F
	b4_1 := (imm >> 1) & 0xF
	return (b12 << 31) | (b10_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) |
		(b4_1 << 8) | (b11 << 7) | opcode
}

func encodeU(imm uint32, rd, opcode uint32) uint32 {
	return (imm & 0xFFFFF000) | (rd << 7) | opcode
}

func encodeJ(imm uint32, rd, opcode uint32) uint32 {
	b20 := (imm >> 20) & 0x1
	b19_12 := (imm >> 12) & 0xFF
	b11 := (imm >> 11) & 0x1
	b10_1 := (imm >> 1) & 0x3FF
	return (b20 << 31) | (b10_1 << 21) | (b11 << 20) | (b19_12 << 12) | (rd << 7) | opcode
}

// Expand converts a 16-bit RVC parcel (whose low two bits must not be
// 0b11 — the caller is responsible for routing that case to a 32-bit
// fetch instead) into its 32-bit equivalent. The second return value is
// false for reserved or illegal encodings, in which case the caller
// must raise an illegal-instruction trap rather than use the first
// return value.
func Expand(c uint16) (uint32, bool) {
	quadrant := c & 0x3
	funct3 := (c >> 13) & 0x7

	switch quadrant {
	case 0:
		return expandQ0(c, funct3)
	case 1:
		return expandQ1(c, funct3)
	case 2:
		return expandQ2(c, funct3)
	default:
		return 0, false
	}
}

func expandQ0(c uint16, funct3 uint16) (uint32, bool) {
	rdp := creg(c >> 2)
	rs1p := creg(c >> 7)
	rs2p := creg(c >> 2)

	switch funct3 {
	case 0b000: // C.ADDI4SPN
		nzuimm := ((uint32(c>>11) & 0x3) << 4) | ((uint32(c>>7) & 0xF) << 6) |
			((uint32(c>>6) & 0x1) << 2) | ((uint32(c>>5) & 0x1) << 3)
		if nzuimm == 0 {
			return 0, false
		}
		return encodeI(nzuimm, 2, 0b000, rdp, opImm), true
	case 0b010: // C.LW
		uimm := ((uint32(c>>10) & 0x7) << 3) | ((uint32(c>>6) & 0x1) << 2) | ((uint32(c>>5) & 0x1) << 6)
		return encodeI(uimm, rs1p, 0b010, rdp, opLoad), true
	case 0b110: // C.SW
		uimm := ((uint32(c>>10) & 0x7) << 3) | ((uint32(c>>6) & 0x1) << 2) | ((uint32(c>>5) & 0x1) << 6)
		return encodeS(uimm, rs2p, rs1p, 0b010, opStore), true
	default:
		return 0, false
	}
}

func expandQ1(c uint16, funct3 uint16) (uint32, bool) {
	rd := uint32(c>>7) & 0x1F

	switch funct3 {
	case 0b000: // C.NOP / C.ADDI
		imm := uint32(signExtend(((uint32(c>>12)&0x1)<<5)|(uint32(c>>2)&0x1F), 5))
		return encodeI(imm, rd, 0b000, rd, opImm), true
	case 0b001: // C.JAL (RV32 only) — rd = x1
		imm := jImmC(c)
		return encodeJ(imm, 1, opJal), true
	case 0b010: // C.LI
		imm := uint32(signExtend(((uint32(c>>12)&0x1)<<5)|(uint32(c>>2)&0x1F), 5))
		return encodeI(imm, 0, 0b000, rd, opImm), true
	case 0b011:
		if rd == 2 { // C.ADDI16SP
			imm := uint32(signExtend(
				((uint32(c>>12)&0x1)<<9)|
					((uint32(c>>3)&0x3)<<7)|
					((uint32(c>>5)&0x1)<<6)|
					((uint32(c>>2)&0x1)<<5)|
					((uint32(c>>6)&0x1)<<4), 9))
			if imm == 0 {
				return 0, false
			}
			return encodeI(imm, 2, 0b000, 2, opImm), true
		}
		if rd == 0 {
			return 0, false
		}
		// C.LUI
		nzimm6 := signExtend(((uint32(c>>12)&0x1)<<5)|(uint32(c>>2)&0x1F), 5)
		if nzimm6 == 0 {
			return 0, false
		}
		imm := uint32(nzimm6) << 12
		return encodeU(imm, rd, opLui), true
	case 0b100:
		return expandQ1Alu(c)
	case 0b101: // C.J
		imm := jImmC(c)
		return encodeJ(imm, 0, opJal), true
	case 0b110: // C.BEQZ
		rs1p := creg(c >> 7)
		imm := bImmC(c)
		return encodeB(imm, 0, rs1p, 0b000, opBranch), true
	case 0b111: // C.BNEZ
		rs1p := creg(c >> 7)
		imm := bImmC(c)
		return encodeB(imm, 0, rs1p, 0b001, opBranch), true
	default:
		return 0, false
	}
}

func expandQ1Alu(c uint16) (uint32, bool) {
	rdp := creg(c >> 7)
	funct2 := (c >> 10) & 0x3
	bit12 := (c >> 12) & 0x1

	switch funct2 {
	case 0b00: // C.SRLI
		if bit12 != 0 {
			return 0, false // shamt[5]=1 illegal on RV32
		}
		shamt := uint32(c>>2) & 0x1F
		return encodeR(0b0000000, shamt, rdp, 0b101, rdp, opImm), true
	case 0b01: // C.SRAI
		if bit12 != 0 {
			return 0, false
		}
		shamt := uint32(c>>2) & 0x1F
		return encodeR(0b0100000, shamt, rdp, 0b101, rdp, opImm), true
	case 0b10: // C.ANDI
		imm := uint32(signExtend(((uint32(c>>12)&0x1)<<5)|(uint32(c>>2)&0x1F), 5))
		return encodeI(imm, rdp, 0b111, rdp, opImm), true
	case 0b11:
		if bit12 != 0 {
			return 0, false // C.SUBW/ADDW family — RV64 only
		}
		rs2p := creg(c >> 2)
		switch (c >> 5) & 0x3 {
		case 0b00: // C.SUB
			return encodeR(0b0100000, rs2p, rdp, 0b000, rdp, opOp), true
		case 0b01: // C.XOR
			return encodeR(0b0000000, rs2p, rdp, 0b100, rdp, opOp), true
		case 0b10: // C.OR
			return encodeR(0b0000000, rs2p, rdp, 0b110, rdp, opOp), true
		case 0b11: // C.AND
			return encodeR(0b0000000, rs2p, rdp, 0b111, rdp, opOp), true
		}
	}
	return 0, false
}

func jImmC(c uint16) uint32 {
	b := func(i int) uint32 { return uint32(c>>i) & 0x1 }
	imm := (b(12) << 11) | (b(11) << 4) | (((uint32(c >> 9)) & 0x3) << 8) | (b(8) << 10) |
		(b(7) << 6) | (b(6) << 7) | (((uint32(c >> 3)) & 0x7) << 1) | (b(2) << 5)
	return uint32(signExtend(imm, 11))
}

func bImmC(c uint16) uint32 {
	b := func(i int) uint32 { return uint32(c>>i) & 0x1 }
	imm := (b(12) << 8) | (((uint32(c >> 10)) & 0x3) << 3) | (((uint32(c >> 5)) & 0x3) << 6) |
		(((uint32(c >> 3)) & 0x3) << 1) | (b(2) << 5)
	return uint32(signExtend(imm, 8))
}

func expandQ2(c uint16, funct3 uint16) (uint32, bool) {
	rd := uint32(c>>7) & 0x1F
	bit12 := (c >> 12) & 0x1

	switch funct3 {
	case 0b000: // C.SLLI
		if bit12 != 0 {
			return 0, false
		}
		shamt := uint32(c>>2) & 0x1F
		if rd == 0 || shamt == 0 {
			return 0, false
		}
		return encodeR(0b0000000, shamt, rd, 0b001, rd, opImm), true
	case 0b010: // C.LWSP
		if rd == 0 {
			return 0, false
		}
		off := ((uint32(c>>4) & 0x7) << 2) | ((uint32(c>>12) & 0x1) << 5) | ((uint32(c>>2) & 0x3) << 6)
		return encodeI(off, 2, 0b010, rd, opLoad), true
	case 0b100:
		rs2 := uint32(c>>2) & 0x1F
		if bit12 == 0 {
			if rs2 == 0 { // C.JR
				if rd == 0 {
					return 0, false
				}
				return encodeI(0, rd, 0b000, 0, opJalr), true
			}
			// C.MV
			return encodeR(0, rs2, 0, 0b000, rd, opOp), true
		}
		if rs2 == 0 {
			if rd == 0 { // C.EBREAK
				return ebreak32, true
			}
			// C.JALR
			return encodeI(0, rd, 0b000, 1, opJalr), true
		}
		// C.ADD
		return encodeR(0, rs2, rd, 0b000, rd, opOp), true
	case 0b110: // C.SWSP
		rs2 := uint32(c>>2) & 0x1F
		off := ((uint32(c>>9) & 0xF) << 2) | ((uint32(c>>7) & 0x3) << 6)
		return encodeS(off, rs2, 2, 0b010, opStore), true
	default:
		return 0, false
	}
}
