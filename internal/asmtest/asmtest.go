/*
 * rv32ima - RV32IMAC instruction encoder for test fixtures
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

// Package asmtest encodes the handful of RV32IMAC mnemonics the test
// suite needs into raw instruction words. It is test-only fixture
// infrastructure, not a guest-facing assembler: there is no parser, no
// labels, no directives, just one Go function per mnemonic.
package asmtest

// Opcode field values (inst[6:0]), mirrored from the decoder so a
// fixture built here and a word decoded by the CPU always agree.
const (
	opLoad    = 0x03
	opMiscMem = 0x0F
	opImm     = 0x13
	opAuipc   = 0x17
	opStore   = 0x23
	opAmo     = 0x2F
	opOp      = 0x33
	opLui     = 0x37
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6F
	opSystem  = 0x73
)

// --- 32-bit base encoders ---

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
	b10_5 := (imm >> 5) & 0x3F
	b4_1 := (imm >> 1) & 0xF
	b11 := (imm >> 11) & 0x1
	return (b12 << 31) | (b10_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) |
		(b4_1 << 8) | (b11 << 7) | opcode
}

func encodeU(imm uint32, rd, opcode uint32) uint32 {
	return (imm & 0xFFFFF000) | (rd << 7) | opcode
}

func encodeJ(imm uint32, rd, opcode uint32) uint32 {
	b20 := (imm >> 20) & 0x1
	b10_1 := (imm >> 1) & 0x3FF
	b11 := (imm >> 11) & 0x1
	b19_12 := (imm >> 12) & 0xFF
	return (b20 << 31) | (b10_1 << 21) | (b11 << 20) | (b19_12 << 12) | (rd << 7) | opcode
}

// --- RV32I ---

func ADDI(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b000, rd, opImm) }
func SLTI(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b010, rd, opImm) }
func ANDI(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b111, rd, opImm) }
func ORI(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0b110, rd, opImm) }
func XORI(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b100, rd, opImm) }

func SLLI(rd, rs1, shamt uint32) uint32 {
	return encodeI((0<<5)|shamt, rs1, 0b001, rd, opImm)
}

func SRLI(rd, rs1, shamt uint32) uint32 {
	return encodeI(shamt, rs1, 0b101, rd, opImm)
}

func SRAI(rd, rs1, shamt uint32) uint32 {
	return encodeI((0b0100000<<5)|shamt, rs1, 0b101, rd, opImm)
}

func ADD(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b000, rd, opOp) }
func SUB(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0100000, rs2, rs1, 0b000, rd, opOp) }
func SLL(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b001, rd, opOp) }
func SLT(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b010, rd, opOp) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b011, rd, opOp) }
func XOR(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b100, rd, opOp) }
func SRL(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b101, rd, opOp) }
func SRA(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0100000, rs2, rs1, 0b101, rd, opOp) }
func OR(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000000, rs2, rs1, 0b110, rd, opOp) }
func AND(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000000, rs2, rs1, 0b111, rd, opOp) }

func LUI(rd uint32, imm uint32) uint32   { return encodeU(imm, rd, opLui) }
func AUIPC(rd uint32, imm uint32) uint32 { return encodeU(imm, rd, opAuipc) }

func JAL(rd uint32, imm int32) uint32 { return encodeJ(uint32(imm), rd, opJal) }
func JALR(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(uint32(imm), rs1, 0b000, rd, opJalr)
}

func BEQ(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0b000, opBranch) }
func BNE(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0b001, opBranch) }
func BLT(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0b100, opBranch) }
func BGE(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0b101, opBranch) }
func BLTU(rs1, rs2 uint32, imm int32) uint32 {
	return encodeB(uint32(imm), rs2, rs1, 0b110, opBranch)
}
func BGEU(rs1, rs2 uint32, imm int32) uint32 {
	return encodeB(uint32(imm), rs2, rs1, 0b111, opBranch)
}

func LB(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0b000, rd, opLoad) }
func LH(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0b001, rd, opLoad) }
func LW(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0b010, rd, opLoad) }
func LBU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b100, rd, opLoad) }
func LHU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0b101, rd, opLoad) }

func SB(rs1, rs2 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0b000, opStore) }
func SH(rs1, rs2 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0b001, opStore) }
func SW(rs1, rs2 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0b010, opStore) }

const (
	ECALL  = 0x00000073
	EBREAK = 0x00100073
	MRET   = 0x30200073
	WFI    = 0x10500073
)

func CSRRW(rd, rs1, csr uint32) uint32 { return encodeI(csr, rs1, 0b001, rd, opSystem) }
func CSRRS(rd, rs1, csr uint32) uint32 { return encodeI(csr, rs1, 0b010, rd, opSystem) }
func CSRRC(rd, rs1, csr uint32) uint32 { return encodeI(csr, rs1, 0b011, rd, opSystem) }

func FENCE() uint32 { return encodeI(0, 0, 0b000, 0, opMiscMem) }

// --- RV32M ---

func MUL(rd, rs1, rs2 uint32) uint32    { return encodeR(0b0000001, rs2, rs1, 0b000, rd, opOp) }
func MULH(rd, rs1, rs2 uint32) uint32   { return encodeR(0b0000001, rs2, rs1, 0b001, rd, opOp) }
func MULHSU(rd, rs1, rs2 uint32) uint32 { return encodeR(0b0000001, rs2, rs1, 0b010, rd, opOp) }
func MULHU(rd, rs1, rs2 uint32) uint32  { return encodeR(0b0000001, rs2, rs1, 0b011, rd, opOp) }
func DIV(rd, rs1, rs2 uint32) uint32    { return encodeR(0b0000001, rs2, rs1, 0b100, rd, opOp) }
func DIVU(rd, rs1, rs2 uint32) uint32   { return encodeR(0b0000001, rs2, rs1, 0b101, rd, opOp) }
func REM(rd, rs1, rs2 uint32) uint32    { return encodeR(0b0000001, rs2, rs1, 0b110, rd, opOp) }
func REMU(rd, rs1, rs2 uint32) uint32   { return encodeR(0b0000001, rs2, rs1, 0b111, rd, opOp) }

// --- RV32A ---
//
// aq/rl occupy bits 26/25 of the funct7 field; fixtures that don't
// care about ordering pass false for both.

const (
	amoFunct5LR   = 0b00010
	amoFunct5SC   = 0b00011
	amoFunct5SWAP = 0b00001
	amoFunct5ADD  = 0b00000
	amoFunct5XOR  = 0b00100
	amoFunct5AND  = 0b01100
	amoFunct5OR   = 0b01000
	amoFunct5MIN  = 0b10000
	amoFunct5MAX  = 0b10100
	amoFunct5MINU = 0b11000
	amoFunct5MAXU = 0b11100
)

func amoFunct7(funct5 uint32, aq, rl bool) uint32 {
	f := funct5 << 2
	if aq {
		f |= 0b10
	}
	if rl {
		f |= 0b01
	}
	return f
}

func LRW(rd, rs1 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5LR, aq, rl), 0, rs1, 0b010, rd, opAmo)
}

func SCW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5SC, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOSWAPW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5SWAP, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOADDW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5ADD, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOXORW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5XOR, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOANDW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5AND, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOORW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5OR, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOMINW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5MIN, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOMAXW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5MAX, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOMINUW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5MINU, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

func AMOMAXUW(rd, rs1, rs2 uint32, aq, rl bool) uint32 {
	return encodeR(amoFunct7(amoFunct5MAXU, aq, rl), rs2, rs1, 0b010, rd, opAmo)
}

// --- RV32C ---
//
// Compressed encoders produce the raw 16-bit parcel, matched field for
// field against the expansion the decoder performs, so a fixture built
// here and a parcel expanded by the CPU always agree. Only the forms
// that address the full register file are covered (CL/CS-format
// "prime" register mnemonics aren't needed by anything in this suite).

func signTrim(imm int32, bits int) uint32 {
	return uint32(imm) & ((1 << bits) - 1)
}

func CNOP() uint16 { return 0x0001 }

func CADDI(rd uint32, imm int32) uint16 {
	u := signTrim(imm, 6)
	return uint16((u>>5)&1)<<12 | uint16(rd&0x1F)<<7 | uint16(u&0x1F)<<2 | 0b01
}

func CLI(rd uint32, imm int32) uint16 {
	u := signTrim(imm, 6)
	return uint16(0b010<<13) | uint16((u>>5)&1)<<12 | uint16(rd&0x1F)<<7 | uint16(u&0x1F)<<2 | 0b01
}

func CMV(rd, rs2 uint32) uint16 {
	return uint16(0b100<<13) | uint16(rd&0x1F)<<7 | uint16(rs2&0x1F)<<2 | 0b10
}

func CADD(rd, rs2 uint32) uint16 {
	return uint16(0b100<<13) | 1<<12 | uint16(rd&0x1F)<<7 | uint16(rs2&0x1F)<<2 | 0b10
}

func CJR(rs1 uint32) uint16 {
	return uint16(0b100<<13) | uint16(rs1&0x1F)<<7 | 0b10
}

func CJALR(rs1 uint32) uint16 {
	return uint16(0b100<<13) | 1<<12 | uint16(rs1&0x1F)<<7 | 0b10
}

func CEBREAK() uint16 { return 0x9002 }

func CLWSP(rd uint32, off uint32) uint16 {
	b5 := (off >> 5) & 1
	b42 := (off >> 2) & 0x7
	b76 := (off >> 6) & 0x3
	return uint16(0b010<<13) | uint16(b5)<<12 | uint16(rd&0x1F)<<7 | uint16(b42)<<4 | uint16(b76)<<2 | 0b10
}

func CSWSP(rs2 uint32, off uint32) uint16 {
	b52 := (off >> 2) & 0xF
	b76 := (off >> 6) & 0x3
	return uint16(0b110<<13) | uint16(b52)<<9 | uint16(b76)<<7 | uint16(rs2&0x1F)<<2 | 0b10
}
