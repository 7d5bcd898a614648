/*
 * rv32ima - OP-IMM and OP (RV32I arithmetic/logic) opcode handlers
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

func (c *CPU) execOpImm(inst uint32, d decoded32) error {
	imm := immI(inst)
	a := c.X[d.rs1]
	switch d.funct3 {
	case 0b000: // ADDI
		c.X[d.rd] = uint32(int32(a) + imm)
	case 0b010: // SLTI
		c.X[d.rd] = boolToWord(int32(a) < imm)
	case 0b011: // SLTIU
		c.X[d.rd] = boolToWord(a < uint32(imm))
	case 0b100: // XORI
		c.X[d.rd] = a ^ uint32(imm)
	case 0b110: // ORI
		c.X[d.rd] = a | uint32(imm)
	case 0b111: // ANDI
		c.X[d.rd] = a & uint32(imm)
	case 0b001: // SLLI
		shamt := (inst >> 20) & 0x1F
		c.X[d.rd] = a << shamt
	case 0b101: // SRLI / SRAI
		shamt := (inst >> 20) & 0x1F
		if (inst>>30)&1 != 0 {
			c.X[d.rd] = uint32(int32(a) >> shamt)
		} else {
			c.X[d.rd] = a >> shamt
		}
	default:
		return c.trap(causeIllegalInst, inst, true)
	}
	return nil
}

func (c *CPU) execOp(d decoded32) error {
	a := c.X[d.rs1]
	b := c.X[d.rs2]

	if d.funct7 == 0b0000001 {
		return c.execMulDiv(d, a, b)
	}

	switch {
	case d.funct3 == 0b000 && d.funct7 == 0b0000000: // ADD
		c.X[d.rd] = a + b
	case d.funct3 == 0b000 && d.funct7 == 0b0100000: // SUB
		c.X[d.rd] = a - b
	case d.funct3 == 0b001: // SLL
		c.X[d.rd] = a << (b & 0x1F)
	case d.funct3 == 0b010: // SLT
		c.X[d.rd] = boolToWord(int32(a) < int32(b))
	case d.funct3 == 0b011: // SLTU
		c.X[d.rd] = boolToWord(a < b)
	case d.funct3 == 0b100: // XOR
		c.X[d.rd] = a ^ b
	case d.funct3 == 0b101 && d.funct7 == 0b0000000: // SRL
		c.X[d.rd] = a >> (b & 0x1F)
	case d.funct3 == 0b101 && d.funct7 == 0b0100000: // SRA
		c.X[d.rd] = uint32(int32(a) >> (b & 0x1F))
	case d.funct3 == 0b110: // OR
		c.X[d.rd] = a | b
	case d.funct3 == 0b111: // AND
		c.X[d.rd] = a & b
	default:
		return c.trap(causeIllegalInst, 0, true)
	}
	return nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
