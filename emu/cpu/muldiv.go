/*
 * rv32ima - M extension: MUL/MULH/MULHSU/MULHU/DIV/DIVU/REM/REMU
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

// execMulDiv implements the M extension (OP opcode, funct7=0000001).
// Division follows truncation-toward-zero semantics with the exact
// corner-case results spec.md §4.3's table prescribes rather than Go's
// native int32 division, which panics on INT_MIN/-1.
func (c *CPU) execMulDiv(d decoded32, a, b uint32) error {
	switch d.funct3 {
	case 0b000: // MUL
		c.X[d.rd] = a * b
	case 0b001: // MULH
		c.X[d.rd] = uint32(int64(int32(a)) * int64(int32(b)) >> 32)
	case 0b010: // MULHSU
		c.X[d.rd] = uint32((int64(int32(a)) * int64(uint64(b))) >> 32)
	case 0b011: // MULHU
		c.X[d.rd] = uint32((uint64(a) * uint64(b)) >> 32)
	case 0b100: // DIV
		c.X[d.rd] = uint32(sdiv(int32(a), int32(b)))
	case 0b101: // DIVU
		if b == 0 {
			c.X[d.rd] = 0xFFFFFFFF
		} else {
			c.X[d.rd] = a / b
		}
	case 0b110: // REM
		c.X[d.rd] = uint32(srem(int32(a), int32(b)))
	case 0b111: // REMU
		if b == 0 {
			c.X[d.rd] = a
		} else {
			c.X[d.rd] = a % b
		}
	default:
		return c.trap(causeIllegalInst, 0, true)
	}
	return nil
}

func sdiv(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -0x80000000 && b == -1 {
		return -0x80000000
	}
	return a / b
}

func srem(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -0x80000000 && b == -1 {
		return 0
	}
	return a % b
}
