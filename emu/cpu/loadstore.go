/*
 * rv32ima - LOAD/STORE opcode handlers
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

func (c *CPU) execLoad(inst uint32, d decoded32) error {
	addr := uint32(int32(c.X[d.rs1]) + immI(inst))
	switch d.funct3 {
	case 0b000: // LB
		v, err := c.Mem.LoadByte(addr, true)
		if err != nil {
			return err
		}
		c.X[d.rd] = uint32(v)
	case 0b001: // LH
		v, err := c.Mem.LoadHalf(addr, true)
		if err != nil {
			return err
		}
		c.X[d.rd] = uint32(v)
	case 0b010: // LW
		v, err := c.Mem.LoadWord(addr)
		if err != nil {
			return err
		}
		c.X[d.rd] = v
	case 0b100: // LBU
		v, err := c.Mem.LoadByte(addr, false)
		if err != nil {
			return err
		}
		c.X[d.rd] = uint32(v)
	case 0b101: // LHU
		v, err := c.Mem.LoadHalf(addr, false)
		if err != nil {
			return err
		}
		c.X[d.rd] = uint32(v)
	default:
		return c.trap(causeIllegalInst, inst, true)
	}
	return nil
}

func (c *CPU) execStore(inst uint32, d decoded32) error {
	addr := uint32(int32(c.X[d.rs1]) + immS(inst))
	val := c.X[d.rs2]
	switch d.funct3 {
	case 0b000: // SB
		return c.Mem.StoreByte(addr, uint8(val))
	case 0b001: // SH
		return c.Mem.StoreHalf(addr, uint16(val))
	case 0b010: // SW
		return c.Mem.StoreWord(addr, val)
	default:
		return c.trap(causeIllegalInst, inst, true)
	}
}
