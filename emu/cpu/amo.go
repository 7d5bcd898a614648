/*
 * rv32ima - A extension: LR.W/SC.W and AMO*.W
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

const (
	amoFunct5LR      = 0b00010
	amoFunct5SC      = 0b00011
	amoFunct5SWAP    = 0b00001
	amoFunct5ADD     = 0b00000
	amoFunct5XOR     = 0b00100
	amoFunct5AND     = 0b01100
	amoFunct5OR      = 0b01000
	amoFunct5MIN     = 0b10000
	amoFunct5MAX     = 0b10100
	amoFunct5MINU    = 0b11000
	amoFunct5MAXU    = 0b11100
)

func (c *CPU) execAMO(inst uint32, d decoded32) error {
	if d.funct3 != 0b010 {
		return c.trap(causeIllegalInst, inst, true)
	}
	addr := c.X[d.rs1]
	if addr&0x3 != 0 {
		return c.trap(causeStoreAddrMisalign, addr, true)
	}
	funct5 := (inst >> 27) & 0x1F

	if funct5 == amoFunct5LR {
		v, err := c.Mem.LoadWord(addr)
		if err != nil {
			return err
		}
		c.Mem.SetReservation(addr)
		c.X[d.rd] = v
		return nil
	}

	if funct5 == amoFunct5SC {
		if c.Mem.CheckReservation(addr) {
			if err := c.Mem.StoreWord(addr, c.X[d.rs2]); err != nil {
				return err
			}
			c.Mem.ClearReservation()
			c.X[d.rd] = 0
		} else {
			c.Mem.ClearReservation()
			c.X[d.rd] = 1
		}
		return nil
	}

	old, err := c.Mem.LoadWord(addr)
	if err != nil {
		return err
	}
	rhs := c.X[d.rs2]
	var result uint32
	switch funct5 {
	case amoFunct5SWAP:
		result = rhs
	case amoFunct5ADD:
		result = old + rhs
	case amoFunct5XOR:
		result = old ^ rhs
	case amoFunct5AND:
		result = old & rhs
	case amoFunct5OR:
		result = old | rhs
	case amoFunct5MIN:
		if int32(old) < int32(rhs) {
			result = old
		} else {
			result = rhs
		}
	case amoFunct5MAX:
		if int32(old) > int32(rhs) {
			result = old
		} else {
			result = rhs
		}
	case amoFunct5MINU:
		if old < rhs {
			result = old
		} else {
			result = rhs
		}
	case amoFunct5MAXU:
		if old > rhs {
			result = old
		} else {
			result = rhs
		}
	default:
		return c.trap(causeIllegalInst, inst, true)
	}

	if err := c.Mem.StoreWord(addr, result); err != nil {
		return err
	}
	c.Mem.ClearReservation()
	c.X[d.rd] = old
	return nil
}
