/*
 * rv32ima - SYSTEM opcode: ECALL, MRET, EBREAK, WFI, CSR instructions
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

// debugHookBase is the a7 threshold at EBREAK that selects an in-band
// diagnostic action instead of a real breakpoint trap (spec.md §6).
const debugHookBase = 0xFFFF0000

func (c *CPU) execSystem(inst uint32, d decoded32) error {
	switch inst {
	case instECALL:
		return c.execECALL()
	case instMRET:
		return c.execMRET()
	case instEBREAK:
		return c.execEBREAK()
	case instWFI:
		return nil
	}
	if d.funct3 == 0b000 {
		return c.trap(causeIllegalInst, inst, true)
	}
	return c.execCSR(inst, d)
}

func (c *CPU) execECALL() error {
	if c.CSR[csrMtvec] == 0 && c.ECall != nil {
		handled, err := c.ECall(c)
		if err != nil {
			return err
		}
		if handled {
			c.bypassedTrapReturn(causeECallFromM)
			return nil
		}
	}
	return c.trap(causeECallFromM, 0, true)
}

func (c *CPU) execMRET() error {
	target := c.CSR[csrMepc]
	if target&c.alignMask != 0 {
		return c.trap(causeInstAddrMisaligned, target, true)
	}
	c.handleMRET()
	return nil
}

func (c *CPU) execEBREAK() error {
	a7 := c.X[17]
	if a7 >= debugHookBase && c.Debug != nil {
		c.Debug(c, a7)
		return nil
	}
	return c.trap(causeBreakpoint, 0, true)
}

func (c *CPU) execCSR(inst uint32, d decoded32) error {
	addr := (inst >> 20) & 0xFFF
	old := c.readCSR(addr)

	var operand uint32
	if d.funct3 < 0b101 {
		operand = c.X[d.rs1]
	} else {
		operand = d.rs1 // the rs1 field holds a zero-extended 5-bit uimm
	}

	var effective bool
	var newVal uint32
	switch d.funct3 &^ 0b100 { // fold the *I variants onto their register form
	case 0b001: // CSRRW / CSRRWI
		effective = true
		newVal = operand
	case 0b010: // CSRRS / CSRRSI
		effective = operand != 0
		newVal = old | operand
	case 0b011: // CSRRC / CSRRCI
		effective = operand != 0
		newVal = old &^ operand
	default:
		return c.trap(causeIllegalInst, inst, true)
	}

	if effective && csrIsReadOnly(addr) {
		return c.trap(causeIllegalInst, inst, true)
	}

	if d.rd != 0 {
		c.X[d.rd] = old
	}
	if effective {
		c.writeCSR(addr, newVal)
	}
	return nil
}
