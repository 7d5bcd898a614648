/*
 * rv32ima - instruction execution entry points and opcode dispatch
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

// Execute32 executes a full 32-bit instruction word. The caller (the
// machine step loop) is responsible for committing PC <- NextPC
// afterward; Execute32 only sets NextPC.
func (c *CPU) Execute32(inst uint32) error {
	c.NextPC = c.PC + 4
	d := c.decode32(inst)
	err := c.dispatch(inst, d, 4)
	c.enforceZeroRegister()
	return err
}

// Execute16 decodes and executes a compressed parcel by expanding it
// to its 32-bit equivalent and dispatching to the same handlers, with
// inst_size=2 (so JAL/JALR save pc+2, matching spec.md §4.3).
func (c *CPU) Execute16(parcel uint16) error {
	c.NextPC = c.PC + 2
	d := c.decode16(parcel)
	if !d.valid {
		return c.trap(causeIllegalInst, uint32(parcel), true)
	}
	err := c.dispatch(d.expansion, d.fields, 2)
	c.enforceZeroRegister()
	return err
}

// dispatch routes a decoded instruction to its opcode handler. instSize
// is 2 or 4 and only affects link-register values (JAL/JALR) and is not
// otherwise visible to most handlers, which already have NextPC set by
// the caller.
func (c *CPU) dispatch(inst uint32, d decoded32, instSize uint32) error {
	switch d.opcode {
	case opLui:
		c.X[d.rd] = uint32(immU(inst))
		return nil
	case opAuipc:
		c.X[d.rd] = c.PC + uint32(immU(inst))
		return nil
	case opJal:
		return c.execJAL(inst, d, instSize)
	case opJalr:
		return c.execJALR(inst, d, instSize)
	case opBranch:
		return c.execBranch(inst, d)
	case opLoad:
		return c.execLoad(inst, d)
	case opStore:
		return c.execStore(inst, d)
	case opImm:
		return c.execOpImm(inst, d)
	case opOp:
		return c.execOp(d)
	case opMiscMem:
		return nil // FENCE / FENCE.I: no-ops, decode cache keeps coherence
	case opAmo:
		return c.execAMO(inst, d)
	case opSystem:
		return c.execSystem(inst, d)
	default:
		return c.trap(causeIllegalInst, inst, true)
	}
}

// checkAlign validates a branch/jump target against the cached
// alignment mask, raising an instruction-address-misaligned trap on
// failure.
func (c *CPU) checkAlign(target uint32) error {
	if target&c.alignMask != 0 {
		return c.trap(causeInstAddrMisaligned, target, true)
	}
	c.NextPC = target
	return nil
}

func (c *CPU) execJAL(inst uint32, d decoded32, instSize uint32) error {
	target := uint32(int32(c.PC) + immJ(inst))
	link := c.PC + instSize
	if err := c.checkAlign(target); err != nil {
		return err
	}
	if d.rd != 0 {
		c.X[d.rd] = link
	}
	return nil
}

func (c *CPU) execJALR(inst uint32, d decoded32, instSize uint32) error {
	target := (uint32(int32(c.X[d.rs1]) + immI(inst))) &^ 0x1
	link := c.PC + instSize
	if err := c.checkAlign(target); err != nil {
		return err
	}
	if d.rd != 0 {
		c.X[d.rd] = link
	}
	return nil
}

func (c *CPU) execBranch(inst uint32, d decoded32) error {
	a := c.X[d.rs1]
	b := c.X[d.rs2]
	var taken bool
	switch d.funct3 {
	case 0b000: // BEQ
		taken = a == b
	case 0b001: // BNE
		taken = a != b
	case 0b100: // BLT
		taken = int32(a) < int32(b)
	case 0b101: // BGE
		taken = int32(a) >= int32(b)
	case 0b110: // BLTU
		taken = a < b
	case 0b111: // BGEU
		taken = a >= b
	default:
		return c.trap(causeIllegalInst, inst, true)
	}
	if !taken {
		return nil
	}
	target := uint32(int32(c.PC) + immB(inst))
	return c.checkAlign(target)
}
