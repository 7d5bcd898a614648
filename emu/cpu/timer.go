/*
 * rv32ima - machine timer tick and interrupt delivery
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

// TimerTick advances mtime by one and delivers a timer or external
// interrupt if one is pending and enabled, per spec.md §4.5. Called by
// the machine step loop after each retired instruction, never by the
// core's own initiative — there is no wall-clock drive here.
func (c *CPU) TimerTick() error {
	c.mtime++
	c.recomputeMTIP()

	if c.CSR[csrMstatus]&(1<<mstatusMIEBit) == 0 {
		return nil
	}

	mip := c.CSR[csrMip]
	mie := c.CSR[csrMie]

	if mip&(1<<mipMTIPBit) != 0 && mie&(1<<mieMTIEBit) != 0 {
		return c.trap(causeMachineTimerIRQ, 0, false)
	}
	if mip&(1<<mipMEIPBit) != 0 && mie&(1<<mieMEIEBit) != 0 {
		return c.trap(causeMachineExternalIRQ, 0, false)
	}
	return nil
}
