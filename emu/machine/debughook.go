/*
 * rv32ima - in-band EBREAK debug hooks
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

package machine

import (
	"log/slog"

	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/util/hex"
)

// a7 sub-actions for the in-band EBREAK debug hook, relative to
// debugHookBase (0xFFFF0000). Not part of any external ABI; a guest
// image that wants these picks them by convention with this emulator.
const (
	debugActionDumpRegs = iota
	debugActionLogInt
	debugActionLogString
	debugActionLogStringInt
)

// NewDebugHook builds a cpu.DebugHook that logs through log, reading
// any guest string argument out of the CPU's memory. It never alters
// architectural state; these actions are purely diagnostic.
func NewDebugHook(log *slog.Logger) cpu.DebugHook {
	return func(c *cpu.CPU, a7 uint32) {
		switch a7 - 0xFFFF0000 {
		case debugActionDumpRegs:
			log.Info("register dump", "pc", hex.Word(c.PC), "regs", "\n"+hex.Regs("x", c.X))
		case debugActionLogInt:
			log.Info("guest log", "value", int32(c.X[10]))
		case debugActionLogString:
			s, err := c.Mem.LoadCString(c.X[10], 4096)
			if err != nil {
				log.Warn("guest log string: bad pointer", "addr", hex.Word(c.X[10]), "err", err)
				return
			}
			log.Info("guest log", "message", s)
		case debugActionLogStringInt:
			s, err := c.Mem.LoadCString(c.X[10], 4096)
			if err != nil {
				log.Warn("guest log string+int: bad pointer", "addr", hex.Word(c.X[10]), "err", err)
				return
			}
			log.Info("guest log", "message", s, "value", int32(c.X[11]))
		default:
			log.Warn("unknown debug hook action", "a7", hex.Word(a7))
		}
	}
}
