/*
 * rv32ima - RV32IMAC opcode, CSR and cause constants
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

// Opcode field values (inst[6:0]).
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

// SYSTEM-opcode exact 32-bit matches.
const (
	instECALL  = 0x00000073
	instMRET   = 0x30200073
	instEBREAK = 0x00100073
	instWFI    = 0x10500073
)

// CSR addresses recognized by this simulator (spec.md §3).
const (
	csrMstatus   = 0x300
	csrMisa      = 0x301
	csrMie       = 0x304
	csrMtvec     = 0x305
	csrMscratch  = 0x340
	csrMepc      = 0x341
	csrMcause    = 0x342
	csrMtval     = 0x343
	csrMip       = 0x344
	csrMtimeLo   = 0x7C0
	csrMtimeHi   = 0x7C1
	csrMtimecmpL = 0x7C2
	csrMtimecmpH = 0x7C3
	csrMinstret  = 0xB02
	csrMinstretH = 0xB82
	csrTselect   = 0x7A0
	csrTdata1    = 0x7A1
	csrTdata2    = 0x7A2
	csrMvendorid = 0xF11
	csrMarchid   = 0xF12
	csrMimpid    = 0xF13
	csrMhartid   = 0xF14
)

// mstatus bit positions.
const (
	mstatusMIEBit  = 3
	mstatusMPIEBit = 7
	mstatusMPPLo   = 11 // MPP occupies bits [12:11]
)

// mip / mie bit positions.
const (
	mipMTIPBit = 7
	mipMEIPBit = 11
	mieMTIEBit = 7
	mieMEIEBit = 11
)

// Trap cause codes (synchronous unless noted). Asynchronous causes have
// the top bit set, matching the RISC-V convention cause | 0x80000000.
const (
	causeInstAddrMisaligned = 0
	causeIllegalInst        = 2
	causeBreakpoint         = 3
	causeLoadAddrMisalign   = 4
	causeStoreAddrMisalign  = 6
	causeECallFromM         = 11
	causeMachineTimerIRQ    = 0x80000007
	causeMachineExternalIRQ = 0x8000000B
)

// misa reset value: RV32 | I | M | A | C.
// bit30 = RV32 (MXL field), bit12 = M, bit8 = I, bit2 = C, bit0 = A.
const misaReset uint32 = (1 << 30) | (1 << 12) | (1 << 8) | (1 << 2) | (1 << 0)

// decoded32 holds the fields a 32-bit instruction decodes into, cached
// by inst>>2 so that the same bit pattern never re-decodes. Immediates
// are type-specific (I/S/B/U/J) and are recomputed by handlers directly
// from the raw instruction word, which they receive alongside this.
type decoded32 struct {
	opcode uint32
	rd     uint32
	funct3 uint32
	rs1    uint32
	rs2    uint32
	funct7 uint32
}

// decoded16 holds a compressed parcel's 32-bit expansion plus its
// decoded fields, cached by the raw 16-bit value.
type decoded16 struct {
	expansion uint32
	fields    decoded32
	valid     bool
}
