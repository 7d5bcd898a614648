/*
 * rv32ima - Convert Hex to strings.
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

package hex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatWord appends each of word as an 8-digit hex field, space
// separated, to str.
func FormatWord(str *strings.Builder, word []uint32) {
	for _, full := range word {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

func FormatDecimal(str *strings.Builder, num byte) {
	if num >= 100 {
		str.WriteByte(hexMap[num/100])
		num %= 100
	}
	if num >= 10 {
		str.WriteByte(hexMap[num/10])
		num %= 10
	}
	str.WriteByte(hexMap[num])
}

// Word renders a single 32-bit value as an 8-digit hex string with no
// trailing space, for use in slog.Attr values and one-line traces.
func Word(v uint32) string {
	var b strings.Builder
	FormatWord(&b, []uint32{v})
	return strings.TrimSuffix(b.String(), " ")
}

// Regs renders a register file as "x0=00000000 x1=... " in groups of
// four per line, the layout the step tracer and panic dumps use.
func Regs(prefix string, x [32]uint32) string {
	var b strings.Builder
	for i, v := range x {
		if i%4 == 0 {
			if i != 0 {
				b.WriteByte('\n')
			}
			b.WriteString(prefix)
		}
		b.WriteString(" ")
		b.WriteByte('x')
		FormatDecimal(&b, byte(i))
		b.WriteByte('=')
		FormatWord(&b, []uint32{v})
	}
	return b.String()
}
