/*
 * arm - Branch and branch-with-link
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

// armBranch implements B and BL: a PC-relative jump computed from a
// sign-extended 24-bit word offset.
func armBranch(c *CPU, instr uint32) int {
	link := (instr>>24)&1 != 0
	offset := signExtend24(instr&0xFFFFFF) << 2

	target := c.Regs.PC() + offset
	if link {
		c.Regs.SetR(14, c.Regs.PC()-4)
	}
	c.flushTo(target, false)
	return 3
}

func signExtend24(val uint32) uint32 {
	if val&0x00800000 != 0 {
		return val | 0xFF000000
	}
	return val
}
