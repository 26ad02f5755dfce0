/*
 * arm - ARMv5 extensions: CLZ and the unconditional instruction space
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

import "math/bits"

// armCLZ counts leading zeros of Rm into Rd; 32 when Rm is zero.
func armCLZ(c *CPU, instr uint32) int {
	rd := int((instr >> 12) & 0xF)
	rm := int(instr & 0xF)
	c.Regs.SetR(rd, uint32(bits.LeadingZeros32(c.Regs.R(rm))))
	return 1
}

// executeARMv5Unconditional dispatches the cond==1111 instruction
// space reserved by ARMv5 for BLX(1) (an immediate branch-and-link
// that also switches to Thumb) and the cache/prefetch hint space,
// which this core has no cache to act on and treats as architectural
// no-ops.
func (c *CPU) executeARMv5Unconditional(instr uint32) int {
	if (instr>>25)&0x7 == 0x5 { // BLX (immediate)
		return armBLXImmediate(c, instr)
	}
	// PLD and other unconditional hints: no cache modeled, so they are
	// pure no-ops that still consume a cycle.
	return 1
}

// armBLXImmediate implements BLX(1): like BL, but also sets the T bit
// (entering Thumb) and folds bit24 in as an extra half-word of offset.
func armBLXImmediate(c *CPU, instr uint32) int {
	h := (instr >> 24) & 1
	offset := signExtend24(instr&0xFFFFFF)<<2 | (h << 1)

	c.Regs.SetR(14, c.Regs.PC()-4)
	target := c.Regs.PC() + offset
	c.CPSR |= FlagT
	c.flushTo(target, true)
	return 3
}
