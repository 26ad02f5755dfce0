/*
 * arm - Block data transfer (LDM/STM)
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

// armBlockTransfer implements LDM/STM, including the S-bit user-bank
// forms: S set with R15 absent from the register list forces every
// transferred register through the User bank regardless of current
// mode (used by privileged code to spill/fill user context); S set
// with R15 present in an LDM instead loads CPSR from SPSR once the
// transfer completes.
func armBlockTransfer(c *CPU, instr uint32) int {
	p := (instr>>24)&1 != 0
	u := (instr>>23)&1 != 0
	s := (instr>>22)&1 != 0
	w := (instr>>21)&1 != 0
	l := (instr>>20)&1 != 0
	rn := int((instr >> 16) & 0xF)
	list := instr & 0xFFFF

	count := bits.OnesCount32(list)
	base := c.Regs.R(rn)

	var start uint32
	if u {
		start = base
		if p {
			start += 4
		}
	} else {
		start = base - uint32(count)*4
		if p {
			// nothing, start already points at the first transferred word
		} else {
			start += 4
		}
	}

	baseInList := list&(1<<uint(rn)) != 0
	userBank := s && (list&0x8000 == 0)

	addr := start
	cycles := 1
	for reg := 0; reg < 16; reg++ {
		if list&(1<<uint(reg)) == 0 {
			continue
		}
		access := c.currentAccess(!l, false)
		if l {
			val := c.readWordVA(addr, access)
			if c.dataAbort != nil {
				return c.finishDataAbort()
			}
			if userBank {
				c.storeUserBank(reg, val)
			} else {
				c.Regs.SetR(reg, val)
			}
		} else {
			var val uint32
			if userBank {
				val = c.loadUserBank(reg)
			} else {
				val = c.Regs.R(reg)
			}
			c.writeWordVA(addr, val, access)
			if c.dataAbort != nil {
				return c.finishDataAbort()
			}
		}
		addr += 4
		cycles++
	}

	if w && (!l || !baseInList) {
		if u {
			c.Regs.SetR(rn, base+uint32(count)*4)
		} else {
			c.Regs.SetR(rn, base-uint32(count)*4)
		}
	}

	if l && list&0x8000 != 0 {
		if s && c.Regs.HasSPSR() {
			c.CPSR = c.Regs.ReadSPSR()
			c.Regs.SwitchMode(Mode(c.CPSR & 0x1F))
		}
		c.flushTo(c.Regs.R(15)&^3, c.thumbState())
	}

	return cycles
}

// storeUserBank and loadUserBank bypass the current mode's banked
// registers, used only by the S-bit user-bank transfer form.
func (c *CPU) storeUserBank(reg int, val uint32) {
	if reg < 8 || reg == 15 {
		c.Regs.SetR(reg, val)
		return
	}
	saved := c.Regs.CurrentMode()
	c.Regs.SwitchMode(ModeUsr)
	c.Regs.SetR(reg, val)
	c.Regs.SwitchMode(saved)
}

func (c *CPU) loadUserBank(reg int) uint32 {
	if reg < 8 || reg == 15 {
		return c.Regs.R(reg)
	}
	saved := c.Regs.CurrentMode()
	c.Regs.SwitchMode(ModeUsr)
	val := c.Regs.R(reg)
	c.Regs.SwitchMode(saved)
	return val
}
