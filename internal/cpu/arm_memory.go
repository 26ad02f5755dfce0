/*
 * arm - Single data transfer and the shared virtual-address bus helpers
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

import "github.com/rcornwell/arm/internal/mmu"

// armSingleDataTransfer implements LDR/STR/LDRB/STRB, both the
// immediate-offset and shifted-register-offset forms (bit25
// distinguishes them, confusingly inverted from the halfword group).
func armSingleDataTransfer(c *CPU, instr uint32) int {
	registerOffset := (instr>>25)&1 != 0
	p := (instr>>24)&1 != 0
	u := (instr>>23)&1 != 0
	b := (instr>>22)&1 != 0
	w := (instr>>21)&1 != 0
	l := (instr>>20)&1 != 0
	rn := int((instr >> 16) & 0xF)
	rd := int((instr >> 12) & 0xF)

	var offset uint32
	if registerOffset {
		rm := int(instr & 0xF)
		shiftType := (instr >> 5) & 0x3
		amount := (instr >> 7) & 0x1F
		rmVal := c.Regs.R(rm)
		var sh shiftResult
		if amount == 0 && shiftType == 3 {
			sh = rrx(rmVal, c.CPSR&FlagC != 0)
		} else {
			sh = barrelShift(shiftType, rmVal, amount, c.CPSR&FlagC != 0)
		}
		offset = sh.value
	} else {
		offset = instr & 0xFFF
	}

	base := c.Regs.R(rn)
	addr := base
	if p {
		if u {
			addr += offset
		} else {
			addr -= offset
		}
	}

	access := c.currentAccess(!l, false)

	var cycles int
	if l {
		if b {
			c.Regs.SetR(rd, uint32(c.readByteVA(addr, access)))
		} else {
			c.Regs.SetR(rd, c.readWordRotated(addr, access))
		}
		if c.dataAbort != nil {
			return c.finishDataAbort()
		}
		cycles = 3
		if rd == 15 {
			c.flushTo(c.Regs.R(15)&^3, c.thumbState())
			cycles = 5
		}
	} else {
		if b {
			c.writeByteVA(addr, uint8(c.Regs.R(rd)), access)
		} else {
			c.writeWordVA(addr, c.Regs.R(rd), access)
		}
		if c.dataAbort != nil {
			return c.finishDataAbort()
		}
		cycles = 2
	}

	if !p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.Regs.SetR(rn, addr)
	} else if w {
		c.Regs.SetR(rn, addr)
	}

	return cycles
}

// readWordRotated implements the classic unaligned-word-load behavior:
// the bus always reads the aligned word containing addr, then the
// core rotates it right by 8*(addr&3), rather than faulting.
func (c *CPU) readWordRotated(addr uint32, access mmu.AccessKind) uint32 {
	aligned := addr &^ 3
	val := c.readWordVA(aligned, access)
	rot := (addr & 3) * 8
	if rot == 0 {
		return val
	}
	return (val >> rot) | (val << (32 - rot))
}

func (c *CPU) finishDataAbort() int {
	c.dataAbort = nil
	return c.raiseDataAbort()
}

func (c *CPU) translateOrAbort(addr uint32, access mmu.AccessKind) (uint32, bool) {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		_ = win
		return addr, true // TCM windows are identity-mapped; callers check TCMLookup themselves before calling this
	}
	phys, fault := c.CP15.Translate(c.Bus, addr, access)
	if fault != nil {
		c.dataAbort = &faultInfo{fsr: fault.FSR, far: fault.FAR, kind: fault.Kind}
		return 0, false
	}
	return phys, true
}

func (c *CPU) readByteVA(addr uint32, access mmu.AccessKind) uint8 {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		return win.ReadByte(addr)
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return 0
	}
	return c.Bus.ReadByte(phys)
}

func (c *CPU) writeByteVA(addr uint32, val uint8, access mmu.AccessKind) {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		win.WriteByte(addr, val)
		return
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return
	}
	c.Bus.WriteByte(phys, val)
}

func (c *CPU) readHalfVA(addr uint32, access mmu.AccessKind) uint16 {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		return uint16(win.ReadByte(addr)) | uint16(win.ReadByte(addr+1))<<8
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return 0
	}
	return c.Bus.ReadHalf(phys)
}

func (c *CPU) writeHalfVA(addr uint32, val uint16, access mmu.AccessKind) {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		win.WriteByte(addr, uint8(val))
		win.WriteByte(addr+1, uint8(val>>8))
		return
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return
	}
	c.Bus.WriteHalf(phys, val)
}

func (c *CPU) readWordVA(addr uint32, access mmu.AccessKind) uint32 {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		return uint32(win.ReadByte(addr)) | uint32(win.ReadByte(addr+1))<<8 |
			uint32(win.ReadByte(addr+2))<<16 | uint32(win.ReadByte(addr+3))<<24
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return 0
	}
	return c.Bus.ReadWord(phys)
}

func (c *CPU) writeWordVA(addr uint32, val uint32, access mmu.AccessKind) {
	if win, ok := c.CP15.TCMLookup(addr); ok {
		win.WriteByte(addr, uint8(val))
		win.WriteByte(addr+1, uint8(val>>8))
		win.WriteByte(addr+2, uint8(val>>16))
		win.WriteByte(addr+3, uint8(val>>24))
		return
	}
	phys, ok := c.translateOrAbort(addr, access)
	if !ok {
		return
	}
	c.Bus.WriteWord(phys, val)
}
