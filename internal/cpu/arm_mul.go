/*
 * arm - Multiply, swap, halfword transfer, and branch-exchange
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

// armMultiply implements MUL/MLA (32x32 -> low 32 bits).
func armMultiply(c *CPU, instr uint32) int {
	rd := int((instr >> 16) & 0xF)
	rn := int((instr >> 12) & 0xF)
	rs := int((instr >> 8) & 0xF)
	rm := int(instr & 0xF)
	sBit := (instr>>20)&1 != 0
	accumulate := (instr>>21)&1 != 0

	result := c.Regs.R(rm) * c.Regs.R(rs)
	if accumulate {
		result += c.Regs.R(rn)
	}
	c.Regs.SetR(rd, result)

	if sBit {
		c.CPSR = packNZCV(c.CPSR, result&0x80000000 != 0, result == 0, c.CPSR&FlagC != 0, c.CPSR&FlagV != 0)
	}
	return 1
}

// armMultiplyLong implements UMULL/UMLAL/SMULL/SMLAL (32x32 -> 64 bits).
func armMultiplyLong(c *CPU, instr uint32) int {
	rdHi := int((instr >> 16) & 0xF)
	rdLo := int((instr >> 12) & 0xF)
	rs := int((instr >> 8) & 0xF)
	rm := int(instr & 0xF)
	sBit := (instr>>20)&1 != 0
	accumulate := (instr>>21)&1 != 0
	signed := (instr>>22)&1 != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(c.Regs.R(rm))) * int64(int32(c.Regs.R(rs))))
	} else {
		result = uint64(c.Regs.R(rm)) * uint64(c.Regs.R(rs))
	}
	if accumulate {
		result += uint64(c.Regs.R(rdHi))<<32 | uint64(c.Regs.R(rdLo))
	}

	lo := uint32(result)
	hi := uint32(result >> 32)
	c.Regs.SetR(rdLo, lo)
	c.Regs.SetR(rdHi, hi)

	if sBit {
		c.CPSR = packNZCV(c.CPSR, hi&0x80000000 != 0, result == 0, c.CPSR&FlagC != 0, c.CPSR&FlagV != 0)
	}
	return 2
}

// armSwap implements SWP/SWPB: an atomic load-then-store to the same
// address. The interpreter never yields between the two bus accesses,
// so atomicity is free.
func armSwap(c *CPU, instr uint32) int {
	rn := int((instr >> 16) & 0xF)
	rd := int((instr >> 12) & 0xF)
	rm := int(instr & 0xF)
	byteSwap := (instr>>22)&1 != 0

	addr := c.Regs.R(rn)
	access := c.currentAccess(true, false)

	if byteSwap {
		old := c.readByteVA(addr, access)
		if c.dataAbort != nil {
			return c.finishDataAbort()
		}
		c.writeByteVA(addr, uint8(c.Regs.R(rm)), access)
		c.Regs.SetR(rd, uint32(old))
	} else {
		old := c.readWordVA(addr, access)
		if c.dataAbort != nil {
			return c.finishDataAbort()
		}
		c.writeWordVA(addr, c.Regs.R(rm), access)
		c.Regs.SetR(rd, old)
	}
	return 2
}

// armHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH (and their
// immediate-offset forms), identified by bits 7:4 == 1011/1101/1111.
func armHalfwordTransfer(c *CPU, instr uint32) int {
	p := (instr>>24)&1 != 0
	u := (instr>>23)&1 != 0
	immForm := (instr>>22)&1 != 0
	w := (instr>>21)&1 != 0
	l := (instr>>20)&1 != 0
	rn := int((instr >> 16) & 0xF)
	rd := int((instr >> 12) & 0xF)

	var offset uint32
	if immForm {
		offset = ((instr>>8)&0xF)<<4 | (instr & 0xF)
	} else {
		rm := int(instr & 0xF)
		offset = c.Regs.R(rm)
	}

	base := c.Regs.R(rn)
	addr := base
	if p {
		if u {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	sh := (instr >> 5) & 0x3
	access := c.currentAccess(!l, false)

	var cycles int
	switch {
	case l && sh == 0x1: // LDRH
		c.Regs.SetR(rd, uint32(c.readHalfVA(addr, access)))
		cycles = 2
	case l && sh == 0x2: // LDRSB
		v := int32(int8(c.readByteVA(addr, access)))
		c.Regs.SetR(rd, uint32(v))
		cycles = 2
	case l && sh == 0x3: // LDRSH
		v := int32(int16(c.readHalfVA(addr, access)))
		c.Regs.SetR(rd, uint32(v))
		cycles = 2
	case !l && sh == 0x1: // STRH
		c.writeHalfVA(addr, uint16(c.Regs.R(rd)), access)
		cycles = 2
	default:
		cycles = 1
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
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

// armBranchExchange implements BX: switch to Thumb if bit0 of Rm is
// set, jump to Rm with that bit masked off.
func armBranchExchange(c *CPU, instr uint32) int {
	rm := int(instr & 0xF)
	target := c.Regs.R(rm)
	thumb := target&1 != 0
	c.CPSR = (c.CPSR &^ FlagT) | boolBit(thumb, FlagT)
	c.flushTo(target&^1, thumb)
	return 3
}

// armBLXRegister implements BLX (register), a v5 extension: like BX
// but also stashes the return address in LR.
func armBLXRegister(c *CPU, instr uint32) int {
	rm := int(instr & 0xF)
	target := c.Regs.R(rm)
	returnAddr := c.Regs.PC() - 4
	if c.thumbState() {
		returnAddr = c.Regs.PC() - 2
	}
	c.Regs.SetR(14, returnAddr)

	thumb := target&1 != 0
	c.CPSR = (c.CPSR &^ FlagT) | boolBit(thumb, FlagT)
	c.flushTo(target&^1, thumb)
	return 3
}
