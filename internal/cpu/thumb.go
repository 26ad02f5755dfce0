/*
 * arm - Thumb instruction set
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

// buildThumbTable keys the compact 16-bit instruction space on bits
// 15:8, the same way the ARM table keys on bits 27:20; several Thumb
// formats still need their low byte for a register/immediate field,
// which each handler pulls straight from the raw instruction.
func buildThumbTable() [256]thumbHandler {
	var t [256]thumbHandler

	for index := 0; index < 256; index++ {
		b := uint32(index)
		switch {
		case b>>5 == 0x0 && (b>>3)&0x3 == 0x3: // 00011x: add/subtract
			t[index] = thumbAddSubtract
		case b>>5 == 0x0: // 000xx: shift by immediate
			t[index] = thumbShiftImmediate
		case b>>5 == 0x1: // 001xx: move/compare/add/subtract immediate
			t[index] = thumbImmediateOp
		case b>>2 == 0x10: // 010000: ALU operations
			t[index] = thumbALU
		case b>>2 == 0x11: // 010001: hi register ops / BX / BLX
			t[index] = thumbHiRegisterOp
		case b>>3 == 0x9: // 01001x: PC-relative load
			t[index] = thumbPCRelativeLoad
		case b>>4 == 0x5 && (b&0x2) == 0: // 0101xx0: load/store register offset
			t[index] = thumbLoadStoreRegisterOffset
		case b>>4 == 0x5 && (b&0x2) != 0: // 0101xx1: load/store sign-extended
			t[index] = thumbLoadStoreSignExtended
		case b>>5 == 0x3: // 011xx: load/store immediate offset (word/byte)
			t[index] = thumbLoadStoreImmediate
		case b>>4 == 0x8: // 1000x: load/store halfword
			t[index] = thumbLoadStoreHalfword
		case b>>4 == 0x9: // 1001x: SP-relative load/store
			t[index] = thumbSPRelativeLoadStore
		case b>>4 == 0xA: // 1010x: load address
			t[index] = thumbLoadAddress
		case b == 0xB0: // add offset to SP
			t[index] = thumbAddOffsetToSP
		case b>>4 == 0xB && (b>>1)&0x3 == 0x2: // 1011x10: push/pop
			t[index] = thumbPushPop
		case b>>4 == 0xC: // 1100x: multiple load/store
			t[index] = thumbLoadStoreMultiple
		case b>>4 == 0xD && (b&0xF) == 0xF: // 11011111: SWI
			t[index] = thumbSWI
		case b>>4 == 0xD: // 1101x: conditional branch
			t[index] = thumbConditionalBranch
		case b>>3 == 0x1C: // 11100: unconditional branch
			t[index] = thumbUnconditionalBranch
		case b>>3 == 0x1D || b>>3 == 0x1E || b>>3 == 0x1F: // 111xx: BL/BLX long branch halves
			t[index] = thumbLongBranchLink
		}
	}

	return t
}

func signExtend(val uint32, bit uint) uint32 {
	mask := uint32(1) << bit
	if val&mask != 0 {
		return val | ^((mask << 1) - 1)
	}
	return val
}

// thumbShiftImmediate: LSL/LSR/ASR Rd, Rm, #imm5.
func thumbShiftImmediate(c *CPU, instr uint16) int {
	op := (instr >> 11) & 0x3
	amount := uint32((instr >> 6) & 0x1F)
	rm := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	val := c.Regs.R(rm)
	carryIn := c.CPSR&FlagC != 0

	var sh shiftResult
	switch op {
	case 0:
		sh = barrelShift(0, val, amount, carryIn)
	case 1:
		if amount == 0 {
			amount = 32
		}
		sh = barrelShift(1, val, amount, carryIn)
	case 2:
		if amount == 0 {
			amount = 32
		}
		sh = barrelShift(2, val, amount, carryIn)
	}
	c.Regs.SetR(rd, sh.value)
	c.CPSR = packNZCV(c.CPSR, sh.value&0x80000000 != 0, sh.value == 0, sh.carry, c.CPSR&FlagV != 0)
	return 1
}

// thumbAddSubtract: ADD/SUB Rd, Rn, Rm|#imm3.
func thumbAddSubtract(c *CPU, instr uint16) int {
	immForm := (instr>>10)&1 != 0
	sub := (instr>>9)&1 != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rn := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	op1 := c.Regs.R(rn)
	var op2 uint32
	if immForm {
		op2 = rnOrImm
	} else {
		op2 = c.Regs.R(int(rnOrImm))
	}

	var result uint32
	var n, z, cf, v bool
	if sub {
		result, n, z, cf, v = subWithFlags(op1, op2, true)
	} else {
		result, n, z, cf, v = addWithFlags(op1, op2, false)
	}
	c.Regs.SetR(rd, result)
	c.CPSR = packNZCV(c.CPSR, n, z, cf, v)
	return 1
}

// thumbImmediateOp: MOV/CMP/ADD/SUB Rd, #imm8.
func thumbImmediateOp(c *CPU, instr uint16) int {
	op := (instr >> 11) & 0x3
	rd := int((instr >> 8) & 0x7)
	imm := uint32(instr & 0xFF)

	cur := c.Regs.R(rd)
	var result uint32
	var n, z, cf, v bool
	switch op {
	case 0: // MOV
		result = imm
		n, z = result&0x80000000 != 0, result == 0
		cf, v = c.CPSR&FlagC != 0, c.CPSR&FlagV != 0
		c.Regs.SetR(rd, result)
	case 1: // CMP
		result, n, z, cf, v = subWithFlags(cur, imm, true)
	case 2: // ADD
		result, n, z, cf, v = addWithFlags(cur, imm, false)
		c.Regs.SetR(rd, result)
	case 3: // SUB
		result, n, z, cf, v = subWithFlags(cur, imm, true)
		c.Regs.SetR(rd, result)
	}
	c.CPSR = packNZCV(c.CPSR, n, z, cf, v)
	return 1
}

// thumbALU covers the sixteen two-operand ALU ops (format 010000).
func thumbALU(c *CPU, instr uint16) int {
	op := (instr >> 6) & 0xF
	rs := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	a := c.Regs.R(rd)
	b := c.Regs.R(rs)
	carryIn := c.CPSR&FlagC != 0

	var result uint32
	var n, z, cf, v bool
	write := true

	switch op {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		sh := barrelShift(0, a, b&0xFF, carryIn)
		result, cf = sh.value, sh.carry
	case 0x3: // LSR
		amt := b & 0xFF
		sh := barrelShift(1, a, amt, carryIn)
		result, cf = sh.value, sh.carry
	case 0x4: // ASR
		amt := b & 0xFF
		sh := barrelShift(2, a, amt, carryIn)
		result, cf = sh.value, sh.carry
	case 0x5: // ADC
		result, n, z, cf, v = addWithFlags(a, b, carryIn)
	case 0x6: // SBC
		result, n, z, cf, v = subWithFlags(a, b, carryIn)
	case 0x7: // ROR
		sh := barrelShift(3, a, b&0x1F, carryIn)
		result, cf = sh.value, sh.carry
	case 0x8: // TST
		result = a & b
		write = false
	case 0x9: // NEG
		result, n, z, cf, v = subWithFlags(0, b, true)
	case 0xA: // CMP
		result, n, z, cf, v = subWithFlags(a, b, true)
		write = false
	case 0xB: // CMN
		result, n, z, cf, v = addWithFlags(a, b, false)
		write = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
	case 0xE: // BIC
		result = a &^ b
	case 0xF: // MVN
		result = ^b
	}

	if op == 0x0 || op == 0x1 || op == 0x2 || op == 0x3 || op == 0x4 || op == 0x7 ||
		op == 0xC || op == 0xD || op == 0xE || op == 0xF || op == 0x8 {
		n = result&0x80000000 != 0
		z = result == 0
		if op == 0xD { // MUL carry is architecturally meaningless; leave C alone
			cf = carryIn
		}
		v = c.CPSR&FlagV != 0
	}

	if write {
		c.Regs.SetR(rd, result)
	}
	c.CPSR = packNZCV(c.CPSR, n, z, cf, v)
	return 1
}

// thumbHiRegisterOp covers ADD/CMP/MOV on registers r8-r15 and
// BX/BLX(2).
func thumbHiRegisterOp(c *CPU, instr uint16) int {
	op := (instr >> 8) & 0x3
	h1 := (instr >> 7) & 0x1
	h2 := (instr >> 6) & 0x1
	rs := int((instr>>3)&0x7) + int(h2)*8
	rd := int(instr&0x7) + int(h1)*8

	switch op {
	case 0: // ADD
		c.Regs.SetR(rd, c.Regs.R(rd)+c.Regs.R(rs))
		if rd == 15 {
			c.flushTo(c.Regs.R(15)&^1, c.thumbState())
		}
	case 1: // CMP
		_, n, z, cf, v := subWithFlags(c.Regs.R(rd), c.Regs.R(rs), true)
		c.CPSR = packNZCV(c.CPSR, n, z, cf, v)
	case 2: // MOV
		c.Regs.SetR(rd, c.Regs.R(rs))
		if rd == 15 {
			c.flushTo(c.Regs.R(15)&^1, c.thumbState())
		}
	case 3: // BX / BLX(2)
		target := c.Regs.R(rs)
		if h1 != 0 {
			c.Regs.SetR(14, c.Regs.PC()-2)
		}
		thumb := target&1 != 0
		c.CPSR = (c.CPSR &^ FlagT) | boolBit(thumb, FlagT)
		c.flushTo(target&^1, thumb)
	}
	return 2
}

func thumbPCRelativeLoad(c *CPU, instr uint16) int {
	rd := int((instr >> 8) & 0x7)
	imm := uint32(instr&0xFF) << 2
	base := (c.Regs.PC() &^ 3) + imm
	val := c.readWordVA(base, c.currentAccess(false, false))
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	c.Regs.SetR(rd, val)
	return 3
}

func thumbLoadStoreRegisterOffset(c *CPU, instr uint16) int {
	l := (instr>>11)&1 != 0
	bBit := (instr>>10)&1 != 0
	ro := int((instr >> 6) & 0x7)
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	addr := c.Regs.R(rb) + c.Regs.R(ro)
	access := c.currentAccess(!l, false)

	if l {
		if bBit {
			c.Regs.SetR(rd, uint32(c.readByteVA(addr, access)))
		} else {
			c.Regs.SetR(rd, c.readWordVA(addr, access))
		}
	} else {
		if bBit {
			c.writeByteVA(addr, uint8(c.Regs.R(rd)), access)
		} else {
			c.writeWordVA(addr, c.Regs.R(rd), access)
		}
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 2
}

func thumbLoadStoreSignExtended(c *CPU, instr uint16) int {
	hBit := (instr>>11)&1 != 0
	signExt := (instr>>10)&1 != 0
	ro := int((instr >> 6) & 0x7)
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	addr := c.Regs.R(rb) + c.Regs.R(ro)
	access := c.currentAccess(!signExt && !hBit, false)

	switch {
	case !signExt && !hBit: // STRH
		c.writeHalfVA(addr, uint16(c.Regs.R(rd)), access)
	case !signExt && hBit: // LDRH
		c.Regs.SetR(rd, uint32(c.readHalfVA(addr, access)))
	case signExt && !hBit: // LDSB
		v := int32(int8(c.readByteVA(addr, access)))
		c.Regs.SetR(rd, uint32(v))
	default: // LDSH
		v := int32(int16(c.readHalfVA(addr, access)))
		c.Regs.SetR(rd, uint32(v))
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 2
}

func thumbLoadStoreImmediate(c *CPU, instr uint16) int {
	bBit := (instr>>12)&1 != 0
	l := (instr>>11)&1 != 0
	imm := uint32((instr >> 6) & 0x1F)
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	var addr uint32
	if bBit {
		addr = c.Regs.R(rb) + imm
	} else {
		addr = c.Regs.R(rb) + imm*4
	}
	access := c.currentAccess(!l, false)

	if l {
		if bBit {
			c.Regs.SetR(rd, uint32(c.readByteVA(addr, access)))
		} else {
			c.Regs.SetR(rd, c.readWordVA(addr, access))
		}
	} else {
		if bBit {
			c.writeByteVA(addr, uint8(c.Regs.R(rd)), access)
		} else {
			c.writeWordVA(addr, c.Regs.R(rd), access)
		}
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 2
}

func thumbLoadStoreHalfword(c *CPU, instr uint16) int {
	l := (instr>>11)&1 != 0
	imm := uint32((instr>>6)&0x1F) << 1
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	addr := c.Regs.R(rb) + imm
	access := c.currentAccess(!l, false)
	if l {
		c.Regs.SetR(rd, uint32(c.readHalfVA(addr, access)))
	} else {
		c.writeHalfVA(addr, uint16(c.Regs.R(rd)), access)
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 2
}

func thumbSPRelativeLoadStore(c *CPU, instr uint16) int {
	l := (instr>>11)&1 != 0
	rd := int((instr >> 8) & 0x7)
	imm := uint32(instr&0xFF) << 2

	addr := c.Regs.R(13) + imm
	access := c.currentAccess(!l, false)
	if l {
		c.Regs.SetR(rd, c.readWordVA(addr, access))
	} else {
		c.writeWordVA(addr, c.Regs.R(rd), access)
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 2
}

func thumbLoadAddress(c *CPU, instr uint16) int {
	sp := (instr>>11)&1 != 0
	rd := int((instr >> 8) & 0x7)
	imm := uint32(instr&0xFF) << 2

	var base uint32
	if sp {
		base = c.Regs.R(13)
	} else {
		base = c.Regs.PC() &^ 3
	}
	c.Regs.SetR(rd, base+imm)
	return 1
}

func thumbAddOffsetToSP(c *CPU, instr uint16) int {
	neg := (instr>>7)&1 != 0
	imm := uint32(instr&0x7F) << 2
	if neg {
		c.Regs.SetR(13, c.Regs.R(13)-imm)
	} else {
		c.Regs.SetR(13, c.Regs.R(13)+imm)
	}
	return 1
}

func thumbPushPop(c *CPU, instr uint16) int {
	pop := (instr>>11)&1 != 0
	withExtra := (instr>>8)&1 != 0
	list := uint32(instr & 0xFF)

	access := c.currentAccess(!pop, false)
	if pop {
		sp := c.Regs.R(13)
		for reg := 0; reg < 8; reg++ {
			if list&(1<<uint(reg)) == 0 {
				continue
			}
			c.Regs.SetR(reg, c.readWordVA(sp, access))
			sp += 4
		}
		if withExtra {
			target := c.readWordVA(sp, access)
			sp += 4
			c.flushTo(target&^1, true)
		}
		c.Regs.SetR(13, sp)
	} else {
		count := bits.OnesCount32(list)
		if withExtra {
			count++
		}
		sp := c.Regs.R(13) - uint32(count)*4
		c.Regs.SetR(13, sp)
		addr := sp
		for reg := 0; reg < 8; reg++ {
			if list&(1<<uint(reg)) == 0 {
				continue
			}
			c.writeWordVA(addr, c.Regs.R(reg), access)
			addr += 4
		}
		if withExtra {
			c.writeWordVA(addr, c.Regs.R(14), access)
		}
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	return 3
}

func thumbLoadStoreMultiple(c *CPU, instr uint16) int {
	l := (instr>>11)&1 != 0
	rb := int((instr >> 8) & 0x7)
	list := uint32(instr & 0xFF)

	addr := c.Regs.R(rb)
	access := c.currentAccess(!l, false)
	for reg := 0; reg < 8; reg++ {
		if list&(1<<uint(reg)) == 0 {
			continue
		}
		if l {
			c.Regs.SetR(reg, c.readWordVA(addr, access))
		} else {
			c.writeWordVA(addr, c.Regs.R(reg), access)
		}
		addr += 4
	}
	if c.dataAbort != nil {
		return c.finishDataAbort()
	}
	c.Regs.SetR(rb, addr)
	return 3
}

func thumbConditionalBranch(c *CPU, instr uint16) int {
	cond := uint32((instr >> 8) & 0xF)
	if !condPassed(cond, c.CPSR) {
		return 1
	}
	offset := signExtend(uint32(instr&0xFF)<<1, 8)
	c.flushTo(c.Regs.PC()+offset, true)
	return 3
}

func thumbSWI(c *CPU, instr uint16) int {
	_ = instr
	return c.raiseSWI()
}

func thumbUnconditionalBranch(c *CPU, instr uint16) int {
	offset := signExtend(uint32(instr&0x7FF)<<1, 11)
	c.flushTo(c.Regs.PC()+offset, true)
	return 3
}

// thumbLongBranchLink implements the two-halfword BL/BLX(1) sequence.
// The first halfword (bits12:11==10) stashes a PC-relative high
// offset into LR; the second (11 or 01 for BLX) computes the final
// target from LR and resolves the branch.
func thumbLongBranchLink(c *CPU, instr uint16) int {
	sub := (instr >> 11) & 0x3

	if sub == 0x2 {
		offset := signExtend(uint32(instr&0x7FF)<<12, 22)
		c.Regs.SetR(14, c.Regs.PC()+offset)
		return 1
	}

	offHalf := uint32(instr&0x7FF) << 1
	target := c.Regs.R(14) + offHalf
	nextInstr := c.Regs.PC() - 2
	c.Regs.SetR(14, nextInstr|1)

	if sub == 0x1 && c.Variant.ARMv5 { // BLX suffix: drop to ARM state, word-align
		c.CPSR &^= FlagT
		c.flushTo(target&^3, false)
	} else {
		c.flushTo(target, true)
	}
	return 3
}
