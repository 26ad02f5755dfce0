/*
 * arm - Barrel shifter and ALU flag helpers
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

// shiftResult carries the shifted operand together with the carry-out
// that feeds the C flag for logical data-processing ops.
type shiftResult struct {
	value uint32
	carry bool
}

// barrelShift implements the four shift types (LSL, LSR, ASR, ROR) used
// by both the register and immediate shift forms of data-processing and
// load/store instructions. amount is already resolved (either the
// immediate field or the low byte of a register).
func barrelShift(shiftType uint32, value uint32, amount uint32, carryIn bool) shiftResult {
	switch shiftType {
	case 0: // LSL
		switch {
		case amount == 0:
			return shiftResult{value, carryIn}
		case amount < 32:
			return shiftResult{value << amount, (value>>(32-amount))&1 != 0}
		case amount == 32:
			return shiftResult{0, value&1 != 0}
		default:
			return shiftResult{0, false}
		}

	case 1: // LSR
		switch {
		case amount == 0:
			return shiftResult{value, carryIn} // encodes LSR #32 for immediate form; caller passes 32 explicitly when needed
		case amount < 32:
			return shiftResult{value >> amount, (value>>(amount-1))&1 != 0}
		case amount == 32:
			return shiftResult{0, value&0x80000000 != 0}
		default:
			return shiftResult{0, false}
		}

	case 2: // ASR
		sval := int32(value)
		switch {
		case amount == 0:
			return shiftResult{value, carryIn}
		case amount < 32:
			return shiftResult{uint32(sval >> amount), (value>>(amount-1))&1 != 0}
		default:
			if sval < 0 {
				return shiftResult{0xFFFFFFFF, true}
			}
			return shiftResult{0, false}
		}

	case 3: // ROR (amount 0 with immediate encodes RRX, handled by caller)
		amount &= 31
		if amount == 0 {
			return shiftResult{value, carryIn}
		}
		rotated := (value >> amount) | (value << (32 - amount))
		return shiftResult{rotated, (value>>(amount-1))&1 != 0}
	}
	return shiftResult{value, carryIn}
}

// rrx implements the rotate-right-with-extend special case: ROR #0 in
// the immediate shift encoding actually means "rotate in the carry
// flag by one position".
func rrx(value uint32, carryIn bool) shiftResult {
	result := value >> 1
	if carryIn {
		result |= 0x80000000
	}
	return shiftResult{result, value&1 != 0}
}

// addWithFlags computes a+b (+carryIn for ADC/SBC forms) and reports
// the N/Z/C/V flags per the standard two's complement overflow rule.
func addWithFlags(a, b uint32, carryIn bool) (result uint32, n, z, c, v bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	wide := uint64(a) + uint64(b) + cin
	result = uint32(wide)
	n = result&0x80000000 != 0
	z = result == 0
	c = wide > 0xFFFFFFFF
	sa := a&0x80000000 != 0
	sb := b&0x80000000 != 0
	sr := result&0x80000000 != 0
	v = sa == sb && sr != sa
	return
}

// subWithFlags computes a-b (-borrowIn for SBC/RSC forms), expressed as
// a + ^b + carryIn per ARM's inverted-borrow convention.
func subWithFlags(a, b uint32, carryIn bool) (result uint32, n, z, c, v bool) {
	return addWithFlags(a, ^b, carryIn)
}

func boolBit(v bool, bit uint32) uint32 {
	if v {
		return bit
	}
	return 0
}

// packNZCV folds the four flag booleans back into CPSR bit positions,
// OR'd onto the non-flag bits the caller already holds.
func packNZCV(cpsr uint32, n, z, c, v bool) uint32 {
	cpsr &^= FlagN | FlagZ | FlagC | FlagV
	cpsr |= boolBit(n, FlagN) | boolBit(z, FlagZ) | boolBit(c, FlagC) | boolBit(v, FlagV)
	return cpsr
}
