/*
 * arm - Coprocessor dispatch (CP15 register transfer) and SWI
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

// armCoprocRegisterOp handles the CDP/MRC/MCR encoding space
// (bits27:24 = 1110). CDP (bit4=0) addresses a coprocessor data
// operation; since only CP15 is modeled and CP15 has no data
// operations, CDP always traps undefined. MRC/MCR (bit4=1) against
// coprocessor 15 reach the system control registers; any other
// coprocessor number traps undefined, matching silicon with no
// coprocessor installed at that number.
func armCoprocRegisterOp(c *CPU, instr uint32) int {
	isRegisterTransfer := (instr>>4)&1 != 0
	if !isRegisterTransfer {
		return c.raiseUndefined()
	}

	coproc := (instr >> 8) & 0xF
	if coproc != 15 {
		return c.raiseUndefined()
	}

	load := (instr>>20)&1 != 0
	crn := (instr >> 16) & 0xF
	rd := int((instr >> 12) & 0xF)
	crm := instr & 0xF
	op2 := (instr >> 5) & 0x7

	if load {
		c.Regs.SetR(rd, c.readCP15(crn, crm, op2))
	} else {
		c.writeCP15(crn, crm, op2, c.Regs.R(rd))
	}
	return 2
}

func (c *CPU) readCP15(crn, crm, op2 uint32) uint32 {
	switch crn {
	case 1:
		return c.CP15.Control
	case 2:
		return c.CP15.TTB
	case 3:
		return c.CP15.DACR
	case 5:
		return uint32(c.CP15.ReadFSR(op2 == 1))
	case 6:
		return c.CP15.FAR
	case 9:
		if crm == 1 {
			return c.CP15.ITCMReg
		}
		return c.CP15.DTCMReg
	case 13:
		return c.CP15.FCSEPID
	default:
		return 0
	}
}

func (c *CPU) writeCP15(crn, crm, op2, val uint32) {
	switch crn {
	case 1:
		c.CP15.WriteControl(val)
	case 2:
		c.CP15.WriteTTB(val)
	case 3:
		c.CP15.WriteDACR(val)
	case 5:
		c.CP15.WriteFSR(op2 == 1, uint8(val))
	case 6:
		c.CP15.WriteFAR(val)
	case 7:
		// cache/TLB maintenance operations: no cache model, treated as
		// architectural no-ops.
	case 9:
		if crm == 1 {
			c.CP15.WriteITCMReg(val)
		} else {
			c.CP15.WriteDTCMReg(val)
		}
	case 13:
		c.CP15.WriteFCSEPID(val)
	}
}

// armCoprocDataTransfer handles LDC/STC (bits27:25 = 110). No modeled
// coprocessor owns memory-mapped transfers, so this always traps
// undefined, the same as real hardware with no matching coprocessor.
func armCoprocDataTransfer(c *CPU, instr uint32) int {
	_ = instr
	return c.raiseUndefined()
}

// armSWIHandler implements the SWI instruction: unconditional trap to
// supervisor mode, the comment field is left for software to interpret.
func armSWIHandler(c *CPU, instr uint32) int {
	_ = instr
	return c.raiseSWI()
}
