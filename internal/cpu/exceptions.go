/*
 * arm - Exception priority engine
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

// exceptionKind enumerates the deliverable exception classes. Reset is
// deliberately absent: Reset() handles it directly and is never routed
// through deliverException.
type exceptionKind int

const (
	excDataAbort exceptionKind = iota
	excFIQ
	excIRQ
	excPrefetchAbort
	excUndefined
	excSWI
)

type excInfo struct {
	vectorOffset uint32
	mode         Mode
	maskI        bool
	maskF        bool
}

var excTable = map[exceptionKind]excInfo{
	excDataAbort:     {vectorOffset: 0x10, mode: ModeABT, maskI: true},
	excFIQ:           {vectorOffset: 0x1C, mode: ModeFIQ, maskI: true, maskF: true},
	excIRQ:           {vectorOffset: 0x18, mode: ModeIRQ, maskI: true},
	excPrefetchAbort: {vectorOffset: 0x0C, mode: ModeABT, maskI: true},
	excUndefined:     {vectorOffset: 0x04, mode: ModeUND, maskI: true},
	excSWI:           {vectorOffset: 0x08, mode: ModeSVC, maskI: true},
}

// pollExceptions checks the asynchronous sources (FIQ, IRQ) in priority
// order; synchronous sources (abort, undefined, SWI) are raised inline
// by the code that detects them, since they are coincident with a
// specific instruction rather than sampled between instructions.
func (c *CPU) pollExceptions() (bool, exceptionKind) {
	if c.FIQPending && c.CPSR&FlagF == 0 {
		return true, excFIQ
	}
	if c.IRQPending && c.CPSR&FlagI == 0 {
		return true, excIRQ
	}
	return false, 0
}

// deliverException performs the architected entry sequence: save
// CPSR to the target mode's SPSR, switch banks, set mode/T/mask bits,
// compute the saved return address per the exception's LR adjustment,
// and load PC from the vector table.
func (c *CPU) deliverException(kind exceptionKind) int {
	info := excTable[kind]

	returnPC := c.Regs.PC()
	savedCPSR := c.CPSR

	c.Regs.SwitchMode(info.mode)
	c.Regs.WriteSPSR(savedCPSR)

	// Each exception handler retries or resumes with a fixed
	// instruction ("SUBS PC,R14,#n" or "MOVS PC,R14") regardless of
	// whether the trapping code ran in ARM or Thumb state, so for aborts
	// and interrupts the saved LR is computed from the actual
	// instruction address rather than from the state-dependent PC
	// read-ahead value. SWI and Undefined derive it from the read-ahead
	// PC, less 4 in ARM state or 2 in Thumb state.
	var lr uint32
	switch kind {
	case excDataAbort:
		lr = c.lastFetchAddr + 8 // handler retries: SUBS PC,R14,#8
	case excPrefetchAbort:
		lr = c.lastFetchAddr + 4 // handler retries: SUBS PC,R14,#4
	case excFIQ, excIRQ:
		lr = c.pipeline.nextInstrAddr() + 4 // handler resumes: SUBS PC,R14,#4
	default: // excUndefined, excSWI: handler resumes: MOVS PC,R14
		if c.thumbState() {
			lr = returnPC - 2
		} else {
			lr = returnPc4Adjust(returnPC)
		}
	}
	c.Regs.SetR(14, lr)

	c.CPSR = uint32(info.mode)
	c.CPSR |= FlagI
	if info.maskF {
		c.CPSR |= savedCPSR & FlagF
		if kind == excFIQ {
			c.CPSR |= FlagF
		}
	} else {
		c.CPSR |= savedCPSR & FlagF
	}
	// exception entry always switches to ARM state.
	c.CPSR &^= FlagT

	if kind == excFIQ {
		c.FIQPending = false
	}
	if kind == excIRQ {
		c.IRQPending = false
	}

	target := c.CP15.VectorBase() + info.vectorOffset
	c.Regs.SetPC(target)
	c.pipeline.reset(target, false)
	c.halted = false

	return 3 // vector fetch + two pipeline refill cycles, matching the prefetch model's refill cost
}

// returnPc4Adjust is the ARM-state SWI/undefined LR value: the address
// of the instruction after the one that trapped.
func returnPc4Adjust(pc uint32) uint32 {
	return pc - 4
}

func (c *CPU) deliverPrefetchAbort(fault *faultInfo) int {
	_ = fault
	return c.deliverException(excPrefetchAbort)
}

func (c *CPU) raiseDataAbort() int {
	return c.deliverException(excDataAbort)
}

func (c *CPU) raiseSWI() int {
	return c.deliverException(excSWI)
}
