/*
 * arm - CPU core: state, dispatch tables, and the top-level step loop
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

// Package cpu implements the instruction interpreter: the banked
// register file, ARM and Thumb dispatch, the exception priority engine
// and the prefetch pipeline, layered on top of the mmu and hostbus
// packages.
package cpu

import (
	"github.com/rcornwell/arm/internal/hostbus"
	"github.com/rcornwell/arm/internal/mmu"
	"github.com/rcornwell/arm/util/debug"
)

// armHandler decodes and executes one ARM instruction already known to
// have passed its condition check. It returns the cycle count consumed.
type armHandler func(c *CPU, instr uint32) int

// thumbHandler is the Thumb-state equivalent.
type thumbHandler func(c *CPU, instr uint16) int

// CPU is one processor core: register file, CPSR, CP15/MMU, the bus it
// is wired to, and the prefetch pipeline feeding Step.
type CPU struct {
	Regs *RegisterFile
	CPSR uint32

	Bus  hostbus.Bus
	CP15 *mmu.CP15

	Variant Variant

	pipeline pipeline

	modeChanged bool // latched by CP15 writes that affect dispatch specialization

	armTable   [256]armHandler
	thumbTable [256]thumbHandler

	Hook InstructionHook

	// halted makes Step idle for one cycle at a time; nothing in this
	// package sets it, and Reset and exception entry clear it.
	halted bool

	cycles uint64

	// FIQPending and IRQPending are host-driven interrupt request
	// lines; the demonstrator harness (or a test) sets them directly.
	FIQPending bool
	IRQPending bool

	// dataAbort is set by the virtual-address bus helpers when a load
	// or store faults; the instruction handler checks it immediately
	// after the access and short-circuits to finishDataAbort.
	dataAbort *faultInfo

	// lastFetchAddr is the byte address of the most recently dequeued
	// instruction, whether it went on to execute or aborted in fetch.
	// Data and prefetch abort LR values are computed from it directly,
	// since it doesn't depend on the ARM/Thumb read-ahead offset the
	// way c.Regs.PC() does.
	lastFetchAddr uint32
}

// NewCPU constructs a core for the named variant, wiring it to bus and
// building its dispatch tables once.
func NewCPU(variant Variant, bus hostbus.Bus) *CPU {
	c := &CPU{
		Regs:    NewRegisterFile(),
		Bus:     bus,
		Variant: variant,
		CP15:    mmu.New(variant.HasTCM),
		Hook:    noopHook{},
	}
	c.CP15.ModeChanged = &c.modeChanged
	c.armTable = buildARMTable()
	c.thumbTable = buildThumbTable()
	c.Reset()
	return c
}

// Reset drives the architected reset sequence: SVC mode, interrupts
// masked, CPSR flags cleared, PC loaded from the reset vector.
func (c *CPU) Reset() {
	c.Regs.SwitchMode(ModeSVC)
	c.CPSR = uint32(ModeSVC) | FlagI | FlagF // reset always enters ARM state even on T-variants
	c.Regs.SetPC(c.CP15.VectorBase())
	c.pipeline.reset(c.CP15.VectorBase(), c.thumbState())
	c.halted = false
}

func (c *CPU) thumbState() bool {
	return c.CPSR&FlagT != 0
}

func (c *CPU) inPrivilegedMode() bool {
	return Mode(c.CPSR&0x1F) != ModeUsr
}

// currentAccess builds the mmu.AccessKind for the current mode.
func (c *CPU) currentAccess(write, instr bool) mmu.AccessKind {
	return mmu.AccessKind{Write: write, Instr: instr, Privileged: c.inPrivilegedMode()}
}

// Step executes exactly one instruction (or services one pending
// exception) and returns the number of core clock cycles it consumed.
// Exception priority follows §4.7: Reset is handled by the caller via
// Reset, never re-raised here; the remaining order is Data Abort, FIQ,
// IRQ, Prefetch Abort, Undefined/SWI.
func (c *CPU) Step() int {
	if pending, kind := c.pollExceptions(); pending {
		return c.deliverException(kind)
	}

	if c.halted {
		return 1
	}

	fetch := c.fetch()
	if fetch.abort != nil {
		return c.deliverPrefetchAbort(fetch.abort)
	}

	c.Hook.BeforeExecute(c, fetch.addr, fetch.instr, fetch.thumb)
	c.traceInst("%08x: %08x thumb=%v", fetch.addr, fetch.instr, fetch.thumb)

	var cycles int
	if fetch.thumb {
		cycles = c.executeThumb(uint16(fetch.instr))
	} else {
		cycles = c.executeARM(fetch.instr)
	}

	c.cycles += uint64(cycles)
	return cycles
}

func (c *CPU) executeARM(instr uint32) int {
	cond := instr >> 28
	if cond == 0xF {
		if c.Variant.ARMv5 {
			return c.executeARMv5Unconditional(instr)
		}
		return 1 // NV on v3/v4: instruction never executes
	}
	if cond != 0xE && !condPassed(cond, c.CPSR) {
		return 1
	}
	index := (instr >> 20) & 0xFF
	handler := c.armTable[index]
	if handler == nil {
		return c.raiseUndefined()
	}
	return handler(c, instr)
}

func (c *CPU) executeThumb(instr uint16) int {
	index := uint8(instr >> 8)
	handler := c.thumbTable[index]
	if handler == nil {
		return c.raiseUndefined()
	}
	return handler(c, instr)
}

// raiseUndefined delivers the undefined-instruction exception inline
// from within a dispatch miss (rather than through pollExceptions,
// since it is synchronous with the instruction that caused it).
func (c *CPU) raiseUndefined() int {
	return c.deliverException(excUndefined)
}

// traceInst forwards to the shared debug sink, tagged with this core's
// instruction-trace bit.
func (c *CPU) traceInst(format string, a ...interface{}) {
	debug.Debugf("cpu", debug.Inst, format, a...)
}
