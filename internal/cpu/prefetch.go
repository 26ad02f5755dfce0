/*
 * arm - Prefetch pipeline
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

// faultInfo mirrors the subset of mmu.Fault the dispatcher needs to
// decide which exception to deliver.
type faultInfo struct {
	fsr  uint8
	far  uint32
	kind mmu.FaultKind
}

// fetchEntry is one slot of the 3-deep prefetch queue. abort is non-nil
// when the fetch that produced this entry faulted; delivery is
// deferred until the entry reaches the head of the queue and is about
// to execute, so a branch that flushes the queue first discards the
// abort along with the instruction that never really executes.
type fetchEntry struct {
	addr  uint32
	instr uint32
	thumb bool
	abort *faultInfo
}

const pipelineDepth = 3

// pipeline is the 3-stage fetch queue: fetch, decode, execute. Only the
// fetch stage does real work here (decode/execute collapse into the
// dispatch tables), but the queue depth governs the PC+8/PC+4
// read-ahead value instructions observe.
type pipeline struct {
	entries       []fetchEntry
	nextFetchAddr uint32
	thumb         bool
}

// nextInstrAddr returns the byte address of the instruction that will
// execute next: the still-queued head entry if one is buffered, or the
// pipeline's restart address immediately after a flush, before
// refilling has fetched anything at that address yet.
func (p *pipeline) nextInstrAddr() uint32 {
	if len(p.entries) > 0 {
		return p.entries[0].addr
	}
	return p.nextFetchAddr
}

func (p *pipeline) reset(pc uint32, thumb bool) {
	p.entries = p.entries[:0]
	p.nextFetchAddr = pc
	p.thumb = thumb
}

func readAheadOffset(thumb bool) uint32 {
	if thumb {
		return 4
	}
	return 8
}

func instrSize(thumb bool) uint32 {
	if thumb {
		return 2
	}
	return 4
}

// fetchOne performs a single instruction fetch at the pipeline's
// current address, consulting TCM before the general MMU path, exactly
// as a real bus access would.
func (c *CPU) fetchOne() fetchEntry {
	p := &c.pipeline
	addr := p.nextFetchAddr
	thumb := p.thumb

	entry := fetchEntry{addr: addr, thumb: thumb}

	var raw uint32
	if win, ok := c.CP15.TCMLookup(addr); ok {
		if thumb {
			raw = uint32(win.ReadByte(addr)) | uint32(win.ReadByte(addr+1))<<8
		} else {
			raw = uint32(win.ReadByte(addr)) | uint32(win.ReadByte(addr+1))<<8 |
				uint32(win.ReadByte(addr+2))<<16 | uint32(win.ReadByte(addr+3))<<24
		}
	} else {
		phys, fault := c.CP15.Translate(c.Bus, addr, c.currentAccess(false, true))
		if fault != nil {
			entry.abort = &faultInfo{fsr: fault.FSR, far: fault.FAR, kind: fault.Kind}
		} else if thumb {
			raw = uint32(c.Bus.ReadHalf(phys))
		} else {
			raw = c.Bus.ReadWord(phys)
		}
	}

	entry.instr = raw
	p.nextFetchAddr = addr + instrSize(thumb)
	return entry
}

// fetch dequeues the next instruction, refilling the queue so it stays
// pipelineDepth entries deep, and updates the visible PC register to
// the architected read-ahead value for the instruction being returned.
func (c *CPU) fetch() fetchEntry {
	p := &c.pipeline
	for len(p.entries) < pipelineDepth {
		p.entries = append(p.entries, c.fetchOne())
	}
	entry := p.entries[0]
	p.entries = p.entries[1:]

	c.lastFetchAddr = entry.addr
	c.Regs.SetPC(entry.addr + readAheadOffset(entry.thumb))
	return entry
}

// flushTo discards all queued entries (and any abort they carried) and
// restarts fetching at pc; called by every taken branch and mode
// switch, per the deferred-abort rule. PC is re-pointed at pc's
// read-ahead value immediately, rather than left holding the
// just-executed instruction's stale read-ahead value until the next
// fetch runs.
func (c *CPU) flushTo(pc uint32, thumb bool) {
	c.pipeline.reset(pc, thumb)
	c.Regs.SetPC(pc + readAheadOffset(thumb))
}
