/*
 * arm - Core state serialization
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

import (
	"encoding/binary"
	"fmt"
)

// StateEntry is one named, opaque blob of a saved core; hosts persist
// the slice however they like (file, blob column, wire message).
type StateEntry struct {
	Key   string
	Value []byte
}

// SaveState captures every piece of architected state needed to resume
// execution identically: registers, all banked copies, CPSR/SPSRs, and
// the CP15 bank. It does not capture the prefetch queue: the PC slot
// holds the address of the next instruction to execute, and LoadState
// rebuilds the queue by flushing to it, which is architecturally
// equivalent to resuming right after a branch.
func (c *CPU) SaveState() []StateEntry {
	regs := make([]byte, 4*16)
	for i := 0; i < 15; i++ {
		binary.LittleEndian.PutUint32(regs[i*4:], c.Regs.R(i))
	}
	binary.LittleEndian.PutUint32(regs[15*4:], c.pipeline.nextInstrAddr())

	banks := make([]byte, 4*numBanks*2)
	off := 0
	for i := 0; i < numBanks; i++ {
		binary.LittleEndian.PutUint32(banks[off:], c.Regs.bankSP[i])
		off += 4
		binary.LittleEndian.PutUint32(banks[off:], c.Regs.bankLR[i])
		off += 4
	}

	spsrs := make([]byte, 4*numBanks)
	for i := 0; i < numBanks; i++ {
		binary.LittleEndian.PutUint32(spsrs[i*4:], c.Regs.spsr[i])
	}

	fiq := make([]byte, 4*5)
	for i := 0; i < 5; i++ {
		binary.LittleEndian.PutUint32(fiq[i*4:], c.Regs.fiqLow[i])
	}

	cpsr := make([]byte, 4)
	binary.LittleEndian.PutUint32(cpsr, c.CPSR)

	cp15 := make([]byte, 4*6)
	binary.LittleEndian.PutUint32(cp15[0:], c.CP15.Control)
	binary.LittleEndian.PutUint32(cp15[4:], c.CP15.TTB)
	binary.LittleEndian.PutUint32(cp15[8:], c.CP15.DACR)
	binary.LittleEndian.PutUint32(cp15[12:], c.CP15.FAR)
	binary.LittleEndian.PutUint32(cp15[16:], c.CP15.FCSEPID)
	cp15[20] = c.CP15.FSRData
	cp15[21] = c.CP15.FSRPre

	return []StateEntry{
		{Key: "regs", Value: regs},
		{Key: "banks", Value: banks},
		{Key: "spsrs", Value: spsrs},
		{Key: "fiqlow", Value: fiq},
		{Key: "cpsr", Value: cpsr},
		{Key: "cp15", Value: cp15},
	}
}

// LoadState restores a snapshot produced by SaveState and flushes the
// prefetch pipeline to the restored PC.
func (c *CPU) LoadState(entries []StateEntry) error {
	byKey := make(map[string][]byte, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Value
	}

	regs, ok := byKey["regs"]
	if !ok || len(regs) != 64 {
		return fmt.Errorf("state: missing or malformed regs entry")
	}
	for i := 0; i < 16; i++ {
		c.Regs.r[i] = binary.LittleEndian.Uint32(regs[i*4:])
	}

	if banks, ok := byKey["banks"]; ok && len(banks) == 4*numBanks*2 {
		off := 0
		for i := 0; i < numBanks; i++ {
			c.Regs.bankSP[i] = binary.LittleEndian.Uint32(banks[off:])
			off += 4
			c.Regs.bankLR[i] = binary.LittleEndian.Uint32(banks[off:])
			off += 4
		}
	}

	if spsrs, ok := byKey["spsrs"]; ok && len(spsrs) == 4*numBanks {
		for i := 0; i < numBanks; i++ {
			c.Regs.spsr[i] = binary.LittleEndian.Uint32(spsrs[i*4:])
		}
	}

	if fiq, ok := byKey["fiqlow"]; ok && len(fiq) == 20 {
		for i := 0; i < 5; i++ {
			c.Regs.fiqLow[i] = binary.LittleEndian.Uint32(fiq[i*4:])
		}
	}

	if cpsr, ok := byKey["cpsr"]; ok && len(cpsr) == 4 {
		c.CPSR = binary.LittleEndian.Uint32(cpsr)
	}
	c.Regs.curMode = Mode(c.CPSR & 0x1F)
	c.Regs.curBank = modeIndex(c.Regs.curMode)

	if cp15, ok := byKey["cp15"]; ok && len(cp15) == 24 {
		c.CP15.WriteControl(binary.LittleEndian.Uint32(cp15[0:]))
		c.CP15.WriteTTB(binary.LittleEndian.Uint32(cp15[4:]))
		c.CP15.WriteDACR(binary.LittleEndian.Uint32(cp15[8:]))
		c.CP15.WriteFAR(binary.LittleEndian.Uint32(cp15[12:]))
		c.CP15.WriteFCSEPID(binary.LittleEndian.Uint32(cp15[16:]))
		c.CP15.WriteFSR(false, cp15[20])
		c.CP15.WriteFSR(true, cp15[21])
	}

	c.flushTo(c.Regs.PC(), c.thumbState())
	return nil
}
