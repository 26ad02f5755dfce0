/*
 * arm - ARM946ES / IGS036 tightly-coupled memory overlay
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

package mmu

// TCMWindow is one on-chip ITCM or DTCM overlay. Base is the sentinel
// 0xFFFFFFFF when disabled, so no address can ever fall in range.
type TCMWindow struct {
	Base uint32
	Size uint32
	mem  []byte
}

// Contains reports whether addr falls within the window.
func (w *TCMWindow) Contains(addr uint32) bool {
	if w.Base == 0xFFFFFFFF {
		return false
	}
	return addr >= w.Base && addr < w.Base+w.Size
}

func (w *TCMWindow) ensure() {
	if w.mem == nil || uint32(len(w.mem)) != w.Size {
		w.mem = make([]byte, w.Size)
	}
}

func (w *TCMWindow) ReadByte(addr uint32) uint8 {
	return w.mem[addr-w.Base]
}

func (w *TCMWindow) WriteByte(addr uint32, val uint8) {
	w.mem[addr-w.Base] = val
}

// recalcTCM recomputes the ITCM/DTCM window bounds from CP15 reg 9 and
// the enable bits in the control register, per §4.9: size = 512 <<
// ((reg & 0x3F) >> 1), base in the upper bits, window disabled (base
// sentinel) when its enable bit is clear.
func (c *CP15) recalcTCM() {
	if c.Control&CtlITCMEnb != 0 {
		c.ITCM.Size = 512 << ((c.ITCMReg & 0x3F) >> 1)
		c.ITCM.Base = c.ITCMReg & 0xFFFFF000
		c.ITCM.ensure()
	} else {
		c.ITCM.Base = 0xFFFFFFFF
	}

	if c.Control&CtlDTCMEnb != 0 {
		c.DTCM.Size = 512 << ((c.DTCMReg & 0x3F) >> 1)
		c.DTCM.Base = c.DTCMReg & 0xFFFFF000
		c.DTCM.ensure()
	} else {
		c.DTCM.Base = 0xFFFFFFFF
	}
}

// WriteITCMReg stores CP15 reg 9 op3=1 crm=1 and recalculates the ITCM
// window.
func (c *CP15) WriteITCMReg(val uint32) {
	c.ITCMReg = val
	if c.HasTCM {
		c.recalcTCM()
	}
}

// WriteDTCMReg stores CP15 reg 9 op3=1 crm=0 and recalculates the DTCM
// window.
func (c *CP15) WriteDTCMReg(val uint32) {
	c.DTCMReg = val
	if c.HasTCM {
		c.recalcTCM()
	}
}

// TCMLookup consults ITCM then DTCM, returning the window and true if
// addr is intercepted by either before the general bus is reached.
func (c *CP15) TCMLookup(addr uint32) (*TCMWindow, bool) {
	if !c.HasTCM {
		return nil, false
	}
	if c.ITCM.Contains(addr) {
		return &c.ITCM, true
	}
	if c.DTCM.Contains(addr) {
		return &c.DTCM, true
	}
	return nil, false
}
