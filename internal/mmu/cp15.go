/*
 * arm - CP15 system control coprocessor
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

// Package mmu implements the CP15 system control coprocessor, the
// two-level page table walker, and the ARM946-style TCM overlay.
package mmu

// Control register bit flags (CP15 register 1).
const (
	CtlMMU      uint32 = 1 << 0  // MMU enable
	CtlAlign    uint32 = 1 << 1  // Alignment fault check
	CtlDCache   uint32 = 1 << 2  // Data cache enable
	CtlWBuf     uint32 = 1 << 3  // Write buffer enable
	CtlBigEnd   uint32 = 1 << 7  // Endian override (1 = big)
	CtlSystem   uint32 = 1 << 8  // System protection (S bit)
	CtlROM      uint32 = 1 << 9  // ROM protection (R bit)
	CtlICache   uint32 = 1 << 12 // Instruction cache enable
	CtlVectHigh uint32 = 1 << 13 // Vector base adjust: 1 => 0xFFFF0000
	CtlDTCMEnb  uint32 = 1 << 16 // DTCM window enable (946)
	CtlITCMEnb  uint32 = 1 << 18 // ITCM window enable (946)
)

// Domain Access Control Register per-domain values.
const (
	DomainNoAccess uint8 = 0
	DomainClient   uint8 = 1
	DomainReserved uint8 = 2
	DomainManager  uint8 = 3
)

// FaultKind classifies the outcome of a translate attempt.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultDomain
	FaultPermission
	FaultTranslation
)

// Fault is returned on a failed translation; FSR/FAR mirror what CP15
// would be left holding after the exception engine runs.
type Fault struct {
	Kind      FaultKind
	FSR       uint8
	FAR       uint32
	Prefetch  bool // true => instruction (prefetch) abort, false => data abort
}

// permission result bucket for the precomputed fault table; domain is
// resolved separately against DACR before the table is even consulted
// (see Translate), so the table only ever needs to answer None/Permission.
type permResult uint8

const (
	permNone permResult = iota
	permDenied
)

// CP15 holds the system-control coprocessor's architected state.
type CP15 struct {
	Control uint32
	TTB     uint32
	DACR    uint32
	FSRData uint8
	FSRPre  uint8
	FAR     uint32
	FCSEPID uint32 // 7-bit process id as loaded

	faultTable [512]permResult

	// ARM946ES / IGS036 tightly-coupled memory.
	HasTCM     bool
	ITCMReg    uint32
	DTCMReg    uint32
	ITCM       TCMWindow
	DTCM       TCMWindow

	ModeChanged *bool // set by writes that invalidate dispatch specialization (MMU enable, etc.)
}

// New returns a CP15 bank with the architected reset defaults: MMU
// disabled, vectors at 0x00000000, no TCM.
func New(hasTCM bool) *CP15 {
	c := &CP15{HasTCM: hasTCM}
	c.ITCM.Base = 0xFFFFFFFF
	c.DTCM.Base = 0xFFFFFFFF
	c.rebuildFaultTable()
	return c
}

// fcsePIDOffset returns the remap offset for the current FCSE PID.
func (c *CP15) fcsePIDOffset() uint32 {
	return ((c.FCSEPID >> 25) & 0x7F) * 0x02000000
}

// VectorBase returns 0 or 0xFFFF0000 per the control register's V bit.
func (c *CP15) VectorBase() uint32 {
	if c.Control&CtlVectHigh != 0 {
		return 0xFFFF0000
	}
	return 0
}

func (c *CP15) markModeChanged() {
	if c.ModeChanged != nil {
		*c.ModeChanged = true
	}
}

// WriteControl updates the control register and rebuilds the fault
// table and TCM windows, since both depend on S/R and the TCM enable
// bits.
func (c *CP15) WriteControl(val uint32) {
	c.Control = val
	c.rebuildFaultTable()
	if c.HasTCM {
		c.recalcTCM()
	}
	c.markModeChanged()
}

// WriteTTB updates the translation table base pointer.
func (c *CP15) WriteTTB(val uint32) {
	c.TTB = val & 0xFFFFC000
}

// WriteDACR updates the domain access control register and rebuilds
// the per-domain access table (folded directly into Domain()).
func (c *CP15) WriteDACR(val uint32) {
	c.DACR = val
}

// Domain returns the 2-bit access type for a domain index (0..15).
func (c *CP15) Domain(domain uint8) uint8 {
	return uint8((c.DACR >> (uint(domain) * 2)) & 0x3)
}

// WriteFSR sets the data (op2=0) or prefetch (op2=1) fault status.
func (c *CP15) WriteFSR(prefetch bool, val uint8) {
	if prefetch {
		c.FSRPre = val
	} else {
		c.FSRData = val
	}
}

// ReadFSR mirrors WriteFSR.
func (c *CP15) ReadFSR(prefetch bool) uint8 {
	if prefetch {
		return c.FSRPre
	}
	return c.FSRData
}

// WriteFAR updates the fault address register.
func (c *CP15) WriteFAR(val uint32) {
	c.FAR = val
}

// WriteFCSEPID recomputes the FCSE remap offset.
func (c *CP15) WriteFCSEPID(val uint32) {
	c.FCSEPID = val
}

// rebuildFaultTable materializes the 5-argument permission function
// (mode, AP, S, R, write) for the 128 keys that carry the control
// register's current S/R pair, run whenever the control register
// (source of S/R) changes; keys for other S/R pairs are left as they
// were and are never looked up until S/R changes again. Key layout:
// (write<<8) | ((S<<1|R)<<6) | (AP<<4) | modeLow4.
func (c *CP15) rebuildFaultTable() {
	sBit := uint8(0)
	if c.Control&CtlSystem != 0 {
		sBit = 1
	}
	rBit := uint8(0)
	if c.Control&CtlROM != 0 {
		rBit = 1
	}
	accessControl := (sBit << 1) | rBit

	for write := 0; write < 2; write++ {
		for ap := 0; ap < 4; ap++ {
			for modeLow4 := 0; modeLow4 < 16; modeLow4++ {
				key := (write << 8) | (int(accessControl) << 6) | (ap << 4) | modeLow4
				user := modeLow4 == 0
				allowed := apAllows(uint8(ap), sBit, rBit, user, write != 0)
				if allowed {
					c.faultTable[key] = permNone
				} else {
					c.faultTable[key] = permDenied
				}
			}
		}
	}
}

// apAllows implements the classic ARM AP/S/R permission table.
func apAllows(ap, s, r uint8, user, write bool) bool {
	switch ap {
	case 0:
		switch {
		case s == 0 && r == 0:
			return false
		case s == 1 && r == 0:
			return !user && !write // supervisor read-only
		case s == 0 && r == 1:
			return !write // both read-only
		default:
			return false // S=1,R=1 reserved/unpredictable: deny
		}
	case 1:
		return !user // supervisor read/write, user none
	case 2:
		return !user || !write // supervisor read/write, user read-only
	case 3:
		return true // supervisor and user read/write
	}
	return false
}

// checkPermission is the hot-path fault-table lookup used once the
// domain has already been established as Client.
func (c *CP15) checkPermission(ap uint8, modeLow4 uint8, write bool) bool {
	w := 0
	if write {
		w = 1
	}
	key := (w << 8) | int(c.faultTableAccessControl()) | (int(ap) << 4) | int(modeLow4)
	return c.faultTable[key] == permNone
}

func (c *CP15) faultTableAccessControl() uint32 {
	sBit := uint32(0)
	if c.Control&CtlSystem != 0 {
		sBit = 1
	}
	rBit := uint32(0)
	if c.Control&CtlROM != 0 {
		rBit = 1
	}
	return ((sBit << 1) | rBit) << 6
}
