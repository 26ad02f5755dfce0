/*
 * arm - Two-level page table walker
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

import "github.com/rcornwell/arm/internal/hostbus"

// descriptor type tags, bits [1:0] of a first or second level entry.
const (
	descFault  = 0
	descCoarse = 1 // first level: coarse page table. second level: large page.
	descSect   = 2 // first level: section. second level: small page.
	descFine   = 3 // first level: fine page table. second level: tiny page (in a fine table only).
)

// AccessKind describes the request driving a translation: whether it is
// a write, an instruction fetch, and whether the requesting mode is
// privileged (anything but User).
type AccessKind struct {
	Write      bool
	Instr      bool
	Privileged bool
}

func (a AccessKind) modeLow4() uint8 {
	if a.Privileged {
		return 1
	}
	return 0
}

// Translate walks the two-level page table for mva, short-circuiting
// when the MMU is disabled. It does not look at the TCM windows; callers
// check TCMLookup before calling it. On a fault it
// updates FSRData/FSRPre and FAR (mirroring what the real CP15 would
// hold once the exception engine delivers the abort) and returns a
// non-nil *Fault; the caller is responsible for raising the exception.
func (c *CP15) Translate(bus hostbus.Bus, vaddr uint32, kind AccessKind) (uint32, *Fault) {
	return c.translate(bus, vaddr, kind, true)
}

// TranslateProbe performs the same walk without touching FSR/FAR.
// Nothing in this module calls it: the prefetch pipeline fills its
// queue through Translate, so a faulting fetch writes FSRPre when the
// slot is filled, even if a branch later discards that slot before it
// executes.
func (c *CP15) TranslateProbe(bus hostbus.Bus, vaddr uint32, kind AccessKind) (uint32, *Fault) {
	return c.translate(bus, vaddr, kind, false)
}

func (c *CP15) translate(bus hostbus.Bus, vaddr uint32, kind AccessKind, commit bool) (uint32, *Fault) {
	mva := c.modifyVA(vaddr)

	if c.Control&CtlMMU == 0 {
		return mva, nil
	}

	l1addr := (c.TTB & 0xFFFFC000) | ((mva >> 18) & 0x3FFC)
	l1 := bus.ReadWord(l1addr)

	switch l1 & 0x3 {
	case descFault:
		return 0, c.raiseFault(kind, mva, FaultTranslation, 0x05, commit)

	case descSect:
		domain := uint8((l1 >> 5) & 0xF)
		ap := uint8((l1 >> 10) & 0x3)
		if f := c.checkDomainAndAP(domain, ap, kind, mva, 9, 13, commit); f != nil {
			return 0, f
		}
		phys := (l1 & 0xFFF00000) | (mva & 0x000FFFFF)
		return phys, nil

	case descCoarse:
		domain := uint8((l1 >> 5) & 0xF)
		l2base := l1 & 0xFFFFFC00
		l2addr := l2base | ((mva >> 10) & 0x3FC)
		l2 := bus.ReadWord(l2addr)
		return c.walkLevel2(l2, domain, mva, kind, commit)

	case descFine:
		domain := uint8((l1 >> 5) & 0xF)
		l2base := l1 & 0xFFFFF000
		l2addr := l2base | ((mva >> 8) & 0xFFC)
		l2 := bus.ReadWord(l2addr)
		return c.walkLevel2(l2, domain, mva, kind, commit)
	}

	return 0, nil // unreachable, l1&0x3 only has four values
}

// walkLevel2 handles the large/small/tiny second-level descriptor
// shared by coarse and fine first-level entries.
func (c *CP15) walkLevel2(l2 uint32, domain uint8, mva uint32, kind AccessKind, commit bool) (uint32, *Fault) {
	switch l2 & 0x3 {
	case descFault:
		return 0, c.raiseFault(kind, mva, FaultTranslation, 0x07|domain<<4, commit)

	case descCoarse: // large page, 64KiB, 4 subpage AP fields
		subpage := (mva >> 14) & 0x3
		ap := apField(l2, subpage)
		if f := c.checkDomainAndAP(domain, ap, kind, mva, 0x0B, 0x0F, commit); f != nil {
			return 0, f
		}
		return (l2 & 0xFFFF0000) | (mva & 0x0000FFFF), nil

	case descSect: // small page, 4KiB, 4 subpage AP fields
		subpage := (mva >> 10) & 0x3
		ap := apField(l2, subpage)
		if f := c.checkDomainAndAP(domain, ap, kind, mva, 0x0B, 0x0F, commit); f != nil {
			return 0, f
		}
		return (l2 & 0xFFFFF000) | (mva & 0x00000FFF), nil

	case descFine: // tiny page, 1KiB, single AP field, fine tables only
		ap := uint8((l2 >> 4) & 0x3)
		if f := c.checkDomainAndAP(domain, ap, kind, mva, 0x0B, 0x0F, commit); f != nil {
			return 0, f
		}
		return (l2 & 0xFFFFFC00) | (mva & 0x000003FF), nil
	}
	return 0, nil
}

// apField extracts one of the four subpage AP fields packed at bits
// 11:10, 13:12, 15:14 and 17:16 of a large/small page descriptor.
func apField(desc uint32, subpage uint32) uint8 {
	return uint8((desc >> (10 + subpage*2)) & 0x3)
}

// checkDomainAndAP resolves the domain access type first; Manager
// skips the AP table outright, Client consults it, anything else is an
// immediate domain fault.
func (c *CP15) checkDomainAndAP(domain uint8, ap uint8, kind AccessKind, mva uint32, domainFSR, permFSR uint8, commit bool) *Fault {
	switch c.Domain(domain) {
	case DomainManager:
		return nil
	case DomainClient:
		if c.checkPermission(ap, kind.modeLow4(), kind.Write) {
			return nil
		}
		return c.raiseFault(kind, mva, FaultPermission, permFSR|domain<<4, commit)
	default: // DomainNoAccess, DomainReserved
		return c.raiseFault(kind, mva, FaultDomain, domainFSR|domain<<4, commit)
	}
}

// modifyVA applies the FCSE process remap: addresses below 32MiB are
// offset by the current PID's 32MiB-aligned slot; everything above is
// passed through untouched.
func (c *CP15) modifyVA(vaddr uint32) uint32 {
	if vaddr >= 0x02000000 {
		return vaddr
	}
	return vaddr + c.fcsePIDOffset()
}

func (c *CP15) raiseFault(kind AccessKind, mva uint32, fk FaultKind, fsr uint8, commit bool) *Fault {
	if commit {
		c.WriteFSR(kind.Instr, fsr)
		if !kind.Instr {
			c.WriteFAR(mva)
		}
	}
	return &Fault{Kind: fk, FSR: fsr, FAR: mva, Prefetch: kind.Instr}
}
