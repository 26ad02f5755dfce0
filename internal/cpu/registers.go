/*
 * arm - Banked register file
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

// Mode is one of the seven ARM processor modes, encoded as the low 5
// bits of CPSR the way the architecture defines them.
type Mode uint8

const (
	ModeUsr Mode = 0x10
	ModeFIQ Mode = 0x11
	ModeIRQ Mode = 0x12
	ModeSVC Mode = 0x13
	ModeABT Mode = 0x17
	ModeUND Mode = 0x1B
	ModeSYS Mode = 0x1F
)

// modeIndex maps a CPSR mode field to a 0..5 bank selector.
func modeIndex(m Mode) int {
	switch m {
	case ModeUsr, ModeSYS:
		return 0 // user and system share the same bank
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSVC:
		return 3
	case ModeABT:
		return 4
	case ModeUND:
		return 5
	default:
		return 0
	}
}

const numBanks = 6

// RegisterFile is the flat store backing all 16 visible registers
// across all seven modes, plus the banked SPSRs. R0-R7 and R15 (PC)
// are never banked; R8-R12 bank only for FIQ; R13/R14 bank per mode.
type RegisterFile struct {
	r       [16]uint32      // currently visible r0..r15
	fiqLow  [5]uint32       // the r8..r12 bank not visible now: FIQ's copies outside FIQ mode, the shared copies in FIQ mode
	bankSP  [numBanks]uint32 // r13 per bank
	bankLR  [numBanks]uint32 // r14 per bank
	spsr    [numBanks]uint32 // 0 (user bank) is never a valid SPSR target
	curMode Mode
	curBank int
}

// NewRegisterFile returns a register file reset into supervisor mode,
// per architectural reset behavior.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{curMode: ModeSVC, curBank: modeIndex(ModeSVC)}
	return rf
}

// R reads register n (0..15) as currently banked.
func (rf *RegisterFile) R(n int) uint32 {
	return rf.r[n]
}

// SetR writes register n (0..15) as currently banked.
func (rf *RegisterFile) SetR(n int, val uint32) {
	rf.r[n] = val
}

// PC returns the raw program counter register (r15). While an
// instruction executes it already holds the read-ahead value (the
// instruction's address plus 8 in ARM state, plus 4 in Thumb state),
// stored there by fetch and flushTo.
func (rf *RegisterFile) PC() uint32 {
	return rf.r[15]
}

// SetPC stores the program counter directly.
func (rf *RegisterFile) SetPC(val uint32) {
	rf.r[15] = val
}

// CurrentMode returns the active processor mode.
func (rf *RegisterFile) CurrentMode() Mode {
	return rf.curMode
}

// SwitchMode banks out r13/r14 (and r8-r12 when leaving FIQ) for the
// outgoing mode and banks in the incoming mode's copies. r0-r7 and r15
// are shared and never touched.
func (rf *RegisterFile) SwitchMode(newMode Mode) {
	oldMode := rf.curMode
	rf.bankSP[rf.curBank] = rf.r[13]
	rf.bankLR[rf.curBank] = rf.r[14]

	newBank := modeIndex(newMode)

	if (oldMode == ModeFIQ) != (newMode == ModeFIQ) {
		// Entering or leaving FIQ: exchange the visible r8-r12 with the
		// bank held in fiqLow, so neither copy is lost.
		for i := 0; i < 5; i++ {
			rf.r[8+i], rf.fiqLow[i] = rf.fiqLow[i], rf.r[8+i]
		}
	}

	rf.r[13] = rf.bankSP[newBank]
	rf.r[14] = rf.bankLR[newBank]

	rf.curMode = newMode
	rf.curBank = newBank
}

// ReadSPSR returns the SPSR for the current mode. User and System modes
// have no SPSR: callers ask HasSPSR first (mrs then reads back CPSR
// instead); called in those modes anyway, ReadSPSR returns the unused
// user-bank slot, not CPSR.
func (rf *RegisterFile) ReadSPSR() uint32 {
	return rf.spsr[rf.curBank]
}

// WriteSPSR stores to the current mode's SPSR bank.
func (rf *RegisterFile) WriteSPSR(val uint32) {
	rf.spsr[rf.curBank] = val
}

// HasSPSR reports whether the current mode banks a real SPSR (false
// for User and System).
func (rf *RegisterFile) HasSPSR() bool {
	return rf.curMode != ModeUsr && rf.curMode != ModeSYS
}

// RegisterName returns the architected assembler name for register n
// (r0..r12, sp, lr, pc).
func RegisterName(n int) string {
	switch n {
	case 13:
		return "sp"
	case 14:
		return "lr"
	case 15:
		return "pc"
	default:
		return [...]string{
			"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
			"r8", "r9", "r10", "r11", "r12",
		}[n]
	}
}
