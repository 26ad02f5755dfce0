package cpu

import (
	"testing"

	"github.com/rcornwell/arm/internal/hostbus"
	"github.com/rcornwell/arm/internal/mmu"
)

func newTestCPU(t *testing.T) (*CPU, *hostbus.RAM) {
	t.Helper()
	ram := hostbus.NewRAM(1<<20, hostbus.LittleEndian)
	c := NewCPU(VariantARM946ES, ram)
	return c, ram
}

func putWord(ram *hostbus.RAM, addr uint32, val uint32) {
	ram.WriteWord(addr, val)
}

func TestMovImmediateSetsZeroFlag(t *testing.T) {
	c, ram := newTestCPU(t)
	putWord(ram, 0, 0xE3B00000) // MOVS r0, #0

	c.Step()

	if c.Regs.R(0) != 0 {
		t.Fatalf("r0 = %#x, want 0", c.Regs.R(0))
	}
	if c.CPSR&FlagZ == 0 {
		t.Fatalf("Z flag not set after MOVS r0, #0")
	}
}

func TestBranchWithLinkSavesReturnAddressAndFlushesPipeline(t *testing.T) {
	c, ram := newTestCPU(t)
	putWord(ram, 0, 0xEB000002) // BL #0x10 (from pc=0: target = 0+8+8 = 0x10)

	c.Step()

	if c.Regs.R(14) != 4 {
		t.Fatalf("lr = %#x, want 4 (address of instruction after BL)", c.Regs.R(14))
	}
	if c.pipeline.nextFetchAddr != 0x10 {
		t.Fatalf("pipeline did not flush to branch target: nextFetchAddr = %#x, want 0x10", c.pipeline.nextFetchAddr)
	}
}

func TestDataAbortOnUnmappedSection(t *testing.T) {
	c, ram := newTestCPU(t)
	c.Regs.SetR(1, 0x02000000) // section-aligned vaddr
	putWord(ram, 0, 0xE5910000) // LDR r0, [r1]

	putWord(ram, 0x00004000, 0x00000002) // section descriptor: vaddr 0..1MiB maps to itself, so the code fetch succeeds
	c.CP15.WriteTTB(0x00004000)
	c.CP15.WriteDACR(0xFFFFFFFF) // all domains Manager, so only translation faults are reachable
	c.CP15.WriteControl(mmu.CtlMMU)
	// first-level descriptor at TTB | (vaddr>>18 & 0x3FFC) is left zero -> translation fault

	c.Step()

	if Mode(c.CPSR&0x1F) != ModeABT {
		t.Fatalf("mode after data abort = %#x, want ABT", c.CPSR&0x1F)
	}
	if c.CP15.ReadFSR(false) != 0x05 {
		t.Fatalf("FSR = %#x, want 0x05 (section translation fault)", c.CP15.ReadFSR(false))
	}
}

func TestBranchExchangeEntersThumbState(t *testing.T) {
	c, ram := newTestCPU(t)
	c.Regs.SetR(1, 0x1001) // odd address selects Thumb
	putWord(ram, 0, 0xE12FFF11) // BX r1

	c.Step()

	if c.CPSR&FlagT == 0 {
		t.Fatalf("T flag not set after BX to an odd address")
	}
	if c.pipeline.nextFetchAddr != 0x1000 {
		t.Fatalf("BX target = %#x, want 0x1000 (bit0 masked)", c.pipeline.nextFetchAddr)
	}
	if !c.pipeline.thumb {
		t.Fatalf("pipeline not left in thumb state after BX")
	}
}

func TestFIQEntrySwitchesBankAndMasksFlags(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Regs.SetPC(0x20)
	c.CPSR &^= FlagF // reset leaves FIQ masked; unmask it so the pending request is taken
	c.FIQPending = true

	c.Step()

	if Mode(c.CPSR&0x1F) != ModeFIQ {
		t.Fatalf("mode after FIQ = %#x, want FIQ", c.CPSR&0x1F)
	}
	if c.CPSR&FlagF == 0 || c.CPSR&FlagI == 0 {
		t.Fatalf("FIQ entry must mask both F and I")
	}
	if c.FIQPending {
		t.Fatalf("FIQPending should be cleared once delivered")
	}
}

func TestIRQAfterBranchUsesBranchTargetForLR(t *testing.T) {
	c, ram := newTestCPU(t)
	putWord(ram, 0, 0xEA000002) // B #0x10 (target = 0+8+8 = 0x10)

	c.Step() // taken branch flushes the pipeline to 0x10 without updating Regs.PC via fetch

	c.CPSR &^= FlagI
	c.IRQPending = true
	c.Step() // IRQ must be taken before any fetch happens at the branch target

	if Mode(c.CPSR&0x1F) != ModeIRQ {
		t.Fatalf("mode after IRQ = %#x, want IRQ", c.CPSR&0x1F)
	}
	if got := c.Regs.R(14); got != 0x14 {
		t.Fatalf("lr = %#x, want 0x14 (branch target 0x10 + 4)", got)
	}
}

func TestPrefetchAbortLRUsesAbortedFetchAddrPlusFour(t *testing.T) {
	c, _ := newTestCPU(t)
	c.lastFetchAddr = 0x8000

	c.deliverPrefetchAbort(&faultInfo{})

	if got := c.Regs.R(14); got != 0x8004 {
		t.Fatalf("prefetch abort lr = %#x, want 0x8004", got)
	}
}

func TestDataAbortLRIndependentOfThumbState(t *testing.T) {
	c, _ := newTestCPU(t)
	c.CPSR |= FlagT // aborting instruction ran in Thumb state
	c.lastFetchAddr = 0x3000

	c.raiseDataAbort()

	if got := c.Regs.R(14); got != 0x3008 {
		t.Fatalf("thumb-state data abort lr = %#x, want 0x3008 regardless of instruction set", got)
	}
}

func TestMRSReadsCPSRWhenNoSPSRInUserMode(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Regs.SwitchMode(ModeUsr)
	c.CPSR = uint32(ModeUsr) | FlagZ

	mrs(c, 0xE14F0000) // MRS r0, SPSR while in User mode, which has no SPSR

	if got := c.Regs.R(0); got != c.CPSR {
		t.Fatalf("MRS SPSR in User mode = %#x, want fallback to CPSR %#x", got, c.CPSR)
	}
}

func TestUserBankAccessFromFIQMode(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Regs.SwitchMode(ModeUsr)
	c.Regs.SetR(9, 0x55555555)
	c.Regs.SwitchMode(ModeFIQ)
	c.Regs.SetR(9, 0xAAAAAAAA) // FIQ's private banked copy

	if got := c.loadUserBank(9); got != 0x55555555 {
		t.Fatalf("loadUserBank(9) from FIQ mode = %#x, want User's 0x55555555", got)
	}
	if got := c.Regs.R(9); got != 0xAAAAAAAA {
		t.Fatalf("current bank r9 changed by loadUserBank: got %#x", got)
	}
}
