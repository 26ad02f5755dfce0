package cpu

import "testing"

func TestRegisterBankingFIQ(t *testing.T) {
	rf := NewRegisterFile()
	rf.SetR(8, 0x11111111)
	rf.SetR(13, 0xAAAAAAAA)
	rf.SetR(14, 0xBBBBBBBB)

	rf.SwitchMode(ModeFIQ)
	rf.SetR(8, 0x22222222)
	rf.SetR(13, 0xCCCCCCCC)

	rf.SwitchMode(ModeSVC)
	if got := rf.R(8); got != 0x11111111 {
		t.Fatalf("r8 after returning from FIQ = %#x, want unchanged 0x11111111", got)
	}
	if got := rf.R(13); got != 0xAAAAAAAA {
		t.Fatalf("r13 after returning from FIQ = %#x, want unchanged 0xAAAAAAAA", got)
	}

	rf.SwitchMode(ModeFIQ)
	if got := rf.R(8); got != 0x22222222 {
		t.Fatalf("r8 in FIQ mode = %#x, want preserved 0x22222222", got)
	}
}

func TestRegisterSharedAcrossModes(t *testing.T) {
	rf := NewRegisterFile()
	rf.SetR(0, 0x12345678)
	rf.SwitchMode(ModeIRQ)
	if got := rf.R(0); got != 0x12345678 {
		t.Fatalf("r0 not shared across modes: got %#x", got)
	}
}

func TestSPSRBankingPerMode(t *testing.T) {
	rf := NewRegisterFile()
	rf.SwitchMode(ModeIRQ)
	rf.WriteSPSR(0xDEADBEEF)
	rf.SwitchMode(ModeABT)
	rf.WriteSPSR(0xCAFEF00D)
	rf.SwitchMode(ModeIRQ)
	if got := rf.ReadSPSR(); got != 0xDEADBEEF {
		t.Fatalf("IRQ SPSR = %#x, want 0xDEADBEEF", got)
	}
}

func TestUserSystemShareBank(t *testing.T) {
	rf := NewRegisterFile()
	rf.SwitchMode(ModeUsr)
	rf.SetR(13, 0x1000)
	rf.SwitchMode(ModeSYS)
	if got := rf.R(13); got != 0x1000 {
		t.Fatalf("System mode r13 = %#x, want 0x1000 (shared with User)", got)
	}
	if rf.HasSPSR() {
		t.Fatalf("System mode must not have an SPSR")
	}
}

func TestRegisterNameAliases(t *testing.T) {
	if RegisterName(13) != "sp" || RegisterName(14) != "lr" || RegisterName(15) != "pc" {
		t.Fatalf("banked-name aliases wrong: sp=%s lr=%s pc=%s", RegisterName(13), RegisterName(14), RegisterName(15))
	}
	if RegisterName(0) != "r0" {
		t.Fatalf("RegisterName(0) = %s, want r0", RegisterName(0))
	}
}
