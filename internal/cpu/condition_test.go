package cpu

import "testing"

func TestCondPassedEQ(t *testing.T) {
	if !condPassed(0x0, FlagZ) {
		t.Fatalf("EQ should pass when Z set")
	}
	if condPassed(0x0, 0) {
		t.Fatalf("EQ should fail when Z clear")
	}
}

func TestCondPassedGEandLT(t *testing.T) {
	// N==V => GE true, LT false
	if !condPassed(0xA, FlagN|FlagV) {
		t.Fatalf("GE should pass when N==V (both set)")
	}
	if condPassed(0xB, FlagN|FlagV) {
		t.Fatalf("LT should fail when N==V")
	}
	if !condPassed(0xB, FlagN) {
		t.Fatalf("LT should pass when N!=V")
	}
}

func TestCondPassedAlwaysAndNever(t *testing.T) {
	if !condPassed(0xE, 0) {
		t.Fatalf("AL must always pass")
	}
	if condPassed(0xF, 0xFFFFFFFF) {
		t.Fatalf("NV must never pass under v3/v4 semantics")
	}
}

func TestCondPassedHIandLS(t *testing.T) {
	if !condPassed(0x8, FlagC) {
		t.Fatalf("HI should pass when C set and Z clear")
	}
	if condPassed(0x8, FlagC|FlagZ) {
		t.Fatalf("HI should fail when Z set even if C set")
	}
	if !condPassed(0x9, FlagZ) {
		t.Fatalf("LS should pass when Z set")
	}
}
