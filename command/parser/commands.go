/*
 * arm - Command executor.
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

package parser

import (
	"errors"
	"fmt"

	"github.com/rcornwell/arm/internal/cpu"
)

// maxContinueSteps bounds a "continue" with no breakpoint set, so a
// runaway or looping program doesn't hang the console forever.
const maxContinueSteps = 50_000_000

var breakpoints = map[uint32]bool{}

// step executes one instruction, or the hex count given after it, and
// reports where it landed.
func step(line *cmdLine, c *cpu.CPU) (bool, error) {
	count := 1
	line.skipSpace()
	if !line.isEOL() {
		n, err := line.getHex()
		if err != nil {
			return false, err
		}
		count = int(n)
	}
	for i := 0; i < count; i++ {
		c.Step()
	}
	fmt.Printf("pc=%08x cpsr=%08x\n", c.Regs.PC(), c.CPSR)
	return false, nil
}

// cont runs until a breakpoint address is reached or maxContinueSteps
// instructions have executed, whichever comes first.
func cont(_ *cmdLine, c *cpu.CPU) (bool, error) {
	for i := 0; i < maxContinueSteps; i++ {
		if i > 0 && breakpoints[c.Regs.PC()] {
			fmt.Printf("breakpoint at %08x\n", c.Regs.PC())
			return false, nil
		}
		c.Step()
	}
	fmt.Println("stopped: instruction limit reached")
	return false, nil
}

// stop is a no-op in this single-threaded console: continue already
// returns control to the prompt at a breakpoint or the step limit.
func stop(_ *cmdLine, _ *cpu.CPU) (bool, error) {
	fmt.Println("execution is synchronous here; set a breakpoint to stop partway through continue")
	return false, nil
}

func reset(_ *cmdLine, c *cpu.CPU) (bool, error) {
	c.Reset()
	fmt.Printf("reset: pc=%08x\n", c.Regs.PC())
	return false, nil
}

var regNames = [16]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "sp", "lr", "pc",
}

func registers(_ *cmdLine, c *cpu.CPU) (bool, error) {
	for i := 0; i < 16; i += 4 {
		fmt.Printf("%-3s=%08x  %-3s=%08x  %-3s=%08x  %-3s=%08x\n",
			regNames[i], c.Regs.R(i),
			regNames[i+1], c.Regs.R(i+1),
			regNames[i+2], c.Regs.R(i+2),
			regNames[i+3], c.Regs.R(i+3))
	}
	fmt.Printf("cpsr=%08x mode=%02x %s%s%s%s%s%s%s\n",
		c.CPSR, c.CPSR&0x1F,
		flagChar(c.CPSR, 1<<31, "N"), flagChar(c.CPSR, 1<<30, "Z"),
		flagChar(c.CPSR, 1<<29, "C"), flagChar(c.CPSR, 1<<28, "V"),
		flagChar(c.CPSR, 1<<7, "I"), flagChar(c.CPSR, 1<<6, "F"),
		flagChar(c.CPSR, 1<<5, "T"))
	return false, nil
}

func flagChar(cpsr uint32, mask uint32, name string) string {
	if cpsr&mask != 0 {
		return name
	}
	return "-"
}

// examine prints the word at the given physical bus address.
func examine(line *cmdLine, c *cpu.CPU) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	fmt.Printf("%08x: %08x\n", addr, c.Bus.ReadWord(addr))
	return false, nil
}

// deposit writes a word to the given physical bus address.
func deposit(line *cmdLine, c *cpu.CPU) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	val, err := line.getHex()
	if err != nil {
		return false, err
	}
	c.Bus.WriteWord(addr, val)
	return false, nil
}

func setBreak(line *cmdLine, _ *cpu.CPU) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	breakpoints[addr] = true
	return false, nil
}

func deleteBreak(line *cmdLine, _ *cpu.CPU) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	delete(breakpoints, addr)
	return false, nil
}

func show(line *cmdLine, c *cpu.CPU) (bool, error) {
	what := line.getWord()
	switch what {
	case "variant", "model":
		fmt.Println(c.Variant.Name)
	case "break", "breakpoints":
		if len(breakpoints) == 0 {
			fmt.Println("no breakpoints set")
		}
		for addr := range breakpoints {
			fmt.Printf("%08x\n", addr)
		}
	default:
		return false, errors.New("show what? try: variant, breakpoints")
	}
	return false, nil
}

func quit(_ *cmdLine, _ *cpu.CPU) (bool, error) {
	return true, nil
}
