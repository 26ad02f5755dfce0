/*
 * arm - Debugger hook interface
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

// InstructionHook lets a host observe each instruction as it is about
// to execute, without the core paying for a debugger when none is
// attached (see noopHook).
type InstructionHook interface {
	BeforeExecute(c *CPU, addr uint32, instr uint32, thumb bool)
}

type noopHook struct{}

func (noopHook) BeforeExecute(*CPU, uint32, uint32, bool) {}

// SetHook installs h as the core's instruction hook; pass nil to
// restore the no-op default.
func (c *CPU) SetHook(h InstructionHook) {
	if h == nil {
		h = noopHook{}
	}
	c.Hook = h
}
