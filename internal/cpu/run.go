/*
 * arm - Context-aware run loop
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

import "context"

// Run steps the core until ctx is cancelled, running cyclesPerQuantum
// worth of instructions between each context check so cancellation
// latency stays bounded without paying a channel check per
// instruction.
func (c *CPU) Run(ctx context.Context, cyclesPerQuantum int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		spent := 0
		for spent < cyclesPerQuantum {
			spent += c.Step()
		}
	}
}

// RunInstructions steps exactly n instructions, ignoring ctx
// cancellation between them; used by tests that want deterministic
// instruction counts rather than a cycle quantum.
func (c *CPU) RunInstructions(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}
