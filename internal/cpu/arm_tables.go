/*
 * arm - ARM and Thumb dispatch table construction
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

// buildARMTable materializes the 256-way primary ARM dispatch keyed on
// bits 27:20 of the instruction word. Classes that still need a
// secondary decode (register-shift data processing vs multiply vs
// halfword transfer vs PSR transfer, all of which share bits27:26=00
// with I=0) delegate to a single group handler that inspects the full
// word; the table still saves that handler from re-deriving bits27:25.
func buildARMTable() [256]armHandler {
	var t [256]armHandler

	for index := 0; index < 256; index++ {
		bits27_26 := (index >> 6) & 0x3
		bit25 := (index >> 5) & 0x1
		bit24 := (index >> 4) & 0x1

		switch bits27_26 {
		case 0:
			if bit25 == 1 {
				t[index] = armDataProcImmediate
			} else {
				t[index] = armGroup00
			}
		case 1:
			t[index] = armSingleDataTransfer
		case 2:
			if bit25 == 1 {
				t[index] = armBranch
			} else {
				t[index] = armBlockTransfer
			}
		case 3:
			if bit25 == 0 {
				t[index] = armCoprocDataTransfer
			} else if bit24 == 1 {
				t[index] = armSWIHandler
			} else {
				t[index] = armCoprocRegisterOp
			}
		}
	}

	return t
}
