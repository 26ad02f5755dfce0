/*
 * arm - Log debug data to a file
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

// Package debug implements bitmask-gated trace logging for the CPU core,
// independent of the slog-based event log in util/logger.
package debug

import (
	"fmt"
	"os"

	config "github.com/rcornwell/arm/config/configparser"
)

// Trace subsystem bits, combined into a single mask per run.
const (
	Inst = 1 << iota // Instruction trace (fetch, decode, dispatch)
	MMU              // MMU / TLB walk trace
	Exc              // Exception delivery trace
	CP15             // CP15 register read/write trace
	Thumb            // Thumb-specific decode trace
)

var optionNames = map[string]int{
	"INST":  Inst,
	"MMU":   MMU,
	"EXC":   Exc,
	"CP15":  CP15,
	"THUMB": Thumb,
}

var logFile *os.File

var enabled int

// Mask returns the trace bit for a named subsystem, or 0 if unknown.
func Mask(name string) int {
	return optionNames[name]
}

// Enable turns on tracing for the named subsystem (INST, MMU, EXC,
// CP15, THUMB). Unknown names are silently ignored, since a stale
// config line naming a removed subsystem shouldn't abort startup.
func Enable(name string) {
	enabled |= optionNames[name]
}

// Debugf writes a trace line if mask names a subsystem currently
// enabled and a debug file has been configured.
func Debugf(module string, mask int, format string, a ...interface{}) {
	if logFile == nil || (mask&enabled) == 0 {
		return
	}
	fmt.Fprintf(logFile, module+": "+format+"\n", a...)
}

// register a debug file sink on initialize, same pattern as config.RegisterFile.
func init() {
	config.RegisterFile("DEBUGFILE", create)
}

func create(_ uint16, fileName string, _ []config.Option) error {
	if logFile != nil {
		return fmt.Errorf("can't have more than one debug file, previous: %s", logFile.Name())
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s", fileName)
	}

	logFile = file
	return nil
}
