/*
 * arm - Debug options configuration.
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

// Package debugconfig registers the "DEBUG" construction-file directive,
// turning on one or more util/debug trace subsystems (INST, MMU, EXC,
// CP15, THUMB) before the core starts running.
package debugconfig

import (
	"strings"

	config "github.com/rcornwell/arm/config/configparser"
	"github.com/rcornwell/arm/util/debug"
)

func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// setDebug enables one subsystem per option named on the DEBUG line,
// e.g. "DEBUG CPU INST,MMU,EXC".
func setDebug(_ uint16, _ string, options []config.Option) error {
	for _, opt := range options {
		debug.Enable(strings.ToUpper(opt.Name))
		for _, value := range opt.Value {
			debug.Enable(strings.ToUpper(value))
		}
	}
	return nil
}
