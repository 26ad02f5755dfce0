/*
 * arm - System configuration: CPU model, memory size, image loads.
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

// Package sysconfig registers the construction-file directives that
// pick the emulated core and shape its memory, before main wires up
// the CPU: "MODEL", "MEMORY", and "LOAD".
package sysconfig

import (
	"strconv"
	"strings"
	"unicode"

	config "github.com/rcornwell/arm/config/configparser"
)

// Image is one "LOAD" directive: a binary file to be copied into RAM
// at a physical base address before the core starts running.
type Image struct {
	Base uint32
	Path string
}

var (
	model   = "arm7"
	memSize = 16 * 1024 * 1024
	images  []Image
)

func init() {
	config.RegisterOption("MODEL", setModel)
	config.RegisterOption("MEMORY", setMemory)
	config.RegisterModel("LOAD", config.TypeOptions, setLoad)
}

// Model returns the configured CPU variant name, lower-cased for
// internal/cpu.LookupVariant.
func Model() string {
	return strings.ToLower(model)
}

// MemorySize returns the configured RAM size in bytes.
func MemorySize() int {
	return memSize
}

// Images returns the binary images queued by LOAD directives, in the
// order they appeared in the construction file.
func Images() []Image {
	return images
}

func setModel(_ uint16, value string, _ []config.Option) error {
	model = value
	return nil
}

// setMemory parses the MEMORY directive's byte count, with an optional
// K/M suffix.
func setMemory(_ uint16, number string, _ []config.Option) error {
	size := 0
	multiplier := ' '
	for i, digit := range number {
		if !unicode.IsDigit(digit) {
			if i == len(number)-1 {
				multiplier = digit
				break
			}
			return strconv.ErrSyntax
		}
		size = (size * 10) + (int(digit) - '0')
	}

	switch multiplier {
	case 'k', 'K':
		size *= 1024
	case 'm', 'M':
		size *= 1024 * 1024
	}

	if size <= 0 {
		return strconv.ErrRange
	}
	memSize = size
	return nil
}

// setLoad handles "LOAD <path> at=<hex>", where the base address
// defaults to 0 when the "at" option is absent.
func setLoad(_ uint16, value string, opts []config.Option) error {
	img := Image{Path: value}
	for _, opt := range opts {
		if strings.EqualFold(opt.Name, "at") && opt.EqualOpt != "" {
			base, err := strconv.ParseUint(opt.EqualOpt, 16, 32)
			if err != nil {
				return err
			}
			img.Base = uint32(base)
		}
	}
	images = append(images, img)
	return nil
}
