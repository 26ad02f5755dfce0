/*
 * arm - Configuration file parser
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

// Package configparser loads the demonstration front-end's construction
// file: one line per directive, selecting the CPU variant and any
// optional sinks (debug trace file, log options). The core library
// itself never touches this package; it exists for main.go only.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is a comma-separated trailing value attached to a directive,
// optionally carrying an "=value" suffix.
type Option struct {
	Name     string   // Name of option.
	EqualOpt string   // Value after '='.
	Value    []string // Comma-separated following values.
}

// Directive kinds, mirroring the type tags a registrant declares.
const (
	TypeOption  = 1 + iota // Accepts exactly one value.
	TypeOptions            // Accepts a value plus a list of options.
	TypeSwitch             // Takes no value at all.
)

type fileDef func(devNum uint16, fileName string, opts []Option) error

type directive struct {
	optionFn func(uint16, string, []Option) error
	fileFn   fileDef
	ty       int
}

var directives = map[string]directive{}

var lineNumber int

// RegisterOption registers a directive of the form "NAME value".
func RegisterOption(name string, fn func(uint16, string, []Option) error) {
	directives[strings.ToUpper(name)] = directive{optionFn: fn, ty: TypeOption}
}

// RegisterModel registers a directive of the form "NAME value opt,opt=x,...".
func RegisterModel(name string, ty int, fn func(uint16, string, []Option) error) {
	directives[strings.ToUpper(name)] = directive{optionFn: fn, ty: ty}
}

// RegisterSwitch registers a bare directive with no value.
func RegisterSwitch(name string, fn func(uint16, string, []Option) error) {
	directives[strings.ToUpper(name)] = directive{optionFn: fn, ty: TypeSwitch}
}

// RegisterFile registers a directive whose value is a file path.
func RegisterFile(name string, fn fileDef) {
	directives[strings.ToUpper(name)] = directive{fileFn: fn, ty: TypeOption}
}

// LoadConfigFile reads name and dispatches each non-comment, non-blank
// line to its registered directive.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if perr := parseLine(raw); perr != nil {
			return perr
		}
		if err != nil {
			return nil
		}
	}
}

func parseLine(raw string) error {
	line := &cursor{text: raw}
	line.skipSpace()
	if line.atEnd() {
		return nil
	}

	name := line.word()
	if name == "" {
		return fmt.Errorf("invalid directive at line %d", lineNumber)
	}
	dir, ok := directives[strings.ToUpper(name)]
	if !ok {
		return fmt.Errorf("unknown directive %q at line %d", name, lineNumber)
	}

	switch dir.ty {
	case TypeSwitch:
		return dir.optionFn(0, "", nil)

	case TypeOption:
		line.skipSpace()
		value := line.word()
		if value == "" {
			return fmt.Errorf("directive %q requires a value, line %d", name, lineNumber)
		}
		if dir.fileFn != nil {
			return dir.fileFn(0, value, nil)
		}
		return dir.optionFn(0, value, nil)

	case TypeOptions:
		line.skipSpace()
		value := line.word()
		if value == "" {
			return fmt.Errorf("directive %q requires a value, line %d", name, lineNumber)
		}
		opts, err := line.options()
		if err != nil {
			return err
		}
		return dir.optionFn(0, value, opts)
	}
	return nil
}

type cursor struct {
	text string
	pos  int
}

func (c *cursor) atEnd() bool {
	if c.pos >= len(c.text) {
		return true
	}
	return c.text[c.pos] == '#'
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.text) && unicode.IsSpace(rune(c.text[c.pos])) {
		c.pos++
	}
}

// word reads a run of letters, digits, '.', '_', or '-'.
func (c *cursor) word() string {
	start := c.pos
	for c.pos < len(c.text) {
		by := rune(c.text[c.pos])
		if unicode.IsLetter(by) || unicode.IsDigit(by) || by == '.' || by == '_' || by == '-' {
			c.pos++
			continue
		}
		break
	}
	return c.text[start:c.pos]
}

func (c *cursor) options() ([]Option, error) {
	var opts []Option
	for {
		c.skipSpace()
		if c.atEnd() {
			return opts, nil
		}
		name := c.word()
		if name == "" {
			return opts, nil
		}
		opt := Option{Name: name}
		if c.pos < len(c.text) && c.text[c.pos] == '=' {
			c.pos++
			opt.EqualOpt = c.word()
		}
		for c.pos < len(c.text) && c.text[c.pos] == ',' {
			c.pos++
			opt.Value = append(opt.Value, c.word())
		}
		opts = append(opts, opt)
	}
}
