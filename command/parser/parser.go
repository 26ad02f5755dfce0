/*
 * arm - Command parser.
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

// Package parser implements the line-oriented command language for the
// interactive debug console: tokenizing, command dispatch, and
// tab-completion, independent of the liner library that drives it.
package parser

import (
	"errors"
	"slices"
	"strings"
	"unicode"

	"github.com/rcornwell/arm/internal/cpu"
)

type cmd struct {
	name     string // Command name.
	min      int    // Minimum match length.
	process  func(*cmdLine, *cpu.CPU) (bool, error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

var cmdList = []cmd{
	{name: "step", min: 1, process: step},
	{name: "continue", min: 1, process: cont},
	{name: "stop", min: 2, process: stop},
	{name: "reset", min: 3, process: reset},
	{name: "registers", min: 1, process: registers},
	{name: "examine", min: 1, process: examine},
	{name: "deposit", min: 1, process: deposit},
	{name: "break", min: 2, process: setBreak},
	{name: "delete", min: 1, process: deleteBreak},
	{name: "show", min: 2, process: show},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand parses and executes a single command line against the
// running CPU. The returned bool reports whether the console should exit.
func ProcessCommand(commandLine string, c *cpu.CPU) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, errors.New("command not found: " + name)
	case 1:
		return match[0].process(&line, c)
	default:
		return false, errors.New("ambiguous command: " + name)
	}
}

// CompleteCmd returns tab-completion candidates for a partial command line.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	if !line.isEOL() && line.line[line.pos-1] == ' ' {
		match := matchList(name)
		if len(match) != 1 || match[0].complete == nil {
			return nil
		}
		return match[0].complete(&line)
	}

	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.name, name) {
			matches = append(matches, m.name)
		}
	}
	slices.Sort(matches)
	return matches
}

func matchCommand(m cmd, name string) bool {
	if len(name) == 0 || len(name) > len(m.name) {
		return false
	}
	if !strings.HasPrefix(m.name, name) {
		return false
	}
	return len(name) >= m.min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			match = append(match, m)
		}
	}
	return match
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// getWord reads the next run of letters/digits, lower-cased.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	start := line.pos
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || by == '#' {
			break
		}
		line.pos++
	}
	return strings.ToLower(line.line[start:line.pos])
}

// getHex reads a hexadecimal value (with or without a leading 0x).
func (line *cmdLine) getHex() (uint32, error) {
	word := line.getWord()
	word = strings.TrimPrefix(word, "0x")
	if word == "" {
		return 0, errors.New("expected a hex value")
	}
	var val uint32
	for _, r := range word {
		var d uint32
		switch {
		case r >= '0' && r <= '9':
			d = uint32(r - '0')
		case r >= 'a' && r <= 'f':
			d = uint32(r-'a') + 10
		default:
			return 0, errors.New("invalid hex value: " + word)
		}
		val = val<<4 | d
	}
	return val, nil
}
