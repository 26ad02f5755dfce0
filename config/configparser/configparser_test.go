/*
 * arm - Configuration file parser test set.
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

package configparser

import "testing"

var (
	gotName    string
	gotValue   string
	gotOptions []Option
)

func resetTest() {
	directives = map[string]directive{}
	gotName = ""
	gotValue = ""
	gotOptions = nil
}

func recordSwitch(_ uint16, _ string, _ []Option) error {
	gotName = "switch"
	return nil
}

func recordOption(_ uint16, value string, _ []Option) error {
	gotName = "option"
	gotValue = value
	return nil
}

func recordModel(_ uint16, value string, opts []Option) error {
	gotName = "model"
	gotValue = value
	gotOptions = opts
	return nil
}

func TestParseLineSwitch(t *testing.T) {
	resetTest()
	RegisterSwitch("reset", recordSwitch)

	if err := parseLine("reset"); err != nil {
		t.Fatalf("parseLine(reset) = %v, want nil", err)
	}
	if gotName != "switch" {
		t.Fatalf("directive not dispatched as a switch: got %q", gotName)
	}
}

func TestParseLineComment(t *testing.T) {
	resetTest()
	RegisterSwitch("reset", recordSwitch)

	if err := parseLine("  # just a comment"); err != nil {
		t.Fatalf("parseLine(comment) = %v, want nil", err)
	}
	if gotName != "" {
		t.Fatalf("comment line should not dispatch any directive, got %q", gotName)
	}
}

func TestParseLineUnknownDirective(t *testing.T) {
	resetTest()

	if err := parseLine("bogus"); err == nil {
		t.Fatalf("parseLine(bogus) succeeded, want error for unregistered directive")
	}
}

func TestParseLineOption(t *testing.T) {
	resetTest()
	RegisterOption("model", recordOption)

	if err := parseLine("model arm946es"); err != nil {
		t.Fatalf("parseLine(model) = %v, want nil", err)
	}
	if gotName != "option" || gotValue != "arm946es" {
		t.Fatalf("got name=%q value=%q, want option/arm946es", gotName, gotValue)
	}
}

func TestParseLineOptionMissingValue(t *testing.T) {
	resetTest()
	RegisterOption("model", recordOption)

	if err := parseLine("model"); err == nil {
		t.Fatalf("parseLine(model with no value) succeeded, want error")
	}
}

func TestParseLineModelWithOptions(t *testing.T) {
	resetTest()
	RegisterModel("debug", TypeOptions, recordModel)

	if err := parseLine("debug cpu inst,mmu"); err != nil {
		t.Fatalf("parseLine(debug) = %v, want nil", err)
	}
	if gotName != "model" || gotValue != "cpu" {
		t.Fatalf("got name=%q value=%q, want model/cpu", gotName, gotValue)
	}
	if len(gotOptions) != 1 || gotOptions[0].Name != "inst" {
		t.Fatalf("got options=%+v, want one option named inst", gotOptions)
	}
	if len(gotOptions[0].Value) != 1 || gotOptions[0].Value[0] != "mmu" {
		t.Fatalf("got comma values=%v, want [mmu]", gotOptions[0].Value)
	}
}

func TestParseLineModelOptionEqual(t *testing.T) {
	resetTest()
	RegisterModel("debug", TypeOptions, recordModel)

	if err := parseLine("debug cpu level=3"); err != nil {
		t.Fatalf("parseLine(debug) = %v, want nil", err)
	}
	if len(gotOptions) != 1 || gotOptions[0].Name != "level" || gotOptions[0].EqualOpt != "3" {
		t.Fatalf("got options=%+v, want level=3", gotOptions)
	}
}
