/*
 * arm - Device variant table
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

import "fmt"

// Variant describes one concrete core implementation's feature set:
// which architecture revision it implements, whether it has Thumb,
// whether it carries TCM, and its default endianness.
type Variant struct {
	Name      string
	ARMv4     bool // v4/v4T baseline: LDRH/STRH/LDRSB/LDRSH, 32-bit addressing
	Thumb     bool
	ARMv5     bool // BLX, CLZ, unconditional extension space
	HasTCM    bool
	BigEndian bool
	Addr26    bool // legacy 26-bit PC/status word addressing mode
}

// Known device variants, named after the silicon they model.
var (
	VariantARM7       = Variant{Name: "ARM7", ARMv4: true}
	VariantARM7BE     = Variant{Name: "ARM7BE", ARMv4: true, BigEndian: true}
	VariantARM7500    = Variant{Name: "ARM7500", ARMv4: true, Addr26: true}
	VariantARM9       = Variant{Name: "ARM9", ARMv4: true, Thumb: true}
	VariantARM920T    = Variant{Name: "ARM920T", ARMv4: true, Thumb: true}
	VariantARM946ES   = Variant{Name: "ARM946ES", ARMv4: true, Thumb: true, ARMv5: true, HasTCM: true}
	VariantIGS036     = Variant{Name: "IGS036", ARMv4: true, Thumb: true, ARMv5: true, HasTCM: true}
	VariantPXA255     = Variant{Name: "PXA255", ARMv4: true, Thumb: true, ARMv5: true}
	VariantSA1110     = Variant{Name: "SA1110", ARMv4: true, Thumb: true}
)

var variantByName = map[string]Variant{
	"arm7":     VariantARM7,
	"arm7be":   VariantARM7BE,
	"arm7500":  VariantARM7500,
	"arm9":     VariantARM9,
	"arm920t":  VariantARM920T,
	"arm946es": VariantARM946ES,
	"igs036":   VariantIGS036,
	"pxa255":   VariantPXA255,
	"sa1110":   VariantSA1110,
}

// LookupVariant resolves a configuration-file model name (case
// normalized by the caller) to its Variant descriptor.
func LookupVariant(name string) (Variant, error) {
	v, ok := variantByName[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown CPU model %q", name)
	}
	return v, nil
}
