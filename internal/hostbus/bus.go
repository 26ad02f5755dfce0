/*
 * arm - Host memory bus interface
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

// Package hostbus defines the memory-bus contract the CPU core expects of
// its host, and a flat RAM implementation used by the demonstrator and
// by the cpu/mmu test suites. Production hosts supply their own Bus
// backed by real device maps; the core never assumes Bus is a RAM.
package hostbus

// Bus is the host-supplied physical memory interface, per the external
// interfaces named in the specification: all addresses presented here
// are post-translation. The bus never returns an error; an address
// space miss yields a host-defined default value (§7, host I/O errors
// are infallible by contract).
type Bus interface {
	ReadByte(addr uint32) uint8
	ReadHalf(addr uint32) uint16
	ReadWord(addr uint32) uint32

	WriteByte(addr uint32, val uint8)
	WriteHalf(addr uint32, val uint16)
	WriteWord(addr uint32, val uint32)

	// DirectReadPtr is an optional fast path for the MMU's root-pointer
	// scans; implementations without a backing byte slice may return
	// (nil, false).
	DirectReadPtr(addr uint32) ([]byte, bool)
}

// BigEndian and LittleEndian select the byte order RAM uses to decode
// multi-byte accesses. The CPU and its host bus are always configured
// with the same endianness at construction (§6).
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// RAM is a flat byte-addressed memory used by main.go and by tests.
// Accesses past the end of the backing slice return the bus-default
// value (all-ones) on read and are silently discarded on write,
// matching the infallible-bus contract of §7.
type RAM struct {
	mem    []byte
	endian Endian
}

// NewRAM allocates size bytes of zero-filled memory.
func NewRAM(size int, endian Endian) *RAM {
	return &RAM{mem: make([]byte, size), endian: endian}
}

// Bytes exposes the backing slice for test fixtures that want to poke
// instructions into memory directly.
func (r *RAM) Bytes() []byte {
	return r.mem
}

func (r *RAM) inRange(addr uint32, size uint32) bool {
	return uint64(addr)+uint64(size) <= uint64(len(r.mem))
}

func (r *RAM) ReadByte(addr uint32) uint8 {
	if !r.inRange(addr, 1) {
		return 0xFF
	}
	return r.mem[addr]
}

func (r *RAM) WriteByte(addr uint32, val uint8) {
	if r.inRange(addr, 1) {
		r.mem[addr] = val
	}
}

func (r *RAM) ReadHalf(addr uint32) uint16 {
	if !r.inRange(addr, 2) {
		return 0xFFFF
	}
	b0, b1 := r.mem[addr], r.mem[addr+1]
	if r.endian == BigEndian {
		return uint16(b0)<<8 | uint16(b1)
	}
	return uint16(b1)<<8 | uint16(b0)
}

func (r *RAM) WriteHalf(addr uint32, val uint16) {
	if !r.inRange(addr, 2) {
		return
	}
	if r.endian == BigEndian {
		r.mem[addr] = byte(val >> 8)
		r.mem[addr+1] = byte(val)
	} else {
		r.mem[addr] = byte(val)
		r.mem[addr+1] = byte(val >> 8)
	}
}

func (r *RAM) ReadWord(addr uint32) uint32 {
	if !r.inRange(addr, 4) {
		return 0xFFFFFFFF
	}
	b0, b1, b2, b3 := r.mem[addr], r.mem[addr+1], r.mem[addr+2], r.mem[addr+3]
	if r.endian == BigEndian {
		return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
	}
	return uint32(b3)<<24 | uint32(b2)<<16 | uint32(b1)<<8 | uint32(b0)
}

func (r *RAM) WriteWord(addr uint32, val uint32) {
	if !r.inRange(addr, 4) {
		return
	}
	if r.endian == BigEndian {
		r.mem[addr] = byte(val >> 24)
		r.mem[addr+1] = byte(val >> 16)
		r.mem[addr+2] = byte(val >> 8)
		r.mem[addr+3] = byte(val)
	} else {
		r.mem[addr] = byte(val)
		r.mem[addr+1] = byte(val >> 8)
		r.mem[addr+2] = byte(val >> 16)
		r.mem[addr+3] = byte(val >> 24)
	}
}

func (r *RAM) DirectReadPtr(addr uint32) ([]byte, bool) {
	if addr >= uint32(len(r.mem)) {
		return nil, false
	}
	return r.mem[addr:], true
}
