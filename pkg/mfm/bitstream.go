/*
   DiskScope - Amiga disk inspector
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of DiskScope.

   DiskScope is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   DiskScope is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with DiskScope. If not, see <http://www.gnu.org/licenses/>.
*/

package mfm

import (
	"fmt"
	"strings"
)

// NoDataText is what an unavailable stream renders as
const NoDataText = "No MFM data available"

// NoData is the placeholder stream handed out when a drive cannot deliver
// track bits, e.g. because it has no disk inserted.
var NoData = &Bitstream{unavailable: true}

// Bitstream is a bit addressable sequence of MFM encoded bits. Bits are
// stored packed, most significant bit of each byte first.
type Bitstream struct {
	data        []byte
	bits        int
	unavailable bool
}

//
func NewBitstream(data []byte, bits int) *Bitstream {
	if bits < 0 || bits > len(data)*8 {
		bits = len(data) * 8
	}
	return &Bitstream{data: data, bits: bits}
}

//
func FromBytes(data []byte) *Bitstream {
	return NewBitstream(data, len(data)*8)
}

// ParseBits creates a stream from a string of '0' and '1' characters.
// White space is ignored.
func ParseBits(s string) (*Bitstream, error) {
	w := &Writer{}
	for ix, r := range s {
		switch r {
		case '0':
			w.WriteBit(0)
		case '1':
			w.WriteBit(1)
		case ' ', '\t', '\n', '\r':
		default:
			return nil, fmt.Errorf("invalid bit character %q at index %d", r, ix)
		}
	}
	return w.Bitstream(), nil
}

// Available returns false for the NoData placeholder
func (b *Bitstream) Available() bool {
	return b != nil && !b.unavailable
}

//
func (b *Bitstream) Len() int {
	if !b.Available() {
		return 0
	}
	return b.bits
}

// Bytes returns the packed bits. The last byte may be partially used.
func (b *Bitstream) Bytes() []byte {
	if !b.Available() {
		return nil
	}
	return b.data[:(b.bits+7)/8]
}

// Bit returns the bit at index ix, or 0 if ix is outside of the stream.
func (b *Bitstream) Bit(ix int) int {
	if ix < 0 || ix >= b.Len() {
		return 0
	}
	return int(b.data[ix>>3]>>(7-uint(ix&7))) & 1
}

// ByteAt returns the eight bits starting at bit offset off. Bits beyond the
// end of the stream read as 0.
func (b *Bitstream) ByteAt(off int) byte {
	if off&7 == 0 && off >= 0 && off+8 <= b.Len() {
		return b.data[off>>3]
	}
	var ret byte
	for ix := 0; ix < 8; ix++ {
		ret = ret<<1 | byte(b.Bit(off+ix))
	}
	return ret
}

// WordAt returns the 16 bits starting at bit offset off.
func (b *Bitstream) WordAt(off int) uint16 {
	return uint16(b.ByteAt(off))<<8 | uint16(b.ByteAt(off+8))
}

// ReadBytes fills dst with consecutive bytes starting at bit offset off, and
// returns false if the stream ends before dst is filled.
func (b *Bitstream) ReadBytes(off int, dst []byte) bool {
	if off < 0 || off+len(dst)*8 > b.Len() {
		return false
	}
	if off&7 == 0 {
		copy(dst, b.data[off>>3:])
		return true
	}
	for ix := range dst {
		dst[ix] = b.ByteAt(off + ix*8)
	}
	return true
}

// String renders the stream as '0'/'1' characters, or NoDataText for an
// unavailable stream.
func (b *Bitstream) String() string {
	if !b.Available() {
		return NoDataText
	}
	var sb strings.Builder
	sb.Grow(b.bits)
	for ix := 0; ix < b.bits; ix++ {
		if b.Bit(ix) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Writer builds a Bitstream bit by bit or byte by byte.
type Writer struct {
	data []byte
	bits int
}

//
func (w *Writer) WriteBit(v int) {
	if w.bits&7 == 0 {
		w.data = append(w.data, 0)
	}
	if v != 0 {
		w.data[w.bits>>3] |= 0x80 >> uint(w.bits&7)
	}
	w.bits++
}

//
func (w *Writer) WriteByte(v byte) error {
	if w.bits&7 == 0 {
		w.data = append(w.data, v)
		w.bits += 8
		return nil
	}
	for ix := 7; ix >= 0; ix-- {
		w.WriteBit(int(v>>uint(ix)) & 1)
	}
	return nil
}

//
func (w *Writer) Write(p []byte) (int, error) {
	for _, v := range p {
		w.WriteByte(v)
	}
	return len(p), nil
}

//
func (w *Writer) WriteWord(v uint16) {
	w.WriteByte(byte(v >> 8))
	w.WriteByte(byte(v))
}

// LastBit returns the most recently written bit, 0 for an empty writer.
func (w *Writer) LastBit() int {
	if w.bits == 0 {
		return 0
	}
	ix := w.bits - 1
	return int(w.data[ix>>3]>>(7-uint(ix&7))) & 1
}

//
func (w *Writer) Len() int {
	return w.bits
}

//
func (w *Writer) Bitstream() *Bitstream {
	return NewBitstream(w.data, w.bits)
}
