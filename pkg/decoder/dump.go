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

package decoder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xelalexv/diskscope/pkg/disk"
)

// Placeholder is rendered in place of non-printable bytes
const Placeholder = '.'

// BytesPerRow is the number of bytes in one row of a block table
const BytesPerRow = 16

// DumpASCII renders length bytes starting at offset within block, with
// non-printable bytes shown as Placeholder. The range is clamped to the
// available data, and may extend into following blocks. If no data is
// available, the result is empty.
func (d *Decoder) DumpASCII(block, offset, length int) string {

	g := d.Geometry()
	if block < 0 || offset < 0 || length <= 0 || g.BlockSize == 0 ||
		block >= g.Blocks {
		return ""
	}

	end := g.Blocks * g.BlockSize
	if end > len(d.image.Data) {
		end = len(d.image.Data)
	}

	// no sums before the range checks, so huge arguments can't overflow
	start := block * g.BlockSize
	if start >= end || offset >= end-start {
		return ""
	}
	start += offset
	if length > end-start {
		length = end - start
	}

	return printable(d.image.Data[start : start+length])
}

//
func printable(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if 0x20 <= b && b <= 0x7e {
			sb.WriteByte(b)
		} else {
			sb.WriteByte(Placeholder)
		}
	}
	return sb.String()
}

/*
	Emit writes a block as a table of BytesPerRow bytes per row. Each row
	starts with the hex offset within the block, followed by the bytes in hex,
	and their ASCII rendering:

		0000  44 4f 53 00 c0 20 0f 19  00 00 03 70 43 fa 00 18  DOS.. .....pC...
*/
func (d *Decoder) Emit(w io.Writer, block int) error {

	if _, err := d.ByteAt(block, 0); err != nil {
		return err
	}

	g := d.Geometry()
	data := d.image.Data[block*g.BlockSize : (block+1)*g.BlockSize]
	out := bufio.NewWriter(w)

	for row := 0; row < len(data); row += BytesPerRow {
		end := row + BytesPerRow
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(out, "%04x  %s %s\n", row, hexColumns(data[row:end]),
			printable(data[row:end]))
	}

	return out.Flush()
}

// hexColumns renders up to BytesPerRow bytes in hex, with an extra space
// after the first half, padded to full width
func hexColumns(data []byte) string {
	var sb strings.Builder
	for ix := 0; ix < BytesPerRow; ix++ {
		if ix < len(data) {
			fmt.Fprintf(&sb, "%02x ", data[ix])
		} else {
			sb.WriteString("   ")
		}
		if ix == BytesPerRow/2-1 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// BlockRows is the number of rows Emit writes for a block of the given
// geometry
func BlockRows(g disk.Geometry) int {
	return (g.BlockSize + BytesPerRow - 1) / BytesPerRow
}
