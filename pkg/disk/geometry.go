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

package disk

import (
	"fmt"
)

// FloppyHeads is the head count used for all track/cylinder conversions
const FloppyHeads = 2

// BlockSize is the size of a logical block on all supported media
const BlockSize = 512

// Geometry describes the layout of a decoded disk. The zero value stands for
// an undecoded raw MFM medium.
type Geometry struct {
	Cylinders int `json:"cylinders"`
	Heads     int `json:"heads"`
	Sectors   int `json:"sectors"`
	BlockSize int `json:"blockSize"`
	Blocks    int `json:"blocks"`
}

// NewGeometry creates a CHS geometry in which every track is fully used
func NewGeometry(cylinders, heads, sectors int) Geometry {
	return Geometry{
		Cylinders: cylinders,
		Heads:     heads,
		Sectors:   sectors,
		BlockSize: BlockSize,
		Blocks:    cylinders * heads * sectors,
	}
}

//
func NewFloppyGeometry(cylinders, sectors int) Geometry {
	return NewGeometry(cylinders, FloppyHeads, sectors)
}

//
func (g Geometry) IsZero() bool {
	return g == Geometry{}
}

// Tracks returns the number of physical tracks
func (g Geometry) Tracks() int {
	return g.Cylinders * g.Heads
}

// Capacity returns the number of bytes covered by all blocks
func (g Geometry) Capacity() int64 {
	return int64(g.Blocks) * int64(g.BlockSize)
}

// Validate checks that the geometry fits into an image of the given size.
func (g Geometry) Validate(imageSize int) error {
	if g.Blocks < 0 || g.BlockSize < 0 {
		return fmt.Errorf("invalid geometry: %s", g)
	}
	if g.Capacity() > int64(imageSize) {
		return fmt.Errorf(
			"geometry %s needs %d bytes, image has only %d",
			g, g.Capacity(), imageSize)
	}
	return nil
}

// DescribeCapacity renders the capacity in KB, or in MB from 1 MB upwards.
func (g Geometry) DescribeCapacity() string {
	return DescribeSize(g.Capacity())
}

//
func DescribeSize(size int64) string {
	if size < 1024*1024 {
		return fmt.Sprintf("%d KB", size/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

//
func (g Geometry) String() string {
	return fmt.Sprintf("%d/%d/%d (%d blocks of %d bytes)",
		g.Cylinders, g.Heads, g.Sectors, g.Blocks, g.BlockSize)
}
