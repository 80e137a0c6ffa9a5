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

package format

import (
	"fmt"

	"github.com/xelalexv/diskscope/pkg/disk"
)

// Image is a parsed disk image
type Image struct {
	Kind     Kind
	Geometry disk.Geometry
	// plain block data, Geometry.Blocks * Geometry.BlockSize bytes at least
	Data []byte
	// floppies only
	TypeInfo   string
	LayoutInfo string
	// extended floppies only
	Tracks []*Track
	// hard disks only
	Partitions []*Partition
	HasRDB     bool
	Oversized  bool
}

// Block returns the data of block n, or nil if n is out of range
func (i *Image) Block(n int) []byte {
	g := i.Geometry
	if n < 0 || n >= g.Blocks {
		return nil
	}
	return i.Data[n*g.BlockSize : (n+1)*g.BlockSize]
}

// TrackData returns the plain sector data of a track, or nil if the track
// does not exist
func (i *Image) TrackData(track int) []byte {
	g := i.Geometry
	if track < 0 || track >= g.Tracks() {
		return nil
	}
	size := g.Sectors * g.BlockSize
	if (track+1)*size > len(i.Data) {
		return nil
	}
	return i.Data[track*size : (track+1)*size]
}

// Info returns up to two lines of format specific details, matching what
// a disk inspector shows below the kind's description.
func (i *Image) Info() []string {
	switch {
	case i.Kind == HardDisk:
		n := len(i.Partitions)
		parts := fmt.Sprintf("%d Partition", n)
		if n != 1 {
			parts += "s"
		}
		rdb := "Rigid Disk Block found"
		if !i.HasRDB {
			rdb = "No " + rdb
		}
		return []string{parts, rdb}

	case i.Kind.IsFloppy():
		return []string{i.TypeInfo + " " + i.LayoutInfo}
	}
	return nil
}

// dosTypeName renders the file system type given by a DOS type long word
// such as found in boot blocks and partition environments
func dosTypeName(p []byte) string {
	if len(p) < 4 || string(p[:3]) != "DOS" {
		return "NDOS"
	}
	switch p[3] {
	case 0:
		return "OFS"
	case 1:
		return "FFS"
	case 2:
		return "OFS-INTL"
	case 3:
		return "FFS-INTL"
	case 4:
		return "OFS-DC"
	case 5:
		return "FFS-DC"
	case 6:
		return "OFS-LNFS"
	case 7:
		return "FFS-LNFS"
	}
	return "NDOS"
}
