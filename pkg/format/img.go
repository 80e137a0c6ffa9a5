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
	"io"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// a PC disk layout identified by image size
type pcLayout struct {
	cylinders int
	sectors   int
	density   string
}

var pcLayouts = []pcLayout{
	{40, 9, "DD"},
	{80, 9, "DD"},
	{80, 18, "HD"},
	{80, 36, "ED"},
}

//
type IMG struct{}

//
func NewIMG() *IMG {
	return &IMG{}
}

//
func (i *IMG) Read(in io.Reader) (*Image, error) {
	data, err := readAll(in)
	if err != nil {
		return nil, err
	}
	return ParseIMG(data)
}

//
func (i *IMG) Write(img *Image, out io.Writer) error {
	if img.Kind != FloppyPlain {
		return fmt.Errorf("cannot write %s image as img", img.Kind)
	}
	_, err := out.Write(img.Data[:img.Geometry.Capacity()])
	return err
}

// ParseIMG accepts sector dumps of 360K, 720K, 1.44M, and 2.88M PC disks.
func ParseIMG(data []byte) (*Image, error) {

	for _, l := range pcLayouts {
		if len(data) == l.cylinders*disk.FloppyHeads*l.sectors*mfm.SectorSize {
			return newFloppyImage(FloppyPlain, data, l.cylinders, l.sectors,
				pcTypeName(data), l.density), nil
		}
	}

	return nil, notRecognized(FloppyPlain, "size %d matches no PC disk layout",
		len(data))
}

// pcTypeName checks the boot sector signature
func pcTypeName(data []byte) string {
	if len(data) >= mfm.SectorSize && data[510] == 0x55 && data[511] == 0xaa {
		return "MS-DOS"
	}
	return "NDOS"
}
