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

// ADF cylinder range; 80 is standard, some disks use up to 84
const (
	ADFMinCylinders = 80
	ADFMaxCylinders = 84
)

//
type ADF struct{}

//
func NewADF() *ADF {
	return &ADF{}
}

//
func (a *ADF) Read(in io.Reader) (*Image, error) {
	data, err := readAll(in)
	if err != nil {
		return nil, err
	}
	return ParseADF(data)
}

// Write writes the plain sector data of any floppy image
func (a *ADF) Write(img *Image, out io.Writer) error {
	if !img.Kind.IsFloppy() {
		return fmt.Errorf("cannot write %s image as adf", img.Kind)
	}
	_, err := out.Write(img.Data[:img.Geometry.Capacity()])
	return err
}

// ADFSize returns the size of an ADF with the given cylinder and sector count
func ADFSize(cylinders, sectors int) int {
	return cylinders * disk.FloppyHeads * sectors * mfm.SectorSize
}

// ParseADF accepts DD and HD images of 80 through 84 cylinders.
func ParseADF(data []byte) (*Image, error) {

	for _, sectors := range []int{mfm.AmigaSectorsDD, mfm.AmigaSectorsHD} {
		for cyl := ADFMinCylinders; cyl <= ADFMaxCylinders; cyl++ {
			if len(data) == ADFSize(cyl, sectors) {
				return newFloppyImage(FloppyStandard, data, cyl, sectors,
					dosTypeName(data), amigaDensity(sectors)), nil
			}
		}
	}

	return nil, notRecognized(FloppyStandard, "size %d matches no ADF layout",
		len(data))
}

//
func newFloppyImage(kind Kind, data []byte, cylinders, sectors int,
	typeInfo, layoutInfo string) *Image {
	return &Image{
		Kind:       kind,
		Geometry:   disk.NewFloppyGeometry(cylinders, sectors),
		Data:       data,
		TypeInfo:   typeInfo,
		LayoutInfo: layoutInfo,
	}
}

//
func amigaDensity(sectors int) string {
	if sectors == mfm.AmigaSectorsHD {
		return "HD"
	}
	return "DD"
}
