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

package drive

import (
	"fmt"

	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// HardDrive is a virtual hard drive backed by an HDF image
type HardDrive struct {
	slot
}

//
func NewHardDrive(name string) *HardDrive {
	d := &HardDrive{}
	d.init(name)
	return d
}

//
func (d *HardDrive) IsFixed() bool {
	return true
}

// Insert attaches a hard disk image. Any block aligned image is accepted.
func (d *HardDrive) Insert(name string, data []byte, writeProtected bool) error {
	img, err := format.ParseHDF(data)
	if err != nil {
		return err
	}
	d.insert(&medium{name: name, data: data, image: img,
		writeProtected: writeProtected})
	return nil
}

// ReadTrackBits always fails, hard drives carry no MFM data
func (d *HardDrive) ReadTrackBits(track int) (*mfm.Bitstream, error) {
	return nil, fmt.Errorf("%w: no MFM data on hard drive %s",
		ErrMediumUnavailable, d.name)
}
