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
	"fmt"
	"iter"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// Decoder gives block and track level access to the disk in a drive. It is
// created by Probe, and never changes the drive's state.
type Decoder struct {
	drive drive.Drive
	image *format.Image
}

//
func (d *Decoder) Drive() drive.Drive {
	return d.drive
}

//
func (d *Decoder) Kind() format.Kind {
	return d.image.Kind
}

// Image returns the parsed image, which in raw mode carries no data
func (d *Decoder) Image() *format.Image {
	return d.image
}

// Geometry returns the geometry of the disk, all zero in raw mode.
func (d *Decoder) Geometry() disk.Geometry {
	return d.image.Geometry
}

// Title is the short description of what was recognized
func (d *Decoder) Title() string {
	return d.image.Kind.Description()
}

// Descriptions returns the lines describing the disk, starting with its
// title, followed by format details and capacity.
func (d *Decoder) Descriptions() []string {
	ret := []string{d.Title()}
	ret = append(ret, d.image.Info()...)
	if g := d.Geometry(); !g.IsZero() {
		ret = append(ret, g.DescribeCapacity())
	}
	return ret
}

// ByteAt reads the byte at offset within block. Addresses outside of the
// geometry yield an error wrapping disk.ErrOutOfRange.
func (d *Decoder) ByteAt(block, offset int) (byte, error) {

	g := d.Geometry()

	if block < 0 || block >= g.Blocks {
		return 0, fmt.Errorf("%w: block %d, disk has %d blocks",
			disk.ErrOutOfRange, block, g.Blocks)
	}
	if offset < 0 || offset >= g.BlockSize {
		return 0, fmt.Errorf("%w: offset %d, block size is %d",
			disk.ErrOutOfRange, offset, g.BlockSize)
	}

	pos := block*g.BlockSize + offset
	if pos >= len(d.image.Data) {
		return 0, fmt.Errorf("%w: position %d beyond image data",
			disk.ErrOutOfRange, pos)
	}
	return d.image.Data[pos], nil
}

// TrackBitStream reads the MFM bits of a physical track from the drive,
// regardless of the recognized geometry. If the drive cannot deliver, the
// result is mfm.NoData.
func (d *Decoder) TrackBitStream(track int) *mfm.Bitstream {

	if !d.drive.IsConnected() {
		return mfm.NoData
	}

	s, err := d.drive.ReadTrackBits(track)
	if err != nil {
		log.WithFields(log.Fields{
			"drive": d.drive.Name(),
			"track": track,
		}).Debugf("no track data: %v", err)
		return mfm.NoData
	}
	return s
}

// FindSyncMarkers yields all sync markers of stream, see mfm.FindSyncMarkers
func (d *Decoder) FindSyncMarkers(stream *mfm.Bitstream) iter.Seq[mfm.SyncMarker] {
	return mfm.FindSyncMarkers(stream)
}

// SyncMarkers reads a track and returns all sync markers found on it
func (d *Decoder) SyncMarkers(track int) []mfm.SyncMarker {
	return mfm.SyncMarkers(d.TrackBitStream(track))
}
