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

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// RawTrackSize is the number of MFM bytes per track assumed when slicing an
// unrecognized image into tracks.
var RawTrackSize = mfm.AmigaTrackSize(mfm.AmigaSectorsDD)

// FloppyDrive is a virtual floppy drive. Track bits are synthesized from the
// inserted image on every read: ADF tracks are Amiga MFM encoded, IMG tracks
// IBM MFM encoded, and raw EXT tracks are handed out as stored. An image of
// unknown format is taken for a raw MFM dump of consecutive tracks.
type FloppyDrive struct {
	slot
}

//
func NewFloppyDrive(name string) *FloppyDrive {
	d := &FloppyDrive{}
	d.init(name)
	return d
}

//
func (d *FloppyDrive) IsFixed() bool {
	return false
}

/*
	Insert places an image into the drive, replacing any present disk. When
	kind is format.Raw, the format is determined from the data. Hard disk images
	are rejected, and so is empty data.
*/
func (d *FloppyDrive) Insert(name string, data []byte, kind format.Kind,
	writeProtected bool) error {

	if len(data) == 0 {
		return fmt.Errorf("empty image")
	}

	if kind == format.Raw {
		// a block aligned image is not necessarily a hard disk
		if kind = format.Sniff(data); kind == format.HardDisk {
			kind = format.Raw
		}
	}

	var img *format.Image

	switch kind {
	case format.HardDisk:
		return fmt.Errorf("cannot insert hard disk image into floppy drive %s",
			d.name)
	case format.Raw:
		log.WithField("drive", d.name).Info(
			"unrecognized image, treating it as raw MFM")
		img = &format.Image{Kind: format.Raw, Data: data}
	default:
		var err error
		if img, err = format.Parse(kind, data); err != nil {
			return err
		}
	}

	d.insert(&medium{name: name, data: data, image: img,
		writeProtected: writeProtected})
	return nil
}

//
func (d *FloppyDrive) ReadTrackBits(track int) (*mfm.Bitstream, error) {

	m := d.medium.Load()
	if m == nil {
		return nil, fmt.Errorf("%w: no disk in drive %s",
			ErrMediumUnavailable, d.name)
	}
	img := m.image

	switch img.Kind {

	case format.FloppyStandard:
		data := img.TrackData(track)
		if data == nil {
			return nil, trackError(track)
		}
		return mfm.EncodeAmigaTrack(track, data)

	case format.FloppyPlain:
		data := img.TrackData(track)
		if data == nil {
			return nil, trackError(track)
		}
		return mfm.EncodeIBMTrack(
			track/disk.FloppyHeads, track%disk.FloppyHeads, data)

	case format.FloppyExtended:
		if track < 0 || track >= len(img.Tracks) {
			return nil, trackError(track)
		}
		if t := img.Tracks[track]; t.Raw {
			return t.Bitstream(), nil
		}
		return mfm.EncodeAmigaTrack(track, img.Tracks[track].Data)

	default:
		// bound track before multiplying, large numbers would overflow
		if track < 0 || track >= (len(img.Data)+RawTrackSize-1)/RawTrackSize {
			return nil, trackError(track)
		}
		start := track * RawTrackSize
		end := start + RawTrackSize
		if end > len(img.Data) {
			end = len(img.Data)
		}
		return mfm.FromBytes(img.Data[start:end]), nil
	}
}

//
func trackError(track int) error {
	return fmt.Errorf("%w: track %d not on disk", ErrMediumUnavailable, track)
}
