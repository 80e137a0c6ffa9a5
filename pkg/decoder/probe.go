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
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// number of cylinders read from drives that cannot hand out an image
const probeCylinders = 80

// a probe accepts a drive as a particular kind of disk, or returns an error
// wrapping disk.ErrFormatNotRecognized
type probeFunc func(d drive.Drive, tc *trackCache) (*format.Image, error)

type probe struct {
	kind  format.Kind
	fixed bool // applies to hard drives instead of floppy drives
	fn    probeFunc
}

// probes in order of priority, the first one accepting a drive wins
var probes = []probe{
	{format.FloppyStandard, false, probeADF},
	{format.FloppyPlain, false, probeIMG},
	{format.FloppyExtended, false, probeEXT},
	{format.HardDisk, true, probeHDF},
}

/*
	Probe creates a decoder for the disk in drive d. The probes are tried in
	order of priority: standard Amiga floppy, plain PC sector dump, extended
	Amiga floppy, and for fixed drives, hard disk. Drives that can hand out the
	inserted image are probed by parsing that image, all others by decoding
	MFM tracks. If no probe accepts the disk, the returned decoder works in raw
	mode, with zero geometry. Probe never fails.
*/
func Probe(d drive.Drive) *Decoder {

	tc := &trackCache{drive: d, tracks: map[int]*mfm.Bitstream{}}

	for _, p := range probes {
		if p.fixed != d.IsFixed() {
			continue
		}
		img, err := p.fn(d, tc)
		if err == nil {
			log.WithFields(log.Fields{
				"drive":    d.Name(),
				"kind":     p.kind,
				"geometry": img.Geometry,
			}).Debug("disk recognized")
			return &Decoder{drive: d, image: img}
		}
		log.WithField("drive", d.Name()).Tracef("probe %s: %v", p.kind, err)
	}

	log.WithField("drive", d.Name()).Debug("disk not recognized, raw mode")
	return &Decoder{drive: d, image: &format.Image{Kind: format.Raw}}
}

// image returns the image held by d, if d is an Imager that currently has a
// disk inserted. Images a drive itself could not recognize are raw MFM dumps,
// and are probed through their tracks instead.
func image(d drive.Drive) ([]byte, bool) {
	if k, ok := d.(interface{ Kind() format.Kind }); ok && k.Kind() == format.Raw {
		return nil, false
	}
	if i, ok := d.(drive.Imager); ok {
		return i.Image()
	}
	return nil, false
}

//
func probeADF(d drive.Drive, tc *trackCache) (*format.Image, error) {

	if data, ok := image(d); ok {
		return format.ParseADF(data)
	}

	sectors, err := tc.amigaSectors()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for t := 0; t < probeCylinders*disk.FloppyHeads; t++ {
		data, err := mfm.DecodeAmigaTrackData(tc.get(t), t, sectors)
		if err != nil {
			return nil, notRecognized(format.FloppyStandard, "track %d: %v", t,
				err)
		}
		buf.Write(data)
	}

	return format.ParseADF(buf.Bytes())
}

//
func probeIMG(d drive.Drive, tc *trackCache) (*format.Image, error) {

	if data, ok := image(d); ok {
		return format.ParseIMG(data)
	}

	sectors := mfm.CountIBMSectors(tc.get(0))
	if sectors == 0 {
		return nil, notRecognized(format.FloppyPlain, "no IBM sectors on track 0")
	}

	var buf bytes.Buffer
	for t := 0; t < probeCylinders*disk.FloppyHeads; t++ {
		data, err := mfm.DecodeIBMTrackData(tc.get(t), t/disk.FloppyHeads,
			t%disk.FloppyHeads, sectors)
		if err != nil {
			return nil, notRecognized(format.FloppyPlain, "track %d: %v", t, err)
		}
		buf.Write(data)
	}

	return format.ParseIMG(buf.Bytes())
}

// probeEXT accepts an Amiga disk with tracks that do not decode, as is the
// case for many copy protected disks. Those are kept as raw MFM tracks.
func probeEXT(d drive.Drive, tc *trackCache) (*format.Image, error) {

	if data, ok := image(d); ok {
		return format.ParseEXT(data)
	}

	sectors, err := tc.amigaSectors()
	if err != nil {
		return nil, err
	}

	img := &format.Image{Kind: format.FloppyExtended}
	for t := 0; t < probeCylinders*disk.FloppyHeads; t++ {
		s := tc.get(t)
		if data, err := mfm.DecodeAmigaTrackData(s, t, sectors); err == nil {
			img.Tracks = append(img.Tracks, &format.Track{Data: data})
		} else {
			img.Tracks = append(img.Tracks,
				&format.Track{Raw: true, Bits: s.Len(), Data: s.Bytes()})
		}
	}

	var buf bytes.Buffer
	if err := format.NewEXT().Write(img, &buf); err != nil {
		return nil, err
	}
	return format.ParseEXT(buf.Bytes())
}

//
func probeHDF(d drive.Drive, _ *trackCache) (*format.Image, error) {
	data, ok := image(d)
	if !ok {
		return nil, notRecognized(format.HardDisk, "no hard disk image")
	}
	return format.ParseHDF(data)
}

// trackCache keeps the tracks read during a single probe run, so that the MFM
// based probes read each track from the drive only once
type trackCache struct {
	drive  drive.Drive
	tracks map[int]*mfm.Bitstream
}

//
func (c *trackCache) get(track int) *mfm.Bitstream {
	if s, ok := c.tracks[track]; ok {
		return s
	}
	s, err := c.drive.ReadTrackBits(track)
	if err != nil {
		log.WithField("track", track).Tracef("cannot read track: %v", err)
		s = mfm.NoData
	}
	c.tracks[track] = s
	return s
}

// amigaSectors determines the number of sectors per track from the sectors
// found on track 0
func (c *trackCache) amigaSectors() (int, error) {
	for _, sec := range mfm.DecodeAmigaTrack(c.get(0)) {
		if sec.Valid() && sec.Track == 0 {
			switch n := sec.Sector + sec.ToGap; n {
			case mfm.AmigaSectorsDD, mfm.AmigaSectorsHD:
				return n, nil
			}
		}
	}
	return 0, notRecognized(format.FloppyStandard,
		"no valid AmigaDOS sector on track 0")
}

//
func notRecognized(kind format.Kind, msg string, params ...interface{}) error {
	return fmt.Errorf("%w as %s: %s", disk.ErrFormatNotRecognized, kind,
		fmt.Sprintf(msg, params...))
}
