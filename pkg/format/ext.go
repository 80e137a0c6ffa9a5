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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

/*
	Extended ADF, as written by UAE. The current variant starts with

		0   "UAE-1ADF"
		8   reserved (2 bytes)
		10  number of tracks (2 bytes)

	followed by a 12 byte header per track

		0   reserved (2 bytes)
		2   type, 0 for AmigaDOS sectors, 1 for raw MFM (2 bytes)
		4   length of track data in bytes (4 bytes)
		8   length of track data in bits (4 bytes)

	and finally the data of all tracks in order. The legacy variant "UAE--ADF"
	holds 160 tracks, each with a 4 byte header of sync word and byte length.
	A sync word of 0 marks an AmigaDOS track.
*/
const (
	extMagic       = "UAE-1ADF"
	extLegacyMagic = "UAE--ADF"
	extHeaderLen   = 12
	extTrackLen    = 12
	extLegacyLen   = 4

	extTypeDOS = 0
	extTypeRaw = 1

	extLegacyTracks = 160
)

// Track is one track of an extended ADF
type Track struct {
	Raw  bool
	Bits int
	// AmigaDOS sector data, or MFM bytes for raw tracks
	Data []byte
}

// Bitstream returns the MFM bits of a raw track, nil for a standard track
func (t *Track) Bitstream() *mfm.Bitstream {
	if !t.Raw {
		return nil
	}
	return mfm.NewBitstream(t.Data, t.Bits)
}

//
type EXT struct{}

//
func NewEXT() *EXT {
	return &EXT{}
}

//
func (e *EXT) Read(in io.Reader) (*Image, error) {
	data, err := readAll(in)
	if err != nil {
		return nil, err
	}
	return ParseEXT(data)
}

// Write writes an extended or standard Amiga floppy image as UAE-1ADF.
func (e *EXT) Write(img *Image, out io.Writer) error {

	var tracks []*Track

	switch img.Kind {
	case FloppyExtended:
		tracks = img.Tracks
	case FloppyStandard:
		for t := 0; t < img.Geometry.Tracks(); t++ {
			tracks = append(tracks, &Track{Data: img.TrackData(t)})
		}
	default:
		return fmt.Errorf("cannot write %s image as ext", img.Kind)
	}

	var buf bytes.Buffer
	buf.WriteString(extMagic)
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))

	for _, t := range tracks {
		typ, bits := uint16(extTypeDOS), len(t.Data)*8
		if t.Raw {
			typ, bits = extTypeRaw, t.Bits
		}
		binary.Write(&buf, binary.BigEndian, uint16(0))
		binary.Write(&buf, binary.BigEndian, typ)
		binary.Write(&buf, binary.BigEndian, uint32(len(t.Data)))
		binary.Write(&buf, binary.BigEndian, uint32(bits))
	}

	for _, t := range tracks {
		buf.Write(t.Data)
	}

	_, err := out.Write(buf.Bytes())
	return err
}

// ParseEXT parses both variants of the extended ADF format. Raw MFM tracks
// are decoded as AmigaDOS tracks where possible, so that block access works
// on the whole disk; undecodable tracks read as zeros.
func ParseEXT(data []byte) (*Image, error) {

	var tracks []*Track
	var err error

	switch {
	case bytes.HasPrefix(data, []byte(extMagic)):
		tracks, err = parseEXTTracks(data)
	case bytes.HasPrefix(data, []byte(extLegacyMagic)):
		tracks, err = parseLegacyEXTTracks(data)
	default:
		return nil, notRecognized(FloppyExtended, "no UAE header")
	}

	if err != nil {
		return nil, err
	}

	sectors := mfm.AmigaSectorsDD
	for _, t := range tracks {
		if !t.Raw {
			if len(t.Data) == mfm.AmigaSectorsHD*mfm.SectorSize {
				sectors = mfm.AmigaSectorsHD
			}
			break
		}
	}

	cylinders := (len(tracks) + 1) / disk.FloppyHeads
	img := &Image{
		Kind:       FloppyExtended,
		Geometry:   disk.NewFloppyGeometry(cylinders, sectors),
		Tracks:     tracks,
		LayoutInfo: amigaDensity(sectors),
	}

	size := sectors * mfm.SectorSize
	img.Data = make([]byte, img.Geometry.Capacity())

	for ix, t := range tracks {
		dst := img.Data[ix*size : (ix+1)*size]
		if !t.Raw {
			copy(dst, t.Data)
			continue
		}
		plain, err := mfm.DecodeAmigaTrackData(t.Bitstream(), ix, sectors)
		if err != nil {
			log.WithField("track", ix).Debugf("raw track not decodable: %v", err)
			continue
		}
		copy(dst, plain)
	}

	img.TypeInfo = dosTypeName(img.Data)
	return img, nil
}

//
func parseEXTTracks(data []byte) ([]*Track, error) {

	if len(data) < extHeaderLen {
		return nil, notRecognized(FloppyExtended, "header truncated")
	}

	count := int(binary.BigEndian.Uint16(data[10:]))
	if count == 0 || count > 2*ADFMaxCylinders {
		return nil, notRecognized(FloppyExtended, "invalid track count %d", count)
	}

	pos := extHeaderLen + count*extTrackLen
	if len(data) < pos {
		return nil, notRecognized(FloppyExtended, "track headers truncated")
	}

	tracks := make([]*Track, count)

	for ix := range tracks {
		h := data[extHeaderLen+ix*extTrackLen:]
		typ := binary.BigEndian.Uint16(h[2:])
		length := int(binary.BigEndian.Uint32(h[4:]))
		bits := int(binary.BigEndian.Uint32(h[8:]))

		if typ != extTypeDOS && typ != extTypeRaw {
			return nil, notRecognized(FloppyExtended,
				"track %d has unknown type %d", ix, typ)
		}
		if length < 0 || pos+length > len(data) {
			return nil, notRecognized(FloppyExtended, "track %d truncated", ix)
		}
		if bits > length*8 {
			return nil, notRecognized(FloppyExtended,
				"track %d: %d bits do not fit into %d bytes", ix, bits, length)
		}

		t := &Track{Raw: typ == extTypeRaw, Bits: bits, Data: data[pos : pos+length]}
		if !t.Raw {
			if err := checkDOSTrack(ix, t); err != nil {
				return nil, err
			}
		}
		tracks[ix] = t
		pos += length
	}

	return tracks, nil
}

//
func parseLegacyEXTTracks(data []byte) ([]*Track, error) {

	pos := len(extLegacyMagic) + extLegacyTracks*extLegacyLen
	if len(data) < pos {
		return nil, notRecognized(FloppyExtended, "legacy track headers truncated")
	}

	tracks := make([]*Track, extLegacyTracks)

	for ix := range tracks {
		h := data[len(extLegacyMagic)+ix*extLegacyLen:]
		sync := binary.BigEndian.Uint16(h)
		length := int(binary.BigEndian.Uint16(h[2:]))

		if pos+length > len(data) {
			return nil, notRecognized(FloppyExtended, "track %d truncated", ix)
		}

		t := &Track{Raw: sync != 0, Bits: length * 8, Data: data[pos : pos+length]}
		if !t.Raw {
			if err := checkDOSTrack(ix, t); err != nil {
				return nil, err
			}
		}
		tracks[ix] = t
		pos += length
	}

	return tracks, nil
}

//
func checkDOSTrack(ix int, t *Track) error {
	if l := len(t.Data); l != mfm.AmigaSectorsDD*mfm.SectorSize &&
		l != mfm.AmigaSectorsHD*mfm.SectorSize {
		return notRecognized(FloppyExtended,
			"track %d: invalid AmigaDOS track length %d", ix, l)
	}
	return nil
}
