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

package mfm

import (
	"encoding/binary"
	"fmt"
)

/*
	Layout of an Amiga sector on disk, in MFM bytes:

		offset  size  content
		     0     4  0xAA 0xAA 0xAA 0xAA
		     4     4  sync 0x4489 0x4489
		     8     8  format, track, sector, sectors to gap (odd/even)
		    16    32  sector label (odd/even, unused)
		    48     8  header checksum (odd/even)
		    56     8  data checksum (odd/even)
		    64  1024  data (odd/even)

	A DD track holds 11 such sectors followed by a gap of about 700 bytes. HD
	tracks hold 22 sectors and twice the gap.
*/
const (
	SectorSize       = 512
	AmigaSectorMFM   = 1088
	AmigaTrackGap    = 700
	AmigaSectorsDD   = 11
	AmigaSectorsHD   = 22
	amigaFormatByte  = 0xff
	amigaHeaderStart = 8
	amigaDataStart   = 64
	// MFM bytes following the sync pattern that make up one sector
	amigaSectorBody = AmigaSectorMFM - amigaHeaderStart
)

// AmigaTrackSize returns the number of MFM bytes of a track with the given
// number of sectors; 12668 for a DD track.
func AmigaTrackSize(sectors int) int {
	return sectors*AmigaSectorMFM + AmigaTrackGap*sectors/AmigaSectorsDD
}

// AmigaSector is a sector decoded from an MFM track
type AmigaSector struct {
	Track    int
	Sector   int
	ToGap    int
	Offset   int // bit offset of the sync marker
	Data     []byte
	HeaderOK bool
	DataOK   bool
}

//
func (s *AmigaSector) Valid() bool {
	return s.HeaderOK && s.DataOK
}

// EncodeAmigaTrack encodes the sector data of one track into an MFM bit
// stream. The number of sectors is derived from the data length.
func EncodeAmigaTrack(track int, data []byte) (*Bitstream, error) {

	if len(data) == 0 || len(data)%SectorSize != 0 {
		return nil, fmt.Errorf(
			"track data length %d is not a multiple of %d", len(data), SectorSize)
	}

	sectors := len(data) / SectorSize
	buf := make([]byte, AmigaTrackSize(sectors))
	for ix := range buf {
		buf[ix] = 0xaa
	}

	for s := 0; s < sectors; s++ {
		encodeAmigaSector(buf[s*AmigaSectorMFM:(s+1)*AmigaSectorMFM],
			track, s, sectors, data[s*SectorSize:(s+1)*SectorSize])
	}

	// clock bits, leaving the sync words alone
	for ix := range buf {
		if off := ix % AmigaSectorMFM; ix < sectors*AmigaSectorMFM &&
			4 <= off && off < amigaHeaderStart {
			continue
		}
		var prev byte
		if ix > 0 {
			prev = buf[ix-1]
		}
		buf[ix] = addClockBits(buf[ix], prev)
	}

	return FromBytes(buf), nil
}

//
func encodeAmigaSector(p []byte, track, sector, sectors int, data []byte) {

	p[4], p[5], p[6], p[7] = 0x44, 0x89, 0x44, 0x89

	info := []byte{amigaFormatByte, byte(track), byte(sector),
		byte(sectors - sector)}
	encodeOddEven(p[amigaHeaderStart:], info)

	// label area stays at 0xAA, i.e. zero data bits

	encodeOddEven(p[amigaDataStart:], data)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], checksum(p[amigaHeaderStart:48]))
	encodeOddEven(p[48:], sum[:])

	binary.BigEndian.PutUint32(sum[:], checksum(p[amigaDataStart:AmigaSectorMFM]))
	encodeOddEven(p[56:], sum[:])
}

// DecodeAmigaTrack locates and decodes all sectors in an MFM stream. Sectors
// with failing checksums are included, flagged accordingly.
func DecodeAmigaTrack(s *Bitstream) []*AmigaSector {

	var ret []*AmigaSector
	next := 0
	body := make([]byte, amigaSectorBody)

	for m := range FindSyncMarkers(s) {

		if m.Offset < next {
			continue
		}

		start := m.Offset + SyncPatternLength
		if s.WordAt(start) == SyncWord {
			// more sync words follow, the last pair starts the sector
			continue
		}

		if !s.ReadBytes(start, body) {
			break
		}

		info := decodeOddEven(body[0:8])
		sec := &AmigaSector{
			Track:  int(info[1]),
			Sector: int(info[2]),
			ToGap:  int(info[3]),
			Offset: m.Offset,
		}

		want := binary.BigEndian.Uint32(decodeOddEven(body[40:48]))
		sec.HeaderOK = info[0] == amigaFormatByte && checksum(body[0:40]) == want

		want = binary.BigEndian.Uint32(decodeOddEven(body[48:56]))
		sec.DataOK = checksum(body[56:]) == want

		sec.Data = decodeOddEven(body[56:])
		ret = append(ret, sec)
		next = start + amigaSectorBody*8
	}

	return ret
}

// DecodeAmigaTrackData decodes a complete track into its plain sector data.
// Every sector from 0 through sectors-1 must be present with valid checksums
// and carry the expected track number.
func DecodeAmigaTrackData(s *Bitstream, track, sectors int) ([]byte, error) {

	if !s.Available() {
		return nil, fmt.Errorf("no MFM data for track %d", track)
	}

	data := make([]byte, sectors*SectorSize)
	found := make([]bool, sectors)
	count := 0

	for _, sec := range DecodeAmigaTrack(s) {
		if !sec.Valid() || sec.Track != track {
			continue
		}
		if sec.Sector < 0 || sec.Sector >= sectors || found[sec.Sector] {
			continue
		}
		copy(data[sec.Sector*SectorSize:], sec.Data)
		found[sec.Sector] = true
		count++
	}

	if count != sectors {
		return nil, fmt.Errorf(
			"track %d: found %d of %d valid sectors", track, count, sectors)
	}
	return data, nil
}

// encodeOddEven writes the odd bits of all src bytes to the first half of
// dst, the even bits to the second half. Clock bits are left at zero.
func encodeOddEven(dst, src []byte) {
	n := len(src)
	for ix, b := range src {
		dst[ix] = (b >> 1) & 0x55
		dst[ix+n] = b & 0x55
	}
}

// decodeOddEven reverses encodeOddEven; src holds both halves.
func decodeOddEven(src []byte) []byte {
	n := len(src) / 2
	ret := make([]byte, n)
	for ix := range ret {
		ret[ix] = (src[ix]&0x55)<<1 | src[ix+n]&0x55
	}
	return ret
}

// addClockBits sets the clock bits of an MFM byte whose data bits are in the
// 0x55 positions. A clock bit is 1 iff both neighbouring data bits are 0.
func addClockBits(value, previous byte) byte {
	value &= 0x55
	inv := value<<1 | value>>1 | previous<<7
	return value | (inv^0xaa)&0xaa
}

// checksum is the Amiga sector checksum: XOR over all longwords, data bits only
func checksum(p []byte) uint32 {
	var sum uint32
	for ix := 0; ix+4 <= len(p); ix += 4 {
		sum ^= binary.BigEndian.Uint32(p[ix:])
	}
	return sum & 0x55555555
}
