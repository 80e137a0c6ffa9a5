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
	"fmt"

	"github.com/sigurn/crc16"
)

// IBM System/34 track layout, as written by PC floppy controllers
const (
	ibmGap4a   = 80
	ibmGap1    = 50
	ibmGap2    = 22
	ibmGap3    = 84
	ibmSyncLen = 12
	ibmGapByte = 0x4e

	ibmMarkIndex = 0xfc
	ibmMarkID    = 0xfe
	ibmMarkData  = 0xfb
	ibmMarkDel   = 0xf8

	// 0xC2 with a missing clock bit, precedes the index mark
	ibmIndexSync = 0x5224

	// data bytes of a DD track with 9 sectors at 300rpm
	ibmTrackBytesDD = 6250
)

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// IBMSector is a sector decoded from an IBM MFM track
type IBMSector struct {
	Cylinder int
	Head     int
	Sector   int // 1-based, as recorded in the ID field
	SizeCode int
	Deleted  bool
	Offset   int // bit offset of the ID sync marker
	Data     []byte
	HeaderOK bool
	DataOK   bool
}

//
func (s *IBMSector) Valid() bool {
	return s.HeaderOK && s.DataOK && s.Data != nil
}

// EncodeIBMTrack encodes the sector data of one track using IBM MFM. Sectors
// are numbered from 1 and are 512 bytes long.
func EncodeIBMTrack(cylinder, head int, data []byte) (*Bitstream, error) {

	if len(data) == 0 || len(data)%SectorSize != 0 {
		return nil, fmt.Errorf(
			"track data length %d is not a multiple of %d", len(data), SectorSize)
	}

	sectors := len(data) / SectorSize
	e := &ibmEncoder{}

	e.fill(ibmGapByte, ibmGap4a)
	e.fill(0x00, ibmSyncLen)
	for ix := 0; ix < 3; ix++ {
		e.raw(ibmIndexSync)
	}
	e.put(ibmMarkIndex)
	e.fill(ibmGapByte, ibmGap1)

	for s := 0; s < sectors; s++ {

		id := []byte{0xa1, 0xa1, 0xa1, ibmMarkID,
			byte(cylinder), byte(head), byte(s + 1), 2}
		e.fill(0x00, ibmSyncLen)
		e.record(id)
		e.fill(ibmGapByte, ibmGap2)

		rec := make([]byte, 0, SectorSize+4)
		rec = append(rec, 0xa1, 0xa1, 0xa1, ibmMarkData)
		rec = append(rec, data[s*SectorSize:(s+1)*SectorSize]...)
		e.fill(0x00, ibmSyncLen)
		e.record(rec)
		e.fill(ibmGapByte, ibmGap3)
	}

	want := ibmTrackBytesDD * ((sectors + 8) / 9)
	if e.count < want {
		e.fill(ibmGapByte, want-e.count)
	}

	return e.w.Bitstream(), nil
}

// DecodeIBMTrack locates and decodes all sectors in an IBM MFM stream
func DecodeIBMTrack(s *Bitstream) []*IBMSector {

	var ret []*IBMSector
	var pending *IBMSector
	next := 0

	for m := range FindSyncMarkers(s) {

		if m.Offset < next || s.WordAt(m.Offset+SyncPatternLength) != SyncWord {
			continue
		}

		at := m.Offset + 3*16
		mark := decodeWord(s.WordAt(at))

		switch mark {

		case ibmMarkID:
			field := readDecoded(s, at, 7)
			if field == nil {
				return ret
			}
			pending = &IBMSector{
				Cylinder: int(field[1]),
				Head:     int(field[2]),
				Sector:   int(field[3]),
				SizeCode: int(field[4]),
				Offset:   m.Offset,
				HeaderOK: crcOK(field),
			}
			ret = append(ret, pending)
			next = at + len(field)*16

		case ibmMarkData, ibmMarkDel:
			if pending == nil || pending.Data != nil {
				continue
			}
			size := 128 << uint(pending.SizeCode&0x07)
			field := readDecoded(s, at, 1+size+2)
			if field == nil {
				return ret
			}
			pending.Deleted = mark == ibmMarkDel
			pending.Data = field[1 : 1+size]
			pending.DataOK = crcOK(field)
			next = at + len(field)*16
			pending = nil
		}
	}

	return ret
}

// DecodeIBMTrackData decodes a complete track into plain sector data.
// Sectors 1 through sectors must be present, valid, and 512 bytes long.
func DecodeIBMTrackData(s *Bitstream, cylinder, head, sectors int) ([]byte, error) {

	if !s.Available() {
		return nil, fmt.Errorf("no MFM data for cylinder %d, head %d",
			cylinder, head)
	}

	data := make([]byte, sectors*SectorSize)
	found := make([]bool, sectors)
	count := 0

	for _, sec := range DecodeIBMTrack(s) {
		if !sec.Valid() || sec.Cylinder != cylinder || sec.Head != head ||
			len(sec.Data) != SectorSize {
			continue
		}
		ix := sec.Sector - 1
		if ix < 0 || ix >= sectors || found[ix] {
			continue
		}
		copy(data[ix*SectorSize:], sec.Data)
		found[ix] = true
		count++
	}

	if count != sectors {
		return nil, fmt.Errorf("cylinder %d, head %d: found %d of %d valid sectors",
			cylinder, head, count, sectors)
	}
	return data, nil
}

// CountIBMSectors returns the number of valid sectors on an IBM track
func CountIBMSectors(s *Bitstream) int {
	count := 0
	for _, sec := range DecodeIBMTrack(s) {
		if sec.Valid() {
			count++
		}
	}
	return count
}

//
type ibmEncoder struct {
	w     Writer
	count int // data bytes written
}

//
func (e *ibmEncoder) put(b byte) {
	prev := e.w.LastBit()
	var word uint16
	for ix := 7; ix >= 0; ix-- {
		d := int(b>>uint(ix)) & 1
		c := 0
		if prev == 0 && d == 0 {
			c = 1
		}
		word = word<<2 | uint16(c<<1|d)
		prev = d
	}
	e.w.WriteWord(word)
	e.count++
}

//
func (e *ibmEncoder) raw(word uint16) {
	e.w.WriteWord(word)
	e.count++
}

//
func (e *ibmEncoder) fill(b byte, n int) {
	for ix := 0; ix < n; ix++ {
		e.put(b)
	}
}

// record writes a sync led record; the leading three 0xA1 bytes of p are
// written as sync words, a CRC over all of p is appended.
func (e *ibmEncoder) record(p []byte) {
	for ix := 0; ix < 3; ix++ {
		e.raw(SyncWord)
	}
	for _, b := range p[3:] {
		e.put(b)
	}
	crc := crc16.Checksum(p, crcTable)
	e.put(byte(crc >> 8))
	e.put(byte(crc))
}

// readDecoded decodes n data bytes starting at bit offset off
func readDecoded(s *Bitstream, off, n int) []byte {
	if off+n*16 > s.Len() {
		return nil
	}
	ret := make([]byte, n)
	for ix := range ret {
		ret[ix] = decodeWord(s.WordAt(off + ix*16))
	}
	return ret
}

// crcOK checks the CRC of a field starting with its address mark and ending
// with the two CRC bytes; the three 0xA1 sync bytes are implied.
func crcOK(field []byte) bool {
	p := make([]byte, 0, len(field)+1)
	p = append(p, 0xa1, 0xa1, 0xa1)
	p = append(p, field[:len(field)-2]...)
	want := uint16(field[len(field)-2])<<8 | uint16(field[len(field)-1])
	return crc16.Checksum(p, crcTable) == want
}

// decodeWord extracts the data bits from an MFM word
func decodeWord(w uint16) byte {
	var ret byte
	for ix := 7; ix >= 0; ix-- {
		ret = ret<<1 | byte(w>>uint(2*ix))&1
	}
	return ret
}
