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
	"iter"
)

// SyncWord is the MFM encoding of 0xA1 with one clock bit missing, which
// cannot occur in regularly encoded data.
const SyncWord = 0x4489

// SyncPattern is the sync word written twice, as found in front of every
// Amiga sector.
const SyncPattern = SyncWord<<16 | SyncWord

// SyncPatternLength is the length of SyncPattern in bits
const SyncPatternLength = 32

// SyncBits is the bit string of a single sync word
const SyncBits = "0100010010001001"

// SyncMarker is the bit offset at which a SyncPattern starts within a stream.
type SyncMarker struct {
	Offset int `json:"offset"`
}

// Byte returns the index of the byte containing the first marker bit
func (m SyncMarker) Byte() int {
	return m.Offset >> 3
}

// BitInByte returns the position of the first marker bit within its byte,
// 0 being the most significant bit.
func (m SyncMarker) BitInByte() int {
	return m.Offset & 7
}

//
func (m SyncMarker) String() string {
	return fmt.Sprintf("%d (byte %d, bit %d)", m.Offset, m.Byte(), m.BitInByte())
}

/*
	FindSyncMarkers scans s for SyncPattern and yields a marker for every bit
	offset at which the pattern starts. Overlapping occurrences are all
	reported, so three consecutive sync words produce two markers 16 bits
	apart. The sequence is finite and can be iterated any number of times; each
	iteration scans the stream anew.
*/
func FindSyncMarkers(s *Bitstream) iter.Seq[SyncMarker] {
	return func(yield func(SyncMarker) bool) {
		if s.Len() < SyncPatternLength {
			return
		}
		var reg uint32
		for ix := 0; ix < s.Len(); ix++ {
			reg = reg<<1 | uint32(s.Bit(ix))
			if ix >= SyncPatternLength-1 && reg == SyncPattern {
				if !yield(SyncMarker{Offset: ix - SyncPatternLength + 1}) {
					return
				}
			}
		}
	}
}

// SyncMarkers collects all markers of s
func SyncMarkers(s *Bitstream) []SyncMarker {
	ret := []SyncMarker{}
	for m := range FindSyncMarkers(s) {
		ret = append(ret, m)
	}
	return ret
}

//
func CountSyncMarkers(s *Bitstream) int {
	count := 0
	for range FindSyncMarkers(s) {
		count++
	}
	return count
}
