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
	"encoding/binary"
)

// NewBlock wraps data in a block whose fields are addressed through index.
// Each index entry gives offset and length of a field.
func NewBlock(index map[string][2]int, data []byte) *Block {
	return &Block{index: index, Data: data}
}

// Block gives keyed access to the big endian fields of an on-disk structure,
// such as the blocks of a Rigid Disk Block chain.
type Block struct {
	index map[string][2]int
	Data  []byte
}

//
func (b *Block) GetSlice(key string) []byte {
	if ix, ok := b.index[key]; ok {
		start := ix[0]
		end := start + ix[1]
		if 0 <= start && end <= len(b.Data) {
			return b.Data[start:end]
		}
	}
	return []byte{}
}

// GetLong returns a 32 bit field, or 0 if the key is unknown
func (b *Block) GetLong(key string) uint32 {
	bytes := b.GetSlice(key)
	if len(bytes) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(bytes)
}

//
func (b *Block) GetInt(key string) int {
	return int(int32(b.GetLong(key)))
}

//
func (b *Block) GetID(key string) string {
	return string(b.GetSlice(key))
}

// GetBString returns a BCPL string field, i.e. a length byte followed by
// the characters.
func (b *Block) GetBString(key string) string {
	bytes := b.GetSlice(key)
	if len(bytes) == 0 {
		return ""
	}
	l := int(bytes[0])
	if l >= len(bytes) {
		l = len(bytes) - 1
	}
	return string(bytes[1 : 1+l])
}

// ChecksumOK verifies a block whose first longs are ID, number of summed
// longs, and checksum. The sum over all summed longs must be zero.
func (b *Block) ChecksumOK() bool {
	if len(b.Data) < 12 {
		return false
	}
	n := int(binary.BigEndian.Uint32(b.Data[4:]))
	if n < 3 || n*4 > len(b.Data) {
		return false
	}
	var sum uint32
	for ix := 0; ix < n; ix++ {
		sum += binary.BigEndian.Uint32(b.Data[ix*4:])
	}
	return sum == 0
}

// UpdateChecksum sets the checksum field such that ChecksumOK is satisfied.
func (b *Block) UpdateChecksum() {
	if len(b.Data) < 12 {
		return
	}
	n := int(binary.BigEndian.Uint32(b.Data[4:]))
	if n*4 > len(b.Data) {
		return
	}
	binary.BigEndian.PutUint32(b.Data[8:], 0)
	var sum uint32
	for ix := 0; ix < n; ix++ {
		sum += binary.BigEndian.Uint32(b.Data[ix*4:])
	}
	binary.BigEndian.PutUint32(b.Data[8:], -sum)
}
