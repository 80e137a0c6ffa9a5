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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBits(t *testing.T) {

	s, err := ParseBits("1010 0000\n1")
	require.NoError(t, err)
	assert.Equal(t, 9, s.Len())
	assert.Equal(t, "101000001", s.String())
	assert.Equal(t, []byte{0xa0, 0x80}, s.Bytes())

	_, err = ParseBits("10x1")
	assert.Error(t, err)
}

func TestBitstreamAccess(t *testing.T) {

	s := FromBytes([]byte{0x44, 0x89, 0xff})

	assert.Equal(t, 24, s.Len())
	assert.Equal(t, 0, s.Bit(0))
	assert.Equal(t, 1, s.Bit(1))
	assert.Equal(t, 0, s.Bit(-1))
	assert.Equal(t, 0, s.Bit(24))

	assert.Equal(t, byte(0x44), s.ByteAt(0))
	assert.Equal(t, byte(0x89), s.ByteAt(8))
	assert.Equal(t, byte(0x22), s.ByteAt(6))
	assert.Equal(t, byte(0xf8), s.ByteAt(19)) // bits past the end read as 0
	assert.Equal(t, uint16(SyncWord), s.WordAt(0))

	dst := make([]byte, 2)
	assert.True(t, s.ReadBytes(4, dst))
	assert.Equal(t, []byte{0x48, 0x9f}, dst)
	assert.False(t, s.ReadBytes(16, dst))
}

func TestNoData(t *testing.T) {
	assert.False(t, NoData.Available())
	assert.Equal(t, 0, NoData.Len())
	assert.Nil(t, NoData.Bytes())
	assert.Equal(t, NoDataText, NoData.String())
	assert.Equal(t, "No MFM data available", NoData.String())
}

func TestWriter(t *testing.T) {

	w := &Writer{}
	assert.Equal(t, 0, w.LastBit())

	w.WriteBit(1)
	w.WriteBit(0)
	w.WriteBit(1)
	assert.Equal(t, 1, w.LastBit())

	w.WriteWord(SyncWord)
	assert.Equal(t, 19, w.Len())

	s := w.Bitstream()
	assert.Equal(t, "101"+SyncBits, s.String())
	assert.Equal(t, uint16(SyncWord), s.WordAt(3))
}
