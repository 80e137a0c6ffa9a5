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
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

func pattern(size int) []byte {
	data := make([]byte, size)
	for ix := range data {
		data[ix] = byte(ix*7 + ix>>9)
	}
	return data
}

func TestFloppyInsertADF(t *testing.T) {

	d := NewFloppyDrive("DF0")
	assert.False(t, d.HasDisk())
	assert.True(t, d.IsConnected())
	assert.False(t, d.IsFixed())

	data := pattern(format.ADFSize(80, mfm.AmigaSectorsDD))
	require.NoError(t, d.Insert("game.adf", data, format.Raw, true))

	assert.True(t, d.HasDisk())
	assert.True(t, d.HasWriteProtectedDisk())
	assert.Equal(t, format.FloppyStandard, d.Kind())
	assert.Equal(t, "game.adf", d.MediumName())

	img, ok := d.Image()
	assert.True(t, ok)
	assert.Equal(t, data, img)

	s, err := d.ReadTrackBits(3)
	require.NoError(t, err)
	assert.Equal(t, mfm.AmigaSectorsDD, mfm.CountSyncMarkers(s))

	decoded, err := mfm.DecodeAmigaTrackData(s, 3, mfm.AmigaSectorsDD)
	require.NoError(t, err)
	start := 3 * mfm.AmigaSectorsDD * mfm.SectorSize
	assert.Equal(t, data[start:start+len(decoded)], decoded)

	_, err = d.ReadTrackBits(160)
	assert.ErrorIs(t, err, ErrMediumUnavailable)
}

func TestFloppyInsertIMG(t *testing.T) {

	d := NewFloppyDrive("DF1")
	data := pattern(80 * 2 * 9 * mfm.SectorSize)
	require.NoError(t, d.Insert("dos.img", data, format.Raw, false))
	assert.Equal(t, format.FloppyPlain, d.Kind())
	assert.False(t, d.HasWriteProtectedDisk())

	s, err := d.ReadTrackBits(5)
	require.NoError(t, err)
	assert.Equal(t, 9, mfm.CountIBMSectors(s))

	decoded, err := mfm.DecodeIBMTrackData(s, 2, 1, 9)
	require.NoError(t, err)
	start := 5 * 9 * mfm.SectorSize
	assert.Equal(t, data[start:start+len(decoded)], decoded)
}

func TestFloppyInsertRaw(t *testing.T) {

	d := NewFloppyDrive("DF0")
	data := pattern(2*RawTrackSize + 512)
	require.NoError(t, d.Insert("dump.bin", data, format.Raw, false))
	assert.Equal(t, format.Raw, d.Kind())

	s, err := d.ReadTrackBits(1)
	require.NoError(t, err)
	assert.Equal(t, RawTrackSize*8, s.Len())
	assert.Equal(t, data[RawTrackSize], s.ByteAt(0))

	s, err = d.ReadTrackBits(2)
	require.NoError(t, err)
	assert.Equal(t, 512*8, s.Len())

	_, err = d.ReadTrackBits(3)
	assert.ErrorIs(t, err, ErrMediumUnavailable)
	_, err = d.ReadTrackBits(-1)
	assert.ErrorIs(t, err, ErrMediumUnavailable)
}

func TestFloppyRawTrackNumberOverflow(t *testing.T) {

	d := NewFloppyDrive("DF0")
	require.NoError(t, d.Insert("dump.bin", pattern(30000), format.Raw, false))
	require.Equal(t, format.Raw, d.Kind())

	for _, track := range []int{math.MaxInt / RawTrackSize, math.MaxInt/RawTrackSize + 1,
		math.MaxInt} {
		assert.NotPanics(t, func() {
			_, err := d.ReadTrackBits(track)
			assert.ErrorIs(t, err, ErrMediumUnavailable, "track %d", track)
		})
	}

	s, err := d.ReadTrackBits(2)
	require.NoError(t, err)
	assert.Equal(t, (30000-2*RawTrackSize)*8, s.Len())
}

func TestFloppyInsertRejects(t *testing.T) {

	d := NewFloppyDrive("DF0")
	assert.Error(t, d.Insert("empty", nil, format.Raw, false))
	assert.Error(t, d.Insert("disk.hdf", make([]byte, 64*512),
		format.HardDisk, false))
	assert.Error(t, d.Insert("bad.adf", make([]byte, 1000),
		format.FloppyStandard, false))
	assert.False(t, d.HasDisk())
}

func TestFloppyEject(t *testing.T) {

	d := NewFloppyDrive("DF0")
	assert.False(t, d.Eject())

	require.NoError(t, d.Insert("a.adf", make([]byte, format.ADFSize(80, 11)),
		format.FloppyStandard, false))
	assert.True(t, d.Eject())
	assert.False(t, d.HasDisk())
	assert.Equal(t, "", d.MediumName())
	assert.Equal(t, format.Raw, d.Kind())

	_, ok := d.Image()
	assert.False(t, ok)
	_, err := d.ReadTrackBits(0)
	assert.ErrorIs(t, err, ErrMediumUnavailable)
}

func TestDriveLock(t *testing.T) {

	d := NewFloppyDrive("DF0")
	require.True(t, d.Lock(context.Background()))
	assert.True(t, d.IsLocked())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, d.Lock(ctx))

	d.Unlock()
	assert.False(t, d.IsLocked())
	d.Unlock()
	assert.True(t, d.Lock(context.Background()))
}

func TestHardDrive(t *testing.T) {

	d := NewHardDrive("HD0")
	assert.True(t, d.IsFixed())

	assert.Error(t, d.Insert("bad.hdf", make([]byte, 1000), false))
	require.NoError(t, d.Insert("work.hdf", make([]byte, 32*100*512), false))
	assert.Equal(t, format.HardDisk, d.Kind())

	_, err := d.ReadTrackBits(0)
	assert.ErrorIs(t, err, ErrMediumUnavailable)

	var _ Drive = d
	var _ Imager = d
	var _ Locker = d
}
