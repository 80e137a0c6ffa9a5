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

package daemon

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
)

func adf() []byte {
	data := make([]byte, format.ADFSize(80, 11))
	copy(data, "DOS\x00")
	return data
}

func TestNewDaemon(t *testing.T) {

	d := NewDaemon(Config{})

	assert.Equal(t, "DF0", d.GetDrive(1).Name())
	assert.Equal(t, "DF3", d.GetDrive(4).Name())
	assert.Equal(t, "HD0", d.GetDrive(5).Name())
	assert.Equal(t, "HD3", d.GetDrive(8).Name())
	assert.Nil(t, d.GetDrive(0))
	assert.Nil(t, d.GetDrive(9))
	assert.Nil(t, d.Repository())

	for _, s := range d.GetDriveStates() {
		assert.Equal(t, StatusEmpty, s.Status)
		assert.False(t, s.Hardware)
	}

	d = NewDaemon(Config{Device: "/dev/ttyUSB0"})
	_, ok := d.GetDrive(1).(*drive.SerialDrive)
	assert.True(t, ok)
	assert.Equal(t, StatusDisconnected, d.GetStatus(1))
	assert.True(t, d.GetDriveState(1).Hardware)
	assert.ErrorIs(t, d.Insert(1, "a.adf", adf(), format.Raw, false, false),
		ErrNotVirtual)
}

func TestParseDrive(t *testing.T) {
	d := NewDaemon(Config{})
	assert.Equal(t, 1, d.ParseDrive("df0"))
	assert.Equal(t, 7, d.ParseDrive("HD2"))
	assert.Equal(t, 3, d.ParseDrive("3"))
	assert.Equal(t, -1, d.ParseDrive("9"))
	assert.Equal(t, -1, d.ParseDrive("DF7"))
}

func TestInsertEject(t *testing.T) {

	d := NewDaemon(Config{})

	require.NoError(t, d.Insert(2, "game.adf", adf(), format.Raw, true, false))
	st := d.GetDriveState(2)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, "game.adf", st.Medium)
	assert.Equal(t, "adf", st.Kind)
	assert.True(t, st.WriteProtected)

	assert.ErrorIs(t, d.Insert(2, "other.adf", adf(), format.Raw, false, false),
		ErrDiskPresent)
	require.NoError(t, d.Insert(2, "other.adf", adf(), format.Raw, false, true))
	assert.Equal(t, "other.adf", d.GetDriveState(2).Medium)

	require.NoError(t, d.Eject(2))
	assert.ErrorIs(t, d.Eject(2), ErrNoDisk)
	assert.ErrorIs(t, d.Eject(12), ErrNoSuchDrive)
	assert.Equal(t, StatusEmpty, d.GetStatus(2))
}

func TestInsertArchive(t *testing.T) {

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(adf())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	d := NewDaemon(Config{})
	require.NoError(t, d.Insert(1, "game.adz", buf.Bytes(), format.Raw,
		false, false))
	st := d.GetDriveState(1)
	assert.Equal(t, "game.adf", st.Medium)
	assert.Equal(t, "adf", st.Kind)
}

func TestInsertHardDrive(t *testing.T) {

	d := NewDaemon(Config{})
	assert.Error(t, d.Insert(5, "a.adf", adf(), format.FloppyStandard,
		false, false))
	require.NoError(t, d.Insert(5, "a.hdf", adf(), format.Raw, false, false))
	assert.Equal(t, "hdf", d.GetDriveState(5).Kind)
	assert.True(t, d.GetDriveState(5).Fixed)

	assert.Error(t, d.Insert(1, "a.hdf", make([]byte, 512), format.HardDisk,
		false, false))
}

func TestDriveBusy(t *testing.T) {

	d := NewDaemon(Config{})
	l := d.GetDrive(3).(drive.Locker)
	require.True(t, l.Lock(context.Background()))

	assert.Equal(t, StatusBusy, d.GetStatus(3))
	assert.ErrorIs(t, d.Insert(3, "a.adf", adf(), format.Raw, false, false),
		ErrDriveBusy)
	_, err := d.Session(3)
	assert.ErrorIs(t, err, ErrDriveBusy)

	l.Unlock()
	_, err = d.Session(3)
	assert.NoError(t, err)

	require.True(t, l.Lock(context.Background()))
	_, err = d.Reprobe(3)
	assert.ErrorIs(t, err, ErrDriveBusy)
	l.Unlock()
}

func TestSessionInvalidatedOnInsert(t *testing.T) {

	d := NewDaemon(Config{})
	s, err := d.Session(1)
	require.NoError(t, err)
	assert.Equal(t, format.Raw, s.Decoder().Kind())

	require.NoError(t, d.Insert(1, "a.adf", adf(), format.Raw, false, false))
	s, err = d.Session(1)
	require.NoError(t, err)
	assert.Equal(t, format.FloppyStandard, s.Decoder().Kind())

	r, err := d.Reprobe(1)
	require.NoError(t, err)
	assert.Same(t, s, r)

	_, err = d.Reprobe(9)
	assert.ErrorIs(t, err, ErrNoSuchDrive)
}

func TestServe(t *testing.T) {
	d := NewDaemon(Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, d.Serve(ctx))
}
