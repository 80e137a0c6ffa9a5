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

package inspector

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

func ptr(v int) *int {
	return &v
}

func adfDrive(t *testing.T) *drive.FloppyDrive {
	d := drive.NewFloppyDrive("DF0")
	data := make([]byte, format.ADFSize(80, mfm.AmigaSectorsDD))
	copy(data[5*512:], "block five")
	require.NoError(t, d.Insert("test.adf", data, format.Raw, false))
	return d
}

func TestSessionMove(t *testing.T) {

	s := NewSession(adfDrive(t))
	assert.Equal(t, disk.Position{}, s.Position())

	pos, moved := s.Move(Move{Cylinder: ptr(3), Head: ptr(1), Sector: ptr(4)})
	assert.True(t, moved)
	assert.Equal(t, disk.Position{Cylinder: 3, Head: 1, Track: 7, Sector: 4,
		Block: 81}, pos)

	_, moved = s.Move(Move{Track: ptr(7)})
	assert.False(t, moved)

	pos, moved = s.Move(Move{Block: ptr(5000)})
	assert.True(t, moved)
	assert.Equal(t, disk.Position{Cylinder: 79, Head: 1, Track: 159,
		Sector: 10, Block: 1759}, pos)

	pos, _ = s.Move(Move{Block: ptr(5)})
	assert.Equal(t, 5, pos.Block)

	var buf bytes.Buffer
	require.NoError(t, s.EmitBlock(&buf))
	assert.True(t, strings.HasSuffix(
		strings.SplitN(buf.String(), "\n", 2)[0], "block five......"))
}

func TestSessionRefresh(t *testing.T) {

	d := adfDrive(t)
	s := NewSession(d)
	s.Move(Move{Block: ptr(100)})

	// same geometry keeps position
	require.NoError(t, d.Insert("other.adf", make([]byte, 901120),
		format.Raw, false))
	s.Refresh()
	assert.Equal(t, 100, s.Position().Block)

	d.Eject()
	s.Refresh()
	assert.Equal(t, format.Raw, s.Decoder().Kind())
	assert.Equal(t, disk.Position{}, s.Position())
	assert.Same(t, mfm.NoData, s.TrackStream())
}

func TestInspectorSessions(t *testing.T) {

	i := New(2)
	d := adfDrive(t)

	s := i.Session(d)
	assert.Same(t, s, i.Session(d))

	i.Invalidate("DF0")
	assert.NotSame(t, s, i.Session(d))

	other := drive.NewFloppyDrive("DF0")
	assert.Same(t, other, i.Session(other).Drive())
}

func TestInspectorTrackOperations(t *testing.T) {

	i := New(2)
	d := adfDrive(t)

	s, err := i.Track(context.Background(), d, 2)
	require.NoError(t, err)
	assert.Equal(t, mfm.AmigaTrackSize(11)*8, s.Len())

	markers, err := i.SyncMarkers(context.Background(), d, 2)
	require.NoError(t, err)
	assert.Len(t, markers, 11)

	markers, err = i.SyncMarkers(context.Background(), d, 1000)
	require.NoError(t, err)
	assert.Empty(t, markers)
	assert.False(t, i.Busy("DF0"))
}
