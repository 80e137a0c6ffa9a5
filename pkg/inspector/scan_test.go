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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/decoder"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
)

func TestScanDisk(t *testing.T) {

	dec := decoder.Probe(adfDrive(t))
	res, err := ScanDisk(context.Background(), dec, 4)
	require.NoError(t, err)
	require.Len(t, res, 160)

	for ix, ts := range res {
		assert.Equal(t, ix, ts.Track)
		assert.True(t, ts.Available)
		assert.Equal(t, 11, ts.SyncMarkers)
		assert.Equal(t, 11, ts.AmigaSectors)
		assert.Equal(t, 0, ts.IBMSectors)
	}
}

func TestScanDiskIBM(t *testing.T) {

	d := drive.NewFloppyDrive("DF1")
	require.NoError(t, d.Insert("pc.img", make([]byte, 737280), format.Raw,
		false))

	res, err := ScanDisk(context.Background(), decoder.Probe(d), 0)
	require.NoError(t, err)
	require.Len(t, res, 160)
	assert.Equal(t, 9, res[0].IBMSectors)
}

func TestScanDiskEmptyDrive(t *testing.T) {

	res, err := ScanDisk(context.Background(),
		decoder.Probe(drive.NewFloppyDrive("DF0")), 2)
	require.NoError(t, err)
	require.Len(t, res, DefaultScanTracks)
	for _, ts := range res {
		assert.False(t, ts.Available)
		assert.Equal(t, 0, ts.SyncMarkers)
	}
}

func TestScanDiskCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ScanDisk(ctx, decoder.Probe(adfDrive(t)), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInspectorScan(t *testing.T) {
	i := New(4)
	res, err := i.Scan(context.Background(), adfDrive(t))
	require.NoError(t, err)
	assert.Len(t, res, 160)
}
