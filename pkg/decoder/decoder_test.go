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

package decoder

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// mfmOnly hides everything but the Drive interface, so that probing has to
// go through the MFM tracks, as with a real drive
type mfmOnly struct {
	drive.Drive
}

func adfData() []byte {
	data := make([]byte, format.ADFSize(80, mfm.AmigaSectorsDD))
	for ix := range data {
		data[ix] = byte(ix / 512)
	}
	copy(data, "DOS\x01")
	return data
}

func floppy(t *testing.T, data []byte, kind format.Kind) *drive.FloppyDrive {
	d := drive.NewFloppyDrive("DF0")
	require.NoError(t, d.Insert("test", data, kind, false))
	return d
}

func TestProbeADF(t *testing.T) {

	data := adfData()
	dec := Probe(floppy(t, data, format.Raw))

	assert.Equal(t, format.FloppyStandard, dec.Kind())
	assert.Equal(t, disk.NewFloppyGeometry(80, 11), dec.Geometry())
	assert.Equal(t, 1760, dec.Geometry().Blocks)
	assert.Equal(t, []string{"Amiga Floppy Disk", "FFS DD", "880 KB"},
		dec.Descriptions())

	b, err := dec.ByteAt(1759, 511)
	require.NoError(t, err)
	assert.Equal(t, byte(1759%256), b)
}

func TestProbeIMG(t *testing.T) {

	data := make([]byte, 80*2*9*mfm.SectorSize)
	data[510], data[511] = 0x55, 0xaa
	dec := Probe(floppy(t, data, format.Raw))

	assert.Equal(t, format.FloppyPlain, dec.Kind())
	assert.Equal(t, disk.NewFloppyGeometry(80, 9), dec.Geometry())
	assert.Equal(t, "PC Disk", dec.Title())
	assert.Equal(t, "MS-DOS DD", dec.Descriptions()[1])
}

func TestProbeEXT(t *testing.T) {

	std, err := format.ParseADF(adfData())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, format.NewEXT().Write(std, &buf))

	dec := Probe(floppy(t, buf.Bytes(), format.FloppyExtended))
	assert.Equal(t, format.FloppyExtended, dec.Kind())
	assert.Equal(t, disk.NewFloppyGeometry(80, 11), dec.Geometry())
	assert.Equal(t, "DOS.", dec.DumpASCII(0, 0, 4))
}

func TestProbeHDF(t *testing.T) {

	d := drive.NewHardDrive("HD0")
	require.NoError(t, d.Insert("work.hdf", make([]byte, 100*32*512), false))

	dec := Probe(d)
	assert.Equal(t, format.HardDisk, dec.Kind())
	assert.Equal(t, disk.NewGeometry(100, 1, 32), dec.Geometry())
	assert.Equal(t, []string{"Standard Hard Drive", "1 Partition",
		"No Rigid Disk Block found", "1.56 MB"}, dec.Descriptions())
}

func TestProbeFloppyFormatsSkippedOnHardDrive(t *testing.T) {

	d := drive.NewHardDrive("HD0")
	// an ADF sized image is block aligned, and therefore also a valid HDF
	require.NoError(t, d.Insert("disk.adf", adfData(), false))
	assert.Equal(t, format.HardDisk, Probe(d).Kind())
}

func TestProbeUnrecognized(t *testing.T) {

	tests := []struct {
		name  string
		drive drive.Drive
	}{
		{"empty floppy drive", drive.NewFloppyDrive("DF0")},
		{"empty hard drive", drive.NewHardDrive("HD0")},
		{"unknown blob", floppy(t, []byte("not a disk image"), format.Raw)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dec := Probe(tc.drive)
			assert.Equal(t, format.Raw, dec.Kind())
			assert.Equal(t, 0, dec.Geometry().Blocks)
			assert.True(t, dec.Geometry().IsZero())
			assert.Equal(t, []string{"Raw MFM stream"}, dec.Descriptions())
			_, err := dec.ByteAt(0, 0)
			assert.ErrorIs(t, err, disk.ErrOutOfRange)
			assert.Equal(t, "", dec.DumpASCII(0, 0, 16))
		})
	}
}

func TestProbeFromMFM(t *testing.T) {

	t.Run("adf", func(t *testing.T) {
		data := adfData()
		dec := Probe(mfmOnly{floppy(t, data, format.FloppyStandard)})
		require.Equal(t, format.FloppyStandard, dec.Kind())
		assert.Equal(t, data, dec.Image().Data)
	})

	t.Run("img", func(t *testing.T) {
		data := make([]byte, 80*2*18*mfm.SectorSize)
		for ix := range data {
			data[ix] = byte(ix >> 9)
		}
		dec := Probe(mfmOnly{floppy(t, data, format.FloppyPlain)})
		require.Equal(t, format.FloppyPlain, dec.Kind())
		assert.Equal(t, disk.NewFloppyGeometry(80, 18), dec.Geometry())
		assert.Equal(t, data, dec.Image().Data)
	})

	t.Run("ext", func(t *testing.T) {
		std, err := format.ParseADF(adfData())
		require.NoError(t, err)
		img := &format.Image{Kind: format.FloppyExtended}
		for tr := 0; tr < 160; tr++ {
			img.Tracks = append(img.Tracks, &format.Track{Data: std.TrackData(tr)})
		}
		garbage := bytes.Repeat([]byte{0xaa}, mfm.AmigaTrackSize(11))
		img.Tracks[5] = &format.Track{Raw: true, Bits: len(garbage) * 8,
			Data: garbage}
		var buf bytes.Buffer
		require.NoError(t, format.NewEXT().Write(img, &buf))

		dec := Probe(mfmOnly{floppy(t, buf.Bytes(), format.FloppyExtended)})
		require.Equal(t, format.FloppyExtended, dec.Kind())
		require.Len(t, dec.Image().Tracks, 160)
		assert.True(t, dec.Image().Tracks[5].Raw)
		assert.False(t, dec.Image().Tracks[4].Raw)
		b, err := dec.ByteAt(5*11, 0)
		require.NoError(t, err)
		assert.Equal(t, byte(0), b)
		b, err = dec.ByteAt(4*11, 0)
		require.NoError(t, err)
		assert.Equal(t, byte(4*11), b)
	})

	t.Run("raw dump", func(t *testing.T) {
		s, err := mfm.EncodeAmigaTrack(0, adfData()[:11*512])
		require.NoError(t, err)
		// a floppy holding an unrecognized image is probed through its
		// tracks, of which only the first one can be read here
		dec := Probe(floppy(t, s.Bytes(), format.Raw))
		require.Equal(t, format.FloppyExtended, dec.Kind())
		assert.False(t, dec.Image().Tracks[0].Raw)
		assert.True(t, dec.Image().Tracks[1].Raw)
		assert.Equal(t, "DOS.", dec.DumpASCII(0, 0, 4))
		assert.Equal(t, 11, mfm.CountSyncMarkers(dec.TrackBitStream(0)))
	})
}

func TestByteAtOutOfRange(t *testing.T) {

	dec := Probe(floppy(t, adfData(), format.FloppyStandard))
	blocks := dec.Geometry().Blocks

	for _, addr := range [][2]int{{blocks, 0}, {-1, 0}, {0, 512}, {0, -1}} {
		_, err := dec.ByteAt(addr[0], addr[1])
		assert.ErrorIs(t, err, disk.ErrOutOfRange, "block %d, offset %d",
			addr[0], addr[1])
	}

	b, err := dec.ByteAt(blocks-1, 0)
	require.NoError(t, err)
	assert.Equal(t, byte((blocks-1)%256), b)
}

func TestTrackBitStream(t *testing.T) {

	d := drive.NewFloppyDrive("DF0")
	dec := Probe(d)
	assert.Same(t, mfm.NoData, dec.TrackBitStream(0))
	assert.Equal(t, mfm.NoDataText, dec.TrackBitStream(0).String())
	assert.Empty(t, dec.SyncMarkers(0))

	require.NoError(t, d.Insert("a.adf", adfData(), format.Raw, false))
	dec = Probe(d)
	s := dec.TrackBitStream(0)
	require.True(t, s.Available())
	assert.Len(t, dec.SyncMarkers(0), 11)

	count := 0
	for range dec.FindSyncMarkers(s) {
		count++
	}
	assert.Equal(t, 11, count)

	assert.Same(t, mfm.NoData, dec.TrackBitStream(500))

	raw := floppy(t, bytes.Repeat([]byte{0x55}, 30000), format.Raw)
	dec = Probe(raw)
	assert.True(t, dec.TrackBitStream(2).Available())
	assert.Same(t, mfm.NoData,
		dec.TrackBitStream(math.MaxInt/drive.RawTrackSize+1))
	assert.Empty(t, dec.SyncMarkers(math.MaxInt))
}

func TestDumpASCII(t *testing.T) {

	data := make([]byte, format.ADFSize(80, 11))
	copy(data, []byte{0x41, 0x00, 0x42})
	copy(data[len(data)-2:], "ok")
	dec := Probe(floppy(t, data, format.Raw))

	assert.Equal(t, "A.B", dec.DumpASCII(0, 0, 3))
	assert.Equal(t, ".B", dec.DumpASCII(0, 1, 2))
	assert.Equal(t, "ok", dec.DumpASCII(1759, 510, 100))
	assert.Equal(t, "k", dec.DumpASCII(1758, 1023, 100))
	assert.Equal(t, "", dec.DumpASCII(1760, 0, 10))
	assert.Equal(t, "", dec.DumpASCII(0, 0, 0))
	assert.Equal(t, "", dec.DumpASCII(-1, 0, 3))

	rest := dec.DumpASCII(1, 0, math.MaxInt)
	assert.Len(t, rest, len(data)-512)
	assert.True(t, strings.HasSuffix(rest, "ok"))
	assert.Equal(t, "", dec.DumpASCII(math.MaxInt/512+1, 0, 3))
	assert.Equal(t, "", dec.DumpASCII(math.MaxInt, 0, math.MaxInt))
	assert.Equal(t, "", dec.DumpASCII(0, math.MaxInt, math.MaxInt))
	assert.Equal(t, "ok", dec.DumpASCII(1759, 510, math.MaxInt))
}

func TestEmit(t *testing.T) {

	data := adfData()
	copy(data[512:], "Hello, world!\x00\x01\x02xyz")
	dec := Probe(floppy(t, data, format.Raw))

	var buf bytes.Buffer
	require.NoError(t, dec.Emit(&buf, 1))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, BlockRows(dec.Geometry()))
	assert.Equal(t,
		"0000  48 65 6c 6c 6f 2c 20 77  6f 72 6c 64 21 00 01 02  Hello, world!...",
		lines[0])
	assert.Equal(t,
		"0010  78 79 7a 01 01 01 01 01  01 01 01 01 01 01 01 01  xyz.............",
		lines[1])

	assert.ErrorIs(t, dec.Emit(&buf, 1760), disk.ErrOutOfRange)
}
