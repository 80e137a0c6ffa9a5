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

package run

import (
	"fmt"

	"github.com/xelalexv/diskscope/pkg/control"
)

//
func NewSync() *Sync {

	s := &Sync{}
	s.Runner = *NewRunner(
		`sync [-d|--drive {drive}] [-i|--input {file}] [-t|--track {track}]
      [-a|--address {address}] [-p|--port {port}]`,
		"locate sync markers on a track from file or daemon",
		`
Use the sync command to list the bit offsets of all sync markers on a track, as
read from a disk image file, or from the disk in a drive of the daemon. A sync
marker is the 32 bit pattern 0x44894489 found in front of Amiga sectors.`,
		"", `- Overlapping markers are all listed, so three consecutive sync words yield
  two markers, 16 bits apart.

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.File, "input", "i", "", nil, "disk image input file", false)
	s.AddSetting(&s.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	s.AddSetting(&s.Track, "track", "t", "", 0, "track number", false)

	return s
}

//
type Sync struct {
	//
	Runner
	//
	Drive string
	File  string
	Track int
}

//
func (s *Sync) Run() error {

	s.ParseSettings()

	if s.File != "" {
		dec, err := openImage(s.File)
		if err != nil {
			return err
		}
		sync := &control.TrackSync{Track: s.Track, Markers: dec.SyncMarkers(s.Track)}
		fmt.Println(sync.String())
		return nil
	}

	drive, err := validateDrive(s.Drive)
	if err != nil {
		return err
	}
	return s.apiPrint("GET",
		fmt.Sprintf("/drive/%s/track/%d/sync", drive, s.Track), nil)
}
