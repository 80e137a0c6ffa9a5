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
	"context"
	"fmt"

	"github.com/xelalexv/diskscope/pkg/control"
	"github.com/xelalexv/diskscope/pkg/inspector"
)

//
func NewScan() *Scan {

	s := &Scan{}
	s.Runner = *NewRunner(
		`scan [-d|--drive {drive}] [-i|--input {file}] [-j|--parallel {workers}]
      [-a|--address {address}] [-p|--port {port}]`,
		"scan all tracks of a disk from file or daemon",
		`
Use the scan command to read all tracks of a disk image file, or of the disk in a
drive of the daemon, and show for each track how many bits it holds, how many
sync markers, and how many valid Amiga and PC sectors were found on it.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.File, "input", "i", "", nil, "disk image input file", false)
	s.AddSetting(&s.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	s.AddSetting(&s.Parallel, "parallel", "j", "", 0,
		"parallel workers when scanning a file, 0 for one per CPU", false)

	return s
}

//
type Scan struct {
	//
	Runner
	//
	Drive    string
	File     string
	Parallel int
}

//
func (s *Scan) Run() error {

	s.ParseSettings()

	if s.File != "" {
		dec, err := openImage(s.File)
		if err != nil {
			return err
		}
		scan, err := inspector.ScanDisk(context.Background(), dec, s.Parallel)
		if err != nil {
			return err
		}
		fmt.Println(control.ScanTable(scan))
		return nil
	}

	drive, err := validateDrive(s.Drive)
	if err != nil {
		return err
	}
	return s.apiPrint("GET", fmt.Sprintf("/drive/%s/scan", drive), nil)
}
