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
	"path/filepath"

	"github.com/xelalexv/diskscope/pkg/control"
	"github.com/xelalexv/diskscope/pkg/disk"
)

//
func NewInfo() *Info {

	i := &Info{}
	i.Runner = *NewRunner(
		`info [-d|--drive {drive}] [-i|--input {file}] [-a|--address {address}]
      [-p|--port {port}]`,
		"show disk information from file or daemon",
		`
Use the info command to show what kind of disk an image file, or the disk in a
drive of the daemon is, along with its geometry and content details.`,
		"", runnerHelpEpilogue, i.Run)

	i.AddBaseSettings()
	i.AddSetting(&i.File, "input", "i", "", nil, "disk image input file", false)
	i.AddSetting(&i.Drive, "drive", "d", "", "DF0", "drive name or number", false)

	return i
}

//
type Info struct {
	//
	Runner
	//
	Drive string
	File  string
}

//
func (i *Info) Run() error {

	i.ParseSettings()

	if i.File != "" {
		dec, err := openImage(i.File)
		if err != nil {
			return err
		}
		info := &control.Info{
			Drive:        filepath.Base(i.File),
			Kind:         dec.Kind().String(),
			Title:        dec.Title(),
			Descriptions: dec.Descriptions(),
			Geometry:     dec.Geometry(),
			Position:     disk.NewCursor(dec.Geometry()).Position(),
		}
		fmt.Print(info.String())
		return nil
	}

	drive, err := validateDrive(i.Drive)
	if err != nil {
		return err
	}
	return i.apiPrint("GET", fmt.Sprintf("/drive/%s/info", drive), nil)
}
