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
)

//
func NewEject() *Eject {

	e := &Eject{}
	e.Runner = *NewRunner(
		"eject [-d|--drive {drive}] [-a|--address {address}] [-p|--port {port}]",
		"eject disk from daemon drive",
		"\nUse the eject command to remove the disk from a drive of the daemon.",
		"", runnerHelpEpilogue, e.Run)

	e.AddBaseSettings()
	e.AddSetting(&e.Drive, "drive", "d", "", "DF0", "drive name or number", false)

	return e
}

//
type Eject struct {
	//
	Runner
	//
	Drive string
}

//
func (e *Eject) Run() error {

	e.ParseSettings()

	drive, err := validateDrive(e.Drive)
	if err != nil {
		return err
	}

	return e.apiPrint("GET", fmt.Sprintf("/drive/%s/eject", drive), nil)
}
