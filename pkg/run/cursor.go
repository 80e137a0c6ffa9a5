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
	"net/url"
	"strconv"
)

//
func NewCursor() *Cursor {

	c := &Cursor{}
	c.Runner = *NewRunner(
		`cursor [-d|--drive {drive}] [-c|--cylinder {cylinder}] [-H|--head {head}]
      [-t|--track {track}] [-s|--sector {sector}] [-b|--block {block}]
      [-a|--address {address}] [-p|--port {port}]`,
		"show or move the cursor of a daemon drive",
		`
Use the cursor command to show or move the cursor of a drive in the daemon. The
cursor selects the block shown by the dump command when no block is given.`,
		"", `- Positions are applied in the order cylinder, head, track, sector, block.
  Values beyond the disk's geometry are clamped.

`+runnerHelpEpilogue, c.Run)

	c.AddBaseSettings()
	c.AddSetting(&c.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	c.AddSetting(&c.Cylinder, "cylinder", "c", "", -1, "cylinder", false)
	c.AddSetting(&c.Head, "head", "H", "", -1, "head", false)
	c.AddSetting(&c.Track, "track", "t", "", -1, "track", false)
	c.AddSetting(&c.Sector, "sector", "s", "", -1, "sector within track", false)
	c.AddSetting(&c.Block, "block", "b", "", -1, "block", false)

	return c
}

//
type Cursor struct {
	//
	Runner
	//
	Drive    string
	Cylinder int
	Head     int
	Track    int
	Sector   int
	Block    int
}

//
func (c *Cursor) Run() error {

	c.ParseSettings()

	drive, err := validateDrive(c.Drive)
	if err != nil {
		return err
	}

	args := url.Values{}
	for _, a := range []struct {
		name string
		val  int
	}{
		{"cylinder", c.Cylinder},
		{"head", c.Head},
		{"track", c.Track},
		{"sector", c.Sector},
		{"block", c.Block},
	} {
		if a.val >= 0 {
			args.Set(a.name, strconv.Itoa(a.val))
		}
	}

	path := fmt.Sprintf("/drive/%s/cursor", drive)
	if len(args) == 0 {
		return c.apiPrint("GET", path, nil)
	}
	return c.apiPrint("PUT", fmt.Sprintf("%s?%s", path, args.Encode()), nil)
}
