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
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/repo"
)

//
func NewInsert() *Insert {

	i := &Insert{}
	i.Runner = *NewRunner(
		`insert [-d|--drive {drive}] -i|--input {file|repo ref} [-f|--force]
      [-w|--write-protect] [-a|--address {address}] [-p|--port {port}]`,
		"insert disk image into daemon drive",
		"\nUse the insert command to insert a disk image into a drive of the daemon.",
		"", `- Supported image formats are ADF, IMG/IMA/ST, EXT (extended ADF), and HDF.
  Images may be packed into ZIP, 7z, RAR, or gzip archives (e.g. ADZ, HDZ).

- Images in the daemon's repository are given as references in the form
  repo://{path within repository}.

`+runnerHelpEpilogue, i.Run)

	i.AddBaseSettings()
	i.AddSetting(&i.File, "input", "i", "", nil,
		"disk image input file or repo reference", true)
	i.AddSetting(&i.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	i.AddSetting(&i.Force, "force", "f", "", false,
		"force replacing disk present in drive", false)
	i.AddSetting(&i.WriteProtect, "write-protect", "w", "", false,
		"write protect the disk", false)

	return i
}

//
type Insert struct {
	//
	Runner
	//
	Drive        string
	File         string
	Force        bool
	WriteProtect bool
}

//
func (i *Insert) Run() error {

	i.ParseSettings()

	drive, err := validateDrive(i.Drive)
	if err != nil {
		return err
	}

	args := url.Values{}
	args.Set("force", strconv.FormatBool(i.Force))
	args.Set("readonly", strconv.FormatBool(i.WriteProtect))

	if repo.IsReference(i.File) {
		args.Set("ref", i.File)
		return i.apiPrint("PUT",
			fmt.Sprintf("/drive/%s?%s", drive, args.Encode()), nil)
	}

	if ext := getExtension(i.File); ext != "" {
		if _, ok := format.ForExtension(ext); ok {
			args.Set("type", ext)
		}
	}
	args.Set("name", filepath.Base(i.File))

	f, err := os.Open(i.File)
	if err != nil {
		return err
	}
	defer f.Close()

	return i.apiPrint("PUT", fmt.Sprintf("/drive/%s?%s", drive, args.Encode()),
		bufio.NewReader(f))
}
