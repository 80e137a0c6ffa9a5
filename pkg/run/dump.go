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
	"os"

	"github.com/xelalexv/diskscope/pkg/disk"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		`dump [-d|--drive {drive}] [-i|--input {file}] [-b|--block {block}]
      [--ascii [-o|--offset {offset}] [-l|--length {length}]]
      [-a|--address {address}] [-p|--port {port}]`,
		"dump disk block from file or daemon",
		`
Use the dump command to output a hex dump of a block of a disk image file, or of
the disk in a drive of the daemon. With --ascii, only the printable rendering of
a byte range is shown, which may span several blocks.`,
		"", `- When dumping from the daemon without giving a block, the block selected by
  the drive's cursor is dumped. When dumping from file, the default is block 0.

`+runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddSetting(&d.File, "input", "i", "", nil, "disk image input file", false)
	d.AddSetting(&d.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	d.AddSetting(&d.Block, "block", "b", "", -1, "block to dump", false)
	d.AddSetting(&d.ASCII, "ascii", "", "", false,
		"show printable rendering only", false)
	d.AddSetting(&d.Offset, "offset", "o", "", 0,
		"offset within block, for --ascii", false)
	d.AddSetting(&d.Length, "length", "l", "", disk.BlockSize,
		"number of bytes, for --ascii", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	Drive  string
	File   string
	Block  int
	ASCII  bool
	Offset int
	Length int
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	if d.File != "" {
		dec, err := openImage(d.File)
		if err != nil {
			return err
		}
		block := d.Block
		if block < 0 {
			block = 0
		}
		if d.ASCII {
			fmt.Println(dec.DumpASCII(block, d.Offset, d.Length))
			return nil
		}
		return dec.Emit(os.Stdout, block)
	}

	drive, err := validateDrive(d.Drive)
	if err != nil {
		return err
	}

	if d.ASCII {
		block := d.Block
		if block < 0 {
			block = 0
		}
		return d.apiPrint("GET", fmt.Sprintf(
			"/drive/%s/ascii?block=%d&offset=%d&length=%d",
			drive, block, d.Offset, d.Length), nil)
	}

	path := fmt.Sprintf("/drive/%s/block", drive)
	if d.Block >= 0 {
		path = fmt.Sprintf("%s/%d", path, d.Block)
	}
	return d.apiPrint("GET", path, nil)
}
