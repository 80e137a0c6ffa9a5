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
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xelalexv/diskscope/pkg/mfm"
)

// colors for highlighting sync markers
const (
	colorSync  = "\033[1;33m"
	colorReset = "\033[0m"
)

//
func NewMFM() *MFM {

	m := &MFM{}
	m.Runner = *NewRunner(
		`mfm [-d|--drive {drive}] [-i|--input {file}] [-t|--track {track}]
      [-w|--width {bits per line}] [-a|--address {address}] [-p|--port {port}]`,
		"show raw MFM bits of a track from file or daemon",
		`
Use the mfm command to output the raw MFM bits of a track, as read from a disk image
file, or from the disk in a drive of the daemon. When writing to a terminal, output
is wrapped to the terminal's width and sync markers are highlighted.`,
		"", runnerHelpEpilogue, m.Run)

	m.AddBaseSettings()
	m.AddSetting(&m.File, "input", "i", "", nil, "disk image input file", false)
	m.AddSetting(&m.Drive, "drive", "d", "", "DF0", "drive name or number", false)
	m.AddSetting(&m.Track, "track", "t", "", 0, "track number", false)
	m.AddSetting(&m.Width, "width", "w", "", 0,
		"bits per line, 0 for terminal width or no wrapping", false)

	return m
}

//
type MFM struct {
	//
	Runner
	//
	Drive string
	File  string
	Track int
	Width int
}

//
func (m *MFM) Run() error {

	m.ParseSettings()

	var bits string

	if m.File != "" {
		dec, err := openImage(m.File)
		if err != nil {
			return err
		}
		bits = dec.TrackBitStream(m.Track).String()

	} else {
		drive, err := validateDrive(m.Drive)
		if err != nil {
			return err
		}
		resp, err := m.apiCall("GET",
			fmt.Sprintf("/drive/%s/track/%d/mfm", drive, m.Track), false, nil)
		if err != nil {
			return err
		}
		defer resp.Close()
		data, err := io.ReadAll(resp)
		if err != nil {
			return err
		}
		bits = strings.TrimSpace(string(data))
	}

	width := m.Width
	color := false
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		color = true
		if w, _, err := term.GetSize(fd); err == nil && width <= 0 {
			width = w
		}
	}

	return renderBits(os.Stdout, bits, width, color)
}

/*
	renderBits writes a bit string in lines of width bits, or in a single line
	if width is not positive. With color set, the bits of sync markers are
	highlighted. Anything that is not a bit string, such as mfm.NoDataText, is
	written as it is.
*/
func renderBits(w io.Writer, bits string, width int, color bool) error {

	s, err := mfm.ParseBits(bits)
	if err != nil || bits == "" {
		_, err = fmt.Fprintln(w, bits)
		return err
	}

	var sync []bool
	if color {
		sync = make([]bool, len(bits))
		for m := range mfm.FindSyncMarkers(s) {
			for ix := m.Offset; ix < m.Offset+mfm.SyncPatternLength; ix++ {
				sync[ix] = true
			}
		}
	}

	if width <= 0 {
		width = len(bits)
	}

	var sb strings.Builder
	on := false

	for ix := 0; ix < len(bits); ix++ {
		if ix > 0 && ix%width == 0 {
			if on {
				sb.WriteString(colorReset)
				on = false
			}
			sb.WriteByte('\n')
		}
		if color && sync[ix] != on {
			on = sync[ix]
			if on {
				sb.WriteString(colorSync)
			} else {
				sb.WriteString(colorReset)
			}
		}
		sb.WriteByte(bits[ix])
	}

	if on {
		sb.WriteString(colorReset)
	}
	sb.WriteByte('\n')

	_, err = io.WriteString(w, sb.String())
	return err
}
