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

package control

import (
	"fmt"
	"strings"

	"github.com/xelalexv/diskscope/pkg/daemon"
	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/inspector"
	"github.com/xelalexv/diskscope/pkg/mfm"
	"github.com/xelalexv/diskscope/pkg/repo"
)

//
type Status struct {
	Drives []*DriveStatus `json:"drives"`
}

//
type DriveStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

//
func (s *Status) Add(name, status string) {
	s.Drives = append(s.Drives, &DriveStatus{Name: name, Status: status})
}

//
func (s *Status) String() string {
	ret := "\n"
	for ix, d := range s.Drives {
		ret = fmt.Sprintf("%s%d %s: %s\n", ret, ix+1, d.Name, d.Status)
	}
	return ret
}

// Change is what a watching client gets notified with
type Change struct {
	Drives []*daemon.DriveState `json:"drives,omitempty"`
}

//
func driveStatesEqual(a, b []*daemon.DriveState) bool {
	if len(a) != len(b) {
		return false
	}
	for ix := range a {
		if (a[ix] == nil) != (b[ix] == nil) {
			return false
		}
		if a[ix] != nil && *a[ix] != *b[ix] {
			return false
		}
	}
	return true
}

//
func driveStateString(s *daemon.DriveState) string {

	if s.Status == daemon.StatusEmpty || s.Status == daemon.StatusDisconnected {
		return fmt.Sprintf("  %d   %-5s <%s>", s.Slot, s.Name, s.Status)
	}

	medium := s.Medium
	if medium == "" {
		medium = "<unknown>"
	}

	write := 'w'
	if s.WriteProtected {
		write = 'r'
	}

	return fmt.Sprintf("  %d   %-5s %-24s %-4s %c  %s",
		s.Slot, s.Name, medium, s.Kind, write, s.Status)
}

// Info describes the disk in a drive and the position of the drive's cursor
type Info struct {
	Drive        string        `json:"drive"`
	Kind         string        `json:"kind"`
	Title        string        `json:"title"`
	Descriptions []string      `json:"descriptions"`
	Geometry     disk.Geometry `json:"geometry"`
	Position     disk.Position `json:"position"`
}

//
func (i *Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n\n", i.Drive)
	for _, d := range i.Descriptions {
		fmt.Fprintf(&sb, "  %s\n", d)
	}
	fmt.Fprintf(&sb, "\n  %s\n", positionString(i.Position))
	return sb.String()
}

//
func positionString(p disk.Position) string {
	return fmt.Sprintf("cylinder %d, head %d, track %d, sector %d, block %d",
		p.Cylinder, p.Head, p.Track, p.Sector, p.Block)
}

// Cursor is the reply to a cursor change
type Cursor struct {
	Position disk.Position `json:"position"`
	Moved    bool          `json:"moved"`
}

// TrackBits carries the raw MFM bits of a track
type TrackBits struct {
	Track     int    `json:"track"`
	Available bool   `json:"available"`
	Length    int    `json:"length"`
	Bits      string `json:"bits"`
}

//
func newTrackBits(track int, s *mfm.Bitstream) *TrackBits {
	ret := &TrackBits{Track: track, Available: s.Available(), Bits: s.String()}
	if ret.Available {
		ret.Length = s.Len()
	}
	return ret
}

// TrackSync lists the sync markers found on a track
type TrackSync struct {
	Track   int              `json:"track"`
	Markers []mfm.SyncMarker `json:"markers"`
}

//
func (t *TrackSync) String() string {
	if len(t.Markers) == 0 {
		return fmt.Sprintf("no sync markers on track %d", t.Track)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d sync markers on track %d:\n", len(t.Markers), t.Track)
	for _, m := range t.Markers {
		fmt.Fprintf(&sb, "  %s\n", m)
	}
	return sb.String()
}

// ScanTable renders scan results as a table, one track per row
func ScanTable(scan []inspector.TrackScan) string {
	var sb strings.Builder
	sb.WriteString("\nTRACK  BITS    SYNC  AMIGA  IBM")
	for _, t := range scan {
		if !t.Available {
			fmt.Fprintf(&sb, "\n%5d  <%s>", t.Track, mfm.NoDataText)
			continue
		}
		fmt.Fprintf(&sb, "\n%5d  %6d  %4d  %5d  %3d",
			t.Track, t.Bits, t.SyncMarkers, t.AmigaSectors, t.IBMSectors)
	}
	return sb.String()
}

//
func repoListString(entries []repo.Entry) string {
	if len(entries) == 0 {
		return "no images"
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%10s  %s\n", disk.DescribeSize(e.Size), e.Ref)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
