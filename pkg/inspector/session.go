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

package inspector

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/decoder"
	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// Move is a cursor movement request. Fields that are nil are left alone, the
// others are applied in declaration order.
type Move struct {
	Cylinder *int
	Head     *int
	Track    *int
	Sector   *int
	Block    *int
}

/*
	Session is the inspection of one drive. It holds the decoder for the disk
	in the drive, and the cursor selecting what is shown. A session lives as
	long as the drive is inspected, and needs to be refreshed after the disk
	was changed.
*/
type Session struct {
	mu      sync.Mutex
	drive   drive.Drive
	decoder *decoder.Decoder
	cursor  *disk.Cursor
	state   mediumState
	// serializes probing
	probing sync.Mutex
}

// mediumState is what can be seen of a drive's disk without reading it. A
// change means the disk needs to be probed again.
type mediumState struct {
	connected bool
	disk      bool
	protected bool
	name      string
}

//
func stateOf(d drive.Drive) mediumState {
	ret := mediumState{
		connected: d.IsConnected(),
		disk:      d.HasDisk(),
		protected: d.HasWriteProtectedDisk(),
	}
	if n, ok := d.(interface{ MediumName() string }); ok {
		ret.name = n.MediumName()
	}
	return ret
}

// isVirtual returns whether the drive holds a disk image, whose changes are
// always visible in its medium state
func isVirtual(d drive.Drive) bool {
	_, ok := d.(drive.Imager)
	return ok
}

//
func NewSession(d drive.Drive) *Session {
	s := &Session{drive: d}
	s.Refresh()
	return s
}

// Refresh probes the disk anew. The cursor keeps its position if the
// geometry did not change, otherwise it is reset to block 0.
func (s *Session) Refresh() {
	s.probing.Lock()
	defer s.probing.Unlock()
	s.refresh()
}

// RefreshIfChanged probes the disk anew if the drive's medium state differs
// from what it was at the last probe, and returns whether it did.
func (s *Session) RefreshIfChanged() bool {
	s.probing.Lock()
	defer s.probing.Unlock()
	if !s.changed() {
		return false
	}
	s.refresh()
	return true
}

// changed returns whether the drive's medium state differs from when the
// disk was last probed
func (s *Session) changed() bool {
	cur := stateOf(s.drive)
	s.mu.Lock()
	defer s.mu.Unlock()
	return cur != s.state
}

// refresh needs to be called with s.probing held
func (s *Session) refresh() {

	// taken before probing, so that a change while probing is seen next time
	state := stateOf(s.drive)
	dec := decoder.Probe(s.drive)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decoder = dec
	s.state = state
	if s.cursor == nil || s.cursor.Geometry() != dec.Geometry() {
		s.cursor = disk.NewCursor(dec.Geometry())
	}

	log.WithFields(log.Fields{
		"drive": s.drive.Name(),
		"kind":  dec.Kind(),
	}).Debug("session refreshed")
}

//
func (s *Session) Drive() drive.Drive {
	return s.drive
}

//
func (s *Session) Decoder() *decoder.Decoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoder
}

//
func (s *Session) Position() disk.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Position()
}

// Move applies m to the cursor, and returns the resulting position and
// whether the cursor moved at all.
func (s *Session) Move(m Move) (disk.Position, bool) {

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := false
	apply := func(v *int, set func(int) bool) {
		if v != nil && set(*v) {
			moved = true
		}
	}

	apply(m.Cylinder, s.cursor.SetCylinder)
	apply(m.Head, s.cursor.SetHead)
	apply(m.Track, s.cursor.SetTrack)
	apply(m.Sector, s.cursor.SetSector)
	apply(m.Block, s.cursor.SetBlock)

	return s.cursor.Position(), moved
}

// EmitBlock writes the block table of the selected block
func (s *Session) EmitBlock(w io.Writer) error {
	s.mu.Lock()
	dec, block := s.decoder, s.cursor.Block()
	s.mu.Unlock()
	return dec.Emit(w, block)
}

// TrackStream reads the bits of the selected track from the drive. This is
// done anew on every call, since the disk may have changed.
func (s *Session) TrackStream() *mfm.Bitstream {
	s.mu.Lock()
	dec, track := s.decoder, s.cursor.Track()
	s.mu.Unlock()
	return dec.TrackBitStream(track)
}
