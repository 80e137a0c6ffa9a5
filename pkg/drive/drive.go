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

package drive

import (
	"context"
	"errors"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// ErrMediumUnavailable is returned when track data cannot be read because the
// drive is not connected, has no disk inserted, or carries no MFM data.
var ErrMediumUnavailable = errors.New("medium unavailable")

// Drive is a floppy or hard drive whose medium can be inspected
type Drive interface {
	Name() string
	IsConnected() bool
	HasDisk() bool
	HasWriteProtectedDisk() bool
	// IsFixed returns true for hard drives
	IsFixed() bool
	// ReadTrackBits returns the MFM bits of a physical track; errors wrap
	// ErrMediumUnavailable if there is nothing to read
	ReadTrackBits(track int) (*mfm.Bitstream, error)
}

// Imager is implemented by drives that can hand out the disk image they
// hold, so that probing does not need to go through MFM decoding.
type Imager interface {
	Image() (data []byte, ok bool)
}

// Locker is implemented by drives whose medium can be swapped; holding the
// lock guarantees that the medium does not change.
type Locker interface {
	Lock(ctx context.Context) bool
	Unlock()
}

// medium is an inserted disk
type medium struct {
	name           string
	data           []byte
	image          *format.Image
	writeProtected bool
}

// slot holds the medium of a virtual drive
type slot struct {
	name   string
	medium atomic.Pointer[medium]
	lock   chan bool
}

//
func (s *slot) init(name string) {
	s.name = name
	s.lock = make(chan bool, 1)
}

//
func (s *slot) Name() string {
	return s.name
}

//
func (s *slot) Lock(ctx context.Context) bool {
	select {
	case s.lock <- true:
		log.WithField("drive", s.name).Trace("drive locked")
		return true
	case <-ctx.Done():
		log.WithField("drive", s.name).Debug("drive lock timed out")
		return false
	}
}

//
func (s *slot) Unlock() {
	select {
	case <-s.lock:
		log.WithField("drive", s.name).Trace("drive unlocked")
	default:
		log.WithField("drive", s.name).Debug("drive was already unlocked")
	}
}

//
func (s *slot) IsLocked() bool {
	return len(s.lock) > 0
}

// virtual drives are always connected
func (s *slot) IsConnected() bool {
	return true
}

//
func (s *slot) HasDisk() bool {
	return s.medium.Load() != nil
}

//
func (s *slot) HasWriteProtectedDisk() bool {
	m := s.medium.Load()
	return m != nil && m.writeProtected
}

// MediumName returns the name under which the current disk was inserted
func (s *slot) MediumName() string {
	if m := s.medium.Load(); m != nil {
		return m.name
	}
	return ""
}

//
func (s *slot) Image() ([]byte, bool) {
	if m := s.medium.Load(); m != nil {
		return m.data, true
	}
	return nil, false
}

// Kind returns the kind of the inserted image
func (s *slot) Kind() format.Kind {
	if m := s.medium.Load(); m != nil {
		return m.image.Kind
	}
	return format.Raw
}

//
func (s *slot) insert(m *medium) {
	s.medium.Store(m)
	log.WithFields(log.Fields{
		"drive": s.name,
		"name":  m.name,
		"kind":  m.image.Kind,
	}).Info("disk inserted")
}

// Eject removes the disk, and returns false if there was none.
func (s *slot) Eject() bool {
	if s.medium.Swap(nil) == nil {
		return false
	}
	log.WithField("drive", s.name).Info("disk ejected")
	return true
}
