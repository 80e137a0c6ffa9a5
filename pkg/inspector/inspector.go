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
	"context"
	"sync"

	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

/*
	Inspector keeps one inspection session per drive, and runs the expensive
	track level operations through a superseding Scheduler, so that a client
	repeatedly asking for the same drive never piles up work.
*/
type Inspector struct {
	sched    *Scheduler
	parallel int
	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an inspector whose disk scans use up to parallel workers.
func New(parallel int) *Inspector {
	return &Inspector{
		sched:    NewScheduler(),
		parallel: parallel,
		sessions: map[string]*Session{},
	}
}

/*
	Session returns the session for d, creating it if needed. An existing
	session is refreshed if the drive's medium state changed since its disk
	was probed. Probing happens without holding the inspector, so a slow drive
	does not stall requests for the others.
*/
func (i *Inspector) Session(d drive.Drive) *Session {

	i.mu.Lock()
	s, ok := i.sessions[d.Name()]
	i.mu.Unlock()

	if ok && s.Drive() == d {
		s.RefreshIfChanged()
		return s
	}

	s = NewSession(d)

	i.mu.Lock()
	defer i.mu.Unlock()
	if cur, ok := i.sessions[d.Name()]; ok && cur.Drive() == d {
		return cur
	}
	i.sessions[d.Name()] = s
	return s
}

/*
	Reprobe returns the session for d like Session does, but probes the disk
	of a physical drive anew in any case. Its disk can be swapped without the
	medium state ever showing a change.
*/
func (i *Inspector) Reprobe(d drive.Drive) *Session {

	i.mu.Lock()
	s, ok := i.sessions[d.Name()]
	i.mu.Unlock()

	if ok && s.Drive() == d && !isVirtual(d) {
		s.Refresh()
		return s
	}
	return i.Session(d)
}

// Invalidate discards the session of the named drive, to be called when the
// disk in it changed.
func (i *Inspector) Invalidate(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.sessions, name)
}

// Busy returns whether a track operation for the named drive is running
func (i *Inspector) Busy(name string) bool {
	return i.sched.Busy(name)
}

// Scan scans all tracks of the disk in d
func (i *Inspector) Scan(ctx context.Context, d drive.Drive) ([]TrackScan, error) {
	s := i.Session(d)
	return Do(ctx, i.sched, d.Name(),
		func(ctx context.Context) ([]TrackScan, error) {
			return ScanDisk(ctx, s.Decoder(), i.parallel)
		})
}

// Track reads the bits of a track of the disk in d
func (i *Inspector) Track(ctx context.Context, d drive.Drive,
	track int) (*mfm.Bitstream, error) {
	s := i.Session(d)
	return Do(ctx, i.sched, d.Name(),
		func(ctx context.Context) (*mfm.Bitstream, error) {
			return s.Decoder().TrackBitStream(track), nil
		})
}

// SyncMarkers reads a track of the disk in d and locates its sync markers
func (i *Inspector) SyncMarkers(ctx context.Context, d drive.Drive,
	track int) ([]mfm.SyncMarker, error) {
	s := i.Session(d)
	return Do(ctx, i.sched, d.Name(),
		func(ctx context.Context) ([]mfm.SyncMarker, error) {
			ret := []mfm.SyncMarker{}
			for m := range mfm.FindSyncMarkers(s.Decoder().TrackBitStream(track)) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				ret = append(ret, m)
			}
			return ret, nil
		})
}
