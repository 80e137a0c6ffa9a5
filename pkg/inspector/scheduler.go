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
	"errors"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// ErrSuperseded is returned for a request that was replaced by a newer one
// for the same drive before it could complete.
var ErrSuperseded = errors.New("superseded by newer request")

/*
	Scheduler runs requests keyed by drive. At most one request per key is in
	flight. A new request cancels the one currently running for its key, waits
	for it to wind down, and then runs. The cancelled request returns
	ErrSuperseded, whatever its function returned. Requests for different keys
	run concurrently.
*/
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	cancel     context.CancelFunc
	done       chan struct{}
	superseded atomic.Bool
}

//
func NewScheduler() *Scheduler {
	return &Scheduler{jobs: map[string]*job{}}
}

// Busy returns whether a request for key is in flight
func (s *Scheduler) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// Do runs fn as the current request for key, see Scheduler.
func Do[T any](ctx context.Context, s *Scheduler, key string,
	fn func(ctx context.Context) (T, error)) (T, error) {

	var zero T

	jctx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.jobs[key]
	s.jobs[key] = j
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.jobs[key] == j {
			delete(s.jobs, key)
		}
		s.mu.Unlock()
		close(j.done)
	}()

	if prev != nil {
		log.WithField("drive", key).Debug("superseding running request")
		prev.superseded.Store(true)
		prev.cancel()
		// the previous request may only be left once it has finished,
		// otherwise two requests could be in flight
		<-prev.done
	}

	if j.superseded.Load() {
		return zero, ErrSuperseded
	}
	if err := jctx.Err(); err != nil {
		return zero, err
	}

	res, err := fn(jctx)
	if j.superseded.Load() {
		return zero, ErrSuperseded
	}
	return res, err
}
