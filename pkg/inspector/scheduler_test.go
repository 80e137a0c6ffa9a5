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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	s := NewScheduler()
	res, err := Do(context.Background(), s, "DF0",
		func(ctx context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.False(t, s.Busy("DF0"))
}

func TestDoSupersedes(t *testing.T) {

	s := NewScheduler()
	started := make(chan struct{})

	var wg sync.WaitGroup
	var oldErr error
	var oldRes string

	wg.Add(1)
	go func() {
		defer wg.Done()
		oldRes, oldErr = Do(context.Background(), s, "DF0",
			func(ctx context.Context) (string, error) {
				close(started)
				<-ctx.Done()
				return "old", nil
			})
	}()

	<-started
	assert.True(t, s.Busy("DF0"))

	res, err := Do(context.Background(), s, "DF0",
		func(ctx context.Context) (string, error) { return "new", nil })
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "new", res)
	assert.ErrorIs(t, oldErr, ErrSuperseded)
	assert.Empty(t, oldRes)
	assert.False(t, s.Busy("DF0"))
}

func TestDoOneInFlightPerKey(t *testing.T) {

	s := NewScheduler()
	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	var completed, superseded atomic.Int32

	for ix := 0; ix < 20; ix++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Do(context.Background(), s, "DF0",
				func(ctx context.Context) (bool, error) {
					n := running.Add(1)
					defer running.Add(-1)
					for {
						m := maxRunning.Load()
						if n <= m || maxRunning.CompareAndSwap(m, n) {
							break
						}
					}
					select {
					case <-ctx.Done():
					case <-time.After(5 * time.Millisecond):
					}
					return true, nil
				})
			if err == nil {
				completed.Add(1)
			} else if err == ErrSuperseded {
				superseded.Add(1)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, int32(20), completed.Load()+superseded.Load())
	assert.GreaterOrEqual(t, completed.Load(), int32(1))
}

func TestDoDifferentKeysRunConcurrently(t *testing.T) {

	s := NewScheduler()
	both := make(chan struct{})
	var arrived atomic.Int32

	fn := func(ctx context.Context) (int, error) {
		if arrived.Add(1) == 2 {
			close(both)
		}
		select {
		case <-both:
			return 1, nil
		case <-time.After(time.Second):
			return 0, context.DeadlineExceeded
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for ix, key := range []string{"DF0", "DF1"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[ix] = Do(context.Background(), s, key, fn)
		}()
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := Do(ctx, NewScheduler(), "DF0",
		func(ctx context.Context) (int, error) {
			called = true
			return 0, nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
