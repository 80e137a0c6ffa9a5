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
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/daemon"
)

//
func (a *api) watch(w http.ResponseWriter, req *http.Request) {

	timeout, err := strconv.Atoi(req.URL.Query().Get("timeout"))
	if err != nil || timeout < 0 || 1800 < timeout {
		timeout = 600
	}

	log.Infof("starting watch for %s, timeout %d", req.RemoteAddr, timeout)
	update := make(chan *Change, 1)

	select {
	case a.longPollQueue <- update:
	case <-req.Context().Done():
		log.Infof("watch for %s cancelled", req.RemoteAddr)
		return
	case <-time.After(time.Duration(timeout) * time.Second):
		log.Infof("closing watch for %s after timeout", req.RemoteAddr)
		sendReply([]byte{}, http.StatusRequestTimeout, w)
		return
	}

	log.Infof("sending daemon change to %s", req.RemoteAddr)
	sendJSONReply(<-update, http.StatusOK, w)
}

// watchDaemon polls the drive states every interval, and hands changes to all
// clients waiting in the long poll queue, until the server is stopped.
func (a *api) watchDaemon(interval time.Duration) {

	log.Info("start watching for daemon changes")

	var list []*daemon.DriveState
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-a.stop:
			log.Info("stopped watching for daemon changes")
			return
		case <-tick.C:
		}

		var change *Change
		if change, list = a.detectChange(list); change == nil {
			continue
		}

		log.Info("daemon changes")
		a.notify(change)
	}
}

// detectChange compares the current drive states with last. It returns the
// change, or nil if there is none, and the states to compare with next time.
func (a *api) detectChange(
	last []*daemon.DriveState) (*Change, []*daemon.DriveState) {
	l := a.getDriveStates()
	if driveStatesEqual(l, last) {
		return nil, last
	}
	return &Change{Drives: l}, l
}

//
func (a *api) notify(change *Change) {
	for {
		select {
		case cl := <-a.longPollQueue:
			log.Info("notifying long poll client")
			cl <- change
		default:
			log.Info("all long poll clients notified")
			return
		}
	}
}
