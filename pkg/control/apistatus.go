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
	"strings"

	"github.com/xelalexv/diskscope/pkg/daemon"
)

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	stat := &Status{}
	for _, s := range a.daemon.GetDriveStates() {
		stat.Add(s.Name, s.Status)
	}

	if wantsJSON(req) {
		sendJSONReply(stat, http.StatusOK, w)
	} else {
		sendReply([]byte(stat.String()), http.StatusOK, w)
	}
}

//
func (a *api) list(w http.ResponseWriter, req *http.Request) {

	list := a.daemon.GetDriveStates()

	if wantsJSON(req) {
		sendJSONReply(list, http.StatusOK, w)
		return
	}

	var sb strings.Builder
	sb.WriteString("\nSLOT DRIVE MEDIUM                   KIND")
	for _, s := range list {
		sb.WriteString("\n")
		sb.WriteString(driveStateString(s))
	}
	sendReply([]byte(sb.String()), http.StatusOK, w)
}

// getDriveStates is what the watcher compares between polls
func (a *api) getDriveStates() []*daemon.DriveState {
	return a.daemon.GetDriveStates()
}
