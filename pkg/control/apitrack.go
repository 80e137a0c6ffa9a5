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

	"github.com/xelalexv/diskscope/pkg/mfm"
)

// trackBits sends the raw MFM bits of a track, as a string of '0' and '1'
func (a *api) trackBits(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	track := getPathInt(w, req, "track")
	if track == -1 {
		return
	}

	bits, err := a.daemon.Inspector().Track(req.Context(), s.Drive(), track)
	if handleDriveError(err, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(newTrackBits(track, bits), http.StatusOK, w)
	} else {
		sendReply([]byte(bits.String()), http.StatusOK, w)
	}
}

//
func (a *api) trackSync(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	track := getPathInt(w, req, "track")
	if track == -1 {
		return
	}

	markers, err := a.daemon.Inspector().SyncMarkers(
		req.Context(), s.Drive(), track)
	if handleDriveError(err, w) {
		return
	}
	if markers == nil {
		markers = []mfm.SyncMarker{}
	}

	sync := &TrackSync{Track: track, Markers: markers}
	if wantsJSON(req) {
		sendJSONReply(sync, http.StatusOK, w)
	} else {
		sendReply([]byte(sync.String()), http.StatusOK, w)
	}
}

//
func (a *api) scan(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	scan, err := a.daemon.Inspector().Scan(req.Context(), s.Drive())
	if handleDriveError(err, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(scan, http.StatusOK, w)
	} else {
		sendReply([]byte(ScanTable(scan)), http.StatusOK, w)
	}
}
