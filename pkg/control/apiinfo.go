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
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/inspector"
)

//
func (a *api) info(w http.ResponseWriter, req *http.Request) {

	s := a.getProbedSession(w, req)
	if s == nil {
		return
	}

	dec := s.Decoder()
	info := &Info{
		Drive:        s.Drive().Name(),
		Kind:         dec.Kind().String(),
		Title:        dec.Title(),
		Descriptions: dec.Descriptions(),
		Geometry:     dec.Geometry(),
		Position:     s.Position(),
	}

	if wantsJSON(req) {
		sendJSONReply(info, http.StatusOK, w)
	} else {
		sendReply([]byte(info.String()), http.StatusOK, w)
	}
}

// block sends the block table of the block given in the path, or of the block
// selected by the drive's cursor
func (a *api) block(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	var out bytes.Buffer
	var err error

	if _, ok := mux.Vars(req)["block"]; ok {
		block := getPathInt(w, req, "block")
		if block == -1 {
			return
		}
		err = s.Decoder().Emit(&out, block)
	} else {
		err = s.EmitBlock(&out)
	}

	if handleDriveError(err, w) {
		return
	}
	sendStreamReply(&out, http.StatusOK, w)
}

// ascii sends the printable rendering of a byte range. Block and offset
// default to 0, length to one block.
func (a *api) ascii(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	args := map[string]int{"block": 0, "offset": 0, "length": disk.BlockSize}
	for k := range args {
		v, err := getOptionalIntArg(req, k)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		if v != nil {
			args[k] = *v
		}
	}

	sendReply([]byte(s.Decoder().DumpASCII(
		args["block"], args["offset"], args["length"])), http.StatusOK, w)
}

//
func (a *api) getCursor(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	sendCursor(&Cursor{Position: s.Position()}, false, w, req)
}

// setCursor moves the cursor of a drive. Any of the arguments cylinder,
// head, track, sector, and block may be given, and are applied in this
// order. Values out of range are clamped.
func (a *api) setCursor(w http.ResponseWriter, req *http.Request) {

	s := a.getSession(w, req)
	if s == nil {
		return
	}

	var m inspector.Move
	for _, f := range []struct {
		arg    string
		target **int
	}{
		{"cylinder", &m.Cylinder},
		{"head", &m.Head},
		{"track", &m.Track},
		{"sector", &m.Sector},
		{"block", &m.Block},
	} {
		v, err := getOptionalIntArg(req, f.arg)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		*f.target = v
	}

	pos, moved := s.Move(m)
	sendCursor(&Cursor{Position: pos, Moved: moved}, true, w, req)
}

//
func sendCursor(c *Cursor, change bool, w http.ResponseWriter,
	req *http.Request) {
	if wantsJSON(req) {
		sendJSONReply(c, http.StatusOK, w)
		return
	}
	msg := positionString(c.Position)
	if change && !c.Moved {
		msg = fmt.Sprintf("%s (unchanged)", msg)
	}
	sendReply([]byte(msg), http.StatusOK, w)
}
