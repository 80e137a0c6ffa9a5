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
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/repo"
)

/*
	insert places a disk image into a drive. The image is either the request
	body, or is taken from the repository when a ref argument is given. The
	type argument is the image's file extension; when omitted, the format is
	detected from the image.
*/
func (a *api) insert(w http.ResponseWriter, req *http.Request) {

	drive := a.getDrive(w, req)
	if drive == -1 {
		return
	}

	typ, err := getArg(req, "type")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	kind := format.Raw
	if typ != "" {
		var ok bool
		if kind, ok = format.ForExtension(typ); !ok {
			handleError(fmt.Errorf("unsupported image type: %s", typ),
				http.StatusUnprocessableEntity, w)
			return
		}
	}

	ref, err := getArg(req, "ref")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	force := isFlagSet(req, "force")
	readOnly := isFlagSet(req, "readonly")
	name := ref

	if ref != "" {
		if !repo.IsReference(ref) {
			handleError(fmt.Errorf("not a repository reference: %s", ref),
				http.StatusUnprocessableEntity, w)
			return
		}
		err = a.daemon.InsertRef(drive, ref, kind, readOnly, force)

	} else {
		if name, err = getArg(req, "name"); handleError(
			err, http.StatusUnprocessableEntity, w) {
			return
		}
		if name == "" {
			name = "disk"
			if typ != "" {
				name += "." + typ
			}
		}

		var data []byte
		data, err = io.ReadAll(io.LimitReader(req.Body, format.MaxImageSize+1))
		if handleError(err, http.StatusInternalServerError, w) {
			return
		}
		if handleError(req.Body.Close(), http.StatusInternalServerError, w) {
			return
		}
		if len(data) > format.MaxImageSize {
			handleError(fmt.Errorf("%w: more than %d bytes", repo.ErrTooLarge,
				format.MaxImageSize), http.StatusRequestEntityTooLarge, w)
			return
		}

		err = a.daemon.Insert(drive, name, data, kind, readOnly, force)
	}

	if handleDriveError(err, w) {
		return
	}

	dr := a.daemon.GetDriveState(drive)
	log.WithFields(log.Fields{
		"drive":  dr.Name,
		"medium": dr.Medium,
		"kind":   dr.Kind,
	}).Info("disk inserted")

	sendReply([]byte(fmt.Sprintf("inserted %s into drive %s", dr.Medium,
		dr.Name)), http.StatusOK, w)
}

//
func (a *api) eject(w http.ResponseWriter, req *http.Request) {

	drive := a.getDrive(w, req)
	if drive == -1 {
		return
	}

	if handleDriveError(a.daemon.Eject(drive), w) {
		return
	}

	name := a.daemon.GetDrive(drive).Name()
	log.WithField("drive", name).Info("disk ejected")
	sendReply([]byte(fmt.Sprintf("ejected disk from drive %s", name)),
		http.StatusOK, w)
}

//
func (a *api) repoList(w http.ResponseWriter, req *http.Request) {

	dir, err := getArg(req, "dir")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	list, err := a.daemon.Repository().List(dir)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(list, http.StatusOK, w)
	} else {
		sendReply([]byte(repoListString(list)), http.StatusOK, w)
	}
}
