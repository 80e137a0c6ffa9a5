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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/daemon"
	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/inspector"
	"github.com/xelalexv/diskscope/pkg/repo"
)

// DefaultPort is the port the API server listens on if none is given
const DefaultPort = 8888

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr string, d *daemon.Daemon) APIServer {
	return newAPI(addr, d)
}

//
func newAPI(addr string, d *daemon.Daemon) *api {
	return &api{
		address:       addr,
		daemon:        d,
		longPollQueue: make(chan chan *Change),
		stop:          make(chan struct{}),
	}
}

//
type api struct {
	address string
	daemon  *daemon.Daemon
	server  *http.Server
	//
	longPollQueue chan chan *Change
	stop          chan struct{}
}

//
func (a *api) router() *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "watch", "GET", "/watch", a.watch)
	addRoute(router, "ls", "GET", "/list", a.list)
	addRoute(router, "repo", "GET", "/repo", a.repoList)

	addRoute(router, "insert", "PUT", "/drive/{drive}", a.insert)
	addRoute(router, "eject", "GET", "/drive/{drive}/eject", a.eject)
	addRoute(router, "info", "GET", "/drive/{drive}/info", a.info)
	addRoute(router, "block", "GET", "/drive/{drive}/block", a.block)
	addRoute(router, "block", "GET", "/drive/{drive}/block/{block:[0-9]+}",
		a.block)
	addRoute(router, "ascii", "GET", "/drive/{drive}/ascii", a.ascii)
	addRoute(router, "cursor", "GET", "/drive/{drive}/cursor", a.getCursor)
	addRoute(router, "cursor", "PUT", "/drive/{drive}/cursor", a.setCursor)
	addRoute(router, "mfm", "GET", "/drive/{drive}/track/{track:[0-9]+}/mfm",
		a.trackBits)
	addRoute(router, "sync", "GET", "/drive/{drive}/track/{track:[0-9]+}/sync",
		a.trackSync)
	addRoute(router, "scan", "GET", "/drive/{drive}/scan", a.scan)

	return router
}

//
func (a *api) Serve() error {

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:%d", a.address, DefaultPort)
	}

	log.Infof("DiskScope API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: a.router()}

	go a.watchDaemon(2 * time.Second)

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server != nil {
		log.Info("API server stopping...")
		close(a.stop)
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

// getDrive returns the slot of the drive named in the request path, or -1 if
// there is no such drive. In that case, an error reply has been sent.
func (a *api) getDrive(w http.ResponseWriter, req *http.Request) int {
	arg := mux.Vars(req)["drive"]
	drive := a.daemon.ParseDrive(arg)
	if drive == -1 {
		handleError(fmt.Errorf("%w: %s", daemon.ErrNoSuchDrive, arg),
			http.StatusNotFound, w)
	}
	return drive
}

// getSession returns the inspection session of the drive named in the
// request path. If nil is returned, an error reply has been sent.
func (a *api) getSession(w http.ResponseWriter,
	req *http.Request) *inspector.Session {
	return a.sessionFrom(a.daemon.Session, w, req)
}

// getProbedSession is like getSession, but has the disk of a physical drive
// probed anew
func (a *api) getProbedSession(w http.ResponseWriter,
	req *http.Request) *inspector.Session {
	return a.sessionFrom(a.daemon.Reprobe, w, req)
}

//
func (a *api) sessionFrom(get func(int) (*inspector.Session, error),
	w http.ResponseWriter, req *http.Request) *inspector.Session {

	drive := a.getDrive(w, req)
	if drive == -1 {
		return nil
	}

	s, err := get(drive)
	if handleDriveError(err, w) {
		return nil
	}
	return s
}

//
func getPathInt(w http.ResponseWriter, req *http.Request, v string) int {
	ret, err := strconv.Atoi(mux.Vars(req)[v])
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return -1
	}
	return ret
}

//
func isFlagSet(req *http.Request, flag string) bool {
	arg, _ := getArg(req, flag)
	return arg == "true"
}

//
func getArg(req *http.Request, arg string) (string, error) {
	ret := req.URL.Query().Get(arg)
	if ret != "" {
		return url.QueryUnescape(ret)
	}
	return ret, nil
}

//
func getIntArg(req *http.Request, arg string) (int, error) {
	if val, err := getArg(req, arg); err != nil {
		return -1, err
	} else {
		if ret, err := strconv.Atoi(val); err != nil {
			return -1, err
		} else {
			return ret, nil
		}
	}
}

// getOptionalIntArg returns nil if arg is not present in the request
func getOptionalIntArg(req *http.Request, arg string) (*int, error) {
	if !req.URL.Query().Has(arg) {
		return nil, nil
	}
	ret, err := getIntArg(req, arg)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %v", arg, err)
	}
	return &ret, nil
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

// handleDriveError replies with the HTTP status matching e
func handleDriveError(e error, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	status := http.StatusInternalServerError

	switch {
	case errors.Is(e, daemon.ErrNoSuchDrive):
		status = http.StatusNotFound
	case errors.Is(e, daemon.ErrDriveBusy):
		status = http.StatusLocked
	case errors.Is(e, daemon.ErrDiskPresent),
		errors.Is(e, inspector.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(e, disk.ErrOutOfRange):
		status = http.StatusRequestedRangeNotSatisfiable
	case errors.Is(e, repo.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(e, daemon.ErrNoDisk),
		errors.Is(e, daemon.ErrNotVirtual),
		errors.Is(e, disk.ErrFormatNotRecognized),
		errors.Is(e, repo.ErrNoImage):
		status = http.StatusUnprocessableEntity
	}

	return handleError(e, status, w)
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendStreamReply(r io.Reader, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, r); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing reply: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(req.Header.Get("Content-Type"), "application/json")
}
