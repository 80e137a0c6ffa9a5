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

package run

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xelalexv/diskscope/pkg/control"
	"github.com/xelalexv/diskscope/pkg/daemon"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve [-d|--device {device}] [-a|--address {address}] [-p|--port {port}]
      [-r|--repo {repo base folder}] [-j|--parallel {workers}]`,
		"daemon & API server command",
		`Use the serve command for running the daemon and API server. The daemon provides
four virtual floppy drives DF0 through DF3, and four virtual hard drives HD0 through
HD3. If a flux adapter is attached, give its serial device; the drive connected to
the adapter then takes the place of DF0.`,
		"", `- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Device, "device", "d", "DISKSCOPE_DEVICE", nil,
		"serial port device of flux adapter", false)
	s.AddSetting(&s.Repository, "repo", "r", "DISKSCOPE_REPO", nil,
		`disk image repo base folder; when omitted, inserting
images from daemon host's file system is prohibited`, false)
	s.AddSetting(&s.Parallel, "parallel", "j", "", 0,
		"parallel workers for disk scans, 0 for one per CPU", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device     string
	Repository string
	Parallel   int
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := &errgroup.Group{}

	d := daemon.NewDaemon(daemon.Config{
		Device:     s.Device,
		Repository: s.Repository,
		Parallel:   s.Parallel,
	})
	g.Go(func() error {
		err := d.Serve(ctx)
		if err != nil {
			log.Errorf("daemon closed with error: %v", err)
		}
		return err
	})

	api := control.NewAPIServer(
		net.JoinHostPort(s.Address, strconv.Itoa(s.Port)), d)
	g.Go(func() error {
		err := api.Serve()
		if err != nil {
			log.Errorf("API server closed with error: %v", err)
			cancel()
		} else {
			log.Info("API server stopped")
		}
		return err
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0
	done := make(chan error)
	failed := ctx.Done()

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				go func() {
					log.Info("shutting down, hit Ctrl-C twice to force exit...")
					api.Stop()
					cancel()
					err := g.Wait()
					log.Info("DiskScope stopped")
					done <- err
				}()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case <-failed: // API server failed
			failed = nil
			if sigCount == 0 {
				return g.Wait()
			}

		case err := <-done: // shutdown sequence complete
			return err
		}
	}
}
