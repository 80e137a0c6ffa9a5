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

package daemon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/inspector"
	"github.com/xelalexv/diskscope/pkg/repo"
)

//
const (
	FloppyCount    = 4
	HardDriveCount = 4
	DriveCount     = FloppyCount + HardDriveCount
)

// timeout for getting hold of a drive
const lockTimeout = time.Second

// the daemon that manages the drives under inspection
type Daemon struct {
	drives    []drive.Drive
	serial    *drive.SerialDrive
	inspector *inspector.Inspector
	repo      *repo.Repository
}

// Config collects the settings of a daemon
type Config struct {
	// serial port of a flux adapter; if set, the adapter's drive takes slot 1
	Device string
	// folder with disk images for repo:// references, empty to disable
	Repository string
	// parallel workers for disk scans, 0 for one per CPU
	Parallel int
}

/*
	NewDaemon creates a daemon with eight drive slots. Slots 1 through 4 hold
	floppy drives DF0 through DF3, slots 5 through 8 hard drives HD0 through
	HD3. If a device is configured, slot 1 holds the drive attached to the flux
	adapter on that device instead of a virtual floppy drive.
*/
func NewDaemon(cfg Config) *Daemon {

	d := &Daemon{
		drives:    make([]drive.Drive, DriveCount),
		inspector: inspector.New(cfg.Parallel),
		repo:      repo.NewRepository(cfg.Repository),
	}

	for ix := 0; ix < FloppyCount; ix++ {
		d.drives[ix] = drive.NewFloppyDrive(fmt.Sprintf("DF%d", ix))
	}
	for ix := 0; ix < HardDriveCount; ix++ {
		d.drives[FloppyCount+ix] = drive.NewHardDrive(fmt.Sprintf("HD%d", ix))
	}

	if cfg.Device != "" {
		d.serial = drive.NewSerialDrive("DF0", cfg.Device)
		d.drives[0] = d.serial
	}

	return d
}

// Serve runs until ctx is done. With a flux adapter configured, this keeps
// the connection to the adapter.
func (d *Daemon) Serve(ctx context.Context) error {

	log.Info("daemon running")

	if d.serial != nil {
		if err := d.serial.Serve(ctx); err != nil && ctx.Err() == nil {
			return err
		}
	} else {
		<-ctx.Done()
	}

	log.Info("daemon stopped")
	return nil
}

//
func (d *Daemon) Inspector() *inspector.Inspector {
	return d.inspector
}

//
func (d *Daemon) Repository() *repo.Repository {
	return d.repo
}

// GetDrive returns the drive in slot ix (1-based), or nil if there is no
// such slot
func (d *Daemon) GetDrive(ix int) drive.Drive {
	if 0 < ix && ix <= len(d.drives) {
		return d.drives[ix-1]
	}
	return nil
}

// ParseDrive accepts a slot number or a drive name such as df0 or HD2, and
// returns the slot number, or -1 if there is no such drive.
func (d *Daemon) ParseDrive(s string) int {
	if ix, err := strconv.Atoi(s); err == nil {
		if d.GetDrive(ix) != nil {
			return ix
		}
		return -1
	}
	for ix, dr := range d.drives {
		if strings.EqualFold(dr.Name(), s) {
			return ix + 1
		}
	}
	return -1
}

// lock gets hold of the drive in slot ix, and returns it along with the
// function for releasing it. Drives without a lock are returned as they are.
func (d *Daemon) lock(ix int) (drive.Drive, func(), error) {

	dr := d.GetDrive(ix)
	if dr == nil {
		return nil, nil, fmt.Errorf("%w: %d", ErrNoSuchDrive, ix)
	}

	l, ok := dr.(drive.Locker)
	if !ok {
		return dr, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	if !l.Lock(ctx) {
		return nil, nil, fmt.Errorf("%w: %s", ErrDriveBusy, dr.Name())
	}
	return dr, l.Unlock, nil
}

/*
	Insert places an image into the drive in slot ix. Archives are extracted
	first. For floppy drives, kind may be format.Raw to detect the format from
	the image. A disk already present is only replaced when forced.
*/
func (d *Daemon) Insert(ix int, name string, data []byte, kind format.Kind,
	writeProtected, force bool) error {

	data, name, err := repo.Extract(name, data)
	if err != nil {
		return err
	}

	dr, unlock, err := d.lock(ix)
	if err != nil {
		return err
	}
	defer unlock()

	if !force && dr.HasDisk() {
		return fmt.Errorf("%w: %s", ErrDiskPresent, dr.Name())
	}

	switch t := dr.(type) {
	case *drive.FloppyDrive:
		err = t.Insert(name, data, kind, writeProtected)
	case *drive.HardDrive:
		if kind != format.Raw && kind != format.HardDisk {
			return fmt.Errorf("cannot insert %s image into hard drive %s",
				kind, dr.Name())
		}
		err = t.Insert(name, data, writeProtected)
	default:
		return fmt.Errorf("%w: %s", ErrNotVirtual, dr.Name())
	}

	if err != nil {
		return err
	}

	d.inspector.Invalidate(dr.Name())
	return nil
}

// InsertRef loads an image from the repository and inserts it
func (d *Daemon) InsertRef(ix int, ref string, kind format.Kind,
	writeProtected, force bool) error {
	data, name, err := d.repo.Load(ref)
	if err != nil {
		return err
	}
	return d.Insert(ix, name, data, kind, writeProtected, force)
}

// Eject removes the disk from the drive in slot ix
func (d *Daemon) Eject(ix int) error {

	dr, unlock, err := d.lock(ix)
	if err != nil {
		return err
	}
	defer unlock()

	e, ok := dr.(interface{ Eject() bool })
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotVirtual, dr.Name())
	}
	if !e.Eject() {
		return fmt.Errorf("%w: %s", ErrNoDisk, dr.Name())
	}

	d.inspector.Invalidate(dr.Name())
	return nil
}

// Session returns the inspection session of the drive in slot ix. The drive
// is held while the session is refreshed, so that its disk cannot change in
// between.
func (d *Daemon) Session(ix int) (*inspector.Session, error) {
	dr, unlock, err := d.lock(ix)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.inspector.Session(dr), nil
}

// Reprobe is like Session, but the disk in a physical drive is probed anew
// in any case, since it may have been swapped unnoticed.
func (d *Daemon) Reprobe(ix int) (*inspector.Session, error) {
	dr, unlock, err := d.lock(ix)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.inspector.Reprobe(dr), nil
}
