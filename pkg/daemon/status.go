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
	"errors"

	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
)

//
var (
	ErrNoSuchDrive = errors.New("no such drive")
	ErrDriveBusy   = errors.New("drive busy")
	ErrDiskPresent = errors.New("drive already holds a disk")
	ErrNoDisk      = errors.New("no disk in drive")
	ErrNotVirtual  = errors.New("disk of hardware drive cannot be changed")
)

//
const (
	StatusEmpty        = "empty"
	StatusIdle         = "idle"
	StatusBusy         = "busy"
	StatusDisconnected = "disconnected"
	StatusHardware     = "hardware"
)

// DriveState describes a drive and its disk
type DriveState struct {
	Slot           int    `json:"slot"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Fixed          bool   `json:"fixed"`
	Hardware       bool   `json:"hardware"`
	Medium         string `json:"medium,omitempty"`
	Kind           string `json:"kind,omitempty"`
	WriteProtected bool   `json:"writeProtected"`
}

// GetStatus returns the status of the drive in slot ix
func (d *Daemon) GetStatus(ix int) string {

	dr := d.GetDrive(ix)
	if dr == nil {
		return ""
	}

	if l, ok := dr.(interface{ IsLocked() bool }); ok && l.IsLocked() {
		return StatusBusy
	}
	if d.inspector.Busy(dr.Name()) {
		return StatusBusy
	}
	if !dr.IsConnected() {
		return StatusDisconnected
	}
	if !dr.HasDisk() {
		return StatusEmpty
	}
	return StatusIdle
}

// GetDriveState returns state details of the drive in slot ix
func (d *Daemon) GetDriveState(ix int) *DriveState {

	dr := d.GetDrive(ix)
	if dr == nil {
		return nil
	}

	ret := &DriveState{
		Slot:   ix,
		Name:   dr.Name(),
		Status: d.GetStatus(ix),
		Fixed:  dr.IsFixed(),
	}

	if _, ok := dr.(*drive.SerialDrive); ok {
		ret.Hardware = true
	}

	if ret.Status != StatusEmpty && ret.Status != StatusDisconnected {
		ret.WriteProtected = dr.HasWriteProtectedDisk()
	}

	if m, ok := dr.(interface {
		MediumName() string
		Kind() format.Kind
	}); ok && dr.HasDisk() {
		ret.Medium = m.MediumName()
		ret.Kind = m.Kind().String()
	}

	return ret
}

// GetDriveStates returns the states of all drives, in slot order
func (d *Daemon) GetDriveStates() []*DriveState {
	ret := make([]*DriveState, 0, DriveCount)
	for ix := 1; ix <= DriveCount; ix++ {
		ret = append(ret, d.GetDriveState(ix))
	}
	return ret
}
