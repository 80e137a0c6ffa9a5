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

package drive

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/mfm"
)

//
const (
	CmdStatus = 's' // get drive & disk state
	CmdRead   = 'r' // read raw track bits
)

//
const commandLength = 4

// status flags reported by the adapter
const (
	flagConnected      = 1
	flagDisk           = 2
	flagWriteProtected = 4
)

// upper limit for the bits of a track, four times a DD track
var maxTrackBits = 4 * mfm.AmigaTrackSize(mfm.AmigaSectorsDD) * 8

//
var helloAdapter = []byte("hlof")
var helloDaemon = []byte("hlod")

//
const pollInterval = 2 * time.Second

/*
	SerialDrive is a real floppy drive attached through a flux adapter on a
	serial port. The adapter announces itself with a hello, to which we reply.
	Thereafter, each request is a 4 byte command. A status request is answered
	with a single flags byte, a read request for a track with the number of
	bits as 4 byte little endian, followed by the bits packed into bytes.
*/
type SerialDrive struct {
	name   string
	device string
	opener func(string) (io.ReadWriteCloser, error)
	//
	mu     sync.Mutex
	port   io.ReadWriteCloser
	status byte
}

//
func NewSerialDrive(name, device string) *SerialDrive {
	return &SerialDrive{name: name, device: device, opener: openPort}
}

//
func openPort(p string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        p,
		BaudRate:        1000000,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

//
func (s *SerialDrive) Name() string {
	return s.name
}

//
func (s *SerialDrive) IsFixed() bool {
	return false
}

//
func (s *SerialDrive) IsConnected() bool {
	return s.queryStatus()&flagConnected != 0
}

//
func (s *SerialDrive) HasDisk() bool {
	st := s.queryStatus()
	return st&flagConnected != 0 && st&flagDisk != 0
}

//
func (s *SerialDrive) HasWriteProtectedDisk() bool {
	st := s.queryStatus()
	return st&flagDisk != 0 && st&flagWriteProtected != 0
}

//
func (s *SerialDrive) ReadTrackBits(track int) (*mfm.Bitstream, error) {

	if track < 0 || track > 0xff {
		return nil, trackError(track)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil, fmt.Errorf("%w: adapter on %s not connected",
			ErrMediumUnavailable, s.device)
	}

	if err := s.send(command(CmdRead, byte(track))); err != nil {
		return nil, s.fail(err)
	}

	count := make([]byte, 4)
	if err := s.receive(count); err != nil {
		return nil, s.fail(err)
	}

	bits := int(binary.LittleEndian.Uint32(count))
	if bits == 0 {
		return nil, fmt.Errorf("%w: no data for track %d", ErrMediumUnavailable,
			track)
	}
	if bits > maxTrackBits {
		return nil, s.fail(fmt.Errorf("excessive bit count %d", bits))
	}

	data := make([]byte, (bits+7)/8)
	if err := s.receive(data); err != nil {
		return nil, s.fail(err)
	}

	log.WithFields(log.Fields{"track": track, "bits": bits}).Debug("track read")
	if log.IsLevelEnabled(log.TraceLevel) {
		head := data
		if len(head) > 64 {
			head = head[:64]
		}
		log.Tracef("track %d starts with:\n%s", track, hex.Dump(head))
	}
	return mfm.NewBitstream(data, bits), nil
}

// Serve keeps the connection to the adapter alive until ctx is done. It
// returns ctx's error.
func (s *SerialDrive) Serve(ctx context.Context) error {

	defer s.Close()

	for {
		if err := s.Connect(ctx); err != nil {
			return err
		}

		for s.isOpen() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
				s.queryStatus()
			}
		}

		log.Warnf("lost connection to adapter on %s", s.device)
	}
}

// Connect opens the port and syncs with the adapter. Failed attempts are
// retried with increasing back-off until ctx is done.
func (s *SerialDrive) Connect(ctx context.Context) error {

	s.Close()
	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {

		log.Infof("opening port %s", s.device)
		err := s.open()
		if err == nil {
			return nil
		}

		log.Errorf("cannot connect to adapter: %v", err)
		if backoff < maxBackoff {
			backoff *= 2
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

//
func (s *SerialDrive) open() error {

	port, err := s.opener(s.device)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.port = port
	if err := s.syncOnHello(); err != nil {
		s.closePort()
		return fmt.Errorf("error syncing with adapter: %v", err)
	}
	return nil
}

//
func (s *SerialDrive) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closePort()
}

//
func (s *SerialDrive) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

//
func (s *SerialDrive) closePort() error {
	s.status = 0
	if s.port == nil {
		return nil
	}
	log.Infof("closing port %s", s.device)
	err := s.port.Close()
	s.port = nil
	return err
}

// fail closes the port after a protocol error, so that the next Serve cycle
// reconnects
func (s *SerialDrive) fail(err error) error {
	log.Errorf("adapter communication failed: %v", err)
	if cerr := s.closePort(); cerr != nil {
		log.Errorf("error closing port: %v", cerr)
	}
	return fmt.Errorf("%w: %v", ErrMediumUnavailable, err)
}

//
func (s *SerialDrive) queryStatus() byte {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return 0
	}

	if err := s.send(command(CmdStatus)); err != nil {
		s.fail(err)
		return 0
	}

	st := make([]byte, 1)
	if err := s.receive(st); err != nil {
		s.fail(err)
		return 0
	}

	if st[0] != s.status {
		log.WithFields(log.Fields{
			"drive":     s.name,
			"connected": st[0]&flagConnected != 0,
			"disk":      st[0]&flagDisk != 0,
			"protected": st[0]&flagWriteProtected != 0,
		}).Info("STATUS")
	}
	s.status = st[0]
	return s.status
}

//
func (s *SerialDrive) syncOnHello() error {

	log.Info("syncing with adapter")
	hello := make([]byte, len(helloAdapter))

	for !bytes.Equal(hello, helloAdapter) {
		shiftLeft(hello)
		if err := s.receive(hello[len(hello)-1:]); err != nil {
			return err
		}
	}

	if err := s.send(helloDaemon); err != nil {
		return fmt.Errorf("error sending daemon hello: %v", err)
	}

	log.Infof("synced with adapter on %s", s.device)
	return nil
}

//
func (s *SerialDrive) receive(data []byte) error {
	_, err := io.ReadFull(s.port, data)
	return err
}

//
func (s *SerialDrive) send(data []byte) error {
	_, err := s.port.Write(data)
	return err
}

// command assembles a request, unused arguments are zero
func command(cmd byte, args ...byte) []byte {
	ret := make([]byte, commandLength)
	ret[0] = cmd
	copy(ret[1:], args)
	return ret
}

//
func shiftLeft(buf []byte) {
	if len(buf) > 1 {
		copy(buf, buf[1:])
	}
}
