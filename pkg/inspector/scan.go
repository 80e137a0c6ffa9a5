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

package inspector

import (
	"context"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xelalexv/diskscope/pkg/decoder"
	"github.com/xelalexv/diskscope/pkg/disk"
	"github.com/xelalexv/diskscope/pkg/mfm"
)

// tracks scanned on disks without geometry
const DefaultScanTracks = 80 * disk.FloppyHeads

// TrackScan is the result of scanning a single track
type TrackScan struct {
	Track        int  `json:"track"`
	Available    bool `json:"available"`
	Bits         int  `json:"bits"`
	SyncMarkers  int  `json:"syncMarkers"`
	AmigaSectors int  `json:"amigaSectors"`
	IBMSectors   int  `json:"ibmSectors"`
}

// ScanDisk reads all tracks of the disk behind dec, and counts the sync
// markers and valid sectors on each. Up to parallel tracks are scanned at
// once; 0 means one per CPU. The scan stops when ctx is done.
func ScanDisk(ctx context.Context, dec *decoder.Decoder,
	parallel int) ([]TrackScan, error) {

	tracks := dec.Geometry().Tracks()
	if tracks == 0 || dec.Geometry().Heads != disk.FloppyHeads {
		// hard disks and unrecognized disks
		tracks = DefaultScanTracks
	}
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	ret := make([]TrackScan, tracks)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for t := 0; t < tracks; t++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ret[t] = scanTrack(dec.TrackBitStream(t), t)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.WithField("drive", dec.Drive().Name()).Debugf("scanned %d tracks", tracks)
	return ret, nil
}

//
func scanTrack(s *mfm.Bitstream, track int) TrackScan {

	ret := TrackScan{Track: track, Available: s.Available()}
	if !ret.Available {
		return ret
	}

	ret.Bits = s.Len()
	ret.SyncMarkers = mfm.CountSyncMarkers(s)
	for _, sec := range mfm.DecodeAmigaTrack(s) {
		if sec.Valid() {
			ret.AmigaSectors++
		}
	}
	ret.IBMSectors = mfm.CountIBMSectors(s)
	return ret
}
