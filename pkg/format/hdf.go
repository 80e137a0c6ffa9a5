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

package format

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/disk"
)

// HDFOversize is the size above which a hard disk image is flagged as
// oversized; such images are still decoded.
const HDFOversize = 504 * 1024 * 1024

// the Rigid Disk Block is searched for in this many leading blocks
const rdbSearchBlocks = 16

// end of a block list
const blockListEnd = 0xffffffff

// limit for following partition lists, guards against cycles
const maxPartitions = 128

var rdbIndex = map[string][2]int{
	"id":            {0, 4},
	"summedLongs":   {4, 4},
	"blockBytes":    {16, 4},
	"partitionList": {28, 4},
	"cylinders":     {64, 4},
	"sectors":       {68, 4},
	"heads":         {72, 4},
}

var partIndex = map[string][2]int{
	"id":          {0, 4},
	"next":        {16, 4},
	"driveName":   {36, 32},
	"surfaces":    {140, 4},
	"blocksTrack": {148, 4},
	"reserved":    {152, 4},
	"lowCyl":      {164, 4},
	"highCyl":     {168, 4},
	"dosType":     {192, 4},
}

// Partition of a hard disk image
type Partition struct {
	Name     string `json:"name"`
	LowCyl   int    `json:"lowCyl"`
	HighCyl  int    `json:"highCyl"`
	Heads    int    `json:"heads"`
	Sectors  int    `json:"sectors"`
	Reserved int    `json:"reserved"`
	DOSType  string `json:"dosType"`
}

//
func (p *Partition) String() string {
	return fmt.Sprintf("%-8s cyl %d-%d, %s", p.Name, p.LowCyl, p.HighCyl,
		p.DOSType)
}

//
type HDF struct{}

//
func NewHDF() *HDF {
	return &HDF{}
}

//
func (h *HDF) Read(in io.Reader) (*Image, error) {
	data, err := readAll(in)
	if err != nil {
		return nil, err
	}
	return ParseHDF(data)
}

//
func (h *HDF) Write(img *Image, out io.Writer) error {
	_, err := out.Write(img.Data[:img.Geometry.Capacity()])
	return err
}

// ParseHDF accepts any non-empty, block aligned image. Geometry and
// partitions come from the Rigid Disk Block if present, otherwise the
// geometry is predicted from the image size and a single partition is
// assumed to span the whole disk.
func ParseHDF(data []byte) (*Image, error) {

	if len(data) == 0 || len(data)%disk.BlockSize != 0 {
		return nil, notRecognized(HardDisk, "size %d is not block aligned",
			len(data))
	}

	img := &Image{
		Kind:      HardDisk,
		Data:      data,
		Oversized: len(data) > HDFOversize,
	}
	blocks := len(data) / disk.BlockSize

	if rdb := seekRDB(data); rdb != nil {
		img.HasRDB = true
		g := disk.NewGeometry(rdb.GetInt("cylinders"), rdb.GetInt("heads"),
			rdb.GetInt("sectors"))
		switch {
		case g.Blocks <= 0:
			log.Warnf("RDB geometry %s is invalid, predicting geometry", g)
			g = PredictGeometry(blocks)
		case g.Blocks > blocks:
			log.Warnf("RDB geometry %s exceeds image with %d blocks", g, blocks)
			g.Blocks = blocks
		}
		img.Geometry = g
		img.Partitions = scanPartitions(data, rdb)

	} else {
		img.Geometry = PredictGeometry(blocks)
	}

	if len(img.Partitions) == 0 {
		img.Partitions = []*Partition{defaultPartition(img)}
	}

	if img.Oversized {
		log.Warnf("hard disk image exceeds %s", disk.DescribeSize(HDFOversize))
	}

	return img, nil
}

/*
	PredictGeometry finds a CHS geometry for a disk without RDB. Candidates
	have 1 to 16 heads and 16 to 63 sectors, and cover all blocks exactly.
	One head with 32 sectors is preferred, otherwise the first candidate found
	is used. If there is none, the disk is described as a single track
	cylinder per block.
*/
func PredictGeometry(blocks int) disk.Geometry {

	candidates := GeometryCandidates(blocks)

	for _, g := range candidates {
		if g.Heads == 1 && g.Sectors == 32 {
			return g
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return disk.NewGeometry(blocks, 1, 1)
}

// GeometryCandidates lists all geometries considered by PredictGeometry
func GeometryCandidates(blocks int) []disk.Geometry {
	var ret []disk.Geometry
	for h := 1; h <= 16; h++ {
		for s := 16; s <= 63; s++ {
			if blocks > 0 && blocks%(h*s) == 0 {
				ret = append(ret, disk.NewGeometry(blocks/(h*s), h, s))
			}
		}
	}
	return ret
}

//
func seekRDB(data []byte) *Block {
	for ix := 0; ix < rdbSearchBlocks; ix++ {
		b := seekBlock(data, ix, rdbIndex)
		if b == nil {
			break
		}
		if b.GetID("id") == "RDSK" && b.ChecksumOK() {
			log.Debugf("found RDB in block %d", ix)
			return b
		}
	}
	return nil
}

//
func scanPartitions(data []byte, rdb *Block) []*Partition {

	var ret []*Partition
	next := rdb.GetLong("partitionList")

	for count := 0; next != blockListEnd && count < maxPartitions; count++ {

		pb := seekBlock(data, int(next), partIndex)
		if pb == nil || pb.GetID("id") != "PART" || !pb.ChecksumOK() {
			log.Warnf("invalid partition block %d", next)
			break
		}

		ret = append(ret, &Partition{
			Name:     pb.GetBString("driveName"),
			LowCyl:   pb.GetInt("lowCyl"),
			HighCyl:  pb.GetInt("highCyl"),
			Heads:    pb.GetInt("surfaces"),
			Sectors:  pb.GetInt("blocksTrack"),
			Reserved: pb.GetInt("reserved"),
			DOSType:  dosTypeName(pb.GetSlice("dosType")),
		})
		next = pb.GetLong("next")
	}

	return ret
}

//
func defaultPartition(img *Image) *Partition {
	g := img.Geometry
	return &Partition{
		Name:     "DH0",
		LowCyl:   0,
		HighCyl:  g.Cylinders - 1,
		Heads:    g.Heads,
		Sectors:  g.Sectors,
		Reserved: 2,
		DOSType:  dosTypeName(img.Data),
	}
}

//
func seekBlock(data []byte, nr int, index map[string][2]int) *Block {
	if nr < 0 || (nr+1)*disk.BlockSize > len(data) {
		return nil
	}
	return NewBlock(index, data[nr*disk.BlockSize:(nr+1)*disk.BlockSize])
}
