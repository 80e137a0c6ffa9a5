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

package disk

/*
	Cursor is the current selection of an inspection session. Its five fields
	are kept consistent with each other at all times:

		track = cylinder * 2 + head
		block = track * sectors + sector

	The head count used in these relations is fixed at 2, regardless of the
	geometry's head count. Each setter clamps its argument to the valid range
	of the field first, then recomputes the dependent fields. Setting a field
	to its current value changes nothing.
*/
type Cursor struct {
	geo      Geometry
	cylinder int
	head     int
	track    int
	sector   int
	block    int
}

// Position is a snapshot of a cursor's fields
type Position struct {
	Cylinder int `json:"cylinder"`
	Head     int `json:"head"`
	Track    int `json:"track"`
	Sector   int `json:"sector"`
	Block    int `json:"block"`
}

// NewCursor creates a cursor positioned at block 0 of geometry g
func NewCursor(g Geometry) *Cursor {
	return &Cursor{geo: g}
}

//
func (c *Cursor) Geometry() Geometry { return c.geo }

//
func (c *Cursor) Cylinder() int { return c.cylinder }

//
func (c *Cursor) Head() int { return c.head }

//
func (c *Cursor) Track() int { return c.track }

//
func (c *Cursor) Sector() int { return c.sector }

//
func (c *Cursor) Block() int { return c.block }

//
func (c *Cursor) Position() Position {
	return Position{
		Cylinder: c.cylinder,
		Head:     c.head,
		Track:    c.track,
		Sector:   c.sector,
		Block:    c.block,
	}
}

// SetCylinder returns true if the cursor moved
func (c *Cursor) SetCylinder(v int) bool {
	v = clamp(v, c.geo.Cylinders)
	if v == c.cylinder {
		return false
	}
	c.cylinder = v
	c.track = c.cylinder*FloppyHeads + c.head
	c.block = c.track*c.geo.Sectors + c.sector
	return true
}

//
func (c *Cursor) SetHead(v int) bool {
	v = clamp(v, c.geo.Heads)
	if v == c.head {
		return false
	}
	c.head = v
	c.track = c.cylinder*FloppyHeads + c.head
	c.block = c.track*c.geo.Sectors + c.sector
	return true
}

//
func (c *Cursor) SetTrack(v int) bool {
	v = clamp(v, c.geo.Tracks())
	if v == c.track {
		return false
	}
	c.track = v
	c.cylinder = c.track / FloppyHeads
	c.head = c.track % FloppyHeads
	c.block = c.track*c.geo.Sectors + c.sector
	return true
}

//
func (c *Cursor) SetSector(v int) bool {
	v = clamp(v, c.geo.Sectors)
	if v == c.sector {
		return false
	}
	c.sector = v
	c.block = c.track*c.geo.Sectors + c.sector
	return true
}

//
func (c *Cursor) SetBlock(v int) bool {
	v = clamp(v, c.geo.Blocks)
	if v == c.block {
		return false
	}
	c.block = v
	if c.geo.Sectors > 0 {
		c.track = c.block / c.geo.Sectors
		c.sector = c.block % c.geo.Sectors
	}
	c.cylinder = c.track / FloppyHeads
	c.head = c.track % FloppyHeads
	return true
}

// clamp limits v to [0, count-1], or to 0 if count is 0
func clamp(v, count int) int {
	upper := count - 1
	if upper < 0 {
		upper = 0
	}
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}
