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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorRoundTrip(t *testing.T) {

	geometries := []Geometry{
		NewFloppyGeometry(80, 11),
		NewFloppyGeometry(80, 22),
		NewFloppyGeometry(80, 9),
		NewFloppyGeometry(84, 11),
	}

	for _, g := range geometries {
		t.Run(g.String(), func(t *testing.T) {
			for cyl := 0; cyl < g.Cylinders; cyl++ {
				for head := 0; head < g.Heads; head++ {
					for sec := 0; sec < g.Sectors; sec++ {

						c := NewCursor(g)
						c.SetCylinder(cyl)
						c.SetHead(head)
						c.SetSector(sec)

						want := (cyl*g.Heads+head)*g.Sectors + sec
						if !assert.Equal(t, want, c.Block()) {
							return
						}

						b := NewCursor(g)
						b.SetBlock(want)
						assert.Equal(t, cyl, b.Cylinder())
						assert.Equal(t, head, b.Head())
						assert.Equal(t, sec, b.Sector())
						assert.Equal(t, cyl*2+head, b.Track())
					}
				}
			}
		})
	}
}

func TestCursorClamping(t *testing.T) {

	g := NewFloppyGeometry(80, 11)

	tests := []struct {
		name  string
		set   func(c *Cursor, v int) bool
		get   func(c *Cursor) int
		upper int
	}{
		{"cylinder", (*Cursor).SetCylinder, (*Cursor).Cylinder, 79},
		{"head", (*Cursor).SetHead, (*Cursor).Head, 1},
		{"track", (*Cursor).SetTrack, (*Cursor).Track, 159},
		{"sector", (*Cursor).SetSector, (*Cursor).Sector, 10},
		{"block", (*Cursor).SetBlock, (*Cursor).Block, 1759},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCursor(g)
			assert.True(t, tc.set(c, 1_000_000))
			assert.Equal(t, tc.upper, tc.get(c))
			assert.True(t, tc.set(c, -5))
			assert.Equal(t, 0, tc.get(c))
			assertConsistent(t, c)
		})
	}
}

func TestCursorZeroGeometry(t *testing.T) {

	c := NewCursor(Geometry{})

	assert.False(t, c.SetCylinder(10))
	assert.False(t, c.SetHead(1))
	assert.False(t, c.SetTrack(5))
	assert.False(t, c.SetSector(3))
	assert.False(t, c.SetBlock(100))
	assert.Equal(t, Position{}, c.Position())
}

func TestCursorNoOp(t *testing.T) {

	c := NewCursor(NewFloppyGeometry(80, 11))
	assert.True(t, c.SetTrack(7))
	assert.False(t, c.SetTrack(7))
	assert.False(t, c.SetCylinder(3))
	assert.False(t, c.SetHead(1))
	assert.Equal(t, 7*11, c.Block())
}

func TestCursorDependents(t *testing.T) {

	c := NewCursor(NewFloppyGeometry(80, 11))

	c.SetSector(4)
	assert.Equal(t, 4, c.Block())

	c.SetTrack(9)
	assert.Equal(t, Position{Cylinder: 4, Head: 1, Track: 9, Sector: 4,
		Block: 9*11 + 4}, c.Position())

	c.SetCylinder(10)
	assert.Equal(t, 21, c.Track())
	assert.Equal(t, 21*11+4, c.Block())

	c.SetHead(0)
	assert.Equal(t, 20, c.Track())

	c.SetBlock(1000)
	assert.Equal(t, Position{Cylinder: 45, Head: 0, Track: 90, Sector: 10,
		Block: 1000}, c.Position())
	assertConsistent(t, c)
}

func TestCursorFixedHeadCount(t *testing.T) {

	// hard disk geometries still convert tracks using two heads
	c := NewCursor(NewGeometry(100, 4, 32))
	c.SetTrack(7)
	assert.Equal(t, 3, c.Cylinder())
	assert.Equal(t, 1, c.Head())

	c.SetHead(3)
	assert.Equal(t, 3*2+3, c.Track())
}

func assertConsistent(t *testing.T, c *Cursor) {
	t.Helper()
	assert.Equal(t, c.Cylinder()*2+c.Head(), c.Track())
	assert.Equal(t, c.Track()*c.Geometry().Sectors+c.Sector(), c.Block())
}
