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

import "errors"

// ErrFormatNotRecognized is returned by a format probe that does not accept
// its input. It never reaches the user; the next probe is tried instead.
var ErrFormatNotRecognized = errors.New("format not recognized")

// ErrOutOfRange is returned for block or byte addresses beyond the geometry
var ErrOutOfRange = errors.New("address out of range")
