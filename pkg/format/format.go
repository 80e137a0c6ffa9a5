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
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xelalexv/diskscope/pkg/disk"
)

// Kind identifies the family of a disk image
type Kind int

const (
	Raw Kind = iota
	FloppyStandard
	FloppyPlain
	FloppyExtended
	HardDisk
)

// maximum accepted image size, for uploads and archive extraction
const MaxImageSize = 1024 * 1024 * 1024

//
func (k Kind) String() string {
	switch k {
	case FloppyStandard:
		return "adf"
	case FloppyPlain:
		return "img"
	case FloppyExtended:
		return "ext"
	case HardDisk:
		return "hdf"
	default:
		return "raw"
	}
}

// Description is the human readable name of the kind
func (k Kind) Description() string {
	switch k {
	case FloppyStandard:
		return "Amiga Floppy Disk"
	case FloppyPlain:
		return "PC Disk"
	case FloppyExtended:
		return "Amiga Floppy Disk (Ext)"
	case HardDisk:
		return "Standard Hard Drive"
	default:
		return "Raw MFM stream"
	}
}

//
func (k Kind) IsFloppy() bool {
	return k == FloppyStandard || k == FloppyPlain || k == FloppyExtended
}

// ForExtension maps a file extension, with or without leading dot, to the
// image kind it usually carries.
func ForExtension(ext string) (Kind, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "adf", "adz":
		return FloppyStandard, true
	case "img", "ima", "st":
		return FloppyPlain, true
	case "ext":
		return FloppyExtended, true
	case "hdf", "hdz":
		return HardDisk, true
	}
	return Raw, false
}

// Reader interface for reading in a disk image
type Reader interface {
	Read(in io.Reader) (*Image, error)
}

// Writer interface for writing out a disk image
type Writer interface {
	Write(img *Image, out io.Writer) error
}

// ReaderWriter interface for reading/writing a disk image
type ReaderWriter interface {
	Reader
	Writer
}

//
func NewFormat(typ string) (ReaderWriter, error) {

	kind, ok := ForExtension(typ)
	if !ok {
		return nil, fmt.Errorf("unsupported image format: %s", typ)
	}

	switch kind {
	case FloppyStandard:
		return NewADF(), nil
	case FloppyPlain:
		return NewIMG(), nil
	case FloppyExtended:
		return NewEXT(), nil
	default:
		return NewHDF(), nil
	}
}

// Sniff determines the kind of an image from its content only. Floppy formats
// are tried first; any block aligned remainder is taken for a hard disk.
func Sniff(data []byte) Kind {
	for _, k := range []Kind{FloppyStandard, FloppyPlain, FloppyExtended, HardDisk} {
		if _, err := Parse(k, data); err == nil {
			return k
		}
	}
	return Raw
}

// Parse parses data as an image of the given kind. It returns an error
// wrapping disk.ErrFormatNotRecognized if data is not of that kind.
func Parse(k Kind, data []byte) (*Image, error) {
	switch k {
	case FloppyStandard:
		return ParseADF(data)
	case FloppyPlain:
		return ParseIMG(data)
	case FloppyExtended:
		return ParseEXT(data)
	case HardDisk:
		return ParseHDF(data)
	}
	return nil, fmt.Errorf("%w: no parser for %s", disk.ErrFormatNotRecognized, k)
}

// readAll reads a complete image, observing MaxImageSize
func readAll(in io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(in, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxImageSize {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes",
			MaxImageSize)
	}
	return buf.Bytes(), nil
}

//
func notRecognized(kind Kind, msg string, params ...interface{}) error {
	return fmt.Errorf("%w as %s: %s", disk.ErrFormatNotRecognized, kind,
		fmt.Sprintf(msg, params...))
}
