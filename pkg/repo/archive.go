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

package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode/v2"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/diskscope/pkg/format"
)

// magic bytes of supported archives
var (
	magicZIP    = []byte{0x50, 0x4b, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4b, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}
	magicGzip   = []byte{0x1f, 0x8b}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// ErrNoImage is returned when an archive contains no disk image
var ErrNoImage = errors.New("no disk image found in archive")

// ErrTooLarge is returned when extracted content exceeds the size limit
var ErrTooLarge = errors.New("image exceeds maximum size limit")

// size limit for extracted images
var sizeLimit int64 = format.MaxImageSize

// Archive identifies the kind of container a disk image is delivered in
type Archive int

const (
	None Archive = iota
	ZIP
	SevenZip
	Gzip
	RAR
)

//
func (a Archive) String() string {
	switch a {
	case ZIP:
		return "zip"
	case SevenZip:
		return "7z"
	case Gzip:
		return "gzip"
	case RAR:
		return "rar"
	default:
		return "none"
	}
}

// DetectArchive determines the archive kind from the leading bytes of data
func DetectArchive(data []byte) Archive {
	switch {
	case bytes.HasPrefix(data, magicZIP), bytes.HasPrefix(data, magicZIPEnd):
		return ZIP
	case bytes.HasPrefix(data, magicRAR):
		return RAR
	case bytes.HasPrefix(data, magic7z):
		return SevenZip
	case bytes.HasPrefix(data, magicGzip):
		return Gzip
	}
	return None
}

/*
	Extract returns the disk image contained in data, together with the image's
	name. If data is not an archive, it is returned as is. From zip, 7z, and
	RAR archives, the first file with a known disk image extension is taken.
	Compressed images such as .adz inside of archives are decompressed as well.
*/
func Extract(name string, data []byte) ([]byte, string, error) {

	a := DetectArchive(data)
	if a == None {
		return data, name, nil
	}

	log.WithFields(log.Fields{"name": name, "archive": a}).Debug("extracting")

	var img []byte
	var err error

	switch a {
	case ZIP:
		img, name, err = extractFromZIP(data)
	case SevenZip:
		img, name, err = extractFrom7z(data)
	case Gzip:
		img, name, err = extractFromGzip(name, data)
	case RAR:
		img, name, err = extractFromRAR(data)
	}

	if err != nil {
		return nil, "", err
	}

	// .adz in zip
	if DetectArchive(img) == Gzip {
		return extractFromGzip(name, img)
	}
	return img, name, nil
}

// IsImageFile checks whether name has a disk image extension
func IsImageFile(name string) bool {
	_, ok := format.ForExtension(filepath.Ext(name))
	return ok
}

//
func extractFromZIP(data []byte) ([]byte, string, error) {

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !IsImageFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
		}
		defer rc.Close()
		img, err := limitedRead(rc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return img, filepath.Base(f.Name), nil
	}

	return nil, "", ErrNoImage
}

//
func extractFrom7z(data []byte) ([]byte, string, error) {

	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !IsImageFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s in 7z: %w", f.Name, err)
		}
		defer rc.Close()
		img, err := limitedRead(rc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return img, filepath.Base(f.Name), nil
	}

	return nil, "", ErrNoImage
}

// extractFromGzip decompresses a gzip stream. The image name is taken from
// the gzip header if present, otherwise derived from the compressed file's
// name.
func extractFromGzip(name string, data []byte) ([]byte, string, error) {

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer r.Close()

	img, err := limitedRead(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress %s: %w", name, err)
	}

	if r.Name != "" {
		return img, filepath.Base(r.Name), nil
	}
	return img, uncompressedName(name), nil
}

//
func extractFromRAR(data []byte) ([]byte, string, error) {

	r, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !IsImageFile(header.Name) {
			continue
		}
		img, err := limitedRead(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return img, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoImage
}

// uncompressedName maps the name of a compressed image to the name of the
// image inside, e.g. game.adz to game.adf, and disk.img.gz to disk.img
func uncompressedName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	switch strings.ToLower(ext) {
	case ".adz":
		return base + ".adf"
	case ".hdz":
		return base + ".hdf"
	case ".gz":
		return base
	}
	return name
}

// limitedRead reads r up to sizeLimit bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, sizeLimit+1))
	if err != nil {
		return nil, err
	}
	if n > sizeLimit {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}
