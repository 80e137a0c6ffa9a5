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
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

//
const PrefixRepoRef = "repo://"

// Entry is a disk image found in a repository
type Entry struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Repository is a folder of disk images, addressed by repo:// references
type Repository struct {
	fs afero.Fs
}

// NewRepository creates a repository rooted at folder root of the local file
// system. If root is empty, the repository is disabled and nil is returned.
func NewRepository(root string) *Repository {
	if root == "" {
		return nil
	}
	return NewRepositoryFs(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewRepositoryFs creates a repository on top of fs
func NewRepositoryFs(fs afero.Fs) *Repository {
	return &Repository{fs: fs}
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}

// Resolve opens the file a repository reference points to
func (r *Repository) Resolve(ref string) (io.ReadCloser, error) {

	log.WithField("reference", ref).Debug("resolving ref")

	if r == nil {
		return nil, fmt.Errorf("image repository is not enabled")
	}
	if !IsReference(ref) {
		return nil, fmt.Errorf("not a repository reference: %s", ref)
	}

	p, err := refPath(ref)
	if err != nil {
		return nil, err
	}
	return r.fs.Open(p)
}

// Load reads the image a reference points to, and extracts it if it is
// archived. It returns the image and its name.
func (r *Repository) Load(ref string) ([]byte, string, error) {

	f, err := r.Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := limitedRead(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return Extract(path.Base(ref[len(PrefixRepoRef):]), data)
}

// List returns the disk images and archives in folder dir of the repository,
// sorted by name.
func (r *Repository) List(dir string) ([]Entry, error) {

	if r == nil {
		return nil, fmt.Errorf("image repository is not enabled")
	}

	p, err := refPath(PrefixRepoRef + dir)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(r.fs, p)
	if err != nil {
		return nil, err
	}

	ret := []Entry{}
	for _, fi := range infos {
		if fi.IsDir() || !(IsImageFile(fi.Name()) || isArchiveFile(fi.Name())) {
			continue
		}
		ret = append(ret, Entry{
			Ref:  PrefixRepoRef + strings.TrimPrefix(path.Join(p, fi.Name()), "/"),
			Name: fi.Name(),
			Size: fi.Size(),
		})
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

// refPath turns a reference into a path within the repository. References
// must not leave the repository.
func refPath(ref string) (string, error) {
	p := path.Clean("/" + ref[len(PrefixRepoRef):])
	for _, e := range strings.Split(ref[len(PrefixRepoRef):], "/") {
		if e == ".." {
			return "", fmt.Errorf("invalid reference: %s", ref)
		}
	}
	return p, nil
}

//
func isArchiveFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip", ".7z", ".gz", ".rar":
		return true
	}
	return false
}
