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

package run

import (
	"fmt"
	"net/url"
)

//
func NewList() *List {

	l := &List{}
	l.Runner = *NewRunner(
		`ls [-r|--repo] [-f|--folder {folder}] [-a|--address {address}]
      [-p|--port {port}]`,
		"get drive list or repository content from daemon",
		`
Use the ls command to get a drive list from the daemon, or with --repo, to list
the disk images in the daemon's repository.`,
		"", runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddSetting(&l.Repo, "repo", "r", "", false,
		"list images in repository instead of drives", false)
	l.AddSetting(&l.Folder, "folder", "f", "", "",
		"folder within repository", false)

	return l
}

//
type List struct {
	//
	Runner
	//
	Repo   bool
	Folder string
}

//
func (l *List) Run() error {

	l.ParseSettings()

	path := "/list"
	if l.Repo {
		path = fmt.Sprintf("/repo?dir=%s", url.QueryEscape(l.Folder))
	}

	if err := l.apiPrint("GET", path, nil); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
