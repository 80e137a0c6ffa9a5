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

package main

import (
	"fmt"
	"os"

	"github.com/xelalexv/diskscope/pkg/run"
)

//
var DiskScopeVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: diskscope {serve|insert|eject|ls|info|dump|cursor|mfm|sync|scan|version} ...

run 'diskscope {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nDiskScope %s\n\n", DiskScopeVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "insert":
		run.DieOnError(run.NewInsert().Execute(args))

	case "eject":
		run.DieOnError(run.NewEject().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "info":
		run.DieOnError(run.NewInfo().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "cursor":
		run.DieOnError(run.NewCursor().Execute(args))

	case "mfm":
		run.DieOnError(run.NewMFM().Execute(args))

	case "sync":
		run.DieOnError(run.NewSync().Execute(args))

	case "scan":
		run.DieOnError(run.NewScan().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
