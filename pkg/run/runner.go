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
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xelalexv/diskscope/pkg/control"
	"github.com/xelalexv/diskscope/pkg/daemon"
	"github.com/xelalexv/diskscope/pkg/decoder"
	"github.com/xelalexv/diskscope/pkg/drive"
	"github.com/xelalexv/diskscope/pkg/format"
	"github.com/xelalexv/diskscope/pkg/repo"
)

//
const runnerHelpPrologue = ""
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.

- Settings can also be taken from a YAML, JSON, or TOML config file, with the
  long flag names as keys. Config file values have the lowest precedence.

- Drives are given by slot number (1-8), or by name: DF0 through DF3 for the
  floppy drives, HD0 through HD3 for the hard drives.
`

/*
	NewRunner creates a base runner for commands to use. The parameters are
	passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Address    string
	Port       int
	ConfigFile string
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather has
	// to be called from the top level command type. Otherwise, we will confuse
	// Cobra/Viper and the settings will not be filled with their values.
	r.AddSetting(&r.Address, "address", "a", "DISKSCOPE_ADDRESS", "127.0.0.1",
		"address of daemon's API server", false)
	r.AddSetting(&r.Port, "port", "p", "DISKSCOPE_PORT", control.DefaultPort,
		"port of daemon's API server", false)
	r.AddSetting(&r.ConfigFile, "config", "", ConfigFileEnv, nil,
		"config file", false)
}

// apiCall sends a request to the daemon. Replies with a status other than
// 2xx are turned into an error carrying the reply's message.
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	client := &http.Client{}
	req, err := http.NewRequest(method,
		fmt.Sprintf("http://%s:%d%s", r.Address, r.Port, path), body)
	if err != nil {
		return nil, err
	}

	if json {
		req.Header.Add("Content-Type", "application/json")
		req.Header.Add("Accept", "application/json")
	} else {
		req.Header.Add("Content-Type", "text/plain")
		req.Header.Add("Accept", "text/plain")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode),
			strings.TrimSpace(string(msg)))
	}

	return resp.Body, nil
}

// apiPrint sends a request to the daemon and prints the reply
func (r *Runner) apiPrint(method, path string, body io.Reader) error {

	resp, err := r.apiCall(method, path, false, body)
	if err != nil {
		return err
	}
	defer resp.Close()

	_, err = io.Copy(os.Stdout, resp)
	return err
}

// validateDrive checks a drive given on the command line, and returns it in
// the form used in API paths
func validateDrive(d string) (string, error) {

	if ix, err := strconv.Atoi(d); err == nil {
		if ix < 1 || ix > daemon.DriveCount {
			return "", fmt.Errorf(
				"invalid drive number: %d; valid numbers are 1 through %d",
				ix, daemon.DriveCount)
		}
		return d, nil
	}

	name := strings.ToUpper(d)
	for ix := 0; ix < daemon.FloppyCount; ix++ {
		if name == fmt.Sprintf("DF%d", ix) {
			return name, nil
		}
	}
	for ix := 0; ix < daemon.HardDriveCount; ix++ {
		if name == fmt.Sprintf("HD%d", ix) {
			return name, nil
		}
	}

	return "", fmt.Errorf("invalid drive: %s", d)
}

//
func getExtension(file string) string {
	return strings.TrimPrefix(filepath.Ext(file), ".")
}

/*
	openImage reads a disk image file, extracting it if it is archived, and
	places it into a virtual drive. Hard disk images go into a hard drive,
	everything else into a floppy drive. The returned decoder has probed the
	disk.
*/
func openImage(file string) (*decoder.Decoder, error) {

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	data, name, err := repo.Extract(filepath.Base(file), data)
	if err != nil {
		return nil, err
	}

	kind, _ := format.ForExtension(getExtension(name))

	if kind == format.HardDisk {
		d := drive.NewHardDrive("HD0")
		if err := d.Insert(name, data, true); err != nil {
			return nil, err
		}
		return decoder.Probe(d), nil
	}

	d := drive.NewFloppyDrive("DF0")
	if err := d.Insert(name, data, kind, true); err != nil {
		return nil, err
	}
	return decoder.Probe(d), nil
}
