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
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// environment variables for configuring logging
const (
	envLogFormat      = "LOG_FORMAT"
	envLogForceColors = "LOG_FORCE_COLORS"
	envLogMethods     = "LOG_METHODS"
	envLogLevel       = "LOG_LEVEL"
)

//
func init() {
	if err := setupLogging(os.Getenv); err != nil {
		log.Error(err)
	}
}

/*
	setupLogging configures the standard logrus logger from the environment:

		LOG_FORMAT		`json` for JSON logging
		LOG_FORCE_COLORS	non-empty for colorized text logging
		LOG_METHODS		non-empty for including the calling method
		LOG_LEVEL		`panic`, `fatal`, `error`, `warn`, `info`, `debug`, `trace`

	An invalid level leaves the level unchanged and is returned as error.
*/
func setupLogging(getenv func(string) string) error {

	log.SetOutput(os.Stdout)

	switch {
	case strings.EqualFold(getenv(envLogFormat), "json"):
		log.SetFormatter(&log.JSONFormatter{})
	case getenv(envLogForceColors) != "":
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}

	log.SetReportCaller(getenv(envLogMethods) != "")

	level := getenv(envLogLevel)
	if level == "" {
		return nil
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: '%s'; valid levels are: panic, "+
			"fatal, error, warn, info, debug, trace", level)
	}
	log.SetLevel(l)
	return nil
}
