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
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func underTest(t *testing.T) {
	UnderTest = true
	t.Cleanup(func() { UnderTest = false })
}

func TestDie(t *testing.T) {

	underTest(t)

	assert.PanicsWithValue(t, "unknown action: foo", func() {
		Die("unknown action: %s\n", "foo")
	})
	assert.PanicsWithValue(t, "copied 100% of disk", func() {
		Die("%s", "copied 100% of disk")
	})
	assert.PanicsWithValue(t, "no drive", func() {
		Die("no drive")
	})

	assert.NotPanics(t, func() { DieOnError(nil) })
	assert.PanicsWithValue(t, "drive busy: 50% done", func() {
		DieOnError(errors.New("drive busy: 50% done"))
	})
}

func TestCommandSettings(t *testing.T) {

	var name, drive string
	var count int
	var force bool

	var c *Command
	c = NewCommand("test", "", "", "", "", func() error {
		c.ParseSettings()
		return nil
	})
	c.AddSetting(&name, "test-name", "n", "DISKSCOPE_TEST_NAME", "none",
		"name", false)
	c.AddSetting(&drive, "test-drive", "d", "", "DF0", "drive", false)
	c.AddSetting(&count, "test-count", "c", "", 3, "count", false)
	c.AddSetting(&force, "test-force", "", "", nil, "force", false)

	t.Setenv("DISKSCOPE_TEST_NAME", "from-env")
	require.NoError(t, c.Execute(
		[]string{"--test_count", "7", "--test-force", "image.adf"}))

	assert.Equal(t, "from-env", name)
	assert.Equal(t, "DF0", drive)
	assert.Equal(t, 7, count)
	assert.True(t, force)
	assert.Equal(t, []string{"image.adf"}, c.Args)
}

func TestCommandRequiredSetting(t *testing.T) {

	underTest(t)

	var input string
	var c *Command
	c = NewCommand("test", "", "", "", "", func() error {
		c.ParseSettings()
		return nil
	})
	c.AddSetting(&input, "test-input", "i", "", nil, "input", true)

	assert.PanicsWithValue(t,
		"you need to specify the --test-input command line flag", func() {
			_ = c.Execute([]string{"image.adf"})
		})
}

func TestCommandInvalidSettings(t *testing.T) {

	underTest(t)
	c := NewCommand("test", "", "", "", "", func() error { return nil })

	var count int
	assert.PanicsWithValue(t,
		"default value for setting 'test-three' is string, not int", func() {
			c.AddSetting(&count, "test-three", "", "", "three", "count", false)
		})

	var ratio float64
	assert.PanicsWithValue(t,
		"setting 'test-ratio' has unsupported type *float64", func() {
			c.AddSetting(&ratio, "test-ratio", "", "", nil, "ratio", false)
		})

	var input string
	assert.PanicsWithValue(t,
		"required setting 'test-req' does not take a default value", func() {
			c.AddSetting(&input, "test-req", "", "", "x", "input", true)
		})
}

func TestSetupLogging(t *testing.T) {

	level := log.GetLevel()
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetFormatter(&log.TextFormatter{})
		log.SetReportCaller(false)
	})

	env := map[string]string{"LOG_FORMAT": "JSON", "LOG_LEVEL": "debug"}
	require.NoError(t, setupLogging(func(k string) string { return env[k] }))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	env = map[string]string{"LOG_LEVEL": "loud", "LOG_METHODS": "1"}
	assert.Error(t, setupLogging(func(k string) string { return env[k] }))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
	assert.True(t, log.StandardLogger().ReportCaller)
}
