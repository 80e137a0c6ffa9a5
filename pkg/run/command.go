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
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// UnderTest makes Die and DieOnError panic instead of exiting the process
var UnderTest bool

// ConfigFileEnv is the environment variable that may name a config file
const ConfigFileEnv = "DISKSCOPE_CONFIG"

//
const notesHeader = "\nNotes:\n\n"

/*
	LoadConfigFile reads settings from a YAML, JSON, or TOML file. Keys are the
	long flag names of the settings. Values from the file are used for settings
	given neither on the command line, nor via environment variable.
*/
func LoadConfigFile(file string) error {
	if file == "" {
		return nil
	}
	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read config file %s: %v", file, err)
	}
	log.WithField("file", viper.ConfigFileUsed()).Debug("config file loaded")
	return nil
}

// DieOnError prints e and exits if e is not nil
func DieOnError(e error) {
	if e != nil {
		Die("%v", e)
	}
}

// Die prints the formatted message and exits. A trailing newline in msg is
// not doubled.
func Die(msg string, params ...interface{}) {
	text := strings.TrimSuffix(fmt.Sprintf(msg, params...), "\n")
	fmt.Println(text)
	if UnderTest {
		panic(text)
	}
	os.Exit(1)
}

/*
	NewCommand wraps a new Cobra command. exec runs when Execute is called, and
	is expected to call ParseSettings before using any of the settings.
*/
func NewCommand(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Command {

	c := &Command{
		cmd: &cobra.Command{
			Use:                   use,
			Short:                 short,
			Long:                  long,
			SilenceErrors:         true,
			SilenceUsage:          true,
			DisableFlagsInUseLine: true,
			RunE: func(*cobra.Command, []string) error {
				return exec()
			},
		},
		prologue: helpPrologue,
		epilogue: helpEpilogue,
	}

	c.cobraHelp = c.cmd.HelpFunc()
	c.cmd.SetHelpFunc(c.help)
	c.cmd.Flags().SetNormalizeFunc(normalizeFlagName)
	return c
}

// normalizeFlagName accepts underscores in place of dashes in flag names
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

/*
	Command binds settings of a CLI action to flags, environment variables, and
	the optional config file. Precedence is flag, then environment, then config
	file, then default. Cobra and Viper do most of the work, but values taken
	from an environment variable or the config file never reach the variable a
	flag is bound to, so ParseSettings copies them over.
*/
type Command struct {
	//
	cmd      *cobra.Command
	settings []*setting
	//
	Args []string
	//
	prologue  string
	epilogue  string
	cobraHelp func(*cobra.Command, []string)
}

//
func (c *Command) help(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if c.prologue != "" {
		fmt.Fprintln(out, c.prologue)
	}
	if c.cobraHelp != nil {
		c.cobraHelp(cmd, args)
	}
	if c.epilogue != "" {
		fmt.Fprint(out, notesHeader)
		fmt.Fprintln(out, c.epilogue)
	} else {
		fmt.Fprintln(out)
	}
}

// Execute runs the command. Non-empty args replace os.Args.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 {
		c.cmd.SetArgs(args)
	}
	return c.cmd.Execute()
}

/*
	AddSetting binds target, a *string, *int, or *bool, to the long command
	line flag, its short form, and env, if not empty. def is the default value
	and needs to be of the target's element type, or nil for the zero value.
	Required settings cannot have a default.
*/
func (c *Command) AddSetting(target interface{}, flag, short, env string,
	def interface{}, help string, required bool) {

	if required && def != nil {
		Die("required setting '%s' does not take a default value", flag)
	}
	if env != "" {
		help = fmt.Sprintf("%s (%s)", help, env)
	}

	flags := c.cmd.Flags()

	switch t := target.(type) {
	case *string:
		flags.StringVarP(t, flag, short, defaultFor[string](flag, def), help)
	case *int:
		flags.IntVarP(t, flag, short, defaultFor[int](flag, def), help)
	case *bool:
		flags.BoolVarP(t, flag, short, defaultFor[bool](flag, def), help)
	default:
		Die("setting '%s' has unsupported type %T", flag, target)
	}

	DieOnError(viper.BindPFlag(flag, flags.Lookup(flag)))
	if env != "" {
		DieOnError(viper.BindEnv(flag, env))
	}

	log.WithFields(log.Fields{"flag": flag, "env": env}).Trace("setting added")

	c.settings = append(c.settings,
		&setting{flag: flag, env: env, required: required, target: target})
}

//
func defaultFor[T any](flag string, def interface{}) T {
	var ret T
	if def == nil {
		return ret
	}
	v, ok := def.(T)
	if !ok {
		Die("default value for setting '%s' is %T, not %T", flag, def, ret)
	}
	return v
}

/*
	ParseSettings loads the config file, if the command has a config setting
	and one was named, and then fills all bound variables with their effective
	values. Missing required settings are fatal.
*/
func (c *Command) ParseSettings() {
	for _, s := range c.settings {
		if s.flag == "config" {
			DieOnError(LoadConfigFile(viper.GetString("config")))
			break
		}
	}
	for _, s := range c.settings {
		DieOnError(s.resolve())
	}
	c.Args = c.cmd.Flags().Args()
}

//
type setting struct {
	flag     string
	env      string
	required bool
	target   interface{}
}

// resolve copies the value Viper sees for this setting into the target, if it
// may have come from somewhere else than the command line, and checks that
// required settings are present.
func (s *setting) resolve() error {

	external := s.env != "" || viper.InConfig(s.flag)
	var value interface{}
	missing := false

	switch t := s.target.(type) {
	case *string:
		if external {
			*t = viper.GetString(s.flag)
		}
		value, missing = *t, *t == ""
	case *int:
		if external {
			*t = viper.GetInt(s.flag)
		}
		value, missing = *t, *t == 0
	case *bool:
		if external {
			*t = viper.GetBool(s.flag)
		}
		value, missing = *t, !*t
	}

	log.WithFields(log.Fields{
		"flag":  s.flag,
		"value": value,
		"set":   viper.IsSet(s.flag),
	}).Trace("setting resolved")

	if s.required && missing {
		msg := fmt.Sprintf("you need to specify the --%s command line flag",
			s.flag)
		if s.env != "" {
			msg = fmt.Sprintf("%s or the %s environment variable", msg, s.env)
		}
		return errors.New(msg)
	}
	return nil
}
