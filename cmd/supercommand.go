// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cmd holds the sat-specific parts of the command line on top of
// github.com/juju/cmd/v4.
package cmd

import (
	"os"
	"runtime"

	"github.com/juju/cmd/v4"
	"github.com/juju/loggo/v2"
)

// LoggingConfigEnvKey holds the default logging configuration.
const LoggingConfigEnvKey = "SAT_LOGGING_CONFIG"

// Version is reported by --version and logged whenever a command runs.
const Version = "1.0.0"

var logger = loggo.GetLogger("sat.cmd")

// NewSuperCommand is like cmd.NewSuperCommand but
// it adds sat-specific functionality:
// - The default logging configuration is taken from the environment;
// - The version is configured to the current sat version;
// - The command emits a log message when a command runs.
func NewSuperCommand(p cmd.SuperCommandParams) *cmd.SuperCommand {
	p.Log = &cmd.Log{
		DefaultConfig: os.Getenv(LoggingConfigEnvKey),
	}
	if p.Version == "" {
		p.Version = Version
	}
	p.NotifyRun = runNotifier(p.Version)
	return cmd.NewSuperCommand(p)
}

func runNotifier(version string) func(string) {
	return func(name string) {
		logger.Infof("running %s [%s %s %s]", name, version, runtime.Compiler, runtime.Version())
	}
}
