// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/juju/cmd/v4"

	satcmd "github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/cmd"
)

var satDoc = `
sat migrates engineering models between repository servers, validates
and repairs the structure of the data it reads, and synchronizes
reference data from one server to another.

Servers and options are read from the file named by --config. The
passwords may instead be given in the SAT_SOURCE_PASSWORD and
SAT_TARGET_PASSWORD environment variables.
`

// NewSatCommand returns the sat super command with every subcommand
// registered.
func NewSatCommand() *cmd.SuperCommand {
	sat := satcmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "sat",
		Purpose: "administer engineering data repository servers",
		Doc:     satDoc,
	})
	sat.Register(newMigrateCommand())
	sat.Register(newValidateCommand())
	sat.Register(newSyncCommand())
	sat.Register(newStressCommand())
	sat.Register(newInspectArchiveCommand())
	return sat
}

// Main runs the sat command with args and returns the exit code.
func Main(ctx *cmd.Context, args []string) int {
	return cmd.Main(NewSatCommand(), ctx, args)
}

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx.Context = signalCtx
	code := Main(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
