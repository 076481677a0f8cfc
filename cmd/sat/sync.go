// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/refdatasync"
)

var syncDoc = `
Sync copies domains of expertise, or site reference data libraries,
from the source server to the target server. Only objects the target
does not have are created; nothing on the target is changed or removed.

The kind of the given roots is chosen with --kind: "domain" (the
default) or "rdl".
`

func newSyncCommand() cmd.Command {
	return &syncCommand{}
}

type syncCommand struct {
	satCommandBase

	kind  string
	roots []uuid.UUID
}

// Info is part of cmd.Command.
func (c *syncCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "sync",
		Args:    "<root id> [<root id>...]",
		Purpose: "copy reference data from the source to the target server",
		Doc:     syncDoc,
	}
}

// SetFlags is part of cmd.Command.
func (c *syncCommand) SetFlags(f *gnuflag.FlagSet) {
	c.satCommandBase.SetFlags(f)
	f.StringVar(&c.kind, "kind", refdatasync.DomainOfExpertiseRoot.String(), "Kind of the roots (domain|rdl)")
}

// Init is part of cmd.Command.
func (c *syncCommand) Init(args []string) error {
	if _, err := refdatasync.ParseRootKind(c.kind); err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 {
		return errors.New("no roots specified")
	}
	roots, err := parseIDs(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.roots = roots
	return nil
}

// Run is part of cmd.Command.
func (c *syncCommand) Run(ctx *cmd.Context) error {
	if err := c.loadConfig(ctx); err != nil {
		return errors.Trace(err)
	}
	kind, err := refdatasync.ParseRootKind(c.kind)
	if err != nil {
		return errors.Trace(err)
	}
	rt, err := c.start()
	if err != nil {
		return errors.Trace(err)
	}
	defer rt.stop(ctx)

	source, target, err := openBoth(ctx, c.config)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeAll(source, target)

	syncer, err := refdatasync.New(kind, refdatasync.Config{
		Source:      source,
		Target:      target,
		Sink:        rt.hub,
		RetryPolicy: c.config.RetryPolicy(c.clock),
		Collector:   rt.collector,
	})
	if err != nil {
		return errors.Trace(err)
	}
	result, err := syncer.Sync(ctx, c.roots)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(ctx.Stdout, "%d created, %d already present, %d skipped\n",
		result.Created, result.Present, result.Skipped)
	return nil
}
