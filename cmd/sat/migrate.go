// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/migration"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/repair"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/validation"
)

var migrateDoc = `
Migrate reads every iteration of the given engineering models from the
source server, checks the data it read, packs it into a sealed archive
under the base directory and uploads that archive to the target server.

Models are given as engineering model setup identities. Without any,
the models listed in the configuration file are migrated.

With --repair, empty required fields are filled with placeholder values
before packing. Violations that remain are listed. The migration only
continues to packing once confirmed, or straight away with --yes.
`

func newMigrateCommand() cmd.Command {
	return &migrateCommand{}
}

type migrateCommand struct {
	satCommandBase

	models []uuid.UUID
	repair bool
	yes    bool
}

// Info is part of cmd.Command.
func (c *migrateCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "migrate",
		Args:    "[<model setup id>...]",
		Purpose: "migrate engineering models to the target server",
		Doc:     migrateDoc,
	}
}

// SetFlags is part of cmd.Command.
func (c *migrateCommand) SetFlags(f *gnuflag.FlagSet) {
	c.satCommandBase.SetFlags(f)
	f.BoolVar(&c.repair, "repair", false, "Repair the imported data before packing")
	f.BoolVar(&c.yes, "y", false, "Continue to packing without asking")
	f.BoolVar(&c.yes, "yes", false, "")
}

// Init is part of cmd.Command.
func (c *migrateCommand) Init(args []string) error {
	models, err := parseIDs(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.models = models
	return nil
}

// Run is part of cmd.Command.
func (c *migrateCommand) Run(ctx *cmd.Context) error {
	if err := c.loadConfig(ctx); err != nil {
		return errors.Trace(err)
	}
	models := c.models
	if len(models) == 0 {
		models, _ = c.config.ModelIDs()
	}
	if len(models) == 0 {
		return errors.New("no models to migrate")
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

	orchestrator, err := c.newOrchestrator(ctx, rt)
	if err != nil {
		return errors.Trace(err)
	}
	err = orchestrator.Migrate(ctx, migration.Request{
		Source:   source,
		Target:   target,
		Models:   models,
		SideFile: c.config.MigrationFile,
	})
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(ctx.Stdout, "Migrated %d model(s) to %s\n", len(models), c.config.Target.URI)
	return nil
}

func (c *migrateCommand) newOrchestrator(ctx *cmd.Context, rt *runtime) (*migration.Orchestrator, error) {
	importer, err := migration.NewImporter(migration.ImportConfig{
		Sink:      rt.hub,
		Clock:     c.clock,
		Collector: rt.collector,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	packager, err := migration.NewPackager(migration.PackConfig{
		Sink:    rt.hub,
		BaseDir: c.config.BaseDir,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	exporter, err := migration.NewExporter(migration.ExportConfig{
		Sink:      rt.hub,
		Collector: rt.collector,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	prompt := migration.RepairPrompt{Confirm: c.confirmer(ctx)}
	if c.repair {
		prompt.Engine, err = repair.New(repair.Config{Sink: rt.hub, Collector: rt.collector})
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	return migration.NewOrchestrator(migration.OrchestratorConfig{
		Importer: importer,
		Packager: packager,
		Exporter: exporter,
		Decider:  prompt,
		Sink:     rt.hub,
		Clock:    c.clock,
	})
}

// confirmer returns the function deciding whether to migrate despite
// the residual violations.
func (c *migrateCommand) confirmer(ctx *cmd.Context) func([]validation.Violation) (bool, error) {
	return func(residual []validation.Violation) (bool, error) {
		question := "Continue with the migration?"
		if len(residual) > 0 {
			if err := formatViolations(ctx.Stderr, violationRows(residual)); err != nil {
				return false, errors.Trace(err)
			}
			question = fmt.Sprintf("Continue with %d violation(s)?", len(residual))
		}
		if c.yes {
			if len(residual) > 0 {
				ctx.Infof("Continuing with %d violation(s)", len(residual))
			}
			return true, nil
		}
		return confirm(ctx.Stdin, ctx.Stderr, question)
	}
}

// confirm asks question on w and reads the answer from r. Anything but
// yes counts as a refusal.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s (y/N): ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Trace(err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, errors.NotValidf("identity %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
