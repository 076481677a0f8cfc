// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/gosuri/uitable"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/migration"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/repair"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/validation"
)

var validateDoc = `
Validate reads the site directory of the source server, and every
iteration of the given engineering models, then lists the objects whose
required fields or references are missing.

With --repair the violations that can be fixed are fixed in the data
read, and only the remaining ones are listed. Nothing is written back
to the server.
`

func newValidateCommand() cmd.Command {
	return &validateCommand{}
}

type validateCommand struct {
	satCommandBase
	out cmd.Output

	models []uuid.UUID
	repair bool
}

// Info is part of cmd.Command.
func (c *validateCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "validate",
		Args:    "[<model setup id>...]",
		Purpose: "list structural violations in the source data",
		Doc:     validateDoc,
	}
}

// SetFlags is part of cmd.Command.
func (c *validateCommand) SetFlags(f *gnuflag.FlagSet) {
	c.satCommandBase.SetFlags(f)
	f.BoolVar(&c.repair, "repair", false, "Repair the data read and list what remains")
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatViolationsTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init is part of cmd.Command.
func (c *validateCommand) Init(args []string) error {
	models, err := parseIDs(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.models = models
	return nil
}

// Run is part of cmd.Command.
func (c *validateCommand) Run(ctx *cmd.Context) error {
	if err := c.loadConfig(ctx); err != nil {
		return errors.Trace(err)
	}
	models := c.models
	if len(models) == 0 {
		models, _ = c.config.ModelIDs()
	}
	rt, err := c.start()
	if err != nil {
		return errors.Trace(err)
	}
	defer rt.stop(ctx)

	source, err := open(ctx, c.config.Source)
	if err != nil {
		return errors.Annotate(err, "source")
	}
	defer closeAll(source)

	if len(models) > 0 {
		if err := c.importModels(ctx, rt, source, models); err != nil {
			return errors.Trace(err)
		}
	}
	cache := source.Cache()
	violations := validation.Validate(cache)
	if c.repair && len(violations) > 0 {
		engine, err := repair.New(repair.Config{Sink: rt.hub, Collector: rt.collector})
		if err != nil {
			return errors.Trace(err)
		}
		violations = engine.Repair(ctx, cache, violations)
	} else {
		rt.collector.Violations(validation.Counts(violations))
	}
	return errors.Trace(c.out.Write(ctx, violationRows(violations)))
}

func (c *validateCommand) importModels(ctx *cmd.Context, rt *runtime, source session.Session, models []uuid.UUID) error {
	importer, err := migration.NewImporter(migration.ImportConfig{
		Sink:      rt.hub,
		Clock:     c.clock,
		Collector: rt.collector,
	})
	if err != nil {
		return errors.Trace(err)
	}
	if !importer.Import(ctx, source, models) {
		return errors.New("import failed")
	}
	return nil
}

// violationRow is the output form of a violation.
type violationRow struct {
	Kind    string `yaml:"kind" json:"kind"`
	ID      string `yaml:"id" json:"id"`
	Rule    string `yaml:"rule" json:"rule"`
	Field   string `yaml:"field" json:"field"`
	Message string `yaml:"message" json:"message"`
	Route   string `yaml:"route" json:"route"`
}

func violationRows(violations []validation.Violation) []violationRow {
	rows := make([]violationRow, len(violations))
	for i, v := range violations {
		rows[i] = violationRow{
			Kind:    string(v.Kind),
			ID:      v.ID.String(),
			Rule:    v.Rule.String(),
			Field:   v.Field,
			Message: v.Message,
			Route:   v.Route,
		}
	}
	return rows
}

func formatViolationsTabular(w io.Writer, value interface{}) error {
	rows, ok := value.([]violationRow)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", rows, value)
	}
	return formatViolations(w, rows)
}

func formatViolations(w io.Writer, rows []violationRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No violations found.")
		return errors.Trace(err)
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("KIND", "ID", "RULE", "MESSAGE", "ROUTE")
	for _, row := range rows {
		table.AddRow(row.Kind, row.ID, row.Rule, row.Message, row.Route)
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}
