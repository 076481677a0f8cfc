// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/archive"
)

var inspectArchiveDoc = `
Inspect-archive lists the entries of a migration archive, and the
number of objects each iteration entry holds. Without a path the
archive under the configured base directory is opened.

The archive is unlocked with --secret, which defaults to the target
password of the configuration, or to the default archive secret when
there is none.
`

func newInspectArchiveCommand() cmd.Command {
	return &inspectArchiveCommand{}
}

type inspectArchiveCommand struct {
	satCommandBase
	out cmd.Output

	path   string
	secret string
}

// Info is part of cmd.Command.
func (c *inspectArchiveCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "inspect-archive",
		Args:    "[<path>]",
		Purpose: "list the contents of a migration archive",
		Doc:     inspectArchiveDoc,
	}
}

// SetFlags is part of cmd.Command.
func (c *inspectArchiveCommand) SetFlags(f *gnuflag.FlagSet) {
	c.satCommandBase.SetFlags(f)
	f.StringVar(&c.secret, "secret", "", "Secret the archive was sealed with")
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatEntriesTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init is part of cmd.Command.
func (c *inspectArchiveCommand) Init(args []string) error {
	if len(args) > 0 {
		c.path, args = args[0], args[1:]
	}
	return cmd.CheckEmpty(args)
}

// entryRow is the output form of an archive entry.
type entryRow struct {
	Name    string `yaml:"name" json:"name"`
	Size    uint64 `yaml:"size" json:"size"`
	Objects *int   `yaml:"objects,omitempty" json:"objects,omitempty"`
}

// Run is part of cmd.Command.
func (c *inspectArchiveCommand) Run(ctx *cmd.Context) error {
	if err := c.loadConfig(ctx); err != nil {
		return errors.Trace(err)
	}
	path := archive.Path(c.config.BaseDir)
	if c.path != "" {
		path = ctx.AbsPath(c.path)
	}
	secret := c.secret
	if secret == "" {
		secret = c.config.Target.Password
	}
	if secret == "" {
		secret = archive.DefaultSecret
	}

	r, err := archive.OpenReader(path, secret)
	if err != nil {
		return errors.Trace(err)
	}
	defer r.Close()

	var rows []entryRow
	for _, entry := range r.Entries() {
		row := entryRow{Name: entry.Name, Size: entry.Size}
		if entry.Name != archive.SideFileName && strings.HasSuffix(entry.Name, ".json") {
			objs, err := r.Objects(entry.Name)
			if err != nil {
				return errors.Trace(err)
			}
			n := len(objs)
			row.Objects = &n
		}
		rows = append(rows, row)
	}
	return errors.Trace(c.out.Write(ctx, rows))
}

func formatEntriesTabular(w io.Writer, value interface{}) error {
	rows, ok := value.([]entryRow)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", rows, value)
	}
	table := uitable.New()
	table.AddRow("ENTRY", "SIZE", "OBJECTS")
	for _, row := range rows {
		objects := "-"
		if row.Objects != nil {
			objects = fmt.Sprint(*row.Objects)
		}
		table.AddRow(row.Name, humanize.Bytes(row.Size), objects)
	}
	_, err := fmt.Fprintln(w, table)
	return errors.Trace(err)
}
