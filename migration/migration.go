// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package migration moves engineering models from a source server to a
// target server: it imports the selected iterations, packages them into
// an archive and uploads the archive to the target.
package migration

import (
	"context"

	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/repair"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/validation"
)

var logger = loggo.GetLogger("sat.migration")

// Event origins of the migration stages.
const (
	ImportOrigin       = "import"
	PackOrigin         = "pack"
	ExportOrigin       = "export"
	OrchestratorOrigin = "migration"
)

// RepairDecider is consulted between import and packaging. Returning
// false, or an error, cancels the migration.
type RepairDecider interface {
	Decide(ctx context.Context, source session.Session) (bool, error)
}

// RepairDeciderFunc adapts a function to a RepairDecider.
type RepairDeciderFunc func(ctx context.Context, source session.Session) (bool, error)

// Decide calls f.
func (f RepairDeciderFunc) Decide(ctx context.Context, source session.Session) (bool, error) {
	return f(ctx, source)
}

// RepairPrompt validates and repairs the source cache, then hands the
// residual violations to Confirm for the final decision.
type RepairPrompt struct {
	Engine  *repair.Engine
	Confirm func(residual []validation.Violation) (bool, error)
}

// Decide is part of RepairDecider.
func (p RepairPrompt) Decide(ctx context.Context, source session.Session) (bool, error) {
	cache := source.Cache()
	violations := validation.Validate(cache)
	residual := violations
	if len(violations) > 0 && p.Engine != nil {
		residual = p.Engine.Repair(ctx, cache, violations)
	}
	logger.Debugf("%d violation(s) before repair, %d after", len(violations), len(residual))
	if p.Confirm == nil {
		return len(residual) == 0, nil
	}
	return p.Confirm(residual)
}
