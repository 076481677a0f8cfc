// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	coremigration "github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/migration"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

// Failure reasons reported by the orchestrator.
const (
	ReasonNotReady = "Both the source and the target session must be open"
	ReasonImport   = "Import failed"
	ReasonCanceled = "Migration canceled"
	ReasonPack     = "Packaging failed"
	ReasonExport   = "Export failed"
)

// StageError says at which phase a migration stopped, and why.
type StageError struct {
	Phase  coremigration.Phase
	Reason string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("migration stopped during %s: %s", strings.ToLower(e.Phase.String()), e.Reason)
}

// IsStageError reports whether err is a *StageError.
func IsStageError(err error) bool {
	_, ok := errors.Cause(err).(*StageError)
	return ok
}

// Request names what to migrate.
type Request struct {
	Source session.Session
	Target session.Session
	// Models holds engineering model setup identities.
	Models []uuid.UUID
	// SideFile optionally names a migration descriptor to archive.
	SideFile string
}

// OrchestratorConfig holds the stages an Orchestrator sequences.
type OrchestratorConfig struct {
	Importer *Importer
	Packager *Packager
	Exporter *Exporter
	// Decider is optional. Without one the migration goes straight
	// from import to packaging.
	Decider RepairDecider
	Sink    events.Sink
	Clock   clock.Clock
}

// Validate returns an error if the config cannot be used.
func (config OrchestratorConfig) Validate() error {
	if config.Importer == nil {
		return errors.NotValidf("nil Importer")
	}
	if config.Packager == nil {
		return errors.NotValidf("nil Packager")
	}
	if config.Exporter == nil {
		return errors.NotValidf("nil Exporter")
	}
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Orchestrator runs import, the repair decision, packaging and export
// in order, stopping at the first stage that fails.
type Orchestrator struct {
	config OrchestratorConfig
	pub    events.Publisher

	mu     sync.Mutex
	status coremigration.Status
}

// NewOrchestrator returns an Orchestrator using config.
func NewOrchestrator(config OrchestratorConfig) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Orchestrator{
		config: config,
		pub:    events.NewPublisher(config.Sink, OrchestratorOrigin),
		status: coremigration.Status{Phase: coremigration.NONE},
	}, nil
}

// CanMigrate reports whether both sessions are present and open.
func CanMigrate(src, target session.Session) bool {
	return src != nil && target != nil && src.IsOpen() && target.IsOpen()
}

// Status returns the state of the last migration.
func (o *Orchestrator) Status() coremigration.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := o.status
	status.Models = append([]uuid.UUID(nil), o.status.Models...)
	return status
}

// Migrate runs the whole pipeline for req. It returns nil when the
// archive was accepted by the target, and a *StageError otherwise.
func (o *Orchestrator) Migrate(ctx context.Context, req Request) error {
	o.reset(req.Models)
	if !CanMigrate(req.Source, req.Target) {
		return o.fail(ReasonNotReady)
	}

	o.setPhase(coremigration.IMPORT)
	if !o.config.Importer.Import(ctx, req.Source, req.Models) {
		return o.fail(ReasonImport)
	}

	if o.config.Decider != nil {
		o.setPhase(coremigration.REPAIR)
		ok, err := o.config.Decider.Decide(ctx, req.Source)
		if err != nil {
			logger.Debugf("repair decision failed: %v", err)
		}
		if err != nil || !ok {
			return o.fail(ReasonCanceled)
		}
	}

	o.setPhase(coremigration.PACK)
	if !o.config.Packager.Pack(ctx, req.Source, req.Target, req.SideFile) {
		return o.fail(ReasonPack)
	}

	o.setPhase(coremigration.EXPORT)
	if !o.config.Exporter.Export(ctx, req.Target, o.config.Packager.ArchivePath()) {
		return o.fail(ReasonExport)
	}

	o.setPhase(coremigration.DONE)
	o.pub.Infof("Migration of %d model(s) completed", len(req.Models))
	return nil
}

func (o *Orchestrator) reset(models []uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = coremigration.Status{
		Models:           append([]uuid.UUID(nil), models...),
		Phase:            coremigration.NONE,
		PhaseChangedTime: o.config.Clock.Now(),
	}
}

func (o *Orchestrator) setPhase(phase coremigration.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.status.Phase.CanTransitionTo(phase) {
		// Sequencing above only requests valid transitions.
		panic(fmt.Sprintf("invalid migration transition %s -> %s", o.status.Phase, phase))
	}
	o.status.Phase = phase
	o.status.PhaseChangedTime = o.config.Clock.Now()
	o.pub.Debugf("Migration phase %s", phase)
}

// fail moves the migration to FAILED and returns the error describing
// the phase it failed in.
func (o *Orchestrator) fail(reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	stageErr := &StageError{Phase: o.status.Phase, Reason: reason}
	o.status.Phase = coremigration.FAILED
	o.status.PhaseChangedTime = o.config.Clock.Now()
	o.status.Reason = reason
	o.pub.Errorf(stageErr, "%s", reason)
	return stageErr
}
