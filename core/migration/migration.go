// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package migration holds the state shared by the stages of a model
// migration between two repository servers.
package migration

import (
	"time"

	"github.com/google/uuid"
)

// Status reports how far a migration has got.
type Status struct {
	// Models holds the identities of the engineering model setups
	// being migrated.
	Models []uuid.UUID

	// Phase indicates the current migration phase.
	Phase Phase

	// PhaseChangedTime indicates the time the phase was changed to
	// its current value.
	PhaseChangedTime time.Time

	// Reason says why the migration failed. It is empty unless Phase
	// is FAILED.
	Reason string
}
