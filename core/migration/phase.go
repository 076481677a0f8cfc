// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

// Phase values specify the stages a migration moves through.
type Phase int

// Enumerate all possible migration phases.
const (
	UNKNOWN Phase = iota
	NONE
	IMPORT
	REPAIR
	PACK
	EXPORT
	DONE
	FAILED
)

var phaseNames = []string{
	"UNKNOWN",
	"NONE",
	"IMPORT",
	"REPAIR",
	"PACK",
	"EXPORT",
	"DONE",
	"FAILED",
}

// String returns the name of a migration phase constant.
func (p Phase) String() string {
	i := int(p)
	if i >= 0 && i < len(phaseNames) {
		return phaseNames[i]
	}
	return "UNKNOWN"
}

// ParsePhase converts a string migration phase name to its constant
// value.
func ParsePhase(target string) (Phase, bool) {
	for p, name := range phaseNames {
		if target == name {
			return Phase(p), true
		}
	}
	return UNKNOWN, false
}

// IsTerminal returns true if the phase is one which signifies the end
// of a migration.
func (p Phase) IsTerminal() bool {
	for _, t := range terminalPhases {
		if p == t {
			return true
		}
	}
	return false
}

// IsRunning returns true if the phase indicates the migration is
// active and up to or at the EXPORT phase.
func (p Phase) IsRunning() bool {
	switch p {
	case IMPORT, REPAIR, PACK, EXPORT:
		return true
	}
	return false
}

// CanTransitionTo returns true if the given phase is a valid next
// migration phase.
func (p Phase) CanTransitionTo(targetPhase Phase) bool {
	nextPhases, exists := validTransitions[p]
	if !exists {
		return false
	}
	for _, nextPhase := range nextPhases {
		if nextPhase == targetPhase {
			return true
		}
	}
	return false
}

// Define all possible phase transitions.
//
// The keys are the "from" states and the values enumerate the
// possible "to" states.
var validTransitions = map[Phase][]Phase{
	NONE:   {IMPORT},
	IMPORT: {REPAIR, PACK, FAILED},
	REPAIR: {PACK, FAILED},
	PACK:   {EXPORT, FAILED},
	EXPORT: {DONE, FAILED},
}

var terminalPhases []Phase

func init() {
	// Compute the terminal phases.
	for p := 0; p < len(phaseNames); p++ {
		phase := Phase(p)
		if phase == UNKNOWN {
			continue
		}
		if _, exists := validTransitions[phase]; !exists {
			terminalPhases = append(terminalPhases, phase)
		}
	}
}
