// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package validation reports the structural rule failures of every
// object in a cache.
package validation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

// Violation is one failed rule of one object. Violations describe the
// cache at the time Validate ran and go stale after any mutation.
type Violation struct {
	ID        uuid.UUID
	Iteration uuid.UUID
	Kind      thing.Kind
	Field     string
	Rule      thing.RuleKind
	Message   string
	Route     string
}

// Key returns the cache key of the violating object.
func (v Violation) Key() thing.Key {
	return thing.Key{ID: v.ID, Iteration: v.Iteration}
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s", v.Kind, v.ID, v.Message)
}

// Validate checks every object in cache and returns one violation per
// failed rule, in cache order and then rule order. A route that cannot
// be resolved does not stop the pass; it is rendered in the violation
// instead.
func Validate(cache *thing.Cache) []Violation {
	var violations []Violation
	for _, obj := range cache.Objects() {
		violations = append(violations, validateObject(cache, obj)...)
	}
	return violations
}

// ValidateObject returns the violations of obj alone.
func ValidateObject(cache *thing.Cache, obj *thing.Object) []Violation {
	return validateObject(cache, obj)
}

func validateObject(cache *thing.Cache, obj *thing.Object) []Violation {
	failures := obj.Check(cache)
	if len(failures) == 0 {
		return nil
	}
	route, err := thing.Route(cache, obj)
	if err != nil {
		route = fmt.Sprintf("<unresolved route: %v>", err)
	}
	violations := make([]Violation, len(failures))
	for i, f := range failures {
		violations[i] = Violation{
			ID:        obj.ID,
			Iteration: obj.Iteration,
			Kind:      obj.Kind,
			Field:     f.Rule.Field,
			Rule:      f.Rule.Kind,
			Message:   f.Message,
			Route:     route,
		}
	}
	return violations
}

// Counts tallies violations by rule.
func Counts(violations []Violation) map[string]int {
	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.Rule.String()]++
	}
	return counts
}
