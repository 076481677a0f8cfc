// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package repair fixes the structural violations that have a safe
// default, so a repository can be migrated.
package repair

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/validation"
)

var logger = loggo.GetLogger("sat.repair")

// Origin tags the events published by the engine.
const Origin = "repair"

// Sentinel values written into empty required fields.
const (
	UndefinedName        = "Undefined Name"
	UndefinedShortName   = "UndefinedShortName"
	UndefinedContent     = "UndefinedContent"
	UndefinedValue       = "UndefinedValue"
	UndefinedDescription = "UndefinedDescription"
	UnknownExtension     = "UnknownExtension"
)

// Config holds the dependencies of an Engine.
type Config struct {
	Sink events.Sink
	// Collector is optional.
	Collector *metrics.Collector
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	return nil
}

// Engine applies fixes to violations found in a cache.
type Engine struct {
	pub       events.Publisher
	collector *metrics.Collector
}

// New returns an Engine using config.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Engine{
		pub:       events.NewPublisher(config.Sink, Origin),
		collector: config.Collector,
	}, nil
}

// Repair applies a fix for each of violations, mutating the cached
// objects in place, then validates cache again and returns what is left.
// Only empty fields are filled, so repairing twice changes nothing the
// first pass did not. A violation whose object is no longer cached is
// resolved.
func (e *Engine) Repair(ctx context.Context, cache *thing.Cache, violations []validation.Violation) []validation.Violation {
	fixed, unfixed := 0, 0
	for _, v := range violations {
		if ctx.Err() != nil {
			e.pub.Warnf("Repair canceled")
			break
		}
		obj, ok := cache.Get(v.Key())
		if !ok {
			continue
		}
		if e.repair(cache, obj, v) {
			fixed++
		} else {
			unfixed++
		}
	}
	residual := validation.Validate(cache)
	e.collector.Violations(validation.Counts(residual))
	logger.Debugf("applied %d fixes, %d unfixable, %d residual", fixed, unfixed, len(residual))
	return residual
}

func (e *Engine) repair(cache *thing.Cache, obj *thing.Object, v validation.Violation) bool {
	switch v.Rule {
	case thing.RequiredField:
		sentinel, ok := sentinelFor(obj.Kind, v.Field)
		if !ok {
			e.pub.Warnf("No default for field %s of %s %s at %s", v.Field, obj.Kind, obj.ID, v.Route)
			return false
		}
		if obj.Field(v.Field) == "" {
			obj.SetField(v.Field, sentinel)
			e.pub.Infof("Set field %s of %s %s to %q", v.Field, obj.Kind, obj.ID, sentinel)
		}
		return true
	case thing.RequiredReference:
		if !detachable(obj.Kind, v.Field) {
			e.pub.Warnf("Cannot repair reference %s of %s %s at %s", v.Field, obj.Kind, obj.ID, v.Route)
			return false
		}
		removed, err := cache.Detach(obj.Key())
		if err != nil {
			e.pub.Errorf(err, "Removing %s %s failed", obj.Kind, obj.ID)
			return false
		}
		e.pub.Infof("Removed %s %s at %s (%d object(s)): %s", obj.Kind, obj.ID, v.Route, removed, v.Message)
		return true
	case thing.MinElements:
		e.pub.Warnf("Field %s of %s %s at %s has too few elements and cannot be repaired", v.Field, obj.Kind, obj.ID, v.Route)
		return false
	default:
		e.pub.Warnf("Unknown rule %s on %s %s", v.Rule, obj.Kind, obj.ID)
		return false
	}
}

// sentinelFor returns the default text for a required field of kind.
func sentinelFor(kind thing.Kind, field string) (string, bool) {
	switch field {
	case thing.AttrName:
		return UndefinedName, true
	case thing.AttrShortName:
		return UndefinedShortName, true
	case thing.AttrContent:
		switch kind {
		case thing.Definition, thing.Alias, thing.HyperLink:
			return UndefinedContent, true
		}
	case thing.AttrValue:
		if kind == thing.ScaleValueDefinition {
			return UndefinedValue, true
		}
	case thing.AttrDescription:
		if kind == thing.IterationSetup {
			return UndefinedDescription, true
		}
	case thing.AttrExtension:
		if kind == thing.FileType {
			return UnknownExtension, true
		}
	}
	return "", false
}

// detachable reports whether an object of kind with a broken reference
// field may be removed rather than repaired.
func detachable(kind thing.Kind, field string) bool {
	switch kind {
	case thing.Citation:
		return field == thing.RefSource
	case thing.Participant:
		return field == thing.RefPerson
	}
	return false
}
