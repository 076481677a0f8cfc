// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package refdatasync copies reference data subtrees, domains of
// expertise or site reference data libraries, from one server to
// another. Synchronization is additive: objects already on the target
// are never updated or deleted, only the missing ones are created.
package refdatasync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

var logger = loggo.GetLogger("sat.refdatasync")

// Origin tags the events published by a Syncer.
const Origin = "sync"

// RootKind names the kind of subtree a Syncer copies.
type RootKind int

const (
	DomainOfExpertiseRoot RootKind = iota + 1
	ReferenceDataLibraryRoot
)

// Kind returns the object kind of roots of k.
func (k RootKind) Kind() thing.Kind {
	switch k {
	case DomainOfExpertiseRoot:
		return thing.DomainOfExpertise
	case ReferenceDataLibraryRoot:
		return thing.SiteReferenceDataLibrary
	}
	return ""
}

func (k RootKind) String() string {
	switch k {
	case DomainOfExpertiseRoot:
		return "domain"
	case ReferenceDataLibraryRoot:
		return "rdl"
	}
	return fmt.Sprintf("RootKind(%d)", int(k))
}

// ParseRootKind returns the RootKind named s, as printed by String.
func ParseRootKind(s string) (RootKind, error) {
	for _, k := range []RootKind{DomainOfExpertiseRoot, ReferenceDataLibraryRoot} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, errors.NotValidf("root kind %q", s)
}

// Config holds the dependencies of a Syncer.
type Config struct {
	Source session.Session
	Target session.Session
	Sink   events.Sink
	// RetryPolicy defaults to session.DefaultRetryPolicy.
	RetryPolicy session.RetryPolicy
	// Collector is optional.
	Collector *metrics.Collector
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	if config.Source == nil {
		return errors.NotValidf("nil Source")
	}
	if config.Target == nil {
		return errors.NotValidf("nil Target")
	}
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	return nil
}

// Result counts the objects of the synchronized subtrees.
type Result struct {
	// Created is the number of objects written to the target.
	Created int
	// Present is the number of objects the target already had.
	Present int
	// Skipped is the number of roots that could not be synchronized.
	Skipped int
}

// Syncer copies subtrees of one root kind.
type Syncer struct {
	kind   RootKind
	config Config
	pub    events.Publisher
}

// New returns a Syncer for roots of kind.
func New(kind RootKind, config Config) (*Syncer, error) {
	if kind.Kind() == "" {
		return nil, errors.NotValidf("root kind %d", int(kind))
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.RetryPolicy.Clock == nil && config.RetryPolicy.Attempts == 0 {
		config.RetryPolicy = session.DefaultRetryPolicy()
	}
	return &Syncer{
		kind:   kind,
		config: config,
		pub:    events.NewPublisher(config.Sink, Origin),
	}, nil
}

// NewDomainSyncer returns a Syncer for domains of expertise.
func NewDomainSyncer(config Config) (*Syncer, error) {
	return New(DomainOfExpertiseRoot, config)
}

// NewReferenceDataLibrarySyncer returns a Syncer for site reference
// data libraries.
func NewReferenceDataLibrarySyncer(config Config) (*Syncer, error) {
	return New(ReferenceDataLibraryRoot, config)
}

// Kind returns the root kind the syncer copies.
func (s *Syncer) Kind() RootKind {
	return s.kind
}

// Sync creates on the target every object contained by the given roots
// in the source cache that the target does not have. All creations go
// in a single batch, parents before children. The error is non-nil when
// nothing could be written.
func (s *Syncer) Sync(ctx context.Context, roots []uuid.UUID) (Result, error) {
	var result Result
	source, target := s.config.Source, s.config.Target
	if !source.IsOpen() {
		s.pub.Warnf("The source session is not open")
		return result, errors.New("source session is not open")
	}
	if err := target.Refresh(ctx); err != nil {
		s.pub.Errorf(err, "Refreshing the target session failed")
		return result, errors.Annotate(err, "refreshing target")
	}
	site, err := session.SiteDirectory(target)
	if err != nil {
		s.pub.Errorf(err, "Cannot retrieve the target site directory")
		return result, errors.Trace(err)
	}

	batch := session.NewBatch(session.SiteDirectoryContext(site.ID))
	pending := make(map[thing.Key]bool)
	for _, id := range roots {
		if err := ctx.Err(); err != nil {
			s.pub.Warnf("Sync canceled")
			return result, errors.Trace(err)
		}
		root, ok := source.Cache().Get(thing.Key{ID: id})
		if !ok {
			s.pub.Warnf("Cannot find %s %s in the source session", s.kind, id)
			result.Skipped++
			continue
		}
		if root.Kind != s.kind.Kind() {
			s.pub.Warnf("%s is a %s, not a %s", id, root.Kind, s.kind.Kind())
			result.Skipped++
			continue
		}
		s.collect(batch, site, root, pending, &result)
	}

	if batch.Len() == 0 {
		s.pub.Infof("Nothing to synchronize, %d object(s) already present", result.Present)
		return result, nil
	}
	if !session.WriteWithRetry(ctx, target, *batch, s.config.RetryPolicy, s.pub, s.config.Collector) {
		return Result{Present: result.Present, Skipped: result.Skipped},
			errors.Errorf("writing %d object(s) to %s abandoned", batch.Len(), batch.Context)
	}
	s.pub.Infof("Synchronized %d %s subtree(s): %d object(s) created, %d already present",
		len(roots)-result.Skipped, s.kind, result.Created, result.Present)
	return result, nil
}

// collect adds a create operation for every object of root's subtree
// absent from the target. Subtree yields parents before children, so
// the batch does too.
func (s *Syncer) collect(batch *session.Batch, site, root *thing.Object, pending map[thing.Key]bool, result *Result) {
	targetCache := s.config.Target.Cache()
	for _, obj := range thing.Subtree(s.config.Source.Cache(), root) {
		key := obj.Key()
		if pending[key] {
			continue
		}
		if targetCache.Contains(key) {
			logger.Tracef("%s already on target", obj)
			result.Present++
			continue
		}
		clone := obj.Clone()
		if obj == root {
			clone.Container = site.ID
		}
		batch.Create(clone)
		pending[key] = true
		result.Created++
	}
}
