// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package stress loads a server with generated engineering data. Every
// write goes through the retrying writer, paced by a rate limiter, so a
// run also exercises the server's behavior under sustained writes.
package stress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"golang.org/x/time/rate"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

var logger = loggo.GetLogger("sat.stress")

// Origin tags the events published by a Generator.
const Origin = "stress"

// Chart marker labels.
const (
	StartMarker   = "Stress start"
	EndMarker     = "Stress end"
	CleanupMarker = "Stress cleanup"
)

// Config holds the dependencies of a Generator.
type Config struct {
	Session session.Session
	Sink    events.Sink
	Clock   clock.Clock
	// RetryPolicy defaults to session.DefaultRetryPolicy.
	RetryPolicy session.RetryPolicy
	// Collector is optional.
	Collector *metrics.Collector
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	if config.Session == nil {
		return errors.NotValidf("nil Session")
	}
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Plan describes one stress run.
type Plan struct {
	// Iteration must be open in the session.
	Iteration uuid.UUID
	// Count is the number of element definitions to write.
	Count int
	// Interval is the minimum time between two writes. Zero writes as
	// fast as the server answers.
	Interval time.Duration
	// Values is the length of every value array. It defaults to 1.
	Values int
	// Cleanup deletes the generated elements once they are written.
	Cleanup bool
}

// Validate returns an error if the plan cannot be run.
func (p Plan) Validate() error {
	if p.Iteration == uuid.Nil {
		return errors.NotValidf("empty Iteration")
	}
	if p.Count <= 0 {
		return errors.NotValidf("Count %d", p.Count)
	}
	if p.Interval < 0 {
		return errors.NotValidf("negative Interval")
	}
	if p.Values < 0 {
		return errors.NotValidf("negative Values")
	}
	return nil
}

// Result counts the outcome of a run.
type Result struct {
	Written int
	Failed  int
	Deleted int
}

// Generator writes generated element definitions to a session.
type Generator struct {
	config Config
	pub    events.Publisher
}

// New returns a Generator using config.
func New(config Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.RetryPolicy.Clock == nil && config.RetryPolicy.Attempts == 0 {
		config.RetryPolicy = session.DefaultRetryPolicy()
	}
	return &Generator{
		config: config,
		pub:    events.NewPublisher(config.Sink, Origin),
	}, nil
}

// Run writes plan.Count element definitions into the plan's iteration,
// one batch each. An abandoned write is counted and the run goes on.
// The error is non-nil when the run could not start or was canceled.
func (g *Generator) Run(ctx context.Context, plan Plan) (Result, error) {
	var result Result
	if err := plan.Validate(); err != nil {
		return result, errors.Trace(err)
	}
	if plan.Values == 0 {
		plan.Values = 1
	}
	s := g.config.Session
	participation, ok := s.OpenIterations()[plan.Iteration]
	if !ok {
		return result, errors.NotFoundf("open iteration %s", plan.Iteration)
	}
	cache := s.Cache()
	iteration, ok := cache.Get(thing.Key{ID: plan.Iteration})
	if !ok {
		return result, errors.NotFoundf("iteration %s", plan.Iteration)
	}
	types := cache.OfKind(thing.ParameterType)
	if len(types) == 0 {
		return result, errors.NotFoundf("parameter type")
	}
	parameterType := types[0]

	limit := rate.Inf
	if plan.Interval > 0 {
		limit = rate.Every(plan.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	batchContext := session.IterationContext(iteration.Container, iteration.ID)

	g.pub.Mark(StartMarker, g.config.Clock.Now())
	g.pub.Infof("Writing %d element definition(s) into iteration %s", plan.Count, iteration.ID)
	var written []*thing.Object
	var runErr error
	for n := 1; n <= plan.Count; n++ {
		if err := limiter.Wait(ctx); err != nil {
			g.pub.Warnf("Stress run canceled after %d write(s)", n-1)
			runErr = errors.Trace(err)
			break
		}
		element, batch, err := g.generate(iteration, batchContext, participation.Domain, parameterType.ID, n, plan.Values)
		if err != nil {
			runErr = errors.Trace(err)
			break
		}
		if session.WriteWithRetry(ctx, s, *batch, g.config.RetryPolicy, g.pub, g.config.Collector) {
			written = append(written, element)
			result.Written++
		} else {
			result.Failed++
		}
		if ctx.Err() != nil {
			g.pub.Warnf("Stress run canceled after %d write(s)", n)
			runErr = errors.Trace(ctx.Err())
			break
		}
	}
	g.pub.Mark(EndMarker, g.config.Clock.Now())
	g.pub.Infof("Wrote %d element definition(s), %d failed", result.Written, result.Failed)

	if plan.Cleanup && len(written) > 0 {
		result.Deleted = g.cleanup(context.WithoutCancel(ctx), batchContext, written)
	}
	return result, runErr
}

// generate builds element number n, owned by owner, with one parameter
// holding a value set whose arrays all have the given length.
func (g *Generator) generate(
	iteration *thing.Object,
	batchContext session.Context,
	owner, parameterType uuid.UUID,
	n, values int,
) (*thing.Object, *session.Batch, error) {
	container := iteration.Clone()
	element := thing.New(thing.ElementDefinition).
		SetField(thing.AttrName, fmt.Sprintf("Stress element %d", n)).
		SetField(thing.AttrShortName, fmt.Sprintf("stress_%d", n)).
		SetRef(thing.RefOwner, owner)
	parameter := thing.New(thing.Parameter).
		SetRef(thing.RefParameterType, parameterType).
		SetRef(thing.RefOwner, owner)
	valueSet := thing.New(thing.ParameterValueSet)
	for _, field := range []string{
		thing.AttrManual, thing.AttrComputed, thing.AttrReference, thing.AttrFormula, thing.AttrPublished,
	} {
		valueSet.SetValues(field, filled(values)...)
	}
	for _, link := range [][2]*thing.Object{{container, element}, {element, parameter}, {parameter, valueSet}} {
		if err := link[0].AddChild(link[1]); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	batch := session.NewBatch(batchContext).Create(element).Create(parameter).Create(valueSet)
	return element, batch, nil
}

// cleanup deletes the written elements, with their contents, in one
// batch. It returns the number of elements deleted.
func (g *Generator) cleanup(ctx context.Context, batchContext session.Context, written []*thing.Object) int {
	g.pub.Mark(CleanupMarker, g.config.Clock.Now())
	batch := session.NewBatch(batchContext)
	for _, element := range written {
		batch.Delete(element)
	}
	if !session.WriteWithRetry(ctx, g.config.Session, *batch, g.config.RetryPolicy, g.pub, g.config.Collector) {
		return 0
	}
	logger.Debugf("deleted %d generated element(s)", len(written))
	g.pub.Infof("Deleted %d generated element definition(s)", len(written))
	return len(written)
}

func filled(n int) []string {
	values := make([]string, n)
	for i := range values {
		values[i] = "-"
	}
	return values
}
