// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

// ImportConfig holds the dependencies of an Importer.
type ImportConfig struct {
	Sink  events.Sink
	Clock clock.Clock
	// Collector is optional.
	Collector *metrics.Collector
}

// Validate returns an error if the config cannot be used.
func (config ImportConfig) Validate() error {
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Importer reads the iterations of the selected models from a source
// session into its cache.
type Importer struct {
	pub       events.Publisher
	clock     clock.Clock
	collector *metrics.Collector
}

// NewImporter returns an Importer using config.
func NewImporter(config ImportConfig) (*Importer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Importer{
		pub:       events.NewPublisher(config.Sink, ImportOrigin),
		clock:     config.Clock,
		collector: config.Collector,
	}, nil
}

// modelPlan is one selected model and the iterations to read from it.
type modelPlan struct {
	name       string
	model      uuid.UUID
	domain     uuid.UUID
	iterations []iterationPlan
}

type iterationPlan struct {
	number    string
	iteration uuid.UUID
}

// Import reads every iteration of the selected engineering model setups
// from src, one at a time. A failed read is reported and skipped, so the
// result is true once every iteration has been attempted. It is false
// when a precondition fails or ctx is canceled.
func (i *Importer) Import(ctx context.Context, src session.Session, models []uuid.UUID) bool {
	if src == nil {
		i.pub.Warnf("Please select the source session")
		return false
	}
	if !src.IsOpen() {
		i.pub.Warnf("The source session is not open")
		return false
	}
	if len(models) == 0 {
		i.pub.Warnf("Please select model(s) to migrate")
		return false
	}
	site, err := src.RetrieveSiteDirectory()
	if err != nil {
		i.pub.Errorf(err, "Cannot retrieve the site directory")
		return false
	}

	plans := i.plan(src, site, models)
	total := 0
	for _, p := range plans {
		total += len(p.iterations)
	}
	i.pub.Infof("Importing %d iteration(s) of %d model(s)", total, len(plans))

	started := i.clock.Now()
	completed := 0
	for _, p := range plans {
		for n, it := range p.iterations {
			if ctx.Err() != nil {
				i.pub.Warnf("Import canceled")
				return false
			}
			begin := i.clock.Now()
			err := src.Read(ctx, session.ReadRequest{
				Model:     p.model,
				Iteration: it.iteration,
				Domain:    p.domain,
			})
			seconds := i.clock.Now().Sub(begin).Seconds()
			if err != nil {
				i.collector.ReadFinished(metrics.Failed, seconds)
				i.pub.Errorf(err, "Reading iteration %s of model %s failed", it.number, p.name)
			} else {
				i.collector.ReadFinished(metrics.Succeeded, seconds)
				i.pub.Infof("Read iteration %s of model %s", it.number, p.name)
			}
			completed++
			i.progress(p, n+1, completed, total, i.clock.Now().Sub(started))
		}
	}
	return true
}

// progress publishes the overall and per-model counters after an
// iteration is done, so completed is at least one. The remaining time is
// projected from the average time per completed iteration.
func (i *Importer) progress(p modelPlan, modelDone, completed, total int, elapsed time.Duration) {
	percent := 100 * float64(completed) / float64(total)
	remaining := elapsed * time.Duration(total-completed) / time.Duration(completed)
	i.pub.Debugf("Progress %d/%d (%.0f%%), model %s %d/%d, elapsed %s, remaining %s",
		completed, total, percent, p.name, modelDone, len(p.iterations), elapsed, remaining)
}

// plan selects the non-deleted setups named in models, ordered by name
// and then identity, with their non-deleted iterations in iteration
// number order.
func (i *Importer) plan(src session.Session, site *thing.Object, models []uuid.UUID) []modelPlan {
	cache := src.Cache()
	selected := set.NewStrings()
	for _, id := range models {
		selected.Add(id.String())
	}

	byName := make(map[string][]*thing.Object)
	for _, id := range site.Children[thing.FieldModel] {
		setup, ok := cache.Get(thing.Key{ID: id})
		if !ok || setup.Deleted || !selected.Contains(id.String()) {
			continue
		}
		name := setup.Field(thing.AttrName)
		byName[name] = append(byName[name], setup)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	naturalsort.Sort(names)

	var plans []modelPlan
	for _, name := range names {
		setups := byName[name]
		sort.Slice(setups, func(a, b int) bool {
			return setups[a].ID.String() < setups[b].ID.String()
		})
		for _, setup := range setups {
			plans = append(plans, modelPlan{
				name:       name,
				model:      setup.Ref(thing.RefEngineeringModel),
				domain:     participantDomain(cache, setup, src.ActivePerson()),
				iterations: iterationPlans(cache, setup),
			})
		}
	}
	return plans
}

func iterationPlans(cache *thing.Cache, setup *thing.Object) []iterationPlan {
	var setups []*thing.Object
	for _, id := range setup.Children[thing.FieldIterationSetup] {
		it, ok := cache.Get(thing.Key{ID: id})
		if !ok || it.Deleted {
			continue
		}
		setups = append(setups, it)
	}
	sort.SliceStable(setups, func(a, b int) bool {
		na, _ := strconv.Atoi(setups[a].Field(thing.AttrIterationNumber))
		nb, _ := strconv.Atoi(setups[b].Field(thing.AttrIterationNumber))
		return na < nb
	})
	plans := make([]iterationPlan, len(setups))
	for n, it := range setups {
		plans[n] = iterationPlan{
			number:    it.Field(thing.AttrIterationNumber),
			iteration: it.Ref(thing.RefIteration),
		}
	}
	return plans
}

// participantDomain returns the first domain person participates in
// within setup, falling back to the person's default domain.
func participantDomain(cache *thing.Cache, setup, person *thing.Object) uuid.UUID {
	if person == nil {
		return uuid.Nil
	}
	for _, id := range setup.Children[thing.FieldParticipant] {
		p, ok := cache.Get(thing.Key{ID: id})
		if !ok || p.Ref(thing.RefPerson) != person.ID {
			continue
		}
		if domains := p.RefLists[thing.RefDomain]; len(domains) > 0 {
			return domains[0]
		}
	}
	return person.Ref(thing.RefDefaultDomain)
}
