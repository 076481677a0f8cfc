// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/stress"
)

var stressDoc = `
Stress writes generated element definitions, one batch each, into an
iteration of the target server, or of the source server with
--server source. Count, pace and value length come from the stress
section of the configuration file, and the flags override them.
`

func newStressCommand() cmd.Command {
	return &stressCommand{}
}

type stressCommand struct {
	satCommandBase

	server    string
	iteration string
	count     int
	values    int
	cleanup   bool
}

// Info is part of cmd.Command.
func (c *stressCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "stress",
		Args:    "[<iteration id>]",
		Purpose: "write generated elements into an iteration",
		Doc:     stressDoc,
	}
}

// SetFlags is part of cmd.Command.
func (c *stressCommand) SetFlags(f *gnuflag.FlagSet) {
	c.satCommandBase.SetFlags(f)
	f.StringVar(&c.server, "server", "target", "Server to write to (source|target)")
	f.IntVar(&c.count, "n", 0, "Number of element definitions to write")
	f.IntVar(&c.values, "values", 0, "Length of every value array")
	f.BoolVar(&c.cleanup, "cleanup", false, "Delete the generated elements afterwards")
}

// Init is part of cmd.Command.
func (c *stressCommand) Init(args []string) error {
	if c.server != "source" && c.server != "target" {
		return errors.NotValidf("server %q", c.server)
	}
	if c.count < 0 {
		return errors.NotValidf("count %d", c.count)
	}
	switch len(args) {
	case 0:
	case 1:
		if _, err := uuid.Parse(args[0]); err != nil {
			return errors.NotValidf("iteration %q", args[0])
		}
		c.iteration = args[0]
	default:
		return cmd.CheckEmpty(args[1:])
	}
	return nil
}

// Run is part of cmd.Command.
func (c *stressCommand) Run(ctx *cmd.Context) error {
	if err := c.loadConfig(ctx); err != nil {
		return errors.Trace(err)
	}
	if c.iteration != "" {
		c.config.Stress.Iteration = c.iteration
	}
	if c.count > 0 {
		c.config.Stress.Count = c.count
	}
	if c.values > 0 {
		c.config.Stress.Values = c.values
	}
	if c.cleanup {
		c.config.Stress.Cleanup = true
	}
	plan, err := c.config.StressPlan()
	if err != nil {
		return errors.Trace(err)
	}

	rt, err := c.start()
	if err != nil {
		return errors.Trace(err)
	}
	defer rt.stop(ctx)

	creds := c.config.Target
	if c.server == "source" {
		creds = c.config.Source
	}
	s, err := open(ctx, creds)
	if err != nil {
		return errors.Annotate(err, c.server)
	}
	defer closeAll(s)

	if err := readIteration(ctx, s, plan.Iteration); err != nil {
		return errors.Trace(err)
	}
	generator, err := stress.New(stress.Config{
		Session:     s,
		Sink:        rt.hub,
		Clock:       c.clock,
		RetryPolicy: c.config.RetryPolicy(c.clock),
		Collector:   rt.collector,
	})
	if err != nil {
		return errors.Trace(err)
	}
	result, err := generator.Run(ctx, plan)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(ctx.Stdout, "%d written, %d failed, %d deleted\n", result.Written, result.Failed, result.Deleted)
	if result.Failed > 0 {
		return cmd.ErrSilent
	}
	return nil
}

// readIteration opens the iteration id in s, as the first domain the
// active person participates with.
func readIteration(ctx context.Context, s session.Session, id uuid.UUID) error {
	cache := s.Cache()
	for _, it := range cache.OfKind(thing.IterationSetup) {
		if it.Ref(thing.RefIteration) != id || it.Deleted {
			continue
		}
		setup, err := cache.Container(it)
		if err != nil {
			return errors.Trace(err)
		}
		req := session.ReadRequest{
			Model:     setup.Ref(thing.RefEngineeringModel),
			Iteration: id,
			Domain:    domainOf(cache, setup, s.ActivePerson()),
		}
		return errors.Annotatef(s.Read(ctx, req), "reading iteration %s", id)
	}
	return errors.NotFoundf("iteration %s", id)
}

func domainOf(cache *thing.Cache, setup, person *thing.Object) uuid.UUID {
	if person == nil {
		return uuid.Nil
	}
	for _, id := range setup.Children[thing.FieldParticipant] {
		p, ok := cache.Get(thing.Key{ID: id})
		if ok && p.Ref(thing.RefPerson) == person.ID && len(p.RefLists[thing.RefDomain]) > 0 {
			return p.RefLists[thing.RefDomain][0]
		}
	}
	return person.Ref(thing.RefDefaultDomain)
}
