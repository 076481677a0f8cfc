// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package session_test

import (
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

type operationSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&operationSuite{})

func (s *operationSuite) TestContextPath(c *gc.C) {
	site := uuid.New()
	model, iteration := uuid.New(), uuid.New()
	c.Check(session.SiteDirectoryContext(site).Path(), gc.Equals, "SiteDirectory/"+site.String())
	ctx := session.IterationContext(model, iteration)
	c.Check(ctx.IsIteration(), jc.IsTrue)
	c.Check(ctx.Path(), gc.Equals, "EngineeringModel/"+model.String()+"/iteration/"+iteration.String())
}

func (s *operationSuite) TestOperationKindString(c *gc.C) {
	c.Check(session.Create.String(), gc.Equals, "create")
	c.Check(session.Update.String(), gc.Equals, "update")
	c.Check(session.Delete.String(), gc.Equals, "delete")
	c.Check(session.OperationKind(9).String(), gc.Equals, "OperationKind(9)")
}

func (s *operationSuite) TestNewUpdateCarriesDeltaOnly(c *gc.C) {
	original := thing.New(thing.DomainOfExpertise).
		SetField(thing.AttrName, "Power").
		SetField(thing.AttrShortName, "PWR")
	working := original.Clone()
	working.SetField(thing.AttrName, "Power Systems")

	op, ok := session.NewUpdate(original, working)
	c.Assert(ok, jc.IsTrue)
	c.Check(op.Kind, gc.Equals, session.Update)
	c.Check(op.Original, gc.Equals, original)
	c.Check(op.Modified.ID, gc.Equals, original.ID)
	c.Check(op.Modified.Fields, jc.DeepEquals, map[string]string{thing.AttrName: "Power Systems"})
	c.Check(original.Field(thing.AttrName), gc.Equals, "Power")

	_, ok = session.NewUpdate(original, original.Clone())
	c.Check(ok, jc.IsFalse)
}

func (s *operationSuite) TestNewUpdateCarriesRemovedField(c *gc.C) {
	original := thing.New(thing.FileType).SetField(thing.AttrExtension, "txt")
	working := original.Clone()
	delete(working.Fields, thing.AttrExtension)

	op, ok := session.NewUpdate(original, working)
	c.Assert(ok, jc.IsTrue)
	c.Check(op.Modified.Fields, jc.DeepEquals, map[string]string{thing.AttrExtension: ""})
}

func (s *operationSuite) TestBatchHelpers(c *gc.C) {
	b := session.NewBatch(session.SiteDirectoryContext(uuid.New()))
	domain := thing.New(thing.DomainOfExpertise)
	b.Create(domain)
	b.Delete(thing.New(thing.Alias))
	working := domain.Clone().SetField(thing.AttrName, "x")
	c.Check(b.Update(domain, working), jc.IsTrue)
	c.Check(b.Update(domain, domain.Clone()), jc.IsFalse)
	c.Check(b.Len(), gc.Equals, 3)
	c.Check(b.Count(session.Create), gc.Equals, 1)
	c.Check(b.Count(session.Update), gc.Equals, 1)
	c.Check(b.Count(session.Delete), gc.Equals, 1)
}

type applySuite struct {
	testing.IsolationSuite

	cache  *thing.Cache
	site   *thing.Object
	domain *thing.Object
}

var _ = gc.Suite(&applySuite{})

func (s *applySuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.cache = thing.NewCache()
	s.site = thing.New(thing.SiteDirectory)
	s.domain = thing.New(thing.DomainOfExpertise).SetField(thing.AttrName, "Power")
	c.Assert(s.site.AddChild(s.domain), jc.ErrorIsNil)
	s.cache.Put(s.site, s.domain)
}

func (s *applySuite) batch() *session.Batch {
	return session.NewBatch(session.SiteDirectoryContext(s.site.ID))
}

func (s *applySuite) TestCreateLinksClonesIntoContainer(c *gc.C) {
	def := thing.New(thing.Definition).SetField(thing.AttrContent, "text")
	def.Container = s.domain.ID
	citation := thing.New(thing.Citation)
	c.Assert(def.AddChild(citation), jc.ErrorIsNil)

	err := session.Apply(s.cache, *s.batch().Create(def, def, citation))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.cache.Len(), gc.Equals, 4)
	c.Check(s.domain.HasChild(def.ID), jc.IsTrue)

	stored, ok := s.cache.Get(def.Key())
	c.Assert(ok, jc.IsTrue)
	c.Check(stored, gc.Not(gc.Equals), def)
	c.Check(def.IsCached(), jc.IsFalse)
	c.Check(stored.Revision, gc.Equals, 1)
}

func (s *applySuite) TestCreateExistingFails(c *gc.C) {
	err := session.Apply(s.cache, *s.batch().Create(s.domain.Clone()))
	c.Check(err, jc.Satisfies, errors.IsAlreadyExists)
}

func (s *applySuite) TestUpdateAppliesDelta(c *gc.C) {
	working := s.domain.Clone().SetField(thing.AttrShortName, "PWR")
	b := s.batch()
	c.Assert(b.Update(s.domain, working), jc.IsTrue)

	c.Assert(session.Apply(s.cache, *b), jc.ErrorIsNil)
	c.Check(s.domain.Field(thing.AttrShortName), gc.Equals, "PWR")
	c.Check(s.domain.Field(thing.AttrName), gc.Equals, "Power")
	c.Check(s.domain.Revision, gc.Equals, 1)
}

func (s *applySuite) TestDeleteDetaches(c *gc.C) {
	c.Assert(session.Apply(s.cache, *s.batch().Delete(s.domain)), jc.ErrorIsNil)
	c.Check(s.cache.Contains(s.domain.Key()), jc.IsFalse)
	c.Check(s.site.HasChild(s.domain.ID), jc.IsFalse)
}

func (s *applySuite) TestBatchCheckedBeforeChange(c *gc.C) {
	fresh := thing.New(thing.Person)
	fresh.Container = s.site.ID
	b := s.batch().Create(fresh).Delete(thing.New(thing.Alias))

	err := session.Apply(s.cache, *b)
	c.Check(err, jc.Satisfies, errors.IsNotFound)
	c.Check(s.cache.Contains(fresh.Key()), jc.IsFalse)
}
