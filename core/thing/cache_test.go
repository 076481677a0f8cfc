// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing_test

import (
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

type cacheSuite struct {
	testing.IsolationSuite

	cache    *thing.Cache
	site     *thing.Object
	domain   *thing.Object
	def      *thing.Object
	citation *thing.Object
	rdl      *thing.Object
	source   *thing.Object
}

var _ = gc.Suite(&cacheSuite{})

func (s *cacheSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.cache = thing.NewCache()
	s.site = thing.New(thing.SiteDirectory).SetField(thing.AttrName, "site").SetField(thing.AttrShortName, "site")
	s.domain = thing.New(thing.DomainOfExpertise)
	s.def = thing.New(thing.Definition)
	s.citation = thing.New(thing.Citation)
	s.rdl = thing.New(thing.SiteReferenceDataLibrary)
	s.source = thing.New(thing.ReferenceSource)

	c.Assert(s.site.AddChild(s.domain), jc.ErrorIsNil)
	c.Assert(s.domain.AddChild(s.def), jc.ErrorIsNil)
	c.Assert(s.def.AddChild(s.citation), jc.ErrorIsNil)
	c.Assert(s.site.AddChild(s.rdl), jc.ErrorIsNil)
	c.Assert(s.rdl.AddChild(s.source), jc.ErrorIsNil)
	s.citation.SetRef(thing.RefSource, s.source.ID)

	s.cache.Put(s.site, s.domain, s.def, s.citation, s.rdl, s.source)
}

func (s *cacheSuite) TestPutMarksMembership(c *gc.C) {
	c.Check(s.domain.IsCached(), jc.IsTrue)
	c.Check(s.cache.Len(), gc.Equals, 6)

	clone := s.domain.Clone()
	c.Check(clone.IsCached(), jc.IsFalse)
	s.cache.Put(clone)
	c.Check(clone.IsCached(), jc.IsTrue)
	c.Check(s.domain.IsCached(), jc.IsFalse)
}

func (s *cacheSuite) TestAddChildRejectsWrongKind(c *gc.C) {
	err := s.domain.AddChild(thing.New(thing.FileType))
	c.Assert(err, gc.ErrorMatches, "DomainOfExpertise cannot contain FileType")
}

func (s *cacheSuite) TestSubtreeFollowsContainmentOnly(c *gc.C) {
	subtree := thing.Subtree(s.cache, s.domain)
	ids := make([]uuid.UUID, len(subtree))
	for i, obj := range subtree {
		ids[i] = obj.ID
	}
	// The citation references the source, but the source is contained
	// by the library, not the domain.
	c.Check(ids, jc.DeepEquals, []uuid.UUID{s.domain.ID, s.def.ID, s.citation.ID})
}

func (s *cacheSuite) TestSubtreeSkipsMissingChildren(c *gc.C) {
	s.cache.Remove(s.def.Key())
	subtree := thing.Subtree(s.cache, s.domain)
	c.Check(subtree, gc.HasLen, 1)
}

func (s *cacheSuite) TestRoute(c *gc.C) {
	route, err := thing.Route(s.cache, s.citation)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(route, gc.Equals, "/SiteDirectory/"+s.site.ID.String()+
		"/domain/"+s.domain.ID.String()+
		"/definition/"+s.def.ID.String()+
		"/citation/"+s.citation.ID.String())
}

func (s *cacheSuite) TestRouteMissingContainer(c *gc.C) {
	s.cache.Remove(s.domain.Key())
	_, err := thing.Route(s.cache, s.citation)
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}

func (s *cacheSuite) TestDetachRemovesSubtreeAndUnlinks(c *gc.C) {
	removed, err := s.cache.Detach(s.def.Key())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(removed, gc.Equals, 2)
	c.Check(s.domain.HasChild(s.def.ID), jc.IsFalse)
	c.Check(s.cache.Contains(s.citation.Key()), jc.IsFalse)
	c.Check(s.def.IsCached(), jc.IsFalse)
	c.Check(s.cache.Contains(s.source.Key()), jc.IsTrue)

	_, err = s.cache.Detach(s.def.Key())
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}

func (s *cacheSuite) TestObjectsOrdered(c *gc.C) {
	objs := s.cache.Objects()
	c.Assert(objs, gc.HasLen, 6)
	for i := 1; i < len(objs); i++ {
		c.Check(objs[i-1].Kind <= objs[i].Kind, jc.IsTrue)
	}
	c.Check(s.cache.OfKind(thing.Definition), jc.DeepEquals, []*thing.Object{s.def})
}

func (s *cacheSuite) TestIterationContext(c *gc.C) {
	model := thing.New(thing.EngineeringModel)
	iteration := thing.New(thing.Iteration)
	element := thing.New(thing.ElementDefinition)
	parameter := thing.New(thing.Parameter)
	c.Assert(model.AddChild(iteration), jc.ErrorIsNil)
	c.Assert(iteration.AddChild(element), jc.ErrorIsNil)
	c.Assert(element.AddChild(parameter), jc.ErrorIsNil)
	s.cache.Put(model, iteration, element, parameter)

	c.Check(iteration.Iteration, gc.Equals, uuid.Nil)
	c.Check(element.Iteration, gc.Equals, iteration.ID)
	c.Check(parameter.Iteration, gc.Equals, iteration.ID)

	parent, err := s.cache.Container(element)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(parent, gc.Equals, iteration)

	found, ok := s.cache.Lookup(parameter.ID)
	c.Assert(ok, jc.IsTrue)
	c.Check(found, gc.Equals, parameter)
	c.Check(thing.Subtree(s.cache, model), gc.HasLen, 4)
}

func (s *cacheSuite) TestClear(c *gc.C) {
	s.cache.Clear()
	c.Check(s.cache.Len(), gc.Equals, 0)
	c.Check(s.site.IsCached(), jc.IsFalse)
}

func (s *cacheSuite) TestCheck(c *gc.C) {
	fileType := thing.New(thing.FileType).
		SetField(thing.AttrName, "text").
		SetField(thing.AttrShortName, "txt")
	failures := fileType.Check(s.cache)
	c.Assert(failures, gc.HasLen, 1)
	c.Check(failures[0].Rule.Kind, gc.Equals, thing.RequiredField)
	c.Check(failures[0].Message, gc.Equals, "field Extension is null or empty")

	participant := thing.New(thing.Participant).SetRef(thing.RefPerson, uuid.New())
	failures = participant.Check(s.cache)
	c.Assert(failures, gc.HasLen, 1)
	c.Check(failures[0].Message, gc.Matches, "field Person references .* which is not in the cache")
	c.Check(participant.Check(nil), gc.HasLen, 0)

	valueSet := thing.New(thing.ParameterValueSet).
		SetValues(thing.AttrManual, "-").
		SetValues(thing.AttrComputed, "-").
		SetValues(thing.AttrReference, "-").
		SetValues(thing.AttrFormula, "-")
	failures = valueSet.Check(s.cache)
	c.Assert(failures, gc.HasLen, 1)
	c.Check(failures[0].Message, gc.Equals, "field Published has 0 elements, needs at least 1")
}
