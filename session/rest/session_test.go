// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rest_test

import (
	"context"
	"net/http/httptest"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/memory"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/rest"
	sattesting "github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/testing"
)

type sessionSuite struct {
	testing.IsolationSuite

	graph   *sattesting.Graph
	backend *memory.Server
	fake    *fakeServer
	server  *httptest.Server
	session *rest.Session
}

var _ = gc.Suite(&sessionSuite{})

func (s *sessionSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.graph = sattesting.NewGraph()
	s.graph.AddModel("Alpha", 1)
	s.backend = memory.NewServer()
	s.graph.Install(s.backend)
	s.fake = newFakeServer(s.backend)
	s.server = httptest.NewServer(s.fake.handler())
	s.AddCleanup(func(*gc.C) { s.server.Close() })

	var err error
	s.session, err = rest.New(rest.Config{
		Credentials: sattesting.Credentials(s.server.URL),
		HTTPClient:  s.server.Client(),
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *sessionSuite) TestConfigValidate(c *gc.C) {
	_, err := rest.New(rest.Config{})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (s *sessionSuite) TestOpen(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	c.Check(s.session.IsOpen(), jc.IsTrue)
	c.Check(s.session.ActivePerson().ID, gc.Equals, s.graph.Person.ID)
	site, err := s.session.RetrieveSiteDirectory()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(site.ID, gc.Equals, s.graph.Site.ID)
	c.Check(site.Children[thing.FieldDomain], jc.DeepEquals, s.graph.Site.Children[thing.FieldDomain])

	reqs := s.fake.Requests()
	c.Assert(reqs, gc.HasLen, 1)
	c.Check(reqs[0].URL.RawQuery, gc.Equals, "extent=deep&includeReferenceData=true")
	c.Check(reqs[0].Header.Get("User-Agent"), gc.Equals, "SAT")
	c.Check(reqs[0].Header.Get("Accept"), gc.Equals, "application/json")
	username, password, ok := reqs[0].BasicAuth()
	c.Check(ok, jc.IsTrue)
	c.Check(username, gc.Equals, sattesting.Username)
	c.Check(password, gc.Equals, sattesting.Password)
}

func (s *sessionSuite) TestOpenUnauthorized(c *gc.C) {
	creds := s.session.Credentials()
	creds.Password = "wrong"
	s.session.SetCredentials(creds)
	err := s.session.Open(context.Background())
	c.Check(err, jc.Satisfies, errors.IsUnauthorized)
	c.Check(s.session.IsOpen(), jc.IsFalse)
}

func (s *sessionSuite) TestReadIteration(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	m := s.graph.Models[0]
	req := session.ReadRequest{Model: m.Model.ID, Iteration: m.Iterations[0].ID, Domain: s.graph.Domain.ID}
	c.Assert(s.session.Read(context.Background(), req), jc.ErrorIsNil)

	iteration, ok := s.session.Cache().Get(m.Iterations[0].Key())
	c.Assert(ok, jc.IsTrue)
	subtree := thing.Subtree(s.session.Cache(), iteration)
	c.Check(subtree, gc.HasLen, 4)
	for _, obj := range subtree[1:] {
		c.Check(obj.Iteration, gc.Equals, iteration.ID)
	}
	c.Check(s.session.OpenIterations()[iteration.ID], jc.DeepEquals, session.Participation{
		Domain:      s.graph.Domain.ID,
		Participant: m.Participant.ID,
	})
	c.Check(s.fake.Requests()[1].URL.RawQuery, gc.Equals, "extent=deep")
}

func (s *sessionSuite) TestReadMissingIteration(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	err := s.session.Read(context.Background(), session.ReadRequest{
		Model:     s.graph.Models[0].Model.ID,
		Iteration: thing.NewID(),
	})
	c.Check(err, jc.Satisfies, errors.IsNotFound)
}

func (s *sessionSuite) TestWriteCreates(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	alias := thing.New(thing.Alias).
		SetField(thing.AttrContent, "power").
		SetField(thing.AttrLanguageCode, "en")
	alias.Container = s.graph.Domain.ID
	batch := session.NewBatch(session.SiteDirectoryContext(s.graph.Site.ID)).Create(alias)

	c.Assert(s.session.Write(context.Background(), *batch), jc.ErrorIsNil)
	c.Check(s.backend.Has(alias.Key()), jc.IsTrue)

	domain, ok := s.session.Cache().Get(s.graph.Domain.Key())
	c.Assert(ok, jc.IsTrue)
	c.Check(domain.HasChild(alias.ID), jc.IsTrue)
	c.Check(s.session.Cache().Contains(alias.Key()), jc.IsTrue)
}

func (s *sessionSuite) TestWriteDeleteUncachedIsLogged(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	alias := thing.New(thing.Alias).
		SetField(thing.AttrContent, "power").
		SetField(thing.AttrLanguageCode, "en")
	alias.Container = s.graph.Domain.ID
	ctx := session.SiteDirectoryContext(s.graph.Site.ID)
	c.Assert(s.session.Write(context.Background(), *session.NewBatch(ctx).Create(alias)), jc.ErrorIsNil)
	_, err := s.session.Cache().Detach(alias.Key())
	c.Assert(err, jc.ErrorIsNil)

	writer := &loggo.TestWriter{}
	c.Assert(loggo.RegisterWriter("rest-test", writer), jc.ErrorIsNil)
	s.AddCleanup(func(*gc.C) { loggo.RemoveWriter("rest-test") })
	logger := loggo.GetLogger("sat.session.rest")
	level := logger.LogLevel()
	logger.SetLogLevel(loggo.DEBUG)
	s.AddCleanup(func(*gc.C) { logger.SetLogLevel(level) })

	c.Assert(s.session.Write(context.Background(), *session.NewBatch(ctx).Delete(alias)), jc.ErrorIsNil)
	c.Check(s.backend.Has(alias.Key()), jc.IsFalse)

	var messages []string
	for _, entry := range writer.Log() {
		if entry.Module == "sat.session.rest" && entry.Level == loggo.DEBUG {
			messages = append(messages, entry.Message)
		}
	}
	c.Assert(messages, gc.HasLen, 1)
	c.Check(messages[0], gc.Matches, `cache out of step with SiteDirectory/.* after write: object .* not found`)
}

func (s *sessionSuite) TestWriteConflict(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	batch := session.NewBatch(session.SiteDirectoryContext(s.graph.Site.ID)).Create(s.graph.Domain.Clone())
	err := s.session.Write(context.Background(), *batch)
	c.Check(err, gc.ErrorMatches, `writing to SiteDirectory/.*: POST SiteDirectory/.*: 409 Conflict: .*`)
}

func (s *sessionSuite) TestReadRequiresOpen(c *gc.C) {
	err := s.session.Read(context.Background(), session.ReadRequest{})
	c.Check(err, gc.ErrorMatches, "session is not open")
	c.Check(s.fake.Requests(), gc.HasLen, 0)
}

func (s *sessionSuite) TestRefresh(c *gc.C) {
	c.Assert(s.session.Open(context.Background()), jc.ErrorIsNil)
	alias := thing.New(thing.Alias)
	c.Assert(s.graph.Domain.AddChild(alias), jc.ErrorIsNil)
	s.backend.Add(alias)

	c.Assert(s.session.Refresh(context.Background()), jc.ErrorIsNil)
	c.Check(s.session.Cache().Contains(alias.Key()), jc.IsTrue)
}
