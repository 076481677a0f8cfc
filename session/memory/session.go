// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

// Session is a session.Session connected to a Server.
type Session struct {
	server *Server
	cache  *thing.Cache

	mu         sync.Mutex
	creds      session.Credentials
	open       bool
	person     *thing.Object
	iterations map[uuid.UUID]session.Participation
}

var _ session.Session = (*Session)(nil)

// Open is part of session.Session.
func (s *Session) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	creds := s.Credentials()
	if !s.server.authenticate(creds) {
		return errors.Unauthorizedf("invalid credentials for %q", creds.Username)
	}
	s.cache.Clear()
	site := s.server.siteDirectory()
	if len(site) == 0 {
		return errors.NotFoundf("site directory")
	}
	s.cache.Put(site...)

	var person *thing.Object
	for _, p := range s.cache.OfKind(thing.Person) {
		if p.Field(thing.AttrShortName) == creds.Username {
			person = p
			break
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.person = person
	s.iterations = make(map[uuid.UUID]session.Participation)
	logger.Debugf("%s logged in to %s", creds.Username, creds.URI)
	return nil
}

// Close is part of session.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.person = nil
	s.iterations = make(map[uuid.UUID]session.Participation)
	s.cache.Clear()
	return nil
}

// IsOpen is part of session.Session.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Refresh is part of session.Session.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.checkOpen(ctx); err != nil {
		return errors.Trace(err)
	}
	for _, site := range s.cache.OfKind(thing.SiteDirectory) {
		for _, obj := range thing.Subtree(s.cache, site) {
			s.cache.Remove(obj.Key())
		}
	}
	s.cache.Put(s.server.siteDirectory()...)
	return nil
}

// Read is part of session.Session.
func (s *Session) Read(ctx context.Context, req session.ReadRequest) error {
	if err := s.checkOpen(ctx); err != nil {
		return errors.Trace(err)
	}
	if err := s.server.read(req); err != nil {
		return errors.Trace(err)
	}
	model, ok := s.server.Get(thing.Key{ID: req.Model})
	if !ok || model.Kind != thing.EngineeringModel {
		return errors.NotFoundf("engineering model %s", req.Model)
	}
	iteration, ok := s.server.Get(thing.Key{ID: req.Iteration})
	if !ok || !model.HasChild(iteration.ID) {
		return errors.NotFoundf("iteration %s of model %s", req.Iteration, req.Model)
	}
	s.cache.Put(model.Clone())
	s.cache.Put(cloneAll(thing.Subtree(s.server.store, iteration))...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterations[req.Iteration] = session.Participation{
		Domain:      req.Domain,
		Participant: s.participant(req.Model),
	}
	return nil
}

// participant returns the participant of the active person in the setup
// of model, or uuid.Nil. Callers hold s.mu.
func (s *Session) participant(model uuid.UUID) uuid.UUID {
	if s.person == nil {
		return uuid.Nil
	}
	for _, setup := range s.cache.OfKind(thing.EngineeringModelSetup) {
		if setup.Ref(thing.RefEngineeringModel) != model {
			continue
		}
		for _, id := range setup.Children[thing.FieldParticipant] {
			p, ok := s.cache.Get(thing.Key{ID: id})
			if ok && p.Ref(thing.RefPerson) == s.person.ID {
				return p.ID
			}
		}
	}
	return uuid.Nil
}

// Write is part of session.Session.
func (s *Session) Write(ctx context.Context, batch session.Batch) error {
	if err := s.checkOpen(ctx); err != nil {
		return errors.Trace(err)
	}
	if err := s.server.write(batch); err != nil {
		return errors.Annotatef(err, "writing to %s", batch.Context)
	}
	if err := session.Apply(s.cache, batch); err != nil {
		logger.Debugf("cache out of step with %s after write: %v", batch.Context, err)
	}
	return nil
}

// RetrieveSiteDirectory is part of session.Session.
func (s *Session) RetrieveSiteDirectory() (*thing.Object, error) {
	sites := s.cache.OfKind(thing.SiteDirectory)
	if len(sites) == 0 {
		return nil, errors.NotFoundf("site directory")
	}
	return sites[0], nil
}

// OpenIterations is part of session.Session.
func (s *Session) OpenIterations() map[uuid.UUID]session.Participation {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uuid.UUID]session.Participation, len(s.iterations))
	for id, p := range s.iterations {
		result[id] = p
	}
	return result
}

// ActivePerson is part of session.Session.
func (s *Session) ActivePerson() *thing.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.person
}

// Credentials is part of session.Session.
func (s *Session) Credentials() session.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// SetCredentials is part of session.Session.
func (s *Session) SetCredentials(creds session.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

// Cache is part of session.Session.
func (s *Session) Cache() *thing.Cache {
	return s.cache
}

func (s *Session) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.IsOpen() {
		return errors.New("session is not open")
	}
	return nil
}
