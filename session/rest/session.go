// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package rest implements session.Session over the JSON/HTTP interface
// of a repository server.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

var logger = loggo.GetLogger("sat.session.rest")

// UserAgent is sent with every request.
const UserAgent = "SAT"

// queryOptions are the read parameters understood by the server.
type queryOptions struct {
	Extent               string `url:"extent,omitempty"`
	IncludeReferenceData bool   `url:"includeReferenceData,omitempty"`
}

// Config holds the parameters of a Session.
type Config struct {
	Credentials session.Credentials
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	return errors.Trace(config.Credentials.Validate())
}

// Session talks to one server over HTTP.
type Session struct {
	client *http.Client
	cache  *thing.Cache

	mu         sync.Mutex
	creds      session.Credentials
	open       bool
	person     *thing.Object
	iterations map[uuid.UUID]session.Participation
}

var _ session.Session = (*Session)(nil)

// New returns a closed session configured by config.
func New(config Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{
		client:     client,
		cache:      thing.NewCache(),
		creds:      config.Credentials,
		iterations: make(map[uuid.UUID]session.Participation),
	}, nil
}

// Open is part of session.Session.
func (s *Session) Open(ctx context.Context) error {
	objs, err := s.readSiteDirectory(ctx)
	if err != nil {
		return errors.Annotate(err, "opening session")
	}
	s.cache.Clear()
	s.cache.Put(objs...)

	creds := s.Credentials()
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
	if !s.IsOpen() {
		return errors.New("session is not open")
	}
	objs, err := s.readSiteDirectory(ctx)
	if err != nil {
		return errors.Annotate(err, "refreshing session")
	}
	for _, site := range s.cache.OfKind(thing.SiteDirectory) {
		for _, obj := range thing.Subtree(s.cache, site) {
			s.cache.Remove(obj.Key())
		}
	}
	s.cache.Put(objs...)
	return nil
}

func (s *Session) readSiteDirectory(ctx context.Context) ([]*thing.Object, error) {
	return s.get(ctx, "SiteDirectory", queryOptions{Extent: "deep", IncludeReferenceData: true})
}

// Read is part of session.Session.
func (s *Session) Read(ctx context.Context, req session.ReadRequest) error {
	if !s.IsOpen() {
		return errors.New("session is not open")
	}
	path := session.IterationContext(req.Model, req.Iteration).Path()
	objs, err := s.get(ctx, path, queryOptions{Extent: "deep"})
	if err != nil {
		return errors.Annotatef(err, "reading iteration %s", req.Iteration)
	}
	for _, obj := range objs {
		switch obj.Kind {
		case thing.EngineeringModel, thing.Iteration:
		default:
			obj.Iteration = req.Iteration
		}
	}
	s.cache.Put(objs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterations[req.Iteration] = session.Participation{
		Domain:      req.Domain,
		Participant: s.participant(req.Model),
	}
	return nil
}

// participant returns the participant of the active person in the
// setup of model, or uuid.Nil. Callers hold s.mu.
func (s *Session) participant(model uuid.UUID) uuid.UUID {
	if s.person == nil {
		return uuid.Nil
	}
	for _, setup := range s.cache.OfKind(thing.EngineeringModelSetup) {
		if setup.Ref(thing.RefEngineeringModel) != model {
			continue
		}
		for _, id := range setup.Children[thing.FieldParticipant] {
			if p, ok := s.cache.Get(thing.Key{ID: id}); ok && p.Ref(thing.RefPerson) == s.person.ID {
				return p.ID
			}
		}
	}
	return uuid.Nil
}

// Write is part of session.Session. The objects returned by the server
// replace their cached counterparts.
func (s *Session) Write(ctx context.Context, batch session.Batch) error {
	if !s.IsOpen() {
		return errors.New("session is not open")
	}
	body, err := session.NewEnvelope(batch).Marshal()
	if err != nil {
		return errors.Trace(err)
	}
	data, err := s.do(ctx, http.MethodPost, batch.Context.Path(), "", bytes.NewReader(body))
	if err != nil {
		return errors.Annotatef(err, "writing to %s", batch.Context)
	}
	objs, err := thing.DecodeJSON(data)
	if err != nil {
		return errors.Trace(err)
	}
	for _, obj := range objs {
		obj.Iteration = batch.Context.Iteration
		if obj.Kind == thing.Iteration {
			obj.Iteration = uuid.Nil
		}
	}
	for _, op := range batch.Operations {
		if op.Kind != session.Delete {
			continue
		}
		key := op.Subject().Key()
		if n, err := s.cache.Detach(key); err != nil {
			logger.Debugf("cache out of step with %s after write: %v", batch.Context, err)
		} else {
			logger.Tracef("detached %d cached object(s) under %s", n, key)
		}
	}
	s.cache.Put(objs...)
	return nil
}

func (s *Session) get(ctx context.Context, path string, opts queryOptions) ([]*thing.Object, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	data, err := s.do(ctx, http.MethodGet, path, values.Encode(), nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	objs, err := thing.DecodeJSON(data)
	return objs, errors.Trace(err)
}

func (s *Session) do(ctx context.Context, method, path, rawQuery string, body io.Reader) ([]byte, error) {
	creds := s.Credentials()
	url := creds.BaseURI() + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Annotate(err, "cannot create request")
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	logger.Tracef("%s %s", method, url)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotate(err, "cannot read response")
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.Unauthorizedf("%s %s", method, path)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFoundf("%s", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Errorf("%s %s: %s", method, path, statusText(resp, data))
	}
	return data, nil
}

func statusText(resp *http.Response, body []byte) string {
	if len(body) == 0 || len(body) > 512 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(body))
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
