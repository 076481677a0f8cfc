// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package memory provides a repository server held in process memory,
// and sessions connected to it. It backs dry runs and tests.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

var logger = loggo.GetLogger("sat.session.memory")

// Server is an in-memory repository. Objects added to it are owned by
// the server; sessions only ever see clones.
type Server struct {
	mu        sync.Mutex
	store     *thing.Cache
	passwords map[string]string
	readHook  func(session.ReadRequest) error
	writeHook func(session.Batch) error
	reads     []session.ReadRequest
	writes    []session.Batch
}

// NewServer returns an empty server without users.
func NewServer() *Server {
	return &Server{
		store:     thing.NewCache(),
		passwords: make(map[string]string),
	}
}

// Add stores objs on the server.
func (s *Server) Add(objs ...*thing.Object) {
	s.store.Put(objs...)
}

// AddUser lets username log in with password.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[username] = password
}

// SetPassword changes the password of username.
func (s *Server) SetPassword(username, password string) {
	s.AddUser(username, password)
}

// SetReadHook installs f to run before every iteration read. A non-nil
// result fails the read.
func (s *Server) SetReadHook(f func(session.ReadRequest) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readHook = f
}

// SetWriteHook installs f to run before every write. A non-nil result
// fails the write.
func (s *Server) SetWriteHook(f func(session.Batch) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeHook = f
}

// Get returns the stored object with key.
func (s *Server) Get(key thing.Key) (*thing.Object, bool) {
	return s.store.Get(key)
}

// Has reports whether key is stored.
func (s *Server) Has(key thing.Key) bool {
	return s.store.Contains(key)
}

// Len returns the number of stored objects.
func (s *Server) Len() int {
	return s.store.Len()
}

// Objects returns every stored object in cache order.
func (s *Server) Objects() []*thing.Object {
	return s.store.Objects()
}

// Reads returns the iteration reads attempted so far.
func (s *Server) Reads() []session.ReadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.ReadRequest(nil), s.reads...)
}

// Writes returns the batches applied so far.
func (s *Server) Writes() []session.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Batch(nil), s.writes...)
}

// NewSession returns a closed session that will log in with creds.
func (s *Server) NewSession(creds session.Credentials) *Session {
	return &Session{
		server:     s,
		creds:      creds,
		cache:      thing.NewCache(),
		iterations: make(map[uuid.UUID]session.Participation),
	}
}

func (s *Server) authenticate(creds session.Credentials) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	password, ok := s.passwords[creds.Username]
	return ok && password == creds.Password
}

func (s *Server) read(req session.ReadRequest) error {
	s.mu.Lock()
	s.reads = append(s.reads, req)
	hook := s.readHook
	s.mu.Unlock()
	if hook != nil {
		return hook(req)
	}
	return nil
}

func (s *Server) write(batch session.Batch) error {
	s.mu.Lock()
	hook := s.writeHook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(batch); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := session.Apply(s.store, batch); err != nil {
		return err
	}
	s.writes = append(s.writes, batch)
	return nil
}

// siteDirectory returns clones of the stored site directory subtree.
func (s *Server) siteDirectory() []*thing.Object {
	sites := s.store.OfKind(thing.SiteDirectory)
	if len(sites) == 0 {
		return nil
	}
	return cloneAll(thing.Subtree(s.store, sites[0]))
}

func cloneAll(objs []*thing.Object) []*thing.Object {
	clones := make([]*thing.Object, len(objs))
	for i, obj := range objs {
		clones[i] = obj.Clone()
	}
	return clones
}
