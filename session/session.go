// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package session describes a connection to a repository server and the
// operation batches written through it.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

// Credentials identify the acting user on one server.
type Credentials struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Validate returns an error if the credentials cannot be used to log in.
func (c Credentials) Validate() error {
	if c.URI == "" {
		return errors.NotValidf("empty URI")
	}
	if c.Username == "" {
		return errors.NotValidf("empty Username")
	}
	return nil
}

// BaseURI returns URI with a trailing slash.
func (c Credentials) BaseURI() string {
	if strings.HasSuffix(c.URI, "/") {
		return c.URI
	}
	return c.URI + "/"
}

// Participation records the domain and participant an iteration was
// opened with.
type Participation struct {
	Domain      uuid.UUID
	Participant uuid.UUID
}

// ReadRequest names an iteration subtree to read, and the domain of
// expertise to read it as.
type ReadRequest struct {
	Model     uuid.UUID
	Iteration uuid.UUID
	Domain    uuid.UUID
}

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/session_mock.go github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session Session

// Session is one authenticated connection to a repository server. The
// objects it reads are materialized in its cache.
type Session interface {
	// Open logs in and reads the site directory, including reference
	// data, into the cache.
	Open(ctx context.Context) error

	// Close logs out and empties the cache.
	Close() error

	// IsOpen reports whether the session is logged in.
	IsOpen() bool

	// Refresh re-reads the site directory into the cache.
	Refresh(ctx context.Context) error

	// Read reads the iteration subtree named by req into the cache.
	Read(ctx context.Context, req ReadRequest) error

	// Write applies batch on the server and mirrors it in the cache.
	Write(ctx context.Context, batch Batch) error

	// RetrieveSiteDirectory returns the cached site directory.
	RetrieveSiteDirectory() (*thing.Object, error)

	// OpenIterations returns the iterations read so far, keyed by
	// iteration identity.
	OpenIterations() map[uuid.UUID]Participation

	// ActivePerson returns the person the session is logged in as, or
	// nil when the session is closed.
	ActivePerson() *thing.Object

	// Credentials returns the credentials in use.
	Credentials() Credentials

	// SetCredentials replaces the credentials used by the next Open.
	SetCredentials(Credentials)

	// Cache returns the session's object cache.
	Cache() *thing.Cache
}

// Relogin closes s if it is open, rotates in newPassword when it is not
// empty, and opens s again.
func Relogin(ctx context.Context, s Session, newPassword string) error {
	if s.IsOpen() {
		if err := s.Close(); err != nil {
			return errors.Annotate(err, "closing session")
		}
	}
	if newPassword != "" {
		creds := s.Credentials()
		creds.Password = newPassword
		s.SetCredentials(creds)
	}
	return errors.Annotate(s.Open(ctx), "reopening session")
}

// SiteDirectory returns the site directory cached by s, or a NotFound
// error if s is nil or closed.
func SiteDirectory(s Session) (*thing.Object, error) {
	if s == nil || !s.IsOpen() {
		return nil, errors.NotFoundf("site directory of closed session")
	}
	site, err := s.RetrieveSiteDirectory()
	return site, errors.Trace(err)
}
