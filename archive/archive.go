// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package archive writes and reads the portable migration archive. The
// writer is a throwaway session whose backing store is a local zip file;
// every entry is sealed with a key derived from a shared secret.
package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

var logger = loggo.GetLogger("sat.archive")

const (
	// Dir is the directory, relative to the base directory, that holds
	// the archive and the staged side file.
	Dir = "Import"

	// FileName is the name of the archive file.
	FileName = "Annex-C3.zip"

	// SideFileName is the name the migration descriptor is staged and
	// archived under.
	SideFileName = "migration.json"

	// DefaultSecret seals archives packaged without a target session.
	DefaultSecret = "pass"

	headerName = "header.json"
	format     = "sat-archive/1"
)

// Path returns the archive location under baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, Dir, FileName)
}

// SideFilePath returns where the side file is staged under baseDir.
func SideFilePath(baseDir string) string {
	return filepath.Join(baseDir, Dir, SideFileName)
}

type header struct {
	Format string `json:"format"`
	Salt   []byte `json:"salt"`
}

type entry struct {
	name string
	data []byte
}

// Session writes batches into an archive at a path. Nothing touches the
// disk until Close, which writes the whole archive through a temporary
// file in the same directory.
type Session struct {
	path  string
	cache *thing.Cache

	mu      sync.Mutex
	secret  string
	open    bool
	entries []entry
	written int
}

var _ session.Session = (*Session)(nil)

// NewSession returns a closed session for the archive at path, sealed
// with secret.
func NewSession(path, secret string) *Session {
	return &Session{
		path:   path,
		secret: secret,
		cache:  thing.NewCache(),
	}
}

// Open is part of session.Session.
func (s *Session) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Annotate(err, "creating archive directory")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.entries = nil
	s.written = 0
	return nil
}

// Write is part of session.Session. Each batch becomes one entry named
// after its context.
func (s *Session) Write(ctx context.Context, batch session.Batch) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	data, err := session.NewEnvelope(batch).Marshal()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.add(batch.Context.Path()+".json", data))
}

// AddFile stores the contents of the file at path under name.
func (s *Session) AddFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Annotatef(err, "reading %s", name)
	}
	return errors.Trace(s.add(name, data))
}

func (s *Session) add(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errors.New("archive session is not open")
	}
	for _, e := range s.entries {
		if e.name == name {
			return errors.AlreadyExistsf("archive entry %q", name)
		}
	}
	s.entries = append(s.entries, entry{name: name, data: data})
	return nil
}

// Close is part of session.Session. It writes the archive, replacing
// any earlier one at the same path.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	s.cache.Clear()
	entries := s.entries
	s.entries = nil
	if err := s.flush(entries); err != nil {
		return errors.Annotatef(err, "writing archive %s", s.path)
	}
	s.written = len(entries)
	logger.Debugf("wrote %d entries to %s", len(entries), s.path)
	return nil
}

// Abort closes the session without writing anything. An archive already
// at the path is left as it was.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	s.open = false
	s.cache.Clear()
	logger.Debugf("dropped %d unwritten entries for %s", len(s.entries), s.path)
	s.entries = nil
}

func (s *Session) flush(entries []entry) (err error) {
	salt, err := newSalt()
	if err != nil {
		return errors.Trace(err)
	}
	k, err := deriveKey(s.secret, salt)
	if err != nil {
		return errors.Trace(err)
	}
	tempFile, err := os.CreateTemp(filepath.Dir(s.path), ".sat-archive-")
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	zw := zip.NewWriter(tempFile)
	hdr, err := json.Marshal(header{Format: format, Salt: salt})
	if err != nil {
		return errors.Trace(err)
	}
	if err := writeEntry(zw, headerName, hdr); err != nil {
		return errors.Trace(err)
	}
	for _, e := range entries {
		sealed, err := seal(k, e.data)
		if err != nil {
			return errors.Trace(err)
		}
		if err := writeEntry(zw, e.name, sealed); err != nil {
			return errors.Trace(err)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Trace(err)
	}
	if err := tempFile.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tempFile.Name(), s.path))
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return errors.Annotatef(err, "creating entry %q", name)
	}
	_, err = w.Write(data)
	return errors.Annotatef(err, "writing entry %q", name)
}

// Written returns the number of entries written by the last Close.
func (s *Session) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Path returns the location of the archive.
func (s *Session) Path() string {
	return s.path
}

// IsOpen is part of session.Session.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Refresh is part of session.Session.
func (s *Session) Refresh(ctx context.Context) error {
	return errors.Trace(ctx.Err())
}

// Read is part of session.Session. Archives are write-only.
func (s *Session) Read(context.Context, session.ReadRequest) error {
	return errors.NotSupportedf("reading from an archive")
}

// RetrieveSiteDirectory is part of session.Session.
func (s *Session) RetrieveSiteDirectory() (*thing.Object, error) {
	return nil, errors.NotFoundf("site directory in archive")
}

// OpenIterations is part of session.Session.
func (s *Session) OpenIterations() map[uuid.UUID]session.Participation {
	return map[uuid.UUID]session.Participation{}
}

// ActivePerson is part of session.Session.
func (s *Session) ActivePerson() *thing.Object {
	return nil
}

// Credentials is part of session.Session. The password is the secret.
func (s *Session) Credentials() session.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Credentials{
		URI:      fmt.Sprintf("file://%s", filepath.ToSlash(s.path)),
		Password: s.secret,
	}
}

// SetCredentials is part of session.Session. Only the password is used.
func (s *Session) SetCredentials(creds session.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = creds.Password
}

// Cache is part of session.Session.
func (s *Session) Cache() *thing.Cache {
	return s.cache
}
