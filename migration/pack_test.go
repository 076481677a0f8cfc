// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/archive"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/migration"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	sattesting "github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/testing"
)

type packSuite struct {
	baseSuite

	packager *migration.Packager
	sideFile string
}

var _ = gc.Suite(&packSuite{})

func (s *packSuite) SetUpTest(c *gc.C) {
	s.baseSuite.SetUpTest(c)
	var err error
	s.packager, err = migration.NewPackager(migration.PackConfig{
		Sink:    s.recorder,
		BaseDir: s.baseDir,
	})
	c.Assert(err, jc.ErrorIsNil)

	s.sideFile = filepath.Join(c.MkDir(), "descriptor.json")
	c.Assert(os.WriteFile(s.sideFile, []byte(`{"models":2}`), 0644), jc.ErrorIsNil)

	s.importAlpha(c)
}

func (s *packSuite) importAlpha(c *gc.C) {
	importer, err := migration.NewImporter(migration.ImportConfig{Sink: s.recorder, Clock: s.clock})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(importer.Import(context.Background(), s.source, s.modelIDs("Alpha")), jc.IsTrue)
	s.recorder.Reset()
}

func (s *packSuite) TestConfigValidate(c *gc.C) {
	_, err := migration.NewPackager(migration.PackConfig{Sink: s.recorder})
	c.Check(err, gc.ErrorMatches, "empty BaseDir not valid")
	_, err = migration.NewPackager(migration.PackConfig{BaseDir: s.baseDir})
	c.Check(err, gc.ErrorMatches, "nil Sink not valid")
}

func (s *packSuite) TestArchivePath(c *gc.C) {
	c.Check(s.packager.ArchivePath(), gc.Equals, filepath.Join(s.baseDir, "Import", "Annex-C3.zip"))
}

func (s *packSuite) TestMissingSideFile(c *gc.C) {
	missing := filepath.Join(s.baseDir, "nope.json")
	c.Check(s.packager.Pack(context.Background(), s.source, s.target, missing), jc.IsFalse)
	c.Check(s.recorder.Messages(events.Warn), jc.DeepEquals, []string{
		"The migration file " + missing + " does not exist",
	})
	c.Check(s.source.OpenIterations(), gc.HasLen, 2)
	_, err := os.Stat(s.packager.ArchivePath())
	c.Check(os.IsNotExist(err), jc.IsTrue)
}

func (s *packSuite) TestNoSource(c *gc.C) {
	c.Check(s.packager.Pack(context.Background(), nil, s.target, ""), jc.IsFalse)
	c.Check(s.recorder.Messages(events.Warn), jc.DeepEquals, []string{"Please select the source session"})
}

func (s *packSuite) TestPack(c *gc.C) {
	ok := s.packager.Pack(context.Background(), s.source, s.target, s.sideFile)
	c.Assert(ok, jc.IsTrue)
	c.Check(s.recorder.Entries(events.Error), gc.HasLen, 0)
	c.Check(s.recorder.WithPrefix(events.Info, "Packaged 2 iteration(s) into "+s.packager.ArchivePath()), gc.HasLen, 1)

	staged, err := os.ReadFile(archive.SideFilePath(s.baseDir))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(staged), gc.Equals, `{"models":2}`)

	r, err := archive.OpenReader(s.packager.ArchivePath(), sattesting.Password)
	c.Assert(err, jc.ErrorIsNil)
	defer r.Close()

	alpha := s.graph.Models[1]
	names := make(map[string]bool)
	for _, e := range r.Entries() {
		names[e.Name] = true
	}
	c.Check(names, gc.HasLen, 3)
	c.Check(names[archive.SideFileName], jc.IsTrue)
	for _, it := range alpha.Iterations {
		name := session.IterationContext(alpha.Model.ID, it.ID).Path() + ".json"
		c.Assert(names[name], jc.IsTrue, gc.Commentf("missing %s", name))
		objs, err := r.Objects(name)
		c.Assert(err, jc.ErrorIsNil)
		// The iteration, its element, parameter and value set.
		c.Check(objs, gc.HasLen, 4)
		c.Check(objs[0].ID, gc.Equals, it.ID)
	}
	side, err := r.ReadFile(archive.SideFileName)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(side), gc.Equals, `{"models":2}`)

	// Packaging discards what was read, by logging in again.
	c.Check(s.source.IsOpen(), jc.IsTrue)
	c.Check(s.source.OpenIterations(), gc.HasLen, 0)
}

func (s *packSuite) TestWithoutTargetUsesDefaultSecret(c *gc.C) {
	c.Assert(s.packager.Pack(context.Background(), s.source, nil, ""), jc.IsTrue)

	r, err := archive.OpenReader(s.packager.ArchivePath(), archive.DefaultSecret)
	c.Assert(err, jc.ErrorIsNil)
	defer r.Close()
	entries := r.Entries()
	c.Assert(entries, gc.HasLen, 2)
	_, err = r.ReadFile(entries[0].Name)
	c.Check(err, jc.ErrorIsNil)
}

func (s *packSuite) TestWrongSecretIsRejected(c *gc.C) {
	s.target.SetCredentials(session.Credentials{
		URI:      s.upload.URL,
		Username: sattesting.Username,
		Password: "other",
	})
	c.Assert(s.packager.Pack(context.Background(), s.source, s.target, ""), jc.IsTrue)

	r, err := archive.OpenReader(s.packager.ArchivePath(), sattesting.Password)
	c.Assert(err, jc.ErrorIsNil)
	defer r.Close()
	_, err = r.ReadFile(r.Entries()[0].Name)
	c.Check(err, jc.Satisfies, errors.IsUnauthorized)
}

func (s *packSuite) failingPackager(c *gc.C, failAfter int) *migration.Packager {
	packager, err := migration.NewPackager(migration.PackConfig{
		Sink:    s.recorder,
		BaseDir: s.baseDir,
		NewArchive: func(path, secret string) migration.ArchiveWriter {
			return &failingArchive{Session: archive.NewSession(path, secret), failAfter: failAfter}
		},
	})
	c.Assert(err, jc.ErrorIsNil)
	return packager
}

func (s *packSuite) TestWriteFailure(c *gc.C) {
	packager := s.failingPackager(c, 0)

	c.Check(packager.Pack(context.Background(), s.source, s.target, ""), jc.IsFalse)
	failures := s.recorder.Entries(events.Error)
	c.Assert(failures, gc.HasLen, 1)
	c.Check(failures[0].Message, gc.Equals, "Packaging failed")
	c.Check(failures[0].Err, gc.ErrorMatches, "writing iteration .*: disk full")

	// Nothing is left on disk.
	_, err := os.Stat(packager.ArchivePath())
	c.Check(err, jc.Satisfies, os.IsNotExist)

	// The source logs in again even though packaging failed.
	c.Check(s.source.IsOpen(), jc.IsTrue)
	c.Check(s.source.OpenIterations(), gc.HasLen, 0)
}

func (s *packSuite) TestWriteFailureKeepsEarlierArchive(c *gc.C) {
	c.Assert(s.packager.Pack(context.Background(), s.source, s.target, ""), jc.IsTrue)
	before, err := os.ReadFile(s.packager.ArchivePath())
	c.Assert(err, jc.ErrorIsNil)

	s.importAlpha(c)
	c.Assert(s.source.OpenIterations(), gc.HasLen, 2)
	c.Check(s.failingPackager(c, 1).Pack(context.Background(), s.source, s.target, ""), jc.IsFalse)

	after, err := os.ReadFile(s.packager.ArchivePath())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(after, jc.DeepEquals, before)
}

func (s *packSuite) TestAbortWritesNothing(c *gc.C) {
	path := filepath.Join(c.MkDir(), "Import", "Annex-C3.zip")
	arch := archive.NewSession(path, sattesting.Password)
	c.Assert(arch.Open(context.Background()), jc.ErrorIsNil)
	c.Assert(arch.AddFile(archive.SideFileName, s.sideFile), jc.ErrorIsNil)
	arch.Abort()

	c.Check(arch.IsOpen(), jc.IsFalse)
	c.Check(arch.Written(), gc.Equals, 0)
	_, err := os.Stat(path)
	c.Check(err, jc.Satisfies, os.IsNotExist)
	c.Check(arch.Close(), jc.ErrorIsNil)
	_, err = os.Stat(path)
	c.Check(err, jc.Satisfies, os.IsNotExist)
}

// failingArchive fails every write after the first failAfter.
type failingArchive struct {
	*archive.Session
	failAfter int
	writes    int
}

func (a *failingArchive) Write(ctx context.Context, batch session.Batch) error {
	a.writes++
	if a.writes > a.failAfter {
		return errors.New("disk full")
	}
	return a.Session.Write(ctx, batch)
}
