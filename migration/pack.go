// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/archive"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

// ArchiveWriter is the disposable session the packager writes through.
// Close writes the archive; Abort drops what was added.
type ArchiveWriter interface {
	session.Session
	AddFile(name, path string) error
	Abort()
}

// PackConfig holds the dependencies of a Packager.
type PackConfig struct {
	Sink events.Sink
	// BaseDir holds the Import directory the archive is written to.
	BaseDir string
	// NewArchive defaults to archive.NewSession.
	NewArchive func(path, secret string) ArchiveWriter
}

// Validate returns an error if the config cannot be used.
func (config PackConfig) Validate() error {
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	if config.BaseDir == "" {
		return errors.NotValidf("empty BaseDir")
	}
	return nil
}

// Packager serializes the open iterations of a session into an archive.
type Packager struct {
	pub        events.Publisher
	baseDir    string
	newArchive func(path, secret string) ArchiveWriter
}

// NewPackager returns a Packager using config.
func NewPackager(config PackConfig) (*Packager, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	newArchive := config.NewArchive
	if newArchive == nil {
		newArchive = func(path, secret string) ArchiveWriter {
			return archive.NewSession(path, secret)
		}
	}
	return &Packager{
		pub:        events.NewPublisher(config.Sink, PackOrigin),
		baseDir:    config.BaseDir,
		newArchive: newArchive,
	}, nil
}

// ArchivePath returns where Pack writes the archive.
func (p *Packager) ArchivePath() string {
	return archive.Path(p.baseDir)
}

// Pack writes one create batch per open iteration of src, and the side
// file when one is named, into the archive. The archive is sealed with
// the password of target, or with archive.DefaultSecret when target is
// nil. Once packaging has been attempted the source session logs in
// again, whatever the outcome.
func (p *Packager) Pack(ctx context.Context, src, target session.Session, sideFile string) bool {
	if src == nil {
		p.pub.Warnf("Please select the source session")
		return false
	}
	if sideFile != "" {
		if _, err := os.Stat(sideFile); err != nil {
			p.pub.Warnf("The migration file %s does not exist", sideFile)
			return false
		}
	}
	defer func() {
		if err := session.Relogin(context.WithoutCancel(ctx), src, ""); err != nil {
			p.pub.Errorf(err, "Re-login of the source session failed")
		}
	}()
	if err := p.pack(ctx, src, target, sideFile); err != nil {
		p.pub.Errorf(err, "Packaging failed")
		return false
	}
	return true
}

func (p *Packager) pack(ctx context.Context, src, target session.Session, sideFile string) error {
	staged := ""
	if sideFile != "" {
		staged = archive.SideFilePath(p.baseDir)
		if err := copyFile(sideFile, staged); err != nil {
			return errors.Annotate(err, "staging migration file")
		}
	}

	secret := archive.DefaultSecret
	if target != nil {
		secret = target.Credentials().Password
	}
	path := p.ArchivePath()
	arch := p.newArchive(path, secret)
	if err := arch.Open(ctx); err != nil {
		return errors.Trace(err)
	}
	done := false
	defer func() {
		if !done {
			arch.Abort()
		}
	}()

	iterations := src.OpenIterations()
	ids := make([]uuid.UUID, 0, len(iterations))
	for id := range iterations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		return bytes.Compare(ids[a][:], ids[b][:]) < 0
	})
	cache := src.Cache()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		iteration, ok := cache.Get(thing.Key{ID: id})
		if !ok {
			return errors.NotFoundf("open iteration %s", id)
		}
		subtree := thing.Subtree(cache, iteration)
		snapshot := make([]*thing.Object, len(subtree))
		for n, obj := range subtree {
			snapshot[n] = obj.Clone()
		}
		batch := session.NewBatch(session.IterationContext(iteration.Container, id)).
			Create(iteration.Clone(), snapshot...)
		if err := arch.Write(ctx, *batch); err != nil {
			return errors.Annotatef(err, "writing iteration %s", id)
		}
		logger.Debugf("packaged iteration %s with %d object(s)", id, len(snapshot))
	}
	if staged != "" {
		if err := arch.AddFile(archive.SideFileName, staged); err != nil {
			return errors.Trace(err)
		}
	}
	done = true
	if err := arch.Close(); err != nil {
		return errors.Trace(err)
	}

	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	p.pub.Infof("Packaged %d iteration(s) into %s (%s)", len(ids), path, size)
	return nil
}

func copyFile(from, to string) (err error) {
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return errors.Trace(err)
	}
	in, err := os.Open(from)
	if err != nil {
		return errors.Trace(err)
	}
	defer in.Close()
	out, err := os.Create(to)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = errors.Trace(closeErr)
		}
	}()
	_, err = io.Copy(out, in)
	return errors.Trace(err)
}
