// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package archive

import (
	"archive/zip"
	"encoding/json"
	"io"

	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

// Entry describes one sealed entry of an archive.
type Entry struct {
	Name string
	Size uint64
}

// Reader opens the entries of an archive.
type Reader struct {
	zr    *zip.ReadCloser
	key   *key
	files map[string]*zip.File
	names []Entry
}

// OpenReader opens the archive at path, unlocking it with secret. A
// wrong secret is only detected when an entry is read.
func OpenReader(path, secret string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening archive %s", path)
	}
	r := &Reader{zr: zr, files: make(map[string]*zip.File)}
	var hdr *header
	for _, f := range zr.File {
		if f.Name == headerName {
			data, err := readAll(f)
			if err != nil {
				zr.Close()
				return nil, errors.Trace(err)
			}
			hdr = &header{}
			if err := json.Unmarshal(data, hdr); err != nil {
				zr.Close()
				return nil, errors.Annotate(err, "decoding archive header")
			}
			continue
		}
		r.files[f.Name] = f
		r.names = append(r.names, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	if hdr == nil || hdr.Format != format {
		zr.Close()
		return nil, errors.NotValidf("archive %s without %s header", path, format)
	}
	if r.key, err = deriveKey(secret, hdr.Salt); err != nil {
		zr.Close()
		return nil, errors.Trace(err)
	}
	return r, nil
}

// Entries returns the sealed entries in archive order.
func (r *Reader) Entries() []Entry {
	return append([]Entry(nil), r.names...)
}

// ReadFile returns the unsealed contents of the entry name.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, errors.NotFoundf("archive entry %q", name)
	}
	sealed, err := readAll(f)
	if err != nil {
		return nil, errors.Trace(err)
	}
	plain, err := open(r.key, sealed)
	return plain, errors.Annotatef(err, "unsealing %q", name)
}

// Objects decodes the objects created by the batch entry name.
func (r *Reader) Objects(name string) ([]*thing.Object, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	env, err := session.UnmarshalEnvelope(data)
	if err != nil {
		return nil, errors.Trace(err)
	}
	objs, err := env.Created()
	return objs, errors.Trace(err)
}

// Close releases the archive file.
func (r *Reader) Close() error {
	return r.zr.Close()
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Annotatef(err, "opening entry %q", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	return data, errors.Annotatef(err, "reading entry %q", f.Name)
}
