// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
)

const (
	// ImportEndpoint is the path, relative to the target's base URI,
	// that accepts archive uploads.
	ImportEndpoint = "Data/Import"

	userAgent = "SAT"
)

// ExportConfig holds the dependencies of an Exporter.
type ExportConfig struct {
	Sink events.Sink
	// HTTPClient defaults to a client without a timeout. Uploads can
	// be large and slow, and must not be cut short.
	HTTPClient *http.Client
	// Collector is optional.
	Collector *metrics.Collector
}

// Validate returns an error if the config cannot be used.
func (config ExportConfig) Validate() error {
	if config.Sink == nil {
		return errors.NotValidf("nil Sink")
	}
	return nil
}

// Exporter uploads archives to a target server.
type Exporter struct {
	pub       events.Publisher
	client    *http.Client
	collector *metrics.Collector

	mu     sync.Mutex
	staged string
}

// NewExporter returns an Exporter using config.
func NewExporter(config ExportConfig) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	return &Exporter{
		pub:       events.NewPublisher(config.Sink, ExportOrigin),
		client:    client,
		collector: config.Collector,
	}, nil
}

// StagePassword makes the next re-login of the target use password.
func (e *Exporter) StagePassword(password string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.staged = password
}

func (e *Exporter) takeStaged() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	password := e.staged
	e.staged = ""
	return password
}

// Export uploads the archive at archivePath to target, unlocked by the
// target's current password. The target is opened first if its site
// directory cannot be retrieved. The upload consumes the credential, so
// target always logs in again afterwards, with the staged password when
// there is one.
func (e *Exporter) Export(ctx context.Context, target session.Session, archivePath string) bool {
	if target == nil {
		e.pub.Warnf("Please select the target session")
		return false
	}
	defer func() {
		if err := session.Relogin(context.WithoutCancel(ctx), target, e.takeStaged()); err != nil {
			e.pub.Errorf(err, "Re-login of the target session failed")
		}
	}()
	if _, err := target.RetrieveSiteDirectory(); err != nil {
		if err := target.Open(ctx); err != nil {
			e.pub.Errorf(err, "Opening the target session failed")
			return false
		}
	}

	resp, sent, err := e.upload(ctx, target.Credentials(), archivePath)
	if err != nil {
		e.pub.Errorf(err, "Uploading %s failed", archivePath)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.pub.Errorf(errors.New(resp.Status), "Upload of %s was rejected", filepath.Base(archivePath))
		return false
	}
	e.collector.Uploaded(sent)
	e.pub.Infof("Uploaded %s (%s): %s", filepath.Base(archivePath), humanize.Bytes(uint64(sent)), resp.Status)
	return true
}

// upload posts the multipart body, streaming the archive through a pipe
// so it is never held in memory.
func (e *Exporter) upload(ctx context.Context, creds session.Credentials, archivePath string) (*http.Response, int64, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, 0, errors.Annotate(err, "opening archive")
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	var sent atomic.Int64
	go func() {
		pw.CloseWithError(writeBody(mw, f, filepath.Base(archivePath), creds.Password, &sent))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BaseURI()+ImportEndpoint, pr)
	if err != nil {
		pr.Close()
		return nil, 0, errors.Annotate(err, "cannot create upload request")
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	pr.Close()
	if err != nil {
		return nil, 0, errors.Trace(err)
	}
	return resp, sent.Load(), nil
}

func writeBody(mw *multipart.Writer, archive io.Reader, name, password string, sent *atomic.Int64) error {
	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	fileHeader.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(fileHeader)
	if err != nil {
		return errors.Trace(err)
	}
	n, err := io.Copy(part, archive)
	sent.Store(n)
	if err != nil {
		return errors.Annotate(err, "streaming archive")
	}

	passwordHeader := make(textproto.MIMEHeader)
	passwordHeader.Set("Content-Disposition", `form-data; name="password"`)
	passwordHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err = mw.CreatePart(passwordHeader)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := io.WriteString(part, password); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(mw.Close())
}
