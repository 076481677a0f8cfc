// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"net"
	"net/http"
	"os"

	"github.com/juju/clock"
	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
	"github.com/juju/worker/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/config"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/rest"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/worker/eventlog"
)

var logger = loggo.GetLogger("sat.cmd.sat")

// newSession returns a session for creds. It is a variable so tests can
// substitute in-memory servers.
var newSession = func(creds session.Credentials) (session.Session, error) {
	s, err := rest.New(rest.Config{Credentials: creds})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return s, nil
}

// satCommandBase holds what every sat subcommand shares: the
// configuration file and the event plumbing.
type satCommandBase struct {
	cmd.CommandBase

	configFile cmd.FileVar
	config     *config.Config
	clock      clock.Clock
}

// SetFlags is part of cmd.Command.
func (c *satCommandBase) SetFlags(f *gnuflag.FlagSet) {
	f.Var(&c.configFile, "config", "Path to the YAML configuration file")
}

// loadConfig reads the configuration file, or starts from the defaults
// when none is given.
func (c *satCommandBase) loadConfig(ctx *cmd.Context) error {
	if c.clock == nil {
		c.clock = clock.WallClock
	}
	var err error
	if c.configFile.Path != "" {
		if c.config, err = config.Read(ctx.AbsPath(c.configFile.Path)); err != nil {
			return errors.Trace(err)
		}
	} else {
		c.config = config.Default()
		c.config.ApplyEnv(os.LookupEnv)
	}
	c.config.BaseDir = ctx.AbsPath(c.config.BaseDir)
	if c.config.MigrationFile != "" {
		c.config.MigrationFile = ctx.AbsPath(c.config.MigrationFile)
	}
	if err := c.config.Validate(); err != nil {
		return errors.Trace(err)
	}
	if c.config.Logging != "" {
		if err := loggo.ConfigureLoggers(c.config.Logging); err != nil {
			return errors.Annotate(err, "configuring logging")
		}
	}
	return nil
}

// runtime delivers the events of one command run to the log, and
// serves its metrics when an address is configured.
type runtime struct {
	hub       *events.Hub
	log       *eventlog.Worker
	collector *metrics.Collector
	server    *http.Server
}

// start wires the event hub to a log worker and starts the metrics
// endpoint.
func (c *satCommandBase) start() (*runtime, error) {
	if loggo.GetLogger("sat.events").LogLevel() == loggo.UNSPECIFIED {
		loggo.GetLogger("sat.events").SetLogLevel(loggo.INFO)
	}
	hub := events.NewHub()
	w, err := eventlog.NewWorker(eventlog.Config{Hub: hub})
	if err != nil {
		return nil, errors.Trace(err)
	}
	rt := &runtime{hub: hub, log: w, collector: metrics.NewCollector()}
	if addr := c.config.MetricsAddr; addr != "" {
		if err := rt.serveMetrics(addr); err != nil {
			worker.Stop(w)
			return nil, errors.Trace(err)
		}
	}
	return rt, nil
}

func (rt *runtime) serveMetrics(addr string) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(rt.collector); err != nil {
		return errors.Trace(err)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Annotatef(err, "listening on %s", addr)
	}
	rt.server = &http.Server{
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := rt.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
	logger.Infof("serving metrics on %s", listener.Addr())
	return nil
}

// stop waits for every published event to be logged and reports the
// warning and error counts.
func (rt *runtime) stop(ctx *cmd.Context) {
	if rt.server != nil {
		if err := rt.server.Shutdown(context.Background()); err != nil {
			logger.Warningf("stopping metrics server: %v", err)
		}
	}
	rt.hub.Wait()
	if err := worker.Stop(rt.log); err != nil {
		logger.Warningf("stopping event log: %v", err)
	}
	summary := rt.log.Summary()
	if summary.Warn > 0 || summary.Error > 0 {
		ctx.Infof("%d warning(s), %d error(s)", summary.Warn, summary.Error)
	}
}

// open logs in to the server described by creds.
func open(ctx context.Context, creds session.Credentials) (session.Session, error) {
	s, err := newSession(creds)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := s.Open(ctx); err != nil {
		return nil, errors.Annotatef(err, "logging in to %s", creds.URI)
	}
	return s, nil
}

// openBoth logs in to the source and target servers concurrently.
func openBoth(ctx context.Context, cfg *config.Config) (source, target session.Session, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = open(gctx, cfg.Source)
		return errors.Annotate(err, "source")
	})
	g.Go(func() error {
		var err error
		target, err = open(gctx, cfg.Target)
		return errors.Annotate(err, "target")
	})
	if err := g.Wait(); err != nil {
		closeAll(source, target)
		return nil, nil, errors.Trace(err)
	}
	return source, target, nil
}

func closeAll(sessions ...session.Session) {
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			logger.Warningf("closing session to %s: %v", s.Credentials().URI, err)
		}
	}
}
