// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package eventlog provides the single consumer of stage events. Stages
// publish from whatever goroutine they run on; the worker receives the
// events in order and writes them to a loggo logger.
package eventlog

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/worker/v4"
	"gopkg.in/tomb.v2"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
)

// Subscriber is the part of events.Hub the worker needs.
type Subscriber interface {
	Subscribe(handler func(events.Event)) func()
}

// Logger is the part of loggo.Logger the worker writes to.
type Logger interface {
	Logf(level loggo.Level, message string, args ...interface{})
	Debugf(message string, args ...interface{})
}

// Config holds the dependencies of the worker.
type Config struct {
	Hub Subscriber
	// Logger defaults to the "sat.events" logger.
	Logger Logger
	// Buffer is the number of events held while the logger is busy.
	// It defaults to 256.
	Buffer int
}

// Validate ensures that the config values are valid.
func (config Config) Validate() error {
	if config.Hub == nil {
		return errors.NotValidf("nil Hub")
	}
	if config.Buffer < 0 {
		return errors.NotValidf("negative Buffer")
	}
	return nil
}

// Summary counts the events seen by the worker.
type Summary struct {
	Debug, Info, Warn, Error int
	Markers                  int
}

// Worker writes every published event to the logger.
type Worker struct {
	tomb   tomb.Tomb
	config Config
	events chan events.Event

	mu      sync.Mutex
	summary Summary
}

var _ worker.Worker = (*Worker)(nil)

// NewWorker subscribes to the hub and starts consuming.
func NewWorker(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.Buffer == 0 {
		config.Buffer = 256
	}
	if config.Logger == nil {
		config.Logger = loggo.GetLogger("sat.events")
	}
	w := &Worker{
		config: config,
		events: make(chan events.Event, config.Buffer),
	}
	unsubscribe := config.Hub.Subscribe(w.enqueue)
	w.tomb.Go(func() error {
		defer unsubscribe()
		return w.loop()
	})
	return w, nil
}

// enqueue runs on the hub's delivery goroutine. An event is only dropped
// when the buffer is full and the worker is already dying.
func (w *Worker) enqueue(e events.Event) {
	select {
	case w.events <- e:
		return
	default:
	}
	select {
	case w.events <- e:
	case <-w.tomb.Dying():
	}
}

func (w *Worker) loop() error {
	for {
		select {
		case <-w.tomb.Dying():
			w.drain()
			return tomb.ErrDying
		case e := <-w.events:
			w.handle(e)
		}
	}
}

// drain writes whatever was queued before the worker was killed.
func (w *Worker) drain() {
	for {
		select {
		case e := <-w.events:
			w.handle(e)
		default:
			return
		}
	}
}

func (w *Worker) handle(e events.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch e := e.(type) {
	case events.LogEntry:
		switch e.Level {
		case events.Debug:
			w.summary.Debug++
		case events.Info:
			w.summary.Info++
		case events.Warn:
			w.summary.Warn++
		case events.Error:
			w.summary.Error++
		}
		w.config.Logger.Logf(Level(e.Level), "%s", e.String())
	case events.ChartMarker:
		w.summary.Markers++
		w.config.Logger.Debugf("chart marker %q at %s", e.Label, e.Time.Format("15:04:05.000"))
	}
}

// Summary returns the counts of events handled so far.
func (w *Worker) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// Kill is part of the worker.Worker interface.
func (w *Worker) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *Worker) Wait() error {
	return w.tomb.Wait()
}

// Level returns the loggo level entries of level are written at.
func Level(level events.Level) loggo.Level {
	switch level {
	case events.Debug:
		return loggo.DEBUG
	case events.Info:
		return loggo.INFO
	case events.Warn:
		return loggo.WARNING
	case events.Error:
		return loggo.ERROR
	}
	return loggo.UNSPECIFIED
}
