// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package eventstest

import (
	"strings"
	"sync"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
)

// Recorder is a Sink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish is part of events.Sink.
func (r *Recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Entries returns the recorded log entries with one of the given levels,
// or all of them when no level is given.
func (r *Recorder) Entries(levels ...events.Level) []events.LogEntry {
	var entries []events.LogEntry
	for _, e := range r.Events() {
		entry, ok := e.(events.LogEntry)
		if !ok {
			continue
		}
		if len(levels) == 0 {
			entries = append(entries, entry)
			continue
		}
		for _, l := range levels {
			if entry.Level == l {
				entries = append(entries, entry)
				break
			}
		}
	}
	return entries
}

// Messages returns the messages of the entries at level.
func (r *Recorder) Messages(level events.Level) []string {
	var msgs []string
	for _, e := range r.Entries(level) {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// WithPrefix returns the entries at level whose message starts with prefix.
func (r *Recorder) WithPrefix(level events.Level, prefix string) []events.LogEntry {
	var entries []events.LogEntry
	for _, e := range r.Entries(level) {
		if strings.HasPrefix(e.Message, prefix) {
			entries = append(entries, e)
		}
	}
	return entries
}

// Markers returns the recorded chart markers.
func (r *Recorder) Markers() []events.ChartMarker {
	var markers []events.ChartMarker
	for _, e := range r.Events() {
		if m, ok := e.(events.ChartMarker); ok {
			markers = append(markers, m)
		}
	}
	return markers
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
