// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package events defines the progress and log messages emitted by the
// migration, repair and synchronization stages, and the sinks that carry
// them to a single consumer.
package events

import (
	"fmt"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Event is one of LogEntry or ChartMarker.
type Event interface {
	event()
}

// LogEntry is a line of operator-facing log output.
type LogEntry struct {
	Message string
	Level   Level
	// Err is the failure that caused the entry, if any.
	Err error
	// Origin names the stage that emitted the entry.
	Origin string
}

func (LogEntry) event() {}

func (e LogEntry) String() string {
	s := fmt.Sprintf("[%s] %s", e.Origin, e.Message)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// ChartMarker asks the operator surface to annotate its progress chart.
type ChartMarker struct {
	Label string
	Time  time.Time
}

func (ChartMarker) event() {}

// Sink receives events. Implementations must be safe to call from any
// goroutine.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Publisher stamps log entries with an origin before handing them to a
// sink.
type Publisher struct {
	sink   Sink
	origin string
}

// NewPublisher returns a Publisher for origin. A nil sink discards.
func NewPublisher(sink Sink, origin string) Publisher {
	if sink == nil {
		sink = Discard
	}
	return Publisher{sink: sink, origin: origin}
}

// Sink returns the underlying sink.
func (p Publisher) Sink() Sink {
	return p.sink
}

func (p Publisher) log(level Level, err error, format string, args []interface{}) {
	p.sink.Publish(LogEntry{
		Message: fmt.Sprintf(format, args...),
		Level:   level,
		Err:     err,
		Origin:  p.origin,
	})
}

func (p Publisher) Debugf(format string, args ...interface{}) {
	p.log(Debug, nil, format, args)
}

func (p Publisher) Infof(format string, args ...interface{}) {
	p.log(Info, nil, format, args)
}

func (p Publisher) Warnf(format string, args ...interface{}) {
	p.log(Warn, nil, format, args)
}

// Errorf publishes an Error entry carrying err.
func (p Publisher) Errorf(err error, format string, args ...interface{}) {
	p.log(Error, err, format, args)
}

// Mark publishes a chart marker.
func (p Publisher) Mark(label string, at time.Time) {
	p.sink.Publish(ChartMarker{Label: label, Time: at})
}
