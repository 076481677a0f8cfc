// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package events

import (
	"sync"

	"github.com/juju/loggo/v2"
	"github.com/juju/pubsub/v2"
)

const (
	// LogTopic carries LogEntry values.
	LogTopic = "sat.log"
	// MarkerTopic carries ChartMarker values.
	MarkerTopic = "sat.chart-marker"
)

// Hub is a Sink that fans events out to subscribers over a pubsub hub.
// Each subscriber sees events in publication order.
type Hub struct {
	hub *pubsub.SimpleHub

	mu   sync.Mutex
	last func()
}

// NewHub returns a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("sat.events.hub"),
		}),
	}
}

// Publish sends e on the topic matching its shape.
func (h *Hub) Publish(e Event) {
	var topic string
	switch e.(type) {
	case LogEntry:
		topic = LogTopic
	case ChartMarker:
		topic = MarkerTopic
	default:
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = h.hub.Publish(topic, e)
}

// Wait blocks until every subscriber has handled every event published
// before the call. Subscribers see events in order, so waiting on the
// most recent publication covers the earlier ones.
func (h *Hub) Wait() {
	h.mu.Lock()
	wait := h.last
	h.mu.Unlock()
	if wait != nil {
		wait()
	}
}

// Subscribe registers handler for every event shape and returns a
// function that removes the subscription.
func (h *Hub) Subscribe(handler func(Event)) func() {
	return h.hub.SubscribeMatch(isEventTopic, func(_ string, data interface{}) {
		if e, ok := data.(Event); ok {
			handler(e)
		}
	})
}

// SubscribeLog registers handler for log entries only.
func (h *Hub) SubscribeLog(handler func(LogEntry)) func() {
	return h.hub.Subscribe(LogTopic, func(_ string, data interface{}) {
		if e, ok := data.(LogEntry); ok {
			handler(e)
		}
	})
}

func isEventTopic(topic string) bool {
	return topic == LogTopic || topic == MarkerTopic
}
