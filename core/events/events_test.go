// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package events_test

import (
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events/eventstest"
	sattesting "github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/testing"
)

type eventsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&eventsSuite{})

func (s *eventsSuite) TestPublisherStampsOrigin(c *gc.C) {
	recorder := eventstest.NewRecorder()
	pub := events.NewPublisher(recorder, "ModelImport")

	pub.Infof("read %d of %d", 1, 2)
	pub.Errorf(errors.New("boom"), "reading failed")
	pub.Mark("start", sattesting.ZeroTime())

	entries := recorder.Entries()
	c.Assert(entries, gc.HasLen, 2)
	c.Check(entries[0], jc.DeepEquals, events.LogEntry{
		Message: "read 1 of 2",
		Level:   events.Info,
		Origin:  "ModelImport",
	})
	c.Check(entries[1].Level, gc.Equals, events.Error)
	c.Check(entries[1].String(), gc.Equals, "[ModelImport] reading failed: boom")
	c.Check(recorder.Markers(), jc.DeepEquals, []events.ChartMarker{{
		Label: "start",
		Time:  sattesting.ZeroTime(),
	}})
}

func (s *eventsSuite) TestNilSinkDiscards(c *gc.C) {
	pub := events.NewPublisher(nil, "x")
	pub.Warnf("nobody hears this")
	c.Check(pub.Sink(), gc.NotNil)
}

func (s *eventsSuite) TestLevelString(c *gc.C) {
	c.Check(events.Warn.String(), gc.Equals, "WARN")
	c.Check(events.Level(42).String(), gc.Equals, "Level(42)")
}

func (s *eventsSuite) TestHubDeliversInOrder(c *gc.C) {
	hub := events.NewHub()
	received := make(chan events.Event, 10)
	unsubscribe := hub.Subscribe(func(e events.Event) {
		received <- e
	})
	defer unsubscribe()

	pub := events.NewPublisher(hub, "Sync")
	pub.Infof("one")
	pub.Mark("marker", sattesting.ZeroTime())
	pub.Infof("two")

	var got []events.Event
	for len(got) < 3 {
		select {
		case e := <-received:
			got = append(got, e)
		case <-time.After(sattesting.LongWait):
			c.Fatalf("timed out waiting for events, got %d", len(got))
		}
	}
	c.Check(got[0].(events.LogEntry).Message, gc.Equals, "one")
	c.Check(got[1].(events.ChartMarker).Label, gc.Equals, "marker")
	c.Check(got[2].(events.LogEntry).Message, gc.Equals, "two")
}

func (s *eventsSuite) TestHubSubscribeLogIgnoresMarkers(c *gc.C) {
	hub := events.NewHub()
	received := make(chan events.LogEntry, 10)
	unsubscribe := hub.SubscribeLog(func(e events.LogEntry) {
		received <- e
	})
	defer unsubscribe()

	hub.Publish(events.ChartMarker{Label: "ignored"})
	hub.Publish(events.LogEntry{Message: "kept"})

	select {
	case e := <-received:
		c.Check(e.Message, gc.Equals, "kept")
	case <-time.After(sattesting.LongWait):
		c.Fatalf("timed out waiting for log entry")
	}
	select {
	case e := <-received:
		c.Fatalf("unexpected entry %v", e)
	case <-time.After(sattesting.ShortWait):
	}
}

func (s *eventsSuite) TestHubWaitBlocksUntilHandled(c *gc.C) {
	hub := events.NewHub()
	hub.Wait()

	var mu sync.Mutex
	var handled int
	unsubscribe := hub.Subscribe(func(events.Event) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
	})
	defer unsubscribe()

	pub := events.NewPublisher(hub, "Stress")
	for i := 0; i < 10; i++ {
		pub.Infof("write %d", i)
	}
	pub.Mark("done", sattesting.ZeroTime())
	hub.Wait()

	mu.Lock()
	defer mu.Unlock()
	c.Check(handled, gc.Equals, 11)
}
