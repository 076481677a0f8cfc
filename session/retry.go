// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package session

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/events"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/metrics"
)

var logger = loggo.GetLogger("sat.session")

const (
	// DefaultWriteAttempts is the number of times a write is tried
	// before it is abandoned.
	DefaultWriteAttempts = 3

	// DefaultWriteDelay is the pause between two write attempts.
	DefaultWriteDelay = 10 * time.Millisecond
)

// RetryPolicy bounds the attempts made by WriteWithRetry.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
}

// DefaultRetryPolicy returns three attempts on the wall clock.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: DefaultWriteAttempts,
		Delay:    DefaultWriteDelay,
		Clock:    clock.WallClock,
	}
}

// Validate returns an error if the policy cannot drive retry.Call.
func (p RetryPolicy) Validate() error {
	if p.Attempts < 1 {
		return errors.NotValidf("%d attempts", p.Attempts)
	}
	if p.Delay <= 0 {
		return errors.NotValidf("delay %v", p.Delay)
	}
	if p.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// WriteWithRetry writes batch through s, trying up to policy.Attempts
// times. Every failed attempt is published as a warning carrying the
// attempt number; exhausting the budget publishes an error and reports
// false instead of returning the failure. A nil collector records
// nothing.
func WriteWithRetry(
	ctx context.Context,
	s Session,
	batch Batch,
	policy RetryPolicy,
	pub events.Publisher,
	collector *metrics.Collector,
) bool {
	if err := policy.Validate(); err != nil {
		pub.Errorf(err, "Invalid retry policy")
		collector.WriteFinished(metrics.Failed)
		return false
	}
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return s.Write(ctx, batch)
		},
		IsFatalError: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("write to %s failed on attempt %d: %v", batch.Context, attempt, err)
			pub.Warnf("Write to %s failed (attempt %d of %d): %v", batch.Context, attempt, policy.Attempts, err)
			if attempt < policy.Attempts {
				collector.WriteRetried()
			}
		},
		Attempts: policy.Attempts,
		Delay:    policy.Delay,
		Clock:    policy.Clock,
		Stop:     ctx.Done(),
	})
	if err == nil {
		collector.WriteFinished(metrics.Succeeded)
		return true
	}
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	pub.Errorf(err, "Write to %s abandoned after %d attempt(s)", batch.Context, policy.Attempts)
	collector.WriteFinished(metrics.Failed)
	return false
}
