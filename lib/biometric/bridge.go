// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package biometric

import (
	"context"
	"time"

	"github.com/veilmail/veil/lib/clock"
)

// DefaultVerifyTimeout bounds a verification attempt when the caller
// supplies no deadline of its own. Long enough for a user to find the
// sensor, short enough that an orphaned prompt does not park the CLI
// indefinitely.
const DefaultVerifyTimeout = 2 * time.Minute

// Await runs one verification attempt to completion. start launches
// the platform operation and arranges for report to be called with the
// outcome, nil meaning granted. report is safe to call from any
// goroutine; calls after the first are dropped, so a platform that
// fires its callback twice cannot corrupt the result or block its own
// thread.
//
// Await parks the caller until the outcome arrives, ctx is cancelled,
// or timeout elapses (zero means DefaultVerifyTimeout). The timer is
// driven by clk; pass nil for the wall clock.
func Await(ctx context.Context, clk clock.Clock, timeout time.Duration, start func(report func(error))) error {
	if clk == nil {
		clk = clock.Real()
	}
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}

	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	start(report)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-clk.After(timeout):
		return ErrTimeout
	}
}
