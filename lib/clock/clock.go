// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads and timer waits so the
// biometric deadline and trust-marker timestamps are testable.
// Production code injects Real(); tests inject Fake() and advance it
// deterministically.
package clock

import "time"

// Clock is the minimal time surface Veil needs: a current-time read
// and a one-shot timer channel. Code that waits on time must take a
// Clock instead of calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once, after d has
	// elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time {
	if d <= 0 {
		channel := make(chan time.Time, 1)
		channel <- time.Now()
		return channel
	}
	return time.After(d)
}
