// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package biometric

import (
	"context"
	"errors"
)

var (
	// ErrDenied means the user failed or dismissed the verification
	// prompt. Stored secrets must not be released on this path.
	ErrDenied = errors.New("biometric verification denied")

	// ErrUnavailable means no verification prompt can be presented at
	// all (no sensor, nothing enrolled, no device passcode). Callers
	// treat this as "proceed without a gate", not as a failure.
	ErrUnavailable = errors.New("biometric verification unavailable")

	// ErrTimeout means the platform never resolved the prompt within
	// the deadline.
	ErrTimeout = errors.New("biometric verification timed out")
)

// Gate is the user-presence check consulted before a stored secret is
// released.
type Gate interface {
	// Available reports whether a verification prompt can be presented
	// right now. The answer is recomputed on every call: device state
	// (passcode, sensor enrollment) can change between invocations, so
	// implementations must not cache it.
	Available() bool

	// Verify presents a challenge described by reason and blocks until
	// the user responds, ctx is cancelled, or the implementation's
	// deadline expires. A nil return releases the gate.
	Verify(ctx context.Context, reason string) error
}

// NopGate is the Gate for platforms with no verification capability
// and for configurations that disable it. It reports unavailable, so
// retrieval proceeds ungated.
type NopGate struct{}

func (NopGate) Available() bool { return false }

func (NopGate) Verify(ctx context.Context, reason string) error { return ErrUnavailable }
