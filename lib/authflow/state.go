// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package authflow

// State identifies where a single Authenticate call is in the flow.
// States advance strictly forward: resolving the credential precedes
// the sign-in, which precedes two-factor handling, which precedes the
// trust grant. StateAuthenticated and StateFailed are terminal for the
// call.
type State string

const (
	// StateUnauthenticated is the entry state of every call.
	StateUnauthenticated State = "unauthenticated"

	// StateResolvingCredential means the password is being pulled from
	// the credential store. Skipped when the caller supplies a secret.
	StateResolvingCredential State = "resolving_credential"

	// StateAttemptingLogin means the password sign-in is in flight.
	StateAttemptingLogin State = "attempting_login"

	// StateAwaitingTwoFactor means the service demanded a code and the
	// caller's provider is being consulted.
	StateAwaitingTwoFactor State = "awaiting_two_factor"

	// StateTrusting means a verified sign-in is being upgraded so later
	// sign-ins skip the two-factor challenge.
	StateTrusting State = "trusting"

	// StateAuthenticated is the terminal success state.
	StateAuthenticated State = "authenticated"

	// StateFailed is the terminal failure state; the returned FlowError
	// carries the kind.
	StateFailed State = "failed"
)
