// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package authflow coordinates the credential store, the biometric
// gate, the session cache, and the account service into one
// authentication flow with a fixed error taxonomy.
//
// [Manager.Authenticate] drives a single pass through the states in
// [State]: resolve the password (from the caller or the gated store),
// sign in, satisfy a two-factor challenge through the caller's
// provider, trust the session when it is not already trusted, and
// record the durable trust marker. Each step's success is a
// precondition for the next; nothing is retried automatically, and the
// session artifact is written only after the service has confirmed the
// flow. A failed call returns a [*FlowError] whose [Kind] tells the
// caller which remediation applies — run setup, retry the code, check
// the network — without parsing message text.
//
// The manager performs no implicit cleanup. When a setup-style flow
// fails on first authentication, deleting the just-stored credential
// and clearing the session directory is the command's decision; a
// transient network failure must not destroy a good credential.
//
// [Manager.IsSessionValid] is the cheap counterpart to a full
// authentication: it answers false unless a credential and a valid
// trust marker exist, and then confirms the saved session still signs
// in without a fresh two-factor challenge. Errors on that path are
// answered as "invalid", never propagated.
package authflow
