// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import "errors"

// DefaultService is the fixed namespace shared by every Veil entry in
// the OS keystore. Accounts distinguish entries within it.
const DefaultService = "com.veilmail.cli"

// ErrNotFound means no entry exists for the requested account. It is
// distinct from StoreError: callers routinely branch on it (setup
// prompts, idempotent deletes) while StoreError means the storage
// layer itself misbehaved.
var ErrNotFound = errors.New("no keystore entry for account")

// Backend is raw keyed secret storage. Implementations map their
// platform's failures to ErrNotFound or *StoreError and never leak
// platform error types past this boundary.
//
// Backends carry none of Veil's policy: Add may reject duplicates,
// Delete on a missing entry returns ErrNotFound, and nothing here
// consults the biometric gate. Store layers the policy on top.
type Backend interface {
	// Add writes a new entry. The secret is borrowed for the duration
	// of the call; the backend must not retain the slice.
	Add(service, account string, value []byte) error

	// Find returns the stored secret, or ErrNotFound. Ownership of
	// the returned slice passes to the caller, who may zero it;
	// backends must not hand out a slice they retain.
	Find(service, account string) ([]byte, error)

	// Exists reports whether an entry is present without reading the
	// secret material, so it can never trigger an OS access prompt.
	Exists(service, account string) (bool, error)

	// Delete removes the entry, or returns ErrNotFound.
	Delete(service, account string) error
}
