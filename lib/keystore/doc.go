// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore stores account secrets in OS-protected storage.
//
// All entries live under one fixed service namespace
// (DefaultService), keyed by account name. Store is the only type
// callers touch: it wraps a Backend with the biometric gate and the
// replace-on-write and idempotent-delete semantics the rest of Veil
// relies on.
//
// The gate applies to retrieval only, never to writes. The storage
// APIs this package targets cannot attach a biometric policy
// atomically with the write (the macOS security tool stores the item
// first and ACLs it afterward, and a non-entitled process cannot close
// that gap), so enforcement happens when the secret is released.
// Existence probes bypass the gate entirely so that status displays
// never pop a prompt.
//
// Three backends cover the supported platforms: SecurityBackend
// drives the macOS security(1) tool, KeyringBackend uses the platform
// keyring service, and FileBackend keeps an age-encrypted vault
// directory for hosts with neither.
package keystore
