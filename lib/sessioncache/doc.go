// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessioncache keeps the durable per-account record of a
// previously trusted session.
//
// Each account owns one directory under the cache root, holding the
// transport's cookie jar and client identifier plus the trust marker
// this package writes. The marker is the session artifact proper: its
// presence is what "a trusted session exists for this account" means,
// and it is written only after the remote service confirmed the
// session (including two-factor trust when that was required). The
// jar and client identifier on their own prove nothing, since they
// appear as soon as a login is attempted.
//
// The marker binds itself to the jar it described by digest, so a jar
// rewritten after the marker (a later failed login, manual edits)
// invalidates the trust claim on load instead of silently vouching
// for different cookies.
package sessioncache
