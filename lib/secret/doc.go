// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds sensitive byte strings — account passwords, TOTP
// seeds, two-factor codes in flight — in memory that the Go runtime
// cannot move, swap out, or dump.
//
// A Buffer is backed by an anonymous mmap region outside the Go heap:
// mlock pins it in physical RAM, madvise(MADV_DONTDUMP) excludes it
// from core dumps on Linux, and Close zeros it before unmapping. The garbage
// collector never sees the region, so no stray copies survive
// compaction or stack growth.
//
// The package enforces single ownership: whoever creates a Buffer (or
// receives one across an API boundary documented as transferring
// ownership) must Close it. Reads after Close panic — a use-after-free
// of secret material is a programming error worth crashing on.
package secret
