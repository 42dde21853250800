// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package biometric gates credential retrieval behind an OS-level
// user-presence check (Touch ID, a fingerprint reader, or whatever the
// platform offers).
//
// The platform primitive is event driven: a prompt is presented and
// its outcome arrives later, on a thread the platform owns. Await
// bridges that shape into the synchronous call the rest of Veil wants:
// start the operation, park the caller on a one-shot completion
// signal, resolve to a single error value. The wait carries a hard
// deadline so a prompt dismissed through system UI (which can leave
// the completion callback unfired) cannot hang the CLI forever.
//
// The production Gate is HelperGate, which drives the veil-localauth
// helper binary. The helper owns the platform framework linkage; its
// contract with Veil is two subcommands (probe, verify) and three exit
// codes (granted, denied, unavailable), with diagnostics on stderr.
package biometric
