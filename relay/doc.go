// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay wraps the Veil account service's HTTP API.
//
// The package provides two core types. [Client] is an unauthenticated
// handle on the service: it holds the base URL and HTTP transport and
// answers only the reachability probe ([Client.Ping]). [Session] binds a
// Client to one account's durable state on disk — a persistent cookie
// jar and a stable client ID — and performs the authenticated flow:
// password sign-in, two-factor verification, session trust, and the
// alias operations behind [Session.Aliases].
//
// Authentication is cookie-based. The service sets session cookies on
// sign-in and upgrades them when the client is trusted; the session's
// jar (github.com/juju/persistent-cookiejar) is written back to disk
// only after the service confirms an authentication step — a sign-in
// that still needs two-factor verification leaves nothing behind. The
// client ID is a UUID generated once per account and sent with every
// request; the service uses it to recognize previously trusted clients.
//
// All API errors are returned as [*APIError] with the service's error
// code and the HTTP status code. [IsAPIError] tests for a specific
// code. Transport failures (DNS, TLS, refused connections) are returned
// as wrapped errors that are not *APIError, so callers can tell a
// protocol rejection from an unreachable service.
package relay
