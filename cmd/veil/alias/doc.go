// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package alias implements the alias management commands: list,
// search, create, update, activate, deactivate, and delete. Each
// command authenticates through cmd/veil/auth and operates on the
// account's aliases via the relay package. The interactive browser
// lives in the browser subpackage so the TUI dependency closure is
// only linked where it is used.
package alias
