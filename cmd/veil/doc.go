// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Veil is the CLI for managing veilmail forwarding aliases. It provides
// subcommands for credential setup and session management (setup,
// login, logout, status), alias management (list, search, create,
// update, activate, deactivate, delete), and an interactive full-screen
// browser (browse).
package main
