// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the veil CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a parameter struct
// factory, and a Run function. Commands are assembled into a tree in
// cmd/veil/main.go and dispatched via [Command.Execute], which handles
// flag parsing, subcommand routing, and structured help output with
// examples. Run receives a signal-aware context and a structured
// logger; commands never install their own signal handlers.
//
// Parameter structs declare their flags with struct tags (see
// [BindFlags]) and may embed [JSONOutput] for --json support or
// [AccountFlags] for the shared --config/--account/--url selection
// flags. [AccountFlags.Connect] turns that selection into a fully
// wired [Connection]: config, credential store, verification gate,
// session cache, relay client, and the authentication manager.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Errors returned by commands are categorized via [CommandError] so
// main can map them to exit codes without parsing message text;
// [ExitError] forces a bare exit code for commands whose non-zero
// exits are answers rather than failures.
package cli
