// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements the credential and session commands: setup,
// login, logout, and status. The commands wrap lib/authflow and
// lib/keystore, providing prompts, flag parsing, and output formatting;
// the flow semantics live in the libraries.
package auth
