// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Veil packages,
// currently bounded channel receives so tests never hang on a bridge
// that fails to deliver.
package testutil
