// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the veil configuration file.
//
// Configuration lives in a single YAML file: the path named by the
// VEIL_CONFIG environment variable when set, otherwise
// $XDG_CONFIG_HOME/veil/config.yaml. A missing file at the default
// location is not an error; [Default] describes a working
// installation and most hosts never write a config at all. A file
// that exists but fails to parse or validate is reported, never
// silently ignored.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${VEIL_STATE}, and ${VAR:-fallback} patterns are expanded,
// with ${VEIL_STATE} resolving to the loaded state directory so the
// vault can follow it. Environment variables do not otherwise
// override file values.
//
// The default_account key is the one machine-written field:
// [SetDefaultAccount] rewrites the file in place and preserves the
// other keys. Everything else is edited by the user.
//
// This package depends on no other veil packages.
package config
