// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"fmt"
	"os"
	"runtime"
)

// Backend kinds accepted in configuration.
const (
	BackendAuto     = "auto"
	BackendSecurity = "security"
	BackendKeyring  = "keyring"
	BackendFile     = "file"
)

// ResolveBackend returns the Backend for the configured kind. vaultDir
// is where the file backend keeps its vault and is required even for
// auto, which may fall back to it.
//
// Auto selection is deterministic per host rather than probed per
// call: the macOS security tool when present, the platform keyring
// where a daemon is reachable, the file vault everywhere else.
func ResolveBackend(kind, vaultDir string) (Backend, error) {
	switch kind {
	case "", BackendAuto:
		return autoBackend(vaultDir), nil
	case BackendSecurity:
		return NewSecurityBackend(""), nil
	case BackendKeyring:
		return KeyringBackend{}, nil
	case BackendFile:
		return NewFileBackend(vaultDir), nil
	default:
		return nil, fmt.Errorf("unknown keystore backend %q (want %s, %s, %s, or %s)",
			kind, BackendAuto, BackendSecurity, BackendKeyring, BackendFile)
	}
}

func autoBackend(vaultDir string) Backend {
	switch runtime.GOOS {
	case "darwin":
		if backend := NewSecurityBackend(""); backend.Usable() {
			return backend
		}
	case "linux":
		// The Secret Service needs a session bus; without one the
		// keyring calls hang or fail slowly, so skip straight to the
		// vault.
		if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
			return KeyringBackend{}
		}
	}
	return NewFileBackend(vaultDir)
}
