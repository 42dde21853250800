// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringBackend stores entries in the platform keyring service
// (Secret Service over D-Bus on Linux, Windows Credential Manager,
// the login keychain on macOS). It is the default on hosts where the
// security tool is unavailable but a keyring daemon runs.
type KeyringBackend struct{}

func (KeyringBackend) Add(service, account string, value []byte) error {
	if err := keyring.Set(service, account, string(value)); err != nil {
		return &StoreError{Detail: fmt.Sprintf("keyring set: %v", err)}
	}
	return nil
}

func (KeyringBackend) Find(service, account string) ([]byte, error) {
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Detail: fmt.Sprintf("keyring get: %v", err)}
	}
	return []byte(value), nil
}

func (KeyringBackend) Exists(service, account string) (bool, error) {
	// The keyring API has no attribute-only lookup; the value is read
	// and dropped. Keyring daemons do not prompt per read, so this
	// stays prompt-free like the other backends.
	_, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return false, nil
		}
		return false, &StoreError{Detail: fmt.Sprintf("keyring get: %v", err)}
	}
	return true, nil
}

func (KeyringBackend) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return &StoreError{Detail: fmt.Sprintf("keyring delete: %v", err)}
	}
	return nil
}
