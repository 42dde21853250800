// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/veilmail/veil/lib/fingerprint"
)

// vaultKeyFile holds the vault's age identity, created on first use.
const vaultKeyFile = "vault.key"

// FileBackend keeps secrets in an age-encrypted vault directory. It is
// the fallback for hosts with neither the macOS security tool nor a
// keyring service; protection comes from filesystem permissions (0700
// directory, 0600 files) plus encryption under a per-vault x25519
// identity, so a leaked entry file alone reveals nothing.
//
// Entry files are named by an opaque digest of (service, account), so
// the directory listing does not reveal which accounts have stored
// secrets.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory and
// vault identity are created lazily on the first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) Add(service, account string, value []byte) error {
	identity, err := b.identity()
	if err != nil {
		return err
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, identity.Recipient())
	if err != nil {
		return &StoreError{Detail: fmt.Sprintf("starting vault encryption: %v", err)}
	}
	if _, err := writer.Write(value); err != nil {
		return &StoreError{Detail: fmt.Sprintf("encrypting vault entry: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return &StoreError{Detail: fmt.Sprintf("finalizing vault encryption: %v", err)}
	}

	if err := os.WriteFile(b.entryPath(service, account), ciphertext.Bytes(), 0o600); err != nil {
		return &StoreError{Detail: fmt.Sprintf("writing vault entry: %v", err)}
	}
	return nil
}

func (b *FileBackend) Find(service, account string) ([]byte, error) {
	data, err := os.ReadFile(b.entryPath(service, account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("reading vault entry: %v", err)}
	}

	identity, err := b.identity()
	if err != nil {
		return nil, err
	}

	reader, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("decrypting vault entry: %v", err)}
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("reading decrypted vault entry: %v", err)}
	}
	return plaintext, nil
}

func (b *FileBackend) Exists(service, account string) (bool, error) {
	_, err := os.Stat(b.entryPath(service, account))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Detail: fmt.Sprintf("probing vault entry: %v", err)}
	}
	return true, nil
}

func (b *FileBackend) Delete(service, account string) error {
	err := os.Remove(b.entryPath(service, account))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return &StoreError{Detail: fmt.Sprintf("removing vault entry: %v", err)}
	}
	return nil
}

func (b *FileBackend) entryPath(service, account string) string {
	name := fingerprint.Format(fingerprint.VaultEntry(service, account))
	return filepath.Join(b.dir, name+".age")
}

// identity loads the vault's age identity, generating and persisting
// one on first use.
func (b *FileBackend) identity() (*age.X25519Identity, error) {
	keyPath := filepath.Join(b.dir, vaultKeyFile)

	data, err := os.ReadFile(keyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return b.generateIdentity(keyPath)
	}
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("reading vault key: %v", err)}
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("parsing vault key: %v", err)}
	}
	return identity, nil
}

func (b *FileBackend) generateIdentity(keyPath string) (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("generating vault key: %v", err)}
	}
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("creating vault directory: %v", err)}
	}
	if err := os.WriteFile(keyPath, []byte(identity.String()+"\n"), 0o600); err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("writing vault key: %v", err)}
	}
	return identity, nil
}
