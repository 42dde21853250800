// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultSecurityTool is where macOS installs the security command.
const DefaultSecurityTool = "/usr/bin/security"

// SecurityBackend stores entries in the macOS keychain by driving the
// security(1) tool. Veil uses the tool rather than the native
// Security framework API because a non-entitled process calling the
// native add API with a biometric policy fails with -34018; the tool
// path works under default codesigning.
type SecurityBackend struct {
	path string
	run  securityRunner
}

// securityRunner executes one security invocation. exitCode is
// meaningful only when runErr is nil; runErr is reserved for failures
// to execute the tool at all.
type securityRunner func(args ...string) (stdout, stderr []byte, exitCode int, runErr error)

// NewSecurityBackend returns a backend driving the tool at path, or
// DefaultSecurityTool when path is empty.
func NewSecurityBackend(path string) *SecurityBackend {
	if path == "" {
		path = DefaultSecurityTool
	}
	backend := &SecurityBackend{path: path}
	backend.run = backend.execTool
	return backend
}

// Usable reports whether the tool exists and is executable.
func (b *SecurityBackend) Usable() bool {
	info, err := os.Stat(b.path)
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}

func (b *SecurityBackend) Add(service, account string, value []byte) error {
	// -U updates an existing item instead of failing with a duplicate
	// error, backstopping the caller's delete-then-add sequence.
	_, stderr, code, err := b.run("add-generic-password",
		"-s", service, "-a", account, "-w", string(value), "-U")
	if err != nil {
		return &StoreError{Detail: fmt.Sprintf("running %s: %v", b.path, err)}
	}
	if code != 0 {
		return securityError(code, stderr)
	}
	return nil
}

func (b *SecurityBackend) Find(service, account string) ([]byte, error) {
	stdout, stderr, code, err := b.run("find-generic-password",
		"-s", service, "-a", account, "-w")
	if err != nil {
		return nil, &StoreError{Detail: fmt.Sprintf("running %s: %v", b.path, err)}
	}
	if code == 0 {
		return bytes.TrimSpace(stdout), nil
	}
	if isSecurityNotFound(code, stderr) {
		return nil, ErrNotFound
	}
	return nil, securityError(code, stderr)
}

func (b *SecurityBackend) Exists(service, account string) (bool, error) {
	// No -w: the item's attributes are listed but the secret is not
	// read, so the keychain never prompts.
	_, stderr, code, err := b.run("find-generic-password",
		"-s", service, "-a", account)
	if err != nil {
		return false, &StoreError{Detail: fmt.Sprintf("running %s: %v", b.path, err)}
	}
	if code == 0 {
		return true, nil
	}
	if isSecurityNotFound(code, stderr) {
		return false, nil
	}
	return false, securityError(code, stderr)
}

func (b *SecurityBackend) Delete(service, account string) error {
	_, stderr, code, err := b.run("delete-generic-password",
		"-s", service, "-a", account)
	if err != nil {
		return &StoreError{Detail: fmt.Sprintf("running %s: %v", b.path, err)}
	}
	if code == 0 {
		return nil
	}
	if isSecurityNotFound(code, stderr) {
		return ErrNotFound
	}
	return securityError(code, stderr)
}

// execTool runs the security tool once and separates "the tool ran and
// exited" from "the tool could not be executed".
func (b *SecurityBackend) execTool(args ...string) ([]byte, []byte, int, error) {
	cmd := exec.Command(b.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, 0, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

// isSecurityNotFound recognizes a missing item both by reconstructed
// status and by the tool's stderr text, since older tool versions
// differ in which they convey reliably.
func isSecurityNotFound(exitCode int, stderr []byte) bool {
	if status, ok := statusByExit[exitCode]; ok && status == errSecItemNotFound {
		return true
	}
	return strings.Contains(string(stderr), "could not be found")
}

// securityError maps a non-zero tool exit to a StoreError, recovering
// the full OSStatus from the exit's low byte when the code is one Veil
// knows about.
func securityError(exitCode int, stderr []byte) error {
	detail := strings.TrimSpace(string(stderr))
	if status, ok := statusByExit[exitCode]; ok {
		return &StoreError{Status: status, Detail: detail}
	}
	if detail == "" {
		detail = fmt.Sprintf("security exited with code %d", exitCode)
	}
	return &StoreError{Detail: detail}
}
