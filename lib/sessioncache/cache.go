// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package sessioncache

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/veilmail/veil/lib/clock"
)

// File names inside an account's session directory. The jar and
// client identifier are written by the transport session; the marker
// by this package.
const (
	JarFile      = "cookies.json"
	ClientIDFile = "client_id"
	markerFile   = "trust.marker"
)

// Cache is a session cache rooted at one directory. Methods taking an
// account operate on that account's subdirectory.
type Cache struct {
	root   string
	clock  clock.Clock
	logger *slog.Logger
}

// Open returns a Cache rooted at root, creating the directory with
// owner-only permissions. A nil clk means the wall clock; a nil
// logger discards diagnostics.
func Open(root string, clk clock.Clock, logger *slog.Logger) (*Cache, error) {
	if root == "" {
		return nil, fmt.Errorf("session cache root must not be empty")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating session cache root: %w", err)
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{root: root, clock: clk, logger: logger}, nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// Dir returns the session directory for account. The directory is not
// created; use EnsureDir before handing it to the transport.
func (c *Cache) Dir(account string) string {
	return filepath.Join(c.root, escapeAccount(account))
}

// JarPath returns where the transport's cookie jar lives for account.
func (c *Cache) JarPath(account string) string {
	return filepath.Join(c.Dir(account), JarFile)
}

// ClientIDPath returns where the transport's client identifier lives
// for account.
func (c *Cache) ClientIDPath(account string) string {
	return filepath.Join(c.Dir(account), ClientIDFile)
}

// EnsureDir creates the account's session directory and returns it.
func (c *Cache) EnsureDir(account string) (string, error) {
	if account == "" {
		return "", fmt.Errorf("account must not be empty")
	}
	dir := c.Dir(account)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}
	return dir, nil
}

// Exists reports whether a trust marker is present for account. Only
// the marker counts: jars and client identifiers appear as soon as a
// login is attempted, before anything was confirmed.
func (c *Cache) Exists(account string) bool {
	_, err := os.Stat(c.markerPath(account))
	return err == nil
}

// Clear removes the account's entire session directory. Clearing an
// account with no session is success. The credential store is not
// touched.
func (c *Cache) Clear(account string) error {
	if account == "" {
		return fmt.Errorf("account must not be empty")
	}
	if err := os.RemoveAll(c.Dir(account)); err != nil {
		return fmt.Errorf("clearing session for %s: %w", account, err)
	}
	c.logger.Debug("cleared session", "account", account)
	return nil
}

func (c *Cache) markerPath(account string) string {
	return filepath.Join(c.Dir(account), markerFile)
}

// escapeAccount maps an account name to a safe directory name.
// Characters common in email addresses pass through; everything else
// is percent-encoded so separators and control bytes cannot escape
// the cache root.
func escapeAccount(account string) string {
	// Dot-only names would resolve to the root or its parent.
	switch account {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}

	var builder strings.Builder
	for i := 0; i < len(account); i++ {
		ch := account[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '_', ch == '@', ch == '-':
			builder.WriteByte(ch)
		default:
			fmt.Fprintf(&builder, "%%%02X", ch)
		}
	}
	return builder.String()
}
