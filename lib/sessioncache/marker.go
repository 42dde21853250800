// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package sessioncache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/veilmail/veil/lib/codec"
	"github.com/veilmail/veil/lib/fingerprint"
)

var (
	// ErrNoMarker means no trust marker exists for the account.
	ErrNoMarker = errors.New("no trust marker for account")

	// ErrStaleMarker means a marker exists but no longer describes
	// the session directory next to it: the jar was rewritten or
	// removed after the marker was written, so its trust claim is
	// void.
	ErrStaleMarker = errors.New("trust marker is stale")
)

// Marker records one confirmed trusted session. It is CBOR on disk.
type Marker struct {
	Account   string `cbor:"account"`
	TrustedAt int64  `cbor:"trusted_at"`
	JarDigest []byte `cbor:"jar_digest"`
}

// MarkTrusted writes the trust marker for account, binding it to the
// cookie jar currently on disk. Call it only after the remote service
// confirmed the session; the jar must already have been saved.
// Overwrites any previous marker.
func (c *Cache) MarkTrusted(account string) error {
	if account == "" {
		return fmt.Errorf("account must not be empty")
	}

	jarData, err := os.ReadFile(c.JarPath(account))
	if err != nil {
		return fmt.Errorf("reading session jar for trust marker: %w", err)
	}
	digest := fingerprint.SessionJar(jarData)

	marker := Marker{
		Account:   account,
		TrustedAt: c.clock.Now().Unix(),
		JarDigest: digest[:],
	}
	data, err := codec.Marshal(marker)
	if err != nil {
		return fmt.Errorf("encoding trust marker: %w", err)
	}
	if err := os.WriteFile(c.markerPath(account), data, 0o600); err != nil {
		return fmt.Errorf("writing trust marker: %w", err)
	}

	c.logger.Debug("marked session trusted",
		"account", account, "jar_digest", fingerprint.Format(digest))
	return nil
}

// Load returns the account's trust marker after checking that it
// still describes the session directory: the account matches and the
// jar on disk is the one the marker digested. Returns ErrNoMarker or
// ErrStaleMarker accordingly.
func (c *Cache) Load(account string) (*Marker, error) {
	data, err := os.ReadFile(c.markerPath(account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoMarker
	}
	if err != nil {
		return nil, fmt.Errorf("reading trust marker: %w", err)
	}

	var marker Marker
	if err := codec.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("decoding trust marker: %w", err)
	}
	if marker.Account != account {
		return nil, fmt.Errorf("%w: marker names account %q", ErrStaleMarker, marker.Account)
	}

	jarData, err := os.ReadFile(c.JarPath(account))
	if err != nil {
		return nil, fmt.Errorf("%w: session jar unreadable: %v", ErrStaleMarker, err)
	}
	digest := fingerprint.SessionJar(jarData)
	if !bytes.Equal(marker.JarDigest, digest[:]) {
		return nil, fmt.Errorf("%w: jar rewritten since trust", ErrStaleMarker)
	}

	return &marker, nil
}
