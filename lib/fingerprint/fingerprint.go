// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes the BLAKE3 keyed digests Veil derives
// from stored state: vault entry names (so the file vault does not
// leak account names through the filesystem) and session artifact
// digests (so a trust marker can tell whether the cookie jar it
// described has been replaced).
package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest.
type Digest [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation keeps equal input bytes from producing equal digests in
// different contexts.
type domainKey [32]byte

// Domain separation keys. Fixed constants — changing one invalidates
// every digest in that domain. The byte values are the ASCII encoding
// of the domain name, zero-padded to 32 bytes, so the keys stay
// readable in hex dumps without giving up any cryptographic property.
var (
	vaultEntryDomainKey = domainKey{
		'v', 'e', 'i', 'l', '.', 'v', 'a', 'u', 'l', 't', '.',
		'e', 'n', 't', 'r', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	sessionJarDomainKey = domainKey{
		'v', 'e', 'i', 'l', '.', 's', 'e', 's', 's', 'i', 'o', 'n', '.',
		'j', 'a', 'r', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// VaultEntry digests a (service, account) pair into the opaque name a
// vault file is stored under. The pair is NUL-separated inside the
// hash; neither component may contain NUL, which holds for service
// identifiers and account email addresses.
func VaultEntry(service, account string) Digest {
	hasher := newKeyed(vaultEntryDomainKey)
	hasher.Write([]byte(service))
	hasher.Write([]byte{0})
	hasher.Write([]byte(account))
	return sum(hasher)
}

// SessionJar digests a serialized cookie jar. The trust marker stores
// this digest; a mismatch on load means the jar was rewritten after
// the marker and the marker's trust claim is stale.
func SessionJar(data []byte) Digest {
	hasher := newKeyed(sessionJarDomainKey)
	hasher.Write(data)
	return sum(hasher)
}

// Format returns the canonical hex form used in file names and logs.
func Format(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

func newKeyed(key domainKey) *blake3.Hasher {
	// NewKeyed fails only on a wrong key length, which the fixed-size
	// domainKey type rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("fingerprint: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

func sum(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}
