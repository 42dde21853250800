// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleRecord is a representative state-file record using cbor struct
// tags (the convention for purely-internal types).
type sampleRecord struct {
	Account   string `cbor:"account"`
	ClientID  string `cbor:"client_id,omitempty"`
	TrustedAt int64  `cbor:"trusted_at"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Account:   "alice@example.com",
		ClientID:  "f4f8bb1e-0a24-4bfe-9e2c-2a9d7c0f3b41",
		TrustedAt: 1756080000,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := map[string]any{
		"account":    "alice@example.com",
		"trusted_at": int64(1756080000),
		"digest":     []byte{0x01, 0x02, 0x03},
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withClientID := sampleRecord{Account: "a", ClientID: "x", TrustedAt: 1}
	withoutClientID := sampleRecord{Account: "a", TrustedAt: 1}

	dataWith, err := Marshal(withClientID)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutClientID)
	if err != nil {
		t.Fatal(err)
	}

	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// Records written by a newer Veil may carry fields this build does
	// not know about. Decoding must not fail on them.
	data, err := Marshal(map[string]any{
		"account":      "alice@example.com",
		"trusted_at":   int64(42),
		"future_field": "ignored",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Account != "alice@example.com" || decoded.TrustedAt != 42 {
		t.Errorf("decoded %+v, want account and trusted_at preserved", decoded)
	}
}

func TestDecodeIntoAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(sampleRecord{Account: "a", TrustedAt: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type %T, want map[string]any", decoded)
	}
	if _, ok := asMap["account"]; !ok {
		t.Errorf("decoded map %v missing account key", asMap)
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// Verify that []byte fields encode as CBOR byte strings (major
	// type 2), not text strings. The artifact fingerprint is raw
	// digest bytes.
	type envelope struct {
		Digest []byte `cbor:"digest"`
	}

	original := envelope{Digest: []byte{0xde, 0xad, 0xbe, 0xef}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !bytes.Equal(decoded.Digest, original.Digest) {
		t.Errorf("byte string roundtrip: got %x, want %x", decoded.Digest, original.Digest)
	}
}
