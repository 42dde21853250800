// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides CBOR encoding for Veil's machine-written
// state files (the per-account trust marker). Encoding is Core
// Deterministic (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items — the same logical record
// always produces identical bytes, which keeps the artifact
// fingerprint stable across rewrites.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Veil never writes non-string map keys. When decoding into
		// an any-typed target the decoder must still pick a concrete
		// map type; map[string]any keeps the result compatible with
		// ordinary Go code (the CBOR default is map[any]any).
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to deterministic CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Unknown fields are ignored for
// forward compatibility.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
