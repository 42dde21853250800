// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Parallel()

	data, err := ReadResponse(strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("ReadResponse = %q", data)
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	var payload struct {
		Trusted bool `json:"trusted"`
	}
	if err := DecodeResponse(strings.NewReader(`{"trusted":true}`), &payload); err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !payload.Trusted {
		t.Error("DecodeResponse did not populate the target")
	}

	if err := DecodeResponse(strings.NewReader("not json"), &payload); err == nil {
		t.Error("DecodeResponse accepted invalid JSON")
	}
}

func TestErrorBody(t *testing.T) {
	t.Parallel()

	if got := ErrorBody(strings.NewReader("boom")); got != "boom" {
		t.Errorf("ErrorBody = %q, want %q", got, "boom")
	}
}
