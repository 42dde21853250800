// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"testing"

	"github.com/veilmail/veil/relay"
)

func TestMatchesQuery(t *testing.T) {
	alias := relay.Alias{
		Address: "k3x9f2@veilmail.net",
		Label:   "Bookshop",
		Note:    "ordered the atlas in August",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "address substring", query: "k3x9", want: true},
		{name: "label case-insensitive", query: "bookshop", want: true},
		{name: "label different case", query: "BOOK", want: true},
		{name: "note substring", query: "atlas", want: true},
		{name: "domain matches", query: "veilmail", want: true},
		{name: "no match", query: "newsletter", want: false},
		{name: "empty query matches everything", query: "", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := matchesQuery(alias, test.query); got != test.want {
				t.Errorf("matchesQuery(%q) = %v, want %v", test.query, got, test.want)
			}
		})
	}
}

func TestTruncateNote(t *testing.T) {
	tests := []struct {
		name string
		note string
		max  int
		want string
	}{
		{name: "short note unchanged", note: "hello", max: 30, want: "hello"},
		{name: "exact length unchanged", note: "12345", max: 5, want: "12345"},
		{name: "long note truncated", note: "a very long note about an order", max: 10, want: "a very lon..."},
		{name: "empty note", note: "", max: 30, want: ""},
		{name: "multibyte runes counted as one", note: "héllö wörld çafé", max: 10, want: "héllö wörl..."},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := truncateNote(test.note, test.max); got != test.want {
				t.Errorf("truncateNote(%q, %d) = %q, want %q", test.note, test.max, got, test.want)
			}
		})
	}
}

func TestLabelOrPlaceholder(t *testing.T) {
	if got := labelOrPlaceholder(relay.Alias{Label: "shop"}); got != "shop" {
		t.Errorf("labelOrPlaceholder = %q, want %q", got, "shop")
	}
	if got := labelOrPlaceholder(relay.Alias{}); got != "(no label)" {
		t.Errorf("labelOrPlaceholder = %q, want %q", got, "(no label)")
	}
}

func TestDescribeState(t *testing.T) {
	if got := describeState(true); got != "active" {
		t.Errorf("describeState(true) = %q", got)
	}
	if got := describeState(false); got != "inactive" {
		t.Errorf("describeState(false) = %q", got)
	}
}
