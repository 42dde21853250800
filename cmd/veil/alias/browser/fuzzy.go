// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Slab sizes match fzf's own defaults.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

func init() {
	// Installs the bonus tables for the default scoring scheme.
	algo.Init("default")
}

// fuzzyResult is the outcome of matching a pattern against one text.
// Score is zero when the pattern did not match; Positions holds the
// rune indices of matched characters, ascending.
type fuzzyResult struct {
	Score     int
	Positions []int
}

// fuzzyMatch runs fzf's V2 matcher against text. Matching is
// case-insensitive: the text side is folded by the algorithm and the
// pattern is lowercased here. The slab is reused across calls within
// one filter pass; nil allocates per call.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) fuzzyResult {
	if len(pattern) == 0 {
		return fuzzyResult{}
	}

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return fuzzyResult{}
	}

	match := fuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = *positions
		// The backtrace emits positions end-to-start.
		sort.Ints(match.Positions)
	}
	return match
}
