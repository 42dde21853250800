// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommandError_ErrorWithoutHint(t *testing.T) {
	err := Validation("missing required flag --account")
	if err.Error() != "missing required flag --account" {
		t.Errorf("Error() = %q, want %q", err.Error(), "missing required flag --account")
	}
}

func TestCommandError_ErrorWithHint(t *testing.T) {
	err := Validation("missing required flag --account").
		WithHint("Pass --account <address> or run 'veil setup'.")

	want := "missing required flag --account\n\nPass --account <address> or run 'veil setup'."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCommandError_WithHintReturnsReceiver(t *testing.T) {
	original := Validation("bad input")
	chained := original.WithHint("fix it")
	if original != chained {
		t.Error("WithHint should return the same pointer")
	}
}

func TestCommandError_WithHintPreservesCategory(t *testing.T) {
	err := NotFound("no stored credential for %q", "alice@example.com").
		WithHint("Run 'veil setup' to store one.")

	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

func TestCommandError_HintSurvivesErrorsAs(t *testing.T) {
	inner := Validation("bad account").WithHint("use a full address like alice@example.com")
	wrapped := fmt.Errorf("setup failed: %w", inner)

	var commandErr *CommandError
	if !errors.As(wrapped, &commandErr) {
		t.Fatal("errors.As should find CommandError in wrapped chain")
	}
	if commandErr.Hint != "use a full address like alice@example.com" {
		t.Errorf("Hint = %q after unwrap, want %q", commandErr.Hint, "use a full address like alice@example.com")
	}
}

func TestCommandError_EmptyHintNotAppended(t *testing.T) {
	err := Internal("unexpected failure")
	if strings.Contains(err.Error(), "\n\n") {
		t.Error("empty hint should not add blank line to error message")
	}
}

func TestCommandError_UnwrapPreservesChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient("reaching service: %w", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause through CommandError")
	}
}

func TestCommandError_AllCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *CommandError
		category ErrorCategory
	}{
		{"Validation", Validation("bad"), CategoryValidation},
		{"NotFound", NotFound("missing"), CategoryNotFound},
		{"Forbidden", Forbidden("denied"), CategoryForbidden},
		{"Conflict", Conflict("duplicate"), CategoryConflict},
		{"Transient", Transient("timeout"), CategoryTransient},
		{"Internal", Internal("bug"), CategoryInternal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.err.Category != test.category {
				t.Errorf("Category = %q, want %q", test.err.Category, test.category)
			}
			// All constructors should support WithHint.
			hinted := test.err.WithHint("try again")
			if hinted.Hint != "try again" {
				t.Errorf("Hint = %q after WithHint, want %q", hinted.Hint, "try again")
			}
		})
	}
}
