// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pquerna/otp/totp"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/keystore"
	"github.com/veilmail/veil/lib/secret"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSeedStore builds an ungated file-backed store in a temporary
// directory, matching how the TOTP store is wired for real.
func testSeedStore(t *testing.T) *keystore.Store {
	t.Helper()
	backend, err := keystore.ResolveBackend(keystore.BackendFile, t.TempDir())
	if err != nil {
		t.Fatalf("ResolveBackend: %v", err)
	}
	return keystore.NewStore(backend, biometric.NopGate{}, "com.veilmail.cli.totp", discardLogger())
}

func TestNormalizeTOTPSecret(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{
			name: "canonical seed passes through",
			raw:  "JBSWY3DPEHPK3PXP",
			want: "JBSWY3DPEHPK3PXP",
		},
		{
			name: "lowercase with spaces and dashes",
			raw:  "jbsw y3dp-ehpk 3pxp",
			want: "JBSWY3DPEHPK3PXP",
		},
		{
			name: "tabs stripped",
			raw:  "JBSW\tY3DP\tEHPK\t3PXP",
			want: "JBSWY3DPEHPK3PXP",
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: "TOTP secret is empty",
		},
		{
			name:    "separators only",
			raw:     "  - -\t",
			wantErr: "TOTP secret is empty",
		},
		{
			name:    "not base32",
			raw:     "definitely not a seed!",
			wantErr: "not a valid base32 seed",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := normalizeTOTPSecret(test.raw)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("normalizeTOTPSecret(%q) = %q, want error containing %q", test.raw, got, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, test.wantErr)
				}
				var cmdErr *cli.CommandError
				if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryValidation {
					t.Errorf("error category = %v, want validation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeTOTPSecret(%q): %v", test.raw, err)
			}
			if got != test.want {
				t.Errorf("normalizeTOTPSecret(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestStoredTOTPProviderGeneratesValidCode(t *testing.T) {
	const account = "alice@example.com"
	const seed = "JBSWY3DPEHPK3PXP"

	store := testSeedStore(t)
	buffer, err := secret.NewFromString(seed)
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer buffer.Close()
	if err := store.Set(account, buffer); err != nil {
		t.Fatalf("Set: %v", err)
	}

	provider := storedTOTPProvider(store, account)
	code, err := provider(context.Background())
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code = %q, want six digits", code)
	}
	// Validate instead of regenerating: its skew window tolerates the
	// 30-second boundary flipping between the two calls.
	if !totp.Validate(code, seed) {
		t.Errorf("generated code %q does not validate against the seed", code)
	}
}

func TestStoredTOTPProviderMissingSeed(t *testing.T) {
	store := testSeedStore(t)

	provider := storedTOTPProvider(store, "nobody@example.com")
	if _, err := provider(context.Background()); err == nil {
		t.Fatal("provider succeeded with no seed stored")
	} else if !strings.Contains(err.Error(), "reading TOTP secret") {
		t.Errorf("error = %q, want it to mention reading the TOTP secret", err)
	}
}
