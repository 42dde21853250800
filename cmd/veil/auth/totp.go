// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp/totp"
	"golang.org/x/term"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/authflow"
	"github.com/veilmail/veil/lib/keystore"
	"github.com/veilmail/veil/lib/secret"
)

// normalizeTOTPSecret strips the whitespace and dashes enrolment
// strings carry, uppercases, and proves the result generates codes
// before it is stored.
func normalizeTOTPSecret(raw string) (string, error) {
	normalized := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
	if normalized == "" {
		return "", cli.Validation("TOTP secret is empty")
	}
	if _, err := totp.GenerateCode(normalized, time.Now()); err != nil {
		return "", cli.Validation("TOTP secret is not a valid base32 seed: %v", err)
	}
	return normalized, nil
}

// enrolTOTP reads a TOTP seed from secretFile ("-" for stdin) and
// stores it for account.
func enrolTOTP(conn *cli.Connection, account, secretFile string) error {
	raw, err := secret.ReadFromPath(secretFile)
	if err != nil {
		return err
	}
	defer raw.Close()

	normalized, err := normalizeTOTPSecret(raw.String())
	if err != nil {
		return err
	}
	buffer, err := secret.NewFromString(normalized)
	if err != nil {
		return err
	}
	defer buffer.Close()

	if err := conn.TOTP.Set(account, buffer); err != nil {
		return cli.Internal("storing TOTP secret: %w", err)
	}
	return nil
}

// storedTOTPProvider returns a provider generating codes from the
// account's enrolled TOTP seed. The seed is read at code time, not at
// provider construction, so a login that never hits a two-factor
// demand never touches it.
func storedTOTPProvider(store *keystore.Store, account string) authflow.TwoFactorProvider {
	return func(ctx context.Context) (string, error) {
		seed, err := store.Get(ctx, account, "generate a verification code for "+account)
		if err != nil {
			return "", fmt.Errorf("reading TOTP secret: %w", err)
		}
		defer seed.Close()

		code, err := totp.GenerateCode(seed.String(), time.Now())
		if err != nil {
			return "", fmt.Errorf("generating verification code: %w", err)
		}
		return code, nil
	}
}

// promptTOTPProvider returns a provider that asks for the code
// delivered to the user's device.
func promptTOTPProvider() authflow.TwoFactorProvider {
	return func(ctx context.Context) (string, error) {
		return cli.PromptLine("Verification code")
	}
}

// twoFactorProvider picks the provider for account: the enrolled TOTP
// seed when one exists, an interactive prompt when stdin is a
// terminal, nil otherwise. With nil, a two-factor demand ends the flow
// in KindTwoFactorRequired rather than hanging a pipeline on a prompt.
func twoFactorProvider(conn *cli.Connection, account string) authflow.TwoFactorProvider {
	if conn.TOTP.Has(account) {
		return storedTOTPProvider(conn.TOTP, account)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return promptTOTPProvider()
	}
	return nil
}
