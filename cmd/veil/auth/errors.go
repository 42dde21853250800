// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/authflow"
)

// commandError maps an authentication failure onto the CLI's error
// categories, attaching a remediation hint where a next step exists.
// The original error stays in the chain for errors.Is/errors.As.
func commandError(err error) error {
	if err == nil {
		return nil
	}
	switch authflow.KindOf(err) {
	case authflow.KindCredentialsNotFound:
		return cli.NotFound("%w", err).
			WithHint("Run 'veil setup' to store credentials for the account.")
	case authflow.KindAuthenticationRejected:
		return cli.Forbidden("%w", err)
	case authflow.KindTwoFactorRequired:
		return cli.Forbidden("%w", err).
			WithHint("Re-run interactively to enter a verification code, or enrol a TOTP seed with 'veil setup --totp-secret-file'.")
	case authflow.KindBiometricDenied:
		return cli.Forbidden("%w", err)
	case authflow.KindStore:
		return cli.Internal("%w", err)
	case authflow.KindNetwork:
		return cli.Transient("%w", err)
	default:
		return cli.Internal("%w", err)
	}
}
