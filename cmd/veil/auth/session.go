// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"log/slog"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/authflow"
)

// Authenticate wires the collaborators for flags, resolves the account,
// and signs it in with the stored credentials. Sibling command packages
// use this to get a live session without repeating the provider and
// error-mapping choices the auth commands make.
//
// On success the caller owns the connection and must Close it. On
// failure everything is already released and the returned error carries
// the CLI category and hint.
func Authenticate(ctx context.Context, flags *cli.AccountFlags, logger *slog.Logger) (*cli.Connection, *authflow.SessionHandle, error) {
	conn, err := flags.Connect(logger, nil)
	if err != nil {
		return nil, nil, err
	}

	account, err := flags.ResolveAccount(conn.Config)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	handle, err := conn.Manager.Authenticate(ctx, authflow.Request{
		Account:   account,
		TwoFactor: twoFactorProvider(conn, account),
	})
	if err != nil {
		conn.Close()
		return nil, nil, commandError(err)
	}
	return conn, handle, nil
}
