// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/authflow"
	"github.com/veilmail/veil/lib/secret"
)

type loginParams struct {
	cli.AccountFlags
	PasswordFile string `json:"-" flag:"password-file" desc:"path to a file containing the password, or - for stdin (default: credential store)"`
	Verbose      bool   `json:"-" flag:"verbose,v"     desc:"print each authentication state as the flow advances"`
}

// LoginCommand returns the "login" command: authenticate the selected
// account using the stored credentials.
func LoginCommand() *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate with the stored credentials",
		Description: `Sign in to the account service as the selected account.

The password comes from the credential store (passing the biometric
gate when one is active) unless --password-file supplies it directly.
If the service demands a two-factor code the command generates one from
an enrolled TOTP seed, or prompts for it when running on a terminal,
and trusts the session so the next login skips the challenge.`,
		Usage: "veil login [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in as the default account",
				Command:     "veil login",
			},
			{
				Description: "Log in as a specific account, showing flow states",
				Command:     "veil login --account alice@example.com --verbose",
			},
			{
				Description: "Log in with a password from stdin, bypassing the store",
				Command:     "veil login --password-file -",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			var onTransition func(authflow.State)
			if params.Verbose {
				onTransition = func(state authflow.State) {
					fmt.Fprintf(os.Stderr, "  %s\n", state)
				}
			}

			conn, err := params.Connect(logger, onTransition)
			if err != nil {
				return err
			}
			defer conn.Close()

			account, err := params.ResolveAccount(conn.Config)
			if err != nil {
				return err
			}

			request := authflow.Request{
				Account:   account,
				TwoFactor: twoFactorProvider(conn, account),
			}
			if params.PasswordFile != "" {
				password, err := secret.ReadFromPath(params.PasswordFile)
				if err != nil {
					return cli.Validation("reading password: %v", err)
				}
				defer password.Close()
				request.Secret = password
			}

			handle, err := conn.Manager.Authenticate(ctx, request)
			if err != nil {
				return commandError(err)
			}

			fmt.Fprintf(os.Stderr, "Authenticated as %s\n", handle.Account())
			return nil
		},
	}
}
