// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/config"
)

type logoutParams struct {
	cli.AccountFlags
	Forget bool `json:"-" flag:"forget" desc:"also delete the stored credentials, not just the session"`
	Yes    bool `json:"-" flag:"yes,y"  desc:"skip the --forget confirmation prompt"`
}

// LogoutCommand returns the "logout" command: clear the account's
// session state, and with --forget delete its stored credentials too.
func LogoutCommand() *cli.Command {
	var params logoutParams

	return &cli.Command{
		Name:    "logout",
		Summary: "Clear the session, optionally forgetting credentials",
		Description: `Remove the selected account's session state (cookies, trust marker,
client identity) so the next login starts from scratch.

The stored password survives a plain logout; pass --forget to delete it
and the enrolled TOTP seed as well. Forgetting asks for confirmation on
a terminal and requires --yes everywhere else.`,
		Usage: "veil logout [flags]",
		Examples: []cli.Example{
			{
				Description: "Sign out of the default account",
				Command:     "veil logout",
			},
			{
				Description: "Sign out and delete the stored credentials",
				Command:     "veil logout --forget",
			},
			{
				Description: "Non-interactive credential removal",
				Command:     "veil logout --account alice@example.com --forget --yes",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			conn, err := params.Connect(logger, nil)
			if err != nil {
				return err
			}
			defer conn.Close()

			account := params.Account
			if account == "" {
				account = conn.Config.DefaultAccount
			}
			if account == "" {
				fmt.Fprintln(os.Stderr, "No account configured; nothing to sign out.")
				return nil
			}

			if params.Forget && !params.Yes {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return cli.Validation("--forget needs confirmation: pass --yes in non-interactive use")
				}
				ok, err := cli.Confirm(fmt.Sprintf("Delete the stored credentials for %s?", account))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(os.Stderr, "Cancelled")
					return nil
				}
			}

			if err := conn.Manager.ClearSession(account); err != nil {
				return cli.Internal("clearing session: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Cleared session state for %s\n", account)

			if params.Forget {
				had := conn.Store.Has(account)
				if err := conn.Store.Delete(account); err != nil {
					return cli.Internal("deleting credentials: %w", err)
				}
				if err := conn.TOTP.Delete(account); err != nil {
					return cli.Internal("deleting TOTP seed: %w", err)
				}
				if had {
					fmt.Fprintf(os.Stderr, "Deleted the stored credentials for %s\n", account)
				} else {
					fmt.Fprintf(os.Stderr, "No stored credentials for %s\n", account)
				}

				if conn.Config.DefaultAccount == account {
					if err := config.SetDefaultAccount(params.ConfigPath(), ""); err != nil {
						return cli.Internal("clearing default account: %w", err)
					}
					fmt.Fprintln(os.Stderr, "Cleared the default account")
				}
			}

			return nil
		},
	}
}
