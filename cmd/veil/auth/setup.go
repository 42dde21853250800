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
	"github.com/veilmail/veil/lib/authflow"
	"github.com/veilmail/veil/lib/config"
)

// setupParams holds the parameters for the setup command.
type setupParams struct {
	cli.AccountFlags
	PasswordFile   string `json:"-" flag:"password-file"    desc:"path to a file containing the password, or - for stdin (default: prompt)"`
	TOTPSecretFile string `json:"-" flag:"totp-secret-file" desc:"path to a file containing a base32 TOTP seed to enrol for non-interactive logins"`
	Yes            bool   `json:"-" flag:"yes,y"            desc:"proceed without confirmation prompts"`
}

// SetupCommand returns the "setup" command: store credentials for an
// account, record it as the default, and prove the credentials work
// with one authentication round-trip.
func SetupCommand() *cli.Command {
	var params setupParams

	return &cli.Command{
		Name:    "setup",
		Summary: "Store credentials and authenticate",
		Description: `Store an account's password in the credential store, set the account
as the default, and verify the credentials against the account service.

When biometric verification is available it will be required every time
the stored password is read back. Without it the password is still
stored, released ungated; setup asks for confirmation before
proceeding that way.

The verification step performs a real sign-in. If the service demands a
two-factor code, setup asks for one (or generates it from a TOTP seed
enrolled with --totp-secret-file) and trusts the session so later
logins skip the challenge. If the service rejects the credentials, the
just-stored password and the default-account entry are removed again:
a failed setup leaves nothing behind.`,
		Usage: "veil setup [flags]",
		Examples: []cli.Example{
			{
				Description: "Interactive setup (prompts for account and password)",
				Command:     "veil setup",
			},
			{
				Description: "Non-interactive setup for automation",
				Command:     "veil setup --account alice@example.com --password-file /run/secrets/veil-password --yes",
			},
			{
				Description: "Enrol a TOTP seed so logins never prompt for a code",
				Command:     "veil setup --account alice@example.com --totp-secret-file -",
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

			if conn.Gate.Available() {
				fmt.Fprintln(os.Stderr, "Biometric verification is available; reading the stored password will require it.")
			} else {
				fmt.Fprintln(os.Stderr, "Biometric verification is not available; the stored password will be released without it.")
				if !params.Yes && term.IsTerminal(int(os.Stdin.Fd())) {
					ok, err := cli.Confirm("Continue without biometric protection?")
					if err != nil {
						return err
					}
					if !ok {
						return cli.Validation("setup cancelled")
					}
				}
			}

			account := params.Account
			if account == "" {
				account, err = cli.PromptLine("Account (email address)")
				if err != nil {
					return err
				}
			}
			if account == "" {
				return cli.Validation("account must not be empty")
			}

			password, err := cli.ReadPassword(params.PasswordFile, "Password")
			if err != nil {
				return err
			}
			defer password.Close()

			if err := conn.Store.Set(account, password); err != nil {
				return cli.Internal("storing credentials: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Stored credentials for %s\n", account)

			configPath := params.ConfigPath()
			if err := config.SetDefaultAccount(configPath, account); err != nil {
				return cli.Internal("recording default account: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Set %s as the default account in %s\n", account, configPath)

			enrolled := false
			if params.TOTPSecretFile != "" {
				if err := enrolTOTP(conn, account, params.TOTPSecretFile); err != nil {
					return err
				}
				enrolled = true
				fmt.Fprintln(os.Stderr, "Enrolled TOTP seed; two-factor checks will be satisfied without prompting")
			}

			// Prove the stored credentials work before declaring success.
			// The password buffer is handed over directly so the gate is
			// not prompted for a secret that is already in hand.
			fmt.Fprintln(os.Stderr, "Verifying against the account service...")
			provider := promptTOTPProvider()
			if enrolled {
				provider = storedTOTPProvider(conn.TOTP, account)
			} else if !term.IsTerminal(int(os.Stdin.Fd())) {
				provider = nil
			}

			_, err = conn.Manager.Authenticate(ctx, authflow.Request{
				Account:   account,
				Secret:    password,
				TwoFactor: provider,
			})
			if err != nil {
				// Rejected credentials mean the stored state is wrong, so
				// it is removed again. Any other failure (network down,
				// missing code in a pipeline) keeps the stored password: a
				// later 'veil login' can finish the verification.
				if authflow.KindOf(err) == authflow.KindAuthenticationRejected {
					cleanupFailedSetup(conn, configPath, account, logger)
					return cli.Forbidden("authentication failed: %w", err).
						WithHint("The stored credentials were removed again; run 'veil setup' with the correct password.")
				}
				return commandError(fmt.Errorf("verifying credentials: %w", err))
			}

			fmt.Fprintf(os.Stderr, "Authenticated as %s\n", account)
			fmt.Fprintln(os.Stderr, "Setup complete. Run 'veil list' to see your aliases.")
			return nil
		},
	}
}

// cleanupFailedSetup undoes the durable state a rejected first
// authentication leaves behind: the stored password, a TOTP seed
// enrolled moments ago, the session directory, and the default-account
// entry. Every step is attempted even when an earlier one fails.
func cleanupFailedSetup(conn *cli.Connection, configPath, account string, logger *slog.Logger) {
	if err := conn.Store.Delete(account); err != nil {
		logger.Warn("cleanup: deleting credential failed", "account", account, "error", err)
	}
	if err := conn.TOTP.Delete(account); err != nil {
		logger.Warn("cleanup: deleting TOTP seed failed", "account", account, "error", err)
	}
	if err := conn.Manager.ClearSession(account); err != nil {
		logger.Warn("cleanup: clearing session failed", "account", account, "error", err)
	}
	if err := config.SetDefaultAccount(configPath, ""); err != nil {
		logger.Warn("cleanup: clearing default account failed", "path", configPath, "error", err)
	}
	fmt.Fprintln(os.Stderr, "Removed the stored credentials and session state")
}
