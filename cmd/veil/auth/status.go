// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/veilmail/veil/cmd/veil/cli"
)

type statusParams struct {
	cli.AccountFlags
	cli.JSONOutput
	Check bool `json:"-" flag:"check" desc:"exit 1 unless the current session is valid (for scripts)"`
}

type statusOutput struct {
	Account            string `json:"account"             desc:"the selected account, empty when none is configured"`
	CredentialsStored  bool   `json:"credentials_stored"  desc:"whether a password is in the credential store"`
	TOTPEnrolled       bool   `json:"totp_enrolled"       desc:"whether a TOTP seed is enrolled for two-factor codes"`
	BiometricAvailable bool   `json:"biometric_available" desc:"whether biometric verification gates credential reads"`
	SessionValid       bool   `json:"session_valid"       desc:"whether the cached session is still accepted by the service"`
}

// StatusCommand returns the "status" command: report the account's
// credential, biometric, and session state.
func StatusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show credential and session state",
		Description: `Report whether the selected account has stored credentials, an
enrolled TOTP seed, biometric protection, and a session the account
service still accepts.

Checking the session performs a real round-trip; an expired or missing
session reports invalid without attempting to sign in again. With
--check the command exits 1 when the session is not valid, so scripts
can branch without parsing output.`,
		Usage: "veil status [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the default account's state",
				Command:     "veil status",
			},
			{
				Description: "Machine-readable state",
				Command:     "veil status --json",
			},
			{
				Description: "Guard a script on a valid session",
				Command:     "veil status --check && veil list",
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

			output := statusOutput{Account: account}
			if account != "" {
				output.CredentialsStored = conn.Store.Has(account)
				output.TOTPEnrolled = conn.TOTP.Has(account)
				output.BiometricAvailable = conn.Gate.Available()
				output.SessionValid = conn.Manager.IsSessionValid(ctx, account)
			}

			if done, err := params.EmitJSON(output); done {
				if err != nil {
					return err
				}
			} else if account == "" {
				fmt.Fprintln(os.Stderr, "No account configured.")
				fmt.Fprintln(os.Stderr, "Run 'veil setup' to store credentials.")
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "Account:\t%s\n", output.Account)
				fmt.Fprintf(w, "Credentials:\t%s\n", describe(output.CredentialsStored, "stored", "not stored"))
				fmt.Fprintf(w, "TOTP:\t%s\n", describe(output.TOTPEnrolled, "enrolled", "not enrolled"))
				fmt.Fprintf(w, "Biometric:\t%s\n", describe(output.BiometricAvailable, "available", "unavailable"))
				fmt.Fprintf(w, "Session:\t%s\n", describe(output.SessionValid, "valid", "expired or missing"))
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if params.Check && !output.SessionValid {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func describe(condition bool, yes, no string) string {
	if condition {
		return yes
	}
	return no
}
