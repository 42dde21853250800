// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	aliascmd "github.com/veilmail/veil/cmd/veil/alias"
	"github.com/veilmail/veil/cmd/veil/alias/browser"
	authcmd "github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that manage their own output (like status --check)
		// return an exitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var commandErr *cli.CommandError
		if errors.As(err, &commandErr) && commandErr.Category == cli.CategoryValidation {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "veil",
		Description: `Veil: email alias management for the terminal.

Mint, label, and retire forwarding aliases on a veilmail account. The
account password lives in the OS keychain, protected by biometric
verification where the platform supports it, and authenticated
sessions are cached between invocations.`,
		Subcommands: []*cli.Command{
			authcmd.SetupCommand(),
			authcmd.LoginCommand(),
			authcmd.LogoutCommand(),
			authcmd.StatusCommand(),
			aliascmd.ListCommand(),
			aliascmd.SearchCommand(),
			aliascmd.CreateCommand(),
			aliascmd.UpdateCommand(),
			aliascmd.ActivateCommand(),
			aliascmd.DeactivateCommand(),
			aliascmd.DeleteCommand(),
			browser.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("veil %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store credentials for an account (start here)",
				Command:     "veil setup",
			},
			{
				Description: "Mint a new alias for a shop",
				Command:     "veil create bookshop",
			},
			{
				Description: "List aliases that still forward",
				Command:     "veil list --active",
			},
			{
				Description: "Find the alias you gave the newsletter",
				Command:     "veil search newsletter",
			},
			{
				Description: "Browse and toggle aliases interactively",
				Command:     "veil browse",
			},
			{
				Description: "Stop a leaked alias from forwarding",
				Command:     "veil deactivate k3x9f2@veilmail.net",
			},
			{
				Description: "Check for a live session in a script",
				Command:     "veil status --check",
			},
		},
	}
}
