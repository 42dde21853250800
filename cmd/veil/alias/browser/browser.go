// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

// Package browser provides the interactive alias browser TUI command.
// This is a separate package from cmd/veil/alias so that the
// charmbracelet/bubbletea dependency (and its transitive closure:
// lipgloss, termenv, fzf) is only linked into binaries that actually
// import this package.
package browser

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
)

type browseParams struct {
	cli.AccountFlags
}

// Command returns the "browse" command: an interactive list of the
// account's aliases.
func Command() *cli.Command {
	var params browseParams

	return &cli.Command{
		Name:    "browse",
		Summary: "Browse aliases interactively",
		Description: `Open a full-screen browser over the account's aliases. Type / to
fuzzy-filter by address, label, or note; the list reorders by match
quality as you type.

Keys on the selected alias: a resumes forwarding, d stops it, c copies
the address to the clipboard (via OSC 52, so it works over SSH), r
refetches the list, q quits.`,
		Usage: "veil browse [flags]",
		Examples: []cli.Example{
			{
				Description: "Browse the default account's aliases",
				Command:     "veil browse",
			},
			{
				Description: "Browse another account",
				Command:     "veil browse --account carol@example.com",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return cli.Validation("browse needs a terminal (use 'veil list' in pipelines)")
			}

			conn, handle, err := auth.Authenticate(ctx, &params.AccountFlags, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			service := handle.Aliases()
			aliases, err := service.List(ctx)
			if err != nil {
				return err
			}

			program := tea.NewProgram(newModel(service, aliases), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}
