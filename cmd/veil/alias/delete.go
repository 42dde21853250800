// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
)

type deleteParams struct {
	cli.AccountFlags
	Force bool `json:"-" flag:"force,f" desc:"skip the confirmation prompt"`
}

// DeleteCommand returns the "delete" command: permanently remove an
// alias.
func DeleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Permanently delete an alias",
		Description: `Remove an alias from the account. The address cannot be reclaimed
afterwards, so the command asks for confirmation on a terminal and
requires --force everywhere else. To stop forwarding while keeping
the address, use 'veil deactivate' instead.`,
		Usage: "veil delete <address-or-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Delete with confirmation",
				Command:     "veil delete k3x9f2@veilmail.net",
			},
			{
				Description: "Non-interactive deletion",
				Command:     "veil delete k3x9f2@veilmail.net --force",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("delete needs exactly one address or ID argument")
			}

			conn, handle, err := auth.Authenticate(ctx, &params.AccountFlags, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			service := handle.Aliases()
			found, err := resolveAlias(ctx, service, args[0])
			if err != nil {
				return err
			}

			if !params.Force {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return cli.Validation("delete needs confirmation: pass --force in non-interactive use")
				}
				fmt.Fprintln(os.Stderr, "Warning: this permanently deletes the alias.")
				fmt.Fprintf(os.Stderr, "  Address: %s\n", found.Address)
				fmt.Fprintf(os.Stderr, "  Label:   %s\n", found.Label)
				ok, err := cli.Confirm("Are you sure?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(os.Stderr, "Cancelled")
					return nil
				}
			}

			if err := service.Delete(ctx, found.ID); err != nil {
				return fmt.Errorf("deleting %s: %w", found.Address, err)
			}
			fmt.Fprintf(os.Stderr, "Deleted %s\n", found.Address)
			return nil
		},
	}
}
