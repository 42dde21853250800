// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
)

type activateParams struct {
	cli.AccountFlags
}

// ActivateCommand returns the "activate" command: resume forwarding
// for a deactivated alias.
func ActivateCommand() *cli.Command {
	var params activateParams

	return &cli.Command{
		Name:    "activate",
		Summary: "Resume forwarding for an alias",
		Description: `Turn a deactivated alias back on so mail sent to it is forwarded
again. The alias is identified by its address or ID.`,
		Usage: "veil activate <address-or-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Resume forwarding",
				Command:     "veil activate k3x9f2@veilmail.net",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("activate needs exactly one address or ID argument")
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
			if found.Active {
				fmt.Fprintf(os.Stderr, "Alias %s is already active.\n", found.Address)
				return nil
			}

			if err := service.Activate(ctx, found.ID); err != nil {
				return fmt.Errorf("activating %s: %w", found.Address, err)
			}
			fmt.Fprintf(os.Stderr, "Activated %s\n", found.Address)
			return nil
		},
	}
}
