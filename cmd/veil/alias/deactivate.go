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

type deactivateParams struct {
	cli.AccountFlags
}

// DeactivateCommand returns the "deactivate" command: stop forwarding
// for an alias without deleting it.
func DeactivateCommand() *cli.Command {
	var params deactivateParams

	return &cli.Command{
		Name:    "deactivate",
		Summary: "Stop forwarding for an alias",
		Description: `Turn an alias off. Mail sent to the address bounces until the alias
is activated again; the address itself stays owned by the account.
For permanent removal use 'veil delete'.`,
		Usage: "veil deactivate <address-or-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Stop forwarding for a leaked address",
				Command:     "veil deactivate k3x9f2@veilmail.net",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("deactivate needs exactly one address or ID argument")
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
			if !found.Active {
				fmt.Fprintf(os.Stderr, "Alias %s is already inactive.\n", found.Address)
				return nil
			}

			if err := service.Deactivate(ctx, found.ID); err != nil {
				return fmt.Errorf("deactivating %s: %w", found.Address, err)
			}
			fmt.Fprintf(os.Stderr, "Deactivated %s\n", found.Address)
			return nil
		},
	}
}
