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

type createParams struct {
	cli.AccountFlags
	cli.JSONOutput
	Note string `json:"-" flag:"note,n" desc:"free-form note for the new alias"`
}

// CreateCommand returns the "create" command: mint a new alias.
func CreateCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a new alias",
		Description: `Ask the service to mint a fresh random address and claim it with the
given label. The address is chosen by the service; the label is how
you find it again.

The new address is printed on stdout so scripts can capture it
directly.`,
		Usage: "veil create <label> [flags]",
		Examples: []cli.Example{
			{
				Description: "Create an alias for a newsletter signup",
				Command:     "veil create newsletter",
			},
			{
				Description: "Create with a note and capture the address",
				Command:     "veil create bookshop --note 'ordered 2026-08' | pbcopy",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("create needs exactly one label argument")
			}
			label := args[0]
			if label == "" {
				return cli.Validation("label must not be empty")
			}

			conn, handle, err := auth.Authenticate(ctx, &params.AccountFlags, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			created, err := handle.Aliases().Create(ctx, label, params.Note)
			if err != nil {
				return fmt.Errorf("creating alias: %w", err)
			}

			if done, err := params.EmitJSON(created); done {
				return err
			}

			fmt.Println(created.Address)
			fmt.Fprintf(os.Stderr, "Created alias with label %q\n", created.Label)
			if created.Note != "" {
				fmt.Fprintf(os.Stderr, "Note: %s\n", created.Note)
			}
			return nil
		},
	}
}
