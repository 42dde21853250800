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

type updateParams struct {
	cli.AccountFlags
	cli.JSONOutput
	Label     string `json:"-" flag:"label,l"    desc:"new label"`
	Note      string `json:"-" flag:"note,n"     desc:"new note"`
	ClearNote bool   `json:"-" flag:"clear-note" desc:"remove the note"`
}

// UpdateCommand returns the "update" command: change an alias's label
// or note.
func UpdateCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Change an alias's label or note",
		Description: `Replace the label or note of an alias, identified by its address or
ID. Fields not named by a flag keep their current value.`,
		Usage: "veil update <address-or-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Rename an alias",
				Command:     "veil update k3x9f2@veilmail.net --label bookshop",
			},
			{
				Description: "Replace the note",
				Command:     "veil update k3x9f2@veilmail.net --note 'account closed'",
			},
			{
				Description: "Remove the note",
				Command:     "veil update k3x9f2@veilmail.net --clear-note",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("update needs exactly one address or ID argument")
			}
			if params.Label == "" && params.Note == "" && !params.ClearNote {
				return cli.Validation("nothing to update: pass --label, --note, or --clear-note")
			}
			if params.Note != "" && params.ClearNote {
				return cli.Validation("--note and --clear-note are mutually exclusive")
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

			label := found.Label
			if params.Label != "" {
				label = params.Label
			}
			note := found.Note
			switch {
			case params.ClearNote:
				note = ""
			case params.Note != "":
				note = params.Note
			}

			updated, err := service.Update(ctx, found.ID, label, note)
			if err != nil {
				return fmt.Errorf("updating %s: %w", found.Address, err)
			}

			if done, err := params.EmitJSON(updated); done {
				return err
			}

			fmt.Fprintf(os.Stderr, "Updated %s\n", updated.Address)
			if params.Label != "" {
				fmt.Fprintf(os.Stderr, "Label: %s\n", updated.Label)
			}
			if params.Note != "" || params.ClearNote {
				fmt.Fprintf(os.Stderr, "Note: %s\n", updated.Note)
			}
			return nil
		},
	}
}
