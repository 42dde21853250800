// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/relay"
)

type listParams struct {
	cli.AccountFlags
	cli.JSONOutput
	Active bool `json:"-" flag:"active,a" desc:"show only active aliases"`
	Limit  int  `json:"-" flag:"limit,n"  desc:"maximum number to display" default:"50"`
}

// ListCommand returns the "list" command: show the account's aliases.
func ListCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List aliases",
		Description: `List the account's aliases, newest first. Each row shows the
address, label, whether mail is currently forwarded, and the creation
date.`,
		Usage: "veil list [flags]",
		Examples: []cli.Example{
			{
				Description: "List the most recent aliases",
				Command:     "veil list",
			},
			{
				Description: "Only aliases that currently forward mail",
				Command:     "veil list --active",
			},
			{
				Description: "Every alias, as JSON",
				Command:     "veil list --limit 0 --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			conn, handle, err := auth.Authenticate(ctx, &params.AccountFlags, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			aliases, err := handle.Aliases().List(ctx)
			if err != nil {
				return err
			}

			if params.Active {
				filtered := aliases[:0]
				for _, alias := range aliases {
					if alias.Active {
						filtered = append(filtered, alias)
					}
				}
				aliases = filtered
			}

			total := len(aliases)
			if params.Limit > 0 && total > params.Limit {
				aliases = aliases[:params.Limit]
			}

			if done, err := params.EmitJSON(aliases); done {
				return err
			}

			if len(aliases) == 0 {
				fmt.Fprintln(os.Stderr, "No aliases found.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "ADDRESS\tLABEL\tSTATUS\tCREATED\n")
			for _, alias := range aliases {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					alias.Address,
					labelOrPlaceholder(alias),
					describeState(alias.Active),
					alias.CreatedTime().Format("2006-01-02"),
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if total > len(aliases) {
				fmt.Fprintf(os.Stderr, "Showing %d of %d aliases. Use --limit to see more.\n", len(aliases), total)
			}
			return nil
		},
	}
}

func labelOrPlaceholder(alias relay.Alias) string {
	if alias.Label == "" {
		return "(no label)"
	}
	return alias.Label
}
