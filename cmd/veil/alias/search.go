// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/veilmail/veil/cmd/veil/auth"
	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/relay"
)

type searchParams struct {
	cli.AccountFlags
	cli.JSONOutput
}

// SearchCommand returns the "search" command: find aliases by
// substring match against address, label, or note.
func SearchCommand() *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search aliases by address, label, or note",
		Description: `Find aliases whose address, label, or note contains the query,
case-insensitively. The service has no search endpoint; the match runs
locally over the full alias list. For interactive narrowing, 'veil
browse' filters as you type.`,
		Usage: "veil search <query> [flags]",
		Examples: []cli.Example{
			{
				Description: "Find the alias used for a shop",
				Command:     "veil search bookshop",
			},
			{
				Description: "Machine-readable results",
				Command:     "veil search newsletter --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("search needs exactly one query argument")
			}
			query := args[0]

			conn, handle, err := auth.Authenticate(ctx, &params.AccountFlags, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			aliases, err := handle.Aliases().List(ctx)
			if err != nil {
				return err
			}

			var results []relay.Alias
			for _, alias := range aliases {
				if matchesQuery(alias, query) {
					results = append(results, alias)
				}
			}

			if done, err := params.EmitJSON(results); done {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintf(os.Stderr, "No aliases match %q.\n", query)
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "ADDRESS\tLABEL\tNOTE\tSTATUS\n")
			for _, alias := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					alias.Address,
					labelOrPlaceholder(alias),
					truncateNote(alias.Note, 30),
					describeState(alias.Active),
				)
			}
			return tw.Flush()
		},
	}
}

// matchesQuery reports whether the alias's address, label, or note
// contains query, ignoring case.
func matchesQuery(alias relay.Alias, query string) bool {
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(alias.Address), needle) ||
		strings.Contains(strings.ToLower(alias.Label), needle) ||
		strings.Contains(strings.ToLower(alias.Note), needle)
}

// truncateNote shortens a note to fit a table column, marking the cut
// with an ellipsis.
func truncateNote(note string, max int) string {
	runes := []rune(note)
	if len(runes) <= max {
		return note
	}
	return string(runes[:max]) + "..."
}
