// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package alias

import (
	"context"
	"errors"
	"fmt"

	"github.com/veilmail/veil/cmd/veil/cli"
	"github.com/veilmail/veil/relay"
)

// resolveAlias finds the alias a command argument names, accepting
// either the address or the service ID.
func resolveAlias(ctx context.Context, service *relay.AliasService, identifier string) (*relay.Alias, error) {
	found, err := service.Resolve(ctx, identifier)
	if errors.Is(err, relay.ErrAliasNotFound) {
		return nil, cli.NotFound("no alias matches %q", identifier).
			WithHint("Run 'veil list' to see your aliases and their IDs.")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", identifier, err)
	}
	return found, nil
}

func describeState(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
