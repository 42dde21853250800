// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrAliasNotFound is returned by Resolve when no alias matches the
// given identifier.
var ErrAliasNotFound = errors.New("relay: no alias matches")

// Alias is one forwarding address owned by the account.
type Alias struct {
	// ID is the service's opaque identifier for the alias.
	ID string `json:"id"`
	// Address is the alias address mail is sent to.
	Address string `json:"address"`
	// Label is the user-assigned name (e.g., "newsletter").
	Label string `json:"label"`
	// Note is free-form user text.
	Note string `json:"note,omitempty"`
	// Active reports whether the alias currently forwards mail.
	Active bool `json:"active"`
	// ForwardTo is the real address the alias delivers to.
	ForwardTo string `json:"forward_to,omitempty"`
	// Domain is the domain the alias was minted under.
	Domain string `json:"domain,omitempty"`
	// CreatedAt is the creation time in milliseconds since the Unix epoch.
	CreatedAt int64 `json:"created_at"`
}

// CreatedTime returns the alias creation time.
func (a *Alias) CreatedTime() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// AliasService performs alias operations over an authenticated session.
// Obtain one from [Session.Aliases].
type AliasService struct {
	session *Session
}

// List returns all aliases owned by the account, newest first.
func (s *AliasService) List(ctx context.Context) ([]Alias, error) {
	body, err := s.session.doRequest(ctx, http.MethodGet, "/v1/aliases", nil)
	if err != nil {
		return nil, fmt.Errorf("relay: listing aliases failed: %w", err)
	}

	var response aliasListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("relay: failed to parse alias list: %w", err)
	}
	return response.Aliases, nil
}

// Generate asks the service to mint a fresh random address. The address
// is not owned by the account until Reserve claims it.
func (s *AliasService) Generate(ctx context.Context) (string, error) {
	body, err := s.session.doRequest(ctx, http.MethodPost, "/v1/aliases/generate", nil)
	if err != nil {
		return "", fmt.Errorf("relay: generating alias failed: %w", err)
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("relay: failed to parse generate response: %w", err)
	}
	if response.Address == "" {
		return "", fmt.Errorf("relay: service returned an empty generated address")
	}
	return response.Address, nil
}

// Reserve claims a generated address with the given metadata, making it
// an active alias of the account.
func (s *AliasService) Reserve(ctx context.Context, address, label, note string) (*Alias, error) {
	if address == "" {
		return nil, fmt.Errorf("relay: address is required to reserve an alias")
	}

	reserve := reserveRequest{Address: address, Label: label, Note: note}
	body, err := s.session.doRequest(ctx, http.MethodPost, "/v1/aliases", reserve)
	if err != nil {
		return nil, fmt.Errorf("relay: reserving alias %q failed: %w", address, err)
	}

	var alias Alias
	if err := json.Unmarshal(body, &alias); err != nil {
		return nil, fmt.Errorf("relay: failed to parse reserve response: %w", err)
	}
	return &alias, nil
}

// Create mints and claims a new alias in one call: Generate, then
// Reserve the returned address with the given metadata.
func (s *AliasService) Create(ctx context.Context, label, note string) (*Alias, error) {
	address, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return s.Reserve(ctx, address, label, note)
}

// Update replaces the label and note of an existing alias.
func (s *AliasService) Update(ctx context.Context, id, label, note string) (*Alias, error) {
	if id == "" {
		return nil, fmt.Errorf("relay: alias ID is required")
	}

	update := updateRequest{Label: label, Note: note}
	body, err := s.session.doRequest(ctx, http.MethodPatch, "/v1/aliases/"+url.PathEscape(id), update)
	if err != nil {
		return nil, fmt.Errorf("relay: updating alias %s failed: %w", id, err)
	}

	var alias Alias
	if err := json.Unmarshal(body, &alias); err != nil {
		return nil, fmt.Errorf("relay: failed to parse update response: %w", err)
	}
	return &alias, nil
}

// Activate resumes forwarding for a deactivated alias.
func (s *AliasService) Activate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("relay: alias ID is required")
	}
	if _, err := s.session.doRequest(ctx, http.MethodPost, "/v1/aliases/"+url.PathEscape(id)+"/activate", nil); err != nil {
		return fmt.Errorf("relay: activating alias %s failed: %w", id, err)
	}
	return nil
}

// Deactivate stops forwarding for an alias without deleting it. Mail
// sent to the address bounces until it is activated again.
func (s *AliasService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("relay: alias ID is required")
	}
	if _, err := s.session.doRequest(ctx, http.MethodPost, "/v1/aliases/"+url.PathEscape(id)+"/deactivate", nil); err != nil {
		return fmt.Errorf("relay: deactivating alias %s failed: %w", id, err)
	}
	return nil
}

// Delete permanently removes an alias. The address cannot be reclaimed.
func (s *AliasService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("relay: alias ID is required")
	}
	if _, err := s.session.doRequest(ctx, http.MethodDelete, "/v1/aliases/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("relay: deleting alias %s failed: %w", id, err)
	}
	return nil
}

// Resolve finds an alias by address or by ID. Commands accept either
// form; the service API only accepts IDs, so this lists and matches
// client-side. Returns ErrAliasNotFound when nothing matches.
func (s *AliasService) Resolve(ctx context.Context, identifier string) (*Alias, error) {
	aliases, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range aliases {
		if aliases[i].Address == identifier || aliases[i].ID == identifier {
			return &aliases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrAliasNotFound, identifier)
}

type aliasListResponse struct {
	Aliases []Alias `json:"aliases"`
}

type generateResponse struct {
	Address string `json:"address"`
}

type reserveRequest struct {
	Address string `json:"address"`
	Label   string `json:"label"`
	Note    string `json:"note,omitempty"`
}

type updateRequest struct {
	Label string `json:"label"`
	Note  string `json:"note"`
}
