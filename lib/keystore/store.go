// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/secret"
)

// Store is the credential store: a Backend wrapped with the biometric
// gate and Veil's storage semantics. Writes replace, deletes are
// idempotent, reads pass the gate first, existence probes never
// prompt.
type Store struct {
	backend Backend
	gate    biometric.Gate
	service string
	logger  *slog.Logger
}

// NewStore wraps backend. An empty service means DefaultService; a nil
// gate disables gating; a nil logger discards diagnostics.
func NewStore(backend Backend, gate biometric.Gate, service string, logger *slog.Logger) *Store {
	if gate == nil {
		gate = biometric.NopGate{}
	}
	if service == "" {
		service = DefaultService
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{backend: backend, gate: gate, service: service, logger: logger}
}

// Service returns the namespace this store writes under.
func (s *Store) Service() string { return s.service }

// Set replaces any existing secret for account. The write is a
// best-effort delete followed by an add, so a pre-existing entry can
// never surface as a duplicate conflict. The gate is not consulted:
// enforcement happens at retrieval, where the platform can actually
// apply it (see the package documentation).
func (s *Store) Set(account string, value *secret.Buffer) error {
	if err := s.backend.Delete(s.service, account); err != nil && !errors.Is(err, ErrNotFound) {
		// The add below will still overwrite; the failed delete is
		// only worth a diagnostic.
		s.logger.Debug("pre-store delete failed", "account", account, "error", err)
	}
	if err := s.backend.Add(s.service, account, value.Bytes()); err != nil {
		return err
	}
	s.logger.Debug("stored credential", "account", account)
	return nil
}

// Get releases the stored secret for account. When the gate reports
// available, verification must pass first; on denial the backend is
// never touched, so no secret material is read. An unavailable gate is
// not fatal: retrieval proceeds ungated, matching hosts without
// biometric hardware. reason is the text shown on the verification
// prompt.
//
// Returns ErrNotFound when no entry exists. The caller owns the
// returned buffer and must Close it.
func (s *Store) Get(ctx context.Context, account, reason string) (*secret.Buffer, error) {
	if s.gate.Available() {
		if err := s.gate.Verify(ctx, reason); err != nil {
			if !errors.Is(err, biometric.ErrUnavailable) {
				s.logger.Debug("credential release blocked",
					"account", account, "error", err)
				return nil, err
			}
			// Availability flipped between the probe and the prompt;
			// treat it like a gate that was never available.
			s.logger.Debug("gate became unavailable, proceeding ungated",
				"account", account)
		}
	}

	raw, err := s.backend.Find(s.service, account)
	if err != nil {
		return nil, err
	}
	return secret.NewFromBytes(raw)
}

// Delete removes the stored secret for account. Deleting an absent
// entry is success, so cleanup paths can call it unconditionally.
func (s *Store) Delete(account string) error {
	err := s.backend.Delete(s.service, account)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.Debug("deleted credential", "account", account)
	return nil
}

// Has reports whether a secret exists for account. It never consults
// the gate and never reads secret material, so status displays can
// call it without prompting the user. Probe failures report false.
func (s *Store) Has(account string) bool {
	ok, err := s.backend.Exists(s.service, account)
	if err != nil {
		s.logger.Debug("existence probe failed", "account", account, "error", err)
		return false
	}
	return ok
}
