// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"context"
	"errors"
	"testing"

	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/secret"
)

// fakeGate scripts the biometric gate.
type fakeGate struct {
	available   bool
	verifyErr   error
	verifyCalls int
	lastReason  string
}

func (g *fakeGate) Available() bool { return g.available }

func (g *fakeGate) Verify(ctx context.Context, reason string) error {
	g.verifyCalls++
	g.lastReason = reason
	return g.verifyErr
}

// fakeBackend is an in-memory Backend with keychain-like duplicate
// rejection, so the delete-then-add contract is actually exercised.
type fakeBackend struct {
	entries   map[string][]byte
	findCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entries: map[string][]byte{}}
}

func entryKey(service, account string) string {
	return service + "\x00" + account
}

func (b *fakeBackend) Add(service, account string, value []byte) error {
	key := entryKey(service, account)
	if _, exists := b.entries[key]; exists {
		return &StoreError{Status: -25294}
	}
	b.entries[key] = append([]byte(nil), value...)
	return nil
}

func (b *fakeBackend) Find(service, account string) ([]byte, error) {
	b.findCalls++
	value, exists := b.entries[entryKey(service, account)]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (b *fakeBackend) Exists(service, account string) (bool, error) {
	_, exists := b.entries[entryKey(service, account)]
	return exists, nil
}

func (b *fakeBackend) Delete(service, account string) error {
	key := entryKey(service, account)
	if _, exists := b.entries[key]; !exists {
		return ErrNotFound
	}
	delete(b.entries, key)
	return nil
}

func mustBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("building secret buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	store := NewStore(backend, &fakeGate{available: true}, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer got.Close()

	if got.String() != "p@ss1" {
		t.Errorf("Get = %q, want %q", got.String(), "p@ss1")
	}
}

func TestStoreUsesDefaultService(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	store := NewStore(backend, nil, "", nil)
	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, exists := backend.entries[entryKey(DefaultService, "alice@example.com")]; !exists {
		t.Errorf("entry not stored under %q", DefaultService)
	}
	if store.Service() != DefaultService {
		t.Errorf("Service() = %q, want %q", store.Service(), DefaultService)
	}
}

func TestStoreOverwriteNotDuplicate(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	store := NewStore(backend, &fakeGate{available: true}, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "first")); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	// The fake backend rejects duplicate adds, so this passes only if
	// Set deletes before adding.
	if err := store.Set("alice@example.com", mustBuffer(t, "second")); err != nil {
		t.Fatalf("second Set: %v", err)
	}

	got, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer got.Close()

	if got.String() != "second" {
		t.Errorf("Get = %q, want the replacement secret", got.String())
	}
}

func TestGetGateDeniedBlocksRetrieval(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	gate := &fakeGate{available: true, verifyErr: biometric.ErrDenied}
	store := NewStore(backend, gate, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if !errors.Is(err, biometric.ErrDenied) {
		t.Fatalf("Get = %v, want ErrDenied", err)
	}
	if backend.findCalls != 0 {
		t.Errorf("backend.Find called %d times after a denied gate, want 0", backend.findCalls)
	}
}

func TestGetGateTimeoutBlocksRetrieval(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	gate := &fakeGate{available: true, verifyErr: biometric.ErrTimeout}
	store := NewStore(backend, gate, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if !errors.Is(err, biometric.ErrTimeout) {
		t.Fatalf("Get = %v, want ErrTimeout", err)
	}
	if backend.findCalls != 0 {
		t.Errorf("backend.Find called %d times after a timed-out gate, want 0", backend.findCalls)
	}
}

func TestGetUnavailableGateProceeds(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	gate := &fakeGate{available: false, verifyErr: biometric.ErrDenied}
	store := NewStore(backend, gate, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if err != nil {
		t.Fatalf("Get with unavailable gate: %v", err)
	}
	defer got.Close()

	if gate.verifyCalls != 0 {
		t.Errorf("Verify called %d times on an unavailable gate, want 0", gate.verifyCalls)
	}
	if got.String() != "p@ss1" {
		t.Errorf("Get = %q, want %q", got.String(), "p@ss1")
	}
}

func TestGetVerifyReportsUnavailableProceeds(t *testing.T) {
	t.Parallel()

	// Availability can flip between the probe and the prompt; the
	// late unavailable answer must degrade to ungated retrieval, not
	// failure.
	backend := newFakeBackend()
	gate := &fakeGate{available: true, verifyErr: biometric.ErrUnavailable}
	store := NewStore(backend, gate, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(context.Background(), "alice@example.com", "unlock")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer got.Close()

	if gate.verifyCalls != 1 {
		t.Errorf("Verify called %d times, want 1", gate.verifyCalls)
	}
}

func TestGetForwardsPromptText(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	gate := &fakeGate{available: true}
	store := NewStore(backend, gate, "", nil)

	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(context.Background(), "alice@example.com", "Authenticate to access credentials")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Close()

	if gate.lastReason != "Authenticate to access credentials" {
		t.Errorf("gate saw reason %q", gate.lastReason)
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(newFakeBackend(), &fakeGate{available: true}, "", nil)
	_, err := store.Get(context.Background(), "nobody@example.com", "unlock")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestHasNeverGates(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	gate := &fakeGate{available: true, verifyErr: biometric.ErrDenied}
	store := NewStore(backend, gate, "", nil)

	if store.Has("alice@example.com") {
		t.Error("Has = true before any store")
	}
	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !store.Has("alice@example.com") {
		t.Error("Has = false after store")
	}
	if gate.verifyCalls != 0 {
		t.Errorf("Has consulted the gate %d times, want 0", gate.verifyCalls)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(newFakeBackend(), nil, "", nil)

	if store.Has("alice@example.com") {
		t.Error("Has = true before any store")
	}
	if err := store.Delete("alice@example.com"); err != nil {
		t.Errorf("Delete of an absent entry: %v", err)
	}
	if store.Has("alice@example.com") {
		t.Error("Has = true after deleting an absent entry")
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	t.Parallel()

	store := NewStore(newFakeBackend(), nil, "", nil)
	if err := store.Set("alice@example.com", mustBuffer(t, "p@ss1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete("alice@example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Has("alice@example.com") {
		t.Error("Has = true after delete")
	}
	// Deleting again stays a success.
	if err := store.Delete("alice@example.com"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
