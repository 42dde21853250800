// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/keystore"
	"github.com/veilmail/veil/lib/secret"
	"github.com/veilmail/veil/lib/sessioncache"
	"github.com/veilmail/veil/relay"
)

// Prompt texts shown when the biometric gate fronts a credential read.
const (
	credentialPrompt = "Authenticate to access Veil credentials"
	validityPrompt   = "Check Veil session"
)

// TwoFactorProvider supplies a verification code when the service
// demands one. Interactive callers prompt the user; non-interactive
// callers with an enrolled TOTP secret compute it. Called at most once
// per Authenticate — the flow never asks for a second code.
type TwoFactorProvider func(ctx context.Context) (string, error)

// Request describes one authentication attempt.
type Request struct {
	// Account is the account identifier to authenticate.
	Account string
	// Secret, when non-nil, is used instead of the credential store and
	// the resolving step is skipped entirely. The caller retains
	// ownership of the buffer.
	Secret *secret.Buffer
	// TwoFactor, when non-nil, is consulted if the service demands a
	// code. When nil, a two-factor demand ends the flow in
	// KindTwoFactorRequired.
	TwoFactor TwoFactorProvider
}

// SessionHandle is the value a successful authentication returns.
// Downstream operations receive it explicitly — there is no ambient
// authenticated client in the process.
type SessionHandle struct {
	account string
	session relay.AccountSession
}

// Account returns the authenticated account identifier.
func (h *SessionHandle) Account() string { return h.account }

// Aliases returns the alias operations for the authenticated session.
func (h *SessionHandle) Aliases() *relay.AliasService { return h.session.Aliases() }

// ManagerConfig holds the collaborators for NewManager.
type ManagerConfig struct {
	// Credentials is the gated credential store.
	Credentials *keystore.Store
	// Sessions is the per-account session state on disk.
	Sessions *sessioncache.Cache
	// OpenSession binds the account service to one account's session
	// state. Production wiring opens a relay.Session over the cache's
	// jar and client-ID paths; tests substitute a fake.
	OpenSession func(account string) (relay.AccountSession, error)
	// Logger is used for structured logging. If nil, logs are discarded.
	Logger *slog.Logger
	// OnTransition, when non-nil, observes every state change of every
	// call, synchronously. Used for verbose command output.
	OnTransition func(State)
}

// Manager drives the authentication flow. Each Authenticate call is an
// independent pass through the states in [State]; the manager keeps no
// authenticated client between calls.
type Manager struct {
	credentials  *keystore.Store
	sessions     *sessioncache.Cache
	open         func(account string) (relay.AccountSession, error)
	logger       *slog.Logger
	onTransition func(State)
}

// NewManager validates the collaborators and returns a Manager.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.Credentials == nil {
		return nil, fmt.Errorf("authflow: Credentials is required")
	}
	if config.Sessions == nil {
		return nil, fmt.Errorf("authflow: Sessions is required")
	}
	if config.OpenSession == nil {
		return nil, fmt.Errorf("authflow: OpenSession is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		credentials:  config.Credentials,
		sessions:     config.Sessions,
		open:         config.OpenSession,
		logger:       logger,
		onTransition: config.OnTransition,
	}, nil
}

// Authenticate runs one pass of the flow: resolve the password, sign
// in, satisfy a two-factor demand through the request's provider, trust
// the session when the service does not already trust it, and record
// the durable trust marker. On success the returned handle carries the
// authenticated session for downstream alias operations.
//
// Failures are returned as *FlowError and end the call; nothing is
// retried. A failed call writes no session artifact. Cleaning up after
// a failed first authentication (deleting a just-stored credential,
// clearing the session directory) is the caller's decision, so a
// transient failure here never destroys durable state.
func (m *Manager) Authenticate(ctx context.Context, request Request) (*SessionHandle, error) {
	if request.Account == "" {
		return nil, m.fail(Internal("authflow: account is required"))
	}
	m.transition(StateUnauthenticated)

	// A caller-supplied secret skips the resolving step entirely: the
	// store is not consulted and the gate is not shown.
	password := request.Secret
	if password == nil {
		m.transition(StateResolvingCredential)
		resolved, err := m.credentials.Get(ctx, request.Account, credentialPrompt)
		if err != nil {
			return nil, m.fail(classifyResolve(err, request.Account))
		}
		defer resolved.Close()
		password = resolved
	}

	m.transition(StateAttemptingLogin)
	session, err := m.open(request.Account)
	if err != nil {
		return nil, m.fail(Internal("opening session state for %s: %w", request.Account, err))
	}
	result, err := session.Login(ctx, request.Account, password)
	if err != nil {
		return nil, m.fail(classifyRemote(err))
	}

	if result.RequiresTwoFactor {
		if request.TwoFactor == nil {
			return nil, m.fail(TwoFactorRequired("two-factor verification required for %s", request.Account))
		}
		m.transition(StateAwaitingTwoFactor)
		code, err := request.TwoFactor(ctx)
		if err != nil {
			return nil, m.fail(Internal("obtaining two-factor code: %w", err))
		}
		if code == "" {
			return nil, m.fail(AuthenticationRejected("empty two-factor code"))
		}
		valid, err := session.ValidateTwoFactorCode(ctx, code)
		if err != nil {
			return nil, m.fail(classifyRemote(err))
		}
		if !valid {
			return nil, m.fail(AuthenticationRejected("invalid two-factor code"))
		}

		m.transition(StateTrusting)
		trusted, err := session.IsTrustedSession(ctx)
		if err != nil {
			return nil, m.fail(classifyRemote(err))
		}
		if !trusted {
			if err := session.TrustSession(ctx); err != nil {
				return nil, m.fail(classifyRemote(err))
			}
		}
	}

	// The service has confirmed the flow and the session's cookie jar
	// is in its final shape; bind the trust marker to it.
	if err := m.sessions.MarkTrusted(request.Account); err != nil {
		return nil, m.fail(Internal("recording trust marker: %w", err))
	}

	m.transition(StateAuthenticated)
	m.logger.Info("authenticated", "account", request.Account)
	return &SessionHandle{account: request.Account, session: session}, nil
}

// IsSessionValid reports whether account can operate without a fresh
// two-factor challenge. It requires a stored credential and a valid
// trust marker, then confirms the saved session by signing in with the
// stored secret (the gate fronts that read, as it fronts any
// credential release). Every failure on this path answers false;
// nothing is propagated.
func (m *Manager) IsSessionValid(ctx context.Context, account string) bool {
	if account == "" {
		return false
	}
	if !m.credentials.Has(account) {
		return false
	}
	if _, err := m.sessions.Load(account); err != nil {
		m.logger.Debug("trust marker rejected", "account", account, "error", err)
		return false
	}

	password, err := m.credentials.Get(ctx, account, validityPrompt)
	if err != nil {
		m.logger.Debug("validity probe could not read credential", "account", account, "error", err)
		return false
	}
	defer password.Close()

	session, err := m.open(account)
	if err != nil {
		m.logger.Debug("validity probe could not open session", "account", account, "error", err)
		return false
	}
	result, err := session.Login(ctx, account, password)
	if err != nil {
		m.logger.Debug("validity probe sign-in failed", "account", account, "error", err)
		return false
	}
	if result.RequiresTwoFactor {
		return false
	}

	// The probe's sign-in rewrote the cookie jar; refresh the marker so
	// the digest keeps matching. The session is valid either way.
	if err := m.sessions.MarkTrusted(account); err != nil {
		m.logger.Debug("refreshing trust marker failed", "account", account, "error", err)
	}
	return true
}

// ClearSession removes the account's session artifact. The credential
// store is not touched; an account stays set up after a sign-out.
func (m *Manager) ClearSession(account string) error {
	return m.sessions.Clear(account)
}

func (m *Manager) transition(to State) {
	m.logger.Debug("auth state", "state", to)
	if m.onTransition != nil {
		m.onTransition(to)
	}
}

func (m *Manager) fail(flowErr *FlowError) error {
	m.transition(StateFailed)
	m.logger.Debug("authentication failed", "kind", flowErr.Kind, "error", flowErr.Err)
	return flowErr
}

// classifyResolve maps a credential-store read failure to its kind.
func classifyResolve(err error, account string) *FlowError {
	switch {
	case errors.Is(err, keystore.ErrNotFound):
		return CredentialsNotFound("no stored credential for %s", account)
	case errors.Is(err, biometric.ErrDenied), errors.Is(err, biometric.ErrTimeout):
		return BiometricDenied("credential release blocked: %w", err)
	}
	var storeErr *keystore.StoreError
	if errors.As(err, &storeErr) {
		return StoreFailure("reading credential for %s: %w", account, err)
	}
	return Internal("reading credential for %s: %w", account, err)
}

// classifyRemote maps an account-service failure to its kind: an
// explicit credential rejection, any other answered protocol error, or
// a transport that never got an answer.
func classifyRemote(err error) *FlowError {
	var apiErr *relay.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == relay.CodeAuthenticationRejected {
			return AuthenticationRejected("%w", err)
		}
		return Internal("%w", err)
	}
	return Network("%w", err)
}
