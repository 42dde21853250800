// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	cookiejar "github.com/juju/persistent-cookiejar"

	"github.com/veilmail/veil/lib/secret"
)

// LoginResult reports the outcome of a successful password sign-in.
type LoginResult struct {
	// RequiresTwoFactor is true when the service accepted the password
	// but will not upgrade the session until a two-factor code is
	// verified. The session is not usable for alias operations yet.
	RequiresTwoFactor bool `json:"requires_two_factor"`
}

// AccountSession is the interface for the authenticated operations one
// account session can perform. [*Session] is the production
// implementation; lib/authflow drives its state machine through this
// interface so that tests can substitute a fake service.
type AccountSession interface {
	// Login authenticates the account with the given password. The
	// password Buffer is read but not closed — the caller retains
	// ownership. A credential rejection is returned as a *APIError
	// with CodeAuthenticationRejected.
	Login(ctx context.Context, account string, password *secret.Buffer) (*LoginResult, error)

	// ValidateTwoFactorCode submits a two-factor code for the pending
	// sign-in. A wrong or expired code returns (false, nil); the error
	// is non-nil only for transport or protocol failures.
	ValidateTwoFactorCode(ctx context.Context, code string) (bool, error)

	// IsTrustedSession reports whether the service already trusts this
	// client, meaning future sign-ins are unlikely to require
	// two-factor verification.
	IsTrustedSession(ctx context.Context) (bool, error)

	// TrustSession asks the service to trust this client. Idempotent on
	// the service side.
	TrustSession(ctx context.Context) error

	// Aliases returns the alias operations for this session. Only
	// meaningful after a confirmed sign-in.
	Aliases() *AliasService
}

// SessionConfig holds the per-account state locations for OpenSession.
type SessionConfig struct {
	// Account is the account identifier this session is bound to.
	Account string
	// JarPath is where the persistent cookie jar lives. A missing file
	// loads as an empty jar; the file is only written after the service
	// confirms an authentication step.
	JarPath string
	// ClientIDPath is where the stable client UUID lives. Missing or
	// malformed files are replaced with a freshly generated ID.
	ClientIDPath string
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Session is one account's authenticated connection to the service.
// It carries the account's cookie jar and client ID over the parent
// Client's transport. Cookies accumulate in memory as the service sets
// them; they reach disk only through saveJar, which runs after the
// service confirms a sign-in, a two-factor verification, or a trust
// grant — an abandoned half-done flow leaves no session state behind.
type Session struct {
	client     *Client
	httpClient *http.Client
	jar        *cookiejar.Jar
	account    string
	clientID   string
	aliases    *AliasService
	logger     *slog.Logger
}

var _ AccountSession = (*Session)(nil)

// OpenSession binds a Client to one account's durable session state.
// It loads the cookie jar from config.JarPath (empty if absent) and the
// client ID from config.ClientIDPath (generated and written if absent).
func OpenSession(client *Client, config SessionConfig) (*Session, error) {
	if config.Account == "" {
		return nil, fmt.Errorf("relay: Account is required")
	}
	if config.JarPath == "" || config.ClientIDPath == "" {
		return nil, fmt.Errorf("relay: JarPath and ClientIDPath are required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(config.JarPath), 0o700); err != nil {
		return nil, fmt.Errorf("relay: creating session directory: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{Filename: config.JarPath})
	if err != nil {
		return nil, fmt.Errorf("relay: opening cookie jar: %w", err)
	}

	clientID, err := loadOrCreateClientID(config.ClientIDPath, logger)
	if err != nil {
		return nil, err
	}

	// The session's HTTP client shares the parent transport but carries
	// the account's own cookie jar.
	session := &Session{
		client: client,
		httpClient: &http.Client{
			Transport:     client.httpClient.Transport,
			CheckRedirect: client.httpClient.CheckRedirect,
			Timeout:       client.httpClient.Timeout,
			Jar:           jar,
		},
		jar:      jar,
		account:  config.Account,
		clientID: clientID,
		logger:   logger,
	}
	session.aliases = &AliasService{session: session}
	return session, nil
}

// Account returns the account identifier this session is bound to.
func (s *Session) Account() string {
	return s.account
}

// ClientID returns the stable client UUID sent with every request.
func (s *Session) ClientID() string {
	return s.clientID
}

// Login authenticates the session's account with the given password.
// The password Buffer is read but not closed — the caller retains
// ownership. The cookie jar is saved only when the sign-in completes
// without a pending two-factor requirement.
func (s *Session) Login(ctx context.Context, account string, password *secret.Buffer) (*LoginResult, error) {
	if account == "" {
		return nil, fmt.Errorf("relay: account is required for login")
	}
	if account != s.account {
		return nil, fmt.Errorf("relay: session is bound to account %q, not %q", s.account, account)
	}
	if password == nil {
		return nil, fmt.Errorf("relay: password is required for login")
	}

	// Password is converted to string at the JSON serialization boundary.
	// The heap copy is short-lived — it exists only during the HTTP call.
	signin := signinRequest{
		Account:  account,
		Password: password.String(),
	}

	body, err := s.doRequest(ctx, http.MethodPost, "/v1/auth/signin", signin)
	if err != nil {
		return nil, fmt.Errorf("relay: login failed: %w", err)
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("relay: failed to parse signin response: %w", err)
	}

	s.logger.Info("signed in",
		"account", s.account,
		"two_factor_required", result.RequiresTwoFactor,
	)

	if !result.RequiresTwoFactor {
		if err := s.saveJar(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// ValidateTwoFactorCode submits a two-factor code for the pending
// sign-in. A code the service rejects returns (false, nil). On
// acceptance the cookie jar is saved — the session is now confirmed.
func (s *Session) ValidateTwoFactorCode(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, fmt.Errorf("relay: two-factor code is required")
	}

	verify := verifyRequest{Code: code}
	if _, err := s.doRequest(ctx, http.MethodPost, "/v1/auth/verify", verify); err != nil {
		if IsAPIError(err, CodeInvalidCode) {
			s.logger.Info("two-factor code rejected", "account", s.account)
			return false, nil
		}
		return false, fmt.Errorf("relay: two-factor verification failed: %w", err)
	}

	s.logger.Info("two-factor verification accepted", "account", s.account)
	if err := s.saveJar(); err != nil {
		return false, err
	}
	return true, nil
}

// IsTrustedSession reports whether the service already trusts this
// client for the signed-in account.
func (s *Session) IsTrustedSession(ctx context.Context) (bool, error) {
	body, err := s.doRequest(ctx, http.MethodGet, "/v1/auth/session", nil)
	if err != nil {
		return false, fmt.Errorf("relay: session state check failed: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(body, &state); err != nil {
		return false, fmt.Errorf("relay: failed to parse session state: %w", err)
	}
	return state.Trusted, nil
}

// TrustSession asks the service to trust this client so that future
// sign-ins for the account skip two-factor verification. On success the
// cookie jar is saved with the upgraded session cookies.
func (s *Session) TrustSession(ctx context.Context) error {
	if _, err := s.doRequest(ctx, http.MethodPost, "/v1/auth/trust", nil); err != nil {
		return fmt.Errorf("relay: trust request failed: %w", err)
	}

	s.logger.Info("session trusted", "account", s.account)
	return s.saveJar()
}

// Aliases returns the alias operations for this session.
func (s *Session) Aliases() *AliasService {
	return s.aliases
}

func (s *Session) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	return s.client.doRequest(ctx, s.httpClient, s.clientID, method, path, requestBody)
}

// saveJar writes the cookie jar back to disk. Called only after the
// service has confirmed an authentication step.
func (s *Session) saveJar() error {
	if err := s.jar.Save(); err != nil {
		return fmt.Errorf("relay: saving session jar: %w", err)
	}
	s.logger.Debug("session jar saved", "account", s.account)
	return nil
}

// loadOrCreateClientID returns the UUID stored at path, generating and
// writing a fresh one when the file is missing or malformed. A
// malformed ID cannot match anything the service knows, so replacing it
// costs at most a re-trust.
func loadOrCreateClientID(path string, logger *slog.Logger) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		candidate := strings.TrimSpace(string(raw))
		if _, parseErr := uuid.Parse(candidate); parseErr == nil {
			return candidate, nil
		}
		logger.Debug("replacing malformed client ID file", "path", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("relay: reading client ID: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("relay: creating session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("relay: writing client ID: %w", err)
	}
	return id, nil
}

type signinRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type sessionState struct {
	Trusted bool `json:"trusted"`
}
