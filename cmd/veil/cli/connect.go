// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/veilmail/veil/lib/authflow"
	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/config"
	"github.com/veilmail/veil/lib/keystore"
	"github.com/veilmail/veil/lib/sessioncache"
	"github.com/veilmail/veil/relay"
)

// AccountFlags holds the shared flags selecting the configuration and
// account a command operates on. Embed it in a command's parameter
// struct; BindFlags calls AddFlags automatically.
type AccountFlags struct {
	ConfigFile string
	Account    string
	ServiceURL string
}

// AddFlags registers the shared flags on the command's flag set.
func (f *AccountFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.ConfigFile, "config", "", "path to the config file (default: $VEIL_CONFIG, then the XDG location)")
	flagSet.StringVar(&f.Account, "account", "", "account to operate on (default: default_account from config)")
	flagSet.StringVar(&f.ServiceURL, "url", "", "account service base URL (overrides config)")
}

// LoadConfig loads and validates the configuration selected by
// --config, with the --url override applied.
func (f *AccountFlags) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.ConfigFile != "" {
		cfg, err = config.LoadFile(f.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if f.ServiceURL != "" {
		cfg.Service.URL = f.ServiceURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the path of the config file the flags select:
// --config when given, the environment-derived default otherwise. Used
// by commands that write the config back (setting the default account).
func (f *AccountFlags) ConfigPath() string {
	if f.ConfigFile != "" {
		return f.ConfigFile
	}
	return config.Path()
}

// ResolveAccount returns the account a command operates on: the
// --account flag when given, the config's default_account otherwise.
func (f *AccountFlags) ResolveAccount(cfg *config.Config) (string, error) {
	if f.Account != "" {
		return f.Account, nil
	}
	if cfg.DefaultAccount != "" {
		return cfg.DefaultAccount, nil
	}
	return "", Validation("no account selected: pass --account or run 'veil setup'")
}

// totpServiceSuffix namespaces stored TOTP secrets away from the
// passwords sharing the same backend.
const totpServiceSuffix = ".totp"

// Connection bundles the wired collaborators a command works with: the
// loaded config, the credential store with its verification gate, the
// TOTP secret store, the on-disk session cache, the account-service
// client, and the manager driving authentication across them.
type Connection struct {
	Config  *config.Config
	Store   *keystore.Store
	TOTP    *keystore.Store
	Gate    biometric.Gate
	Cache   *sessioncache.Cache
	Client  *relay.Client
	Manager *authflow.Manager
}

// Close releases transport resources. Safe to defer immediately after
// a successful Connect.
func (c *Connection) Close() {
	c.Client.CloseIdleConnections()
}

// Connect loads the selected configuration and wires a Connection
// from it. onTransition, when non-nil, observes the manager's state
// changes (verbose auth commands print them).
func (f *AccountFlags) Connect(logger *slog.Logger, onTransition func(authflow.State)) (*Connection, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, err
	}
	return Connect(cfg, logger, onTransition)
}

// Connect wires the collaborators for an already-loaded config. Most
// commands reach it through AccountFlags.Connect; setup builds its
// config first and calls this directly.
func Connect(cfg *config.Config, logger *slog.Logger, onTransition func(authflow.State)) (*Connection, error) {
	backend, err := keystore.ResolveBackend(cfg.Keystore.Backend, cfg.Keystore.Vault)
	if err != nil {
		return nil, err
	}

	var gate biometric.Gate = biometric.NopGate{}
	if !cfg.Biometric.Disabled {
		helper := biometric.NewHelperGate(cfg.Biometric.Helper, logger)
		if cfg.Biometric.Timeout != "" {
			timeout, err := time.ParseDuration(cfg.Biometric.Timeout)
			if err != nil {
				return nil, fmt.Errorf("biometric.timeout: %w", err)
			}
			helper.Timeout = timeout
		}
		gate = helper
	}

	store := keystore.NewStore(backend, gate, cfg.Keystore.Service, logger)

	// TOTP secrets are ungated: they cannot authenticate on their own,
	// and the password fetch in the same flow is the gated step.
	totp := keystore.NewStore(backend, biometric.NopGate{}, cfg.Keystore.Service+totpServiceSuffix, logger)

	cache, err := sessioncache.Open(cfg.SessionsDir(), nil, logger)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if cfg.Service.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.Service.Timeout)
		if err != nil {
			return nil, fmt.Errorf("service.timeout: %w", err)
		}
		httpClient.Timeout = timeout
	}

	client, err := relay.NewClient(relay.ClientConfig{
		BaseURL:    cfg.Service.URL,
		HTTPClient: httpClient,
		UserAgent:  cfg.Service.UserAgent,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	manager, err := authflow.NewManager(authflow.ManagerConfig{
		Credentials: store,
		Sessions:    cache,
		OpenSession: func(account string) (relay.AccountSession, error) {
			if _, err := cache.EnsureDir(account); err != nil {
				return nil, err
			}
			return relay.OpenSession(client, relay.SessionConfig{
				Account:      account,
				JarPath:      cache.JarPath(account),
				ClientIDPath: cache.ClientIDPath(account),
				Logger:       logger,
			})
		},
		Logger:       logger,
		OnTransition: onTransition,
	})
	if err != nil {
		return nil, err
	}

	return &Connection{
		Config:  cfg,
		Store:   store,
		TOTP:    totp,
		Gate:    gate,
		Cache:   cache,
		Client:  client,
		Manager: manager,
	}, nil
}
