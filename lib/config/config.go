// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the veil configuration.
type Config struct {
	// Service configures the remote relay service.
	Service ServiceConfig `yaml:"service"`

	// DefaultAccount is the account commands use when none is given.
	// Written back by SetDefaultAccount; empty means none configured.
	DefaultAccount string `yaml:"default_account"`

	// Keystore configures credential storage.
	Keystore KeystoreConfig `yaml:"keystore"`

	// Biometric configures the local verification gate.
	Biometric BiometricConfig `yaml:"biometric"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`
}

// ServiceConfig configures the remote relay service.
type ServiceConfig struct {
	// URL is the base URL of the relay API.
	// Default: https://relay.veilmail.io
	URL string `yaml:"url"`

	// Timeout bounds one HTTP request, as a Go duration string.
	// Empty or "0" means no client-side bound.
	// Default: 1m
	Timeout string `yaml:"timeout"`

	// UserAgent overrides the User-Agent header sent to the service.
	// Empty means the built-in product string.
	UserAgent string `yaml:"user_agent"`
}

// KeystoreConfig configures credential storage.
type KeystoreConfig struct {
	// Backend selects the storage backend.
	// Values: "auto", "security", "keyring", "file". Empty means auto.
	Backend string `yaml:"backend"`

	// Service is the namespace credentials are stored under.
	// Default: com.veilmail.cli
	Service string `yaml:"service"`

	// Vault is the directory for the file backend's encrypted vault.
	// Required even for auto, which may fall back to it.
	// Default: ${VEIL_STATE}/vault
	Vault string `yaml:"vault"`
}

// BiometricConfig configures the local verification gate.
type BiometricConfig struct {
	// Helper is the verification helper binary, as a name resolved
	// via PATH or an absolute path.
	// Default: veil-localauth
	Helper string `yaml:"helper"`

	// Timeout bounds one verification prompt, as a Go duration
	// string. Empty or "0" means the gate's built-in bound.
	// Default: 2m
	Timeout string `yaml:"timeout"`

	// Disabled skips verification entirely. Retrieval then proceeds
	// ungated, the same as on hosts with no verification hardware.
	Disabled bool `yaml:"disabled"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// State is the root for everything veil persists: session
	// directories, the trust markers, and the file vault.
	// Default: $VEIL_STATE_DIR, else $XDG_STATE_HOME/veil,
	// else ~/.local/state/veil.
	State string `yaml:"state"`
}

// Default returns the default configuration. It describes a working
// installation; no config file is required.
func Default() *Config {
	state := defaultStateDir()

	return &Config{
		Service: ServiceConfig{
			URL:     "https://relay.veilmail.io",
			Timeout: "1m",
		},
		Keystore: KeystoreConfig{
			Backend: "auto",
			Service: "com.veilmail.cli",
			Vault:   filepath.Join(state, "vault"),
		},
		Biometric: BiometricConfig{
			Helper:  "veil-localauth",
			Timeout: "2m",
		},
		Paths: PathsConfig{
			State: state,
		},
	}
}

func defaultStateDir() string {
	if dir := os.Getenv("VEIL_STATE_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "veil")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "veil")
}

// Path returns the config file location: VEIL_CONFIG when set,
// otherwise $XDG_CONFIG_HOME/veil/config.yaml, otherwise
// ~/.config/veil/config.yaml.
func Path() string {
	if path := os.Getenv("VEIL_CONFIG"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "veil", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "veil", "config.yaml")
}

// Load reads the configuration from [Path]. A missing file at the
// default location yields [Default]; when VEIL_CONFIG names the file
// it must exist.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if errors.Is(err, fs.ErrNotExist) && os.Getenv("VEIL_CONFIG") == "" {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile loads configuration from a specific file path, merging the
// file over [Default]. Environment variables do not override file
// values; the only expansion performed is ${HOME} and similar path
// variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// SessionsDir returns the directory holding per-account session state.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.Paths.State, "sessions")
}

// expandVariables expands ${VAR} and ${VAR:-fallback} patterns in
// path fields. Paths.State goes first so the other fields can refer
// to it as ${VEIL_STATE}.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.State = expandVars(c.Paths.State, vars)
	vars["VEIL_STATE"] = c.Paths.State

	c.Keystore.Vault = expandVars(c.Keystore.Vault, vars)
	c.Biometric.Helper = expandVars(c.Biometric.Helper, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		fallback := ""
		if len(parts) >= 3 {
			fallback = parts[2]
		}

		// Provided vars win over the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return fallback
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.URL == "" {
		errs = append(errs, fmt.Errorf("service.url is required"))
	} else if _, err := url.Parse(c.Service.URL); err != nil {
		errs = append(errs, fmt.Errorf("service.url: %w", err))
	}

	if err := validateTimeout(c.Service.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("service.timeout: %w", err))
	}
	if err := validateTimeout(c.Biometric.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("biometric.timeout: %w", err))
	}

	// Mirrors the backend kinds lib/keystore accepts.
	backends := []string{"", "auto", "security", "keyring", "file"}
	if !slices.Contains(backends, c.Keystore.Backend) {
		errs = append(errs, fmt.Errorf("keystore.backend must be one of: auto, security, keyring, file"))
	}

	if c.Keystore.Service == "" {
		errs = append(errs, fmt.Errorf("keystore.service is required"))
	}
	if c.Keystore.Vault == "" {
		errs = append(errs, fmt.Errorf("keystore.vault is required"))
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}

	return errors.Join(errs...)
}

func validateTimeout(value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// SetDefaultAccount records account as the default in the config file
// at path, creating the file and its directory if needed. The other
// keys in the file are preserved; an empty account removes the entry.
// Comments in the file are not preserved across the rewrite.
func SetDefaultAccount(path, account string) error {
	doc := map[string]any{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fresh file.
	case err != nil:
		return err
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	}

	if account == "" {
		delete(doc, "default_account")
	} else {
		doc["default_account"] = account
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
