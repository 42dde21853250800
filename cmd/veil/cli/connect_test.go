// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/veilmail/veil/lib/biometric"
	"github.com/veilmail/veil/lib/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a validated config rooted in a temp directory,
// with the file keystore backend and biometrics off so nothing in the
// wiring touches platform services.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("VEIL_STATE_DIR", filepath.Join(t.TempDir(), "state"))

	cfg := config.Default()
	cfg.Keystore.Backend = "file"
	cfg.Biometric.Disabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

func TestAccountFlags_LoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veil.yaml")
	content := `
service:
  url: https://relay.test.veilmail.io
default_account: alice@example.com
keystore:
  backend: file
paths:
  state: ` + filepath.Join(dir, "state") + `
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := AccountFlags{ConfigFile: path}
	cfg, err := flags.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Service.URL != "https://relay.test.veilmail.io" {
		t.Errorf("Service.URL = %q, want the file's value", cfg.Service.URL)
	}
	if cfg.DefaultAccount != "alice@example.com" {
		t.Errorf("DefaultAccount = %q, want %q", cfg.DefaultAccount, "alice@example.com")
	}
}

func TestAccountFlags_LoadConfig_URLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veil.yaml")
	content := `
service:
  url: https://relay.test.veilmail.io
paths:
  state: ` + filepath.Join(dir, "state") + `
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := AccountFlags{ConfigFile: path, ServiceURL: "https://staging.veilmail.io"}
	cfg, err := flags.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Service.URL != "https://staging.veilmail.io" {
		t.Errorf("Service.URL = %q, want the --url override", cfg.Service.URL)
	}
}

func TestAccountFlags_LoadConfig_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veil.yaml")
	if err := os.WriteFile(path, []byte("service:\n  timeout: shortly\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := AccountFlags{ConfigFile: path}
	_, err := flags.LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %q, want mention of invalid configuration", err)
	}
}

func TestAccountFlags_ConfigPath(t *testing.T) {
	t.Setenv("VEIL_CONFIG", "/etc/veil/config.yaml")

	explicit := AccountFlags{ConfigFile: "/tmp/other.yaml"}
	if got := explicit.ConfigPath(); got != "/tmp/other.yaml" {
		t.Errorf("ConfigPath() = %q, want the --config value", got)
	}

	var defaulted AccountFlags
	if got := defaulted.ConfigPath(); got != "/etc/veil/config.yaml" {
		t.Errorf("ConfigPath() = %q, want the environment default", got)
	}
}

func TestAccountFlags_ResolveAccount(t *testing.T) {
	tests := []struct {
		name           string
		flagAccount    string
		defaultAccount string
		want           string
		wantErr        bool
	}{
		{"flag wins", "bob@example.com", "alice@example.com", "bob@example.com", false},
		{"falls back to config", "", "alice@example.com", "alice@example.com", false},
		{"neither set", "", "", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			flags := AccountFlags{Account: test.flagAccount}
			cfg := &config.Config{DefaultAccount: test.defaultAccount}

			got, err := flags.ResolveAccount(cfg)
			if test.wantErr {
				if err == nil {
					t.Fatal("ResolveAccount() = nil, want error")
				}
				if !strings.Contains(err.Error(), "--account") {
					t.Errorf("error = %q, want mention of --account", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveAccount() error: %v", err)
			}
			if got != test.want {
				t.Errorf("ResolveAccount() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestConnect_WiresCollaborators(t *testing.T) {
	cfg := testConfig(t)

	conn, err := Connect(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	if conn.Store == nil {
		t.Error("Connection.Store is nil")
	}
	if conn.TOTP == nil {
		t.Error("Connection.TOTP is nil")
	} else if got, want := conn.TOTP.Service(), cfg.Keystore.Service+".totp"; got != want {
		t.Errorf("TOTP store service = %q, want %q", got, want)
	}
	if conn.Cache == nil {
		t.Error("Connection.Cache is nil")
	}
	if conn.Client == nil {
		t.Error("Connection.Client is nil")
	}
	if conn.Manager == nil {
		t.Error("Connection.Manager is nil")
	}
	if got := conn.Cache.Root(); got != cfg.SessionsDir() {
		t.Errorf("Cache.Root() = %q, want %q", got, cfg.SessionsDir())
	}
}

func TestConnect_DisabledBiometricsUsesNopGate(t *testing.T) {
	cfg := testConfig(t)

	conn, err := Connect(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	if _, ok := conn.Gate.(biometric.NopGate); !ok {
		t.Errorf("Gate = %T, want biometric.NopGate when disabled", conn.Gate)
	}
}

func TestConnect_HelperGateTimeoutFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Biometric.Disabled = false
	cfg.Biometric.Timeout = "90s"

	conn, err := Connect(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	helper, ok := conn.Gate.(*biometric.HelperGate)
	if !ok {
		t.Fatalf("Gate = %T, want *biometric.HelperGate", conn.Gate)
	}
	if helper.Timeout != 90*time.Second {
		t.Errorf("HelperGate.Timeout = %v, want 90s", helper.Timeout)
	}
}

func TestConnect_RejectsBadBiometricTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Biometric.Disabled = false
	cfg.Biometric.Timeout = "soon"

	_, err := Connect(cfg, discardLogger(), nil)
	if err == nil {
		t.Fatal("Connect() = nil, want error for unparseable timeout")
	}
	if !strings.Contains(err.Error(), "biometric.timeout") {
		t.Errorf("error = %q, want mention of biometric.timeout", err)
	}
}

func TestConnect_RejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Keystore.Backend = "vault9"

	_, err := Connect(cfg, discardLogger(), nil)
	if err == nil {
		t.Fatal("Connect() = nil, want error for unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown keystore backend") {
		t.Errorf("error = %q, want mention of unknown backend", err)
	}
}
