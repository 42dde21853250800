// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package biometric

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/veilmail/veil/lib/clock"
)

// DefaultHelperName is the helper binary consulted when no explicit
// path is configured. It is looked up on PATH.
const DefaultHelperName = "veil-localauth"

// Helper exit codes. Anything else is an internal helper failure and
// surfaces with the helper's stderr attached.
const (
	helperExitGranted     = 0
	helperExitDenied      = 2
	helperExitUnavailable = 3
)

// HelperGate implements Gate by driving the veil-localauth helper
// binary. Keeping the platform framework linkage in a separate helper
// keeps the main binary portable; the contract between the two is the
// probe and verify subcommands and the exit codes above.
type HelperGate struct {
	// Path overrides the helper binary. Empty means look up
	// DefaultHelperName on PATH.
	Path string

	// Timeout bounds one Verify call. Zero means DefaultVerifyTimeout.
	Timeout time.Duration

	// Clock drives the Verify deadline timer. Nil means wall clock.
	Clock clock.Clock

	logger *slog.Logger
}

// NewHelperGate returns a gate driving the helper at path, or the PATH
// lookup of DefaultHelperName when path is empty. A nil logger
// discards diagnostics.
func NewHelperGate(path string, logger *slog.Logger) *HelperGate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HelperGate{Path: path, logger: logger}
}

// Available reports whether the helper exists and its probe succeeds.
// The probe runs on every call: enrollment and passcode state can
// change underneath a long-lived install, so a cached answer would go
// stale.
func (g *HelperGate) Available() bool {
	path, err := g.helperPath()
	if err != nil {
		return false
	}
	if err := exec.Command(path, "probe").Run(); err != nil {
		g.logger.Debug("verification probe reported unavailable",
			"helper", path, "error", err)
		return false
	}
	return true
}

// Verify presents the platform prompt and blocks for its outcome. The
// helper runs as a child process; its exit is delivered to the parked
// caller through Await's one-shot signal. On deadline or cancellation
// the helper is killed.
func (g *HelperGate) Verify(ctx context.Context, reason string) error {
	path, err := g.helperPath()
	if err != nil {
		return ErrUnavailable
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err = Await(ctx, g.Clock, g.Timeout, func(report func(error)) {
		cmd := exec.CommandContext(runCtx, path, "verify", "--reason", reason)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		go func() {
			report(helperOutcome(cmd.Run(), stderr.Bytes()))
		}()
	})
	if err != nil {
		g.logger.Debug("verification not granted", "helper", path, "error", err)
	}
	return err
}

func (g *HelperGate) helperPath() (string, error) {
	name := g.Path
	if name == "" {
		name = DefaultHelperName
	}
	return exec.LookPath(name)
}

// helperOutcome translates the helper's exit status into the gate's
// error vocabulary.
func helperOutcome(err error, stderr []byte) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case helperExitDenied:
			return ErrDenied
		case helperExitUnavailable:
			return ErrUnavailable
		}
	}
	if detail := strings.TrimSpace(string(stderr)); detail != "" {
		return fmt.Errorf("verification helper: %s", detail)
	}
	return fmt.Errorf("verification helper: %w", err)
}
