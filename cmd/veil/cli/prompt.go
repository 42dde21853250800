// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/veilmail/veil/lib/secret"
)

// stdin is shared so consecutive prompts do not drop bytes a previous
// read buffered.
var stdin = bufio.NewReader(os.Stdin)

// ReadPassword obtains a password for a command. With an empty
// passwordFile it prompts interactively with echo disabled; otherwise
// the file is read via [secret.ReadFromPath], with "-" meaning one
// line from stdin for pipelines.
func ReadPassword(passwordFile, label string) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}
	return PromptSecret(label)
}

// PromptSecret reads a secret interactively with terminal echo
// disabled. The label is written to stderr so stdout stays clean for
// command output.
func PromptSecret(label string) (*secret.Buffer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, Validation("no terminal available for the %s prompt (use --password-file)", strings.ToLower(label))
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, Internal("reading %s: %w", strings.ToLower(label), err)
	}
	if len(raw) == 0 {
		return nil, Validation("%s must not be empty", strings.ToLower(label))
	}

	buffer, err := secret.NewFromBytes(raw)
	if err != nil {
		secret.Zero(raw)
		return nil, err
	}
	return buffer, nil
}

// PromptLine reads one line of input with echo on, for values that are
// not secrets (account names, verification codes). The label goes to
// stderr; the returned line is whitespace-trimmed.
func PromptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", Internal("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question on the terminal. Anything but an
// explicit yes answers false.
func Confirm(question string) (bool, error) {
	answer, err := PromptLine(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
