// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "alias",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "alias"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"alias"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "alias" {
		t.Errorf("dispatched to %q, want %q", called, "alias")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{
				Name: "auth",
				Subcommands: []*Command{
					{
						Name: "setup",
						Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
							called = "auth setup"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"auth", "setup", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "auth setup" {
		t.Errorf("dispatched to %q, want %q", called, "auth setup")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_RunReceivesContextAndLogger(t *testing.T) {
	var gotCtx context.Context
	var gotLogger *slog.Logger

	command := &Command{
		Name: "status",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			gotCtx = ctx
			gotLogger = logger
			return nil
		},
	}

	if err := command.Execute(nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gotCtx == nil {
		t.Error("Run received a nil context")
	}
	if gotLogger == nil {
		t.Error("Run received a nil logger")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var params struct {
		Format string `flag:"format" desc:"output format" default:"table"`
	}
	var target string

	command := &Command{
		Name:   "list",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--format", "json", "alice@example.com"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Format != "json" {
		t.Errorf("format = %q, want %q", params.Format, "json")
	}
	if target != "alice@example.com" {
		t.Errorf("target = %q, want %q", target, "alice@example.com")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var params struct {
		Active bool   `flag:"active" desc:"only active aliases"`
		Label  string `flag:"label" desc:"filter by label"`
	}

	command := &Command{
		Name:   "list",
		Params: func() any { return &params },
		Run:    func(ctx context.Context, args []string, logger *slog.Logger) error { return nil },
	}

	err := command.Execute([]string{"--actvie"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --active") {
		t.Errorf("error = %q, want suggestion for '--active'", errStr)
	}
	// Suggestion should be on the same line as the error, not buried.
	if !strings.Contains(errStr, "actvie") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	// Should include a pointer to --help.
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	var params struct {
		Active bool `flag:"active" desc:"only active aliases"`
	}

	command := &Command{
		Name:   "list",
		Params: func() any { return &params },
		Run:    func(ctx context.Context, args []string, logger *slog.Logger) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{Name: "alias"},
			{Name: "auth"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"alais"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"alias\"") {
		t.Errorf("error = %q, want suggestion for 'alias'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{Name: "alias"},
			{Name: "auth"},
		},
	}

	err := root.Execute([]string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "veil",
				Summary: "Email alias management",
				Subcommands: []*Command{
					{Name: "alias", Summary: "Alias operations"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{Name: "alias", Summary: "Alias operations"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_Execute_FlagBeforeSubcommand(t *testing.T) {
	root := &Command{
		Name: "veil",
		Subcommands: []*Command{
			{Name: "alias", Summary: "Alias operations"},
		},
	}

	err := root.Execute([]string{"--verbose"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for flag without subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
	if !strings.Contains(err.Error(), "--verbose") {
		t.Errorf("error = %q, should name the offending flag", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "veil",
		Description: "Email alias management for the Veil service.",
		Subcommands: []*Command{
			{Name: "list", Summary: "List aliases for the account"},
			{Name: "setup", Summary: "Store credentials and authenticate"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "List all aliases",
				Command:     "veil list",
			},
			{
				Description: "Set up credentials for an account",
				Command:     "veil setup --account alice@example.com",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	// Verify structural elements are present.
	for _, want := range []string{
		"Email alias management for the Veil service.",
		"Usage:",
		"veil <command> [flags]",
		"Commands:",
		"list",
		"List aliases for the account",
		"setup",
		"Store credentials and authenticate",
		"Examples:",
		"veil list",
		"veil setup",
		"Run 'veil <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	var params struct {
		Active bool   `flag:"active" desc:"only active aliases"`
		Label  string `flag:"label" desc:"filter by label" default:"any"`
	}

	command := &Command{
		Name:    "list",
		Summary: "List aliases for the account",
		Usage:   "veil alias list [flags]",
		Params:  func() any { return &params },
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"veil alias list [flags]",
		"Flags:",
		"active",
		"label",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "veil"}
	auth := &Command{Name: "auth", parent: root}
	setup := &Command{Name: "setup", parent: auth}

	if got := root.fullName(); got != "veil" {
		t.Errorf("root.fullName() = %q, want %q", got, "veil")
	}
	if got := auth.fullName(); got != "veil auth" {
		t.Errorf("auth.fullName() = %q, want %q", got, "veil auth")
	}
	if got := setup.fullName(); got != "veil auth setup" {
		t.Errorf("setup.fullName() = %q, want %q", got, "veil auth setup")
	}
}
