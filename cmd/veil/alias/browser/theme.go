// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the color palette for the alias browser. All colors are
// ANSI 256 codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	ActiveColor   lipgloss.Color
	InactiveColor lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Background tint for characters matched by the filter.
	MatchBackground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	ActiveColor:   lipgloss.Color("114"), // green
	InactiveColor: lipgloss.Color("245"), // gray

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	MatchBackground: lipgloss.Color("58"), // dark amber
}

// styles is the pre-built style set the view renders with. All styles
// derive from one renderer pinned to the ANSI 256 profile: lipgloss's
// default renderer re-detects the profile from the environment, which
// downgrades the palette under tmux and SSH and makes rendering
// nondeterministic in tests.
type styles struct {
	header    lipgloss.Style
	normal    lipgloss.Style
	faint     lipgloss.Style
	selected  lipgloss.Style
	active    lipgloss.Style
	inactive  lipgloss.Style
	highlight lipgloss.Style
	border    lipgloss.Style
	help      lipgloss.Style
}

func newStyles(theme Theme) styles {
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)

	return styles{
		header:    renderer.NewStyle().Foreground(theme.HeaderForeground).Bold(true),
		normal:    renderer.NewStyle().Foreground(theme.NormalText),
		faint:     renderer.NewStyle().Foreground(theme.FaintText),
		selected:  renderer.NewStyle().Background(theme.SelectedBackground).Foreground(theme.SelectedForeground),
		active:    renderer.NewStyle().Foreground(theme.ActiveColor),
		inactive:  renderer.NewStyle().Foreground(theme.InactiveColor),
		highlight: renderer.NewStyle().Foreground(theme.NormalText).Background(theme.MatchBackground),
		border:    renderer.NewStyle().Foreground(theme.BorderColor),
		help:      renderer.NewStyle().Foreground(theme.HelpText),
	}
}
