// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/veilmail/veil/relay"
)

// aliasClient is the slice of the relay alias service the browser
// uses. Tests substitute a fake; *relay.AliasService satisfies it.
type aliasClient interface {
	List(ctx context.Context) ([]relay.Alias, error)
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// mutationTimeout bounds each service call issued from inside the
// running TUI, where no command context is available.
const mutationTimeout = 10 * time.Second

// noticeFadeDelay is how long status-bar notices stay visible.
const noticeFadeDelay = 3 * time.Second

// aliasesLoadedMsg delivers the result of a background list fetch.
type aliasesLoadedMsg struct {
	aliases []relay.Alias
	err     error
}

// mutationDoneMsg delivers the result of an activate or deactivate
// call. On success the list is refetched so the row reflects the
// service's view, not an optimistic local toggle.
type mutationDoneMsg struct {
	verb    string
	address string
	err     error
}

// noticeFadeMsg clears the status-bar notice after a delay.
type noticeFadeMsg struct{}

// row is one visible line: an alias plus the rune positions the
// current filter matched within its address and label.
type row struct {
	alias            relay.Alias
	addressPositions []int
	labelPositions   []int
}

// model is the bubbletea model for the alias browser.
type model struct {
	client aliasClient
	keys   keyMap
	styles styles

	width  int
	height int
	ready  bool

	// aliases is the full set from the service, newest first. rows is
	// the filtered view the cursor moves over.
	aliases []relay.Alias
	rows    []row
	cursor  int
	scroll  int

	// Stable focus: the selection survives reloads and filter changes
	// by tracking the alias ID rather than the row index.
	selectedID string

	filter       string
	filterActive bool
	slab         *util.Slab

	// addressWidth is the address column width, sized to the data.
	addressWidth int

	notice  string
	loading bool
}

func newModel(client aliasClient, aliases []relay.Alias) model {
	m := model{
		client:  client,
		keys:    defaultKeyMap,
		styles:  newStyles(DefaultTheme),
		aliases: aliases,
		slab:    util.MakeSlab(slab16Size, slab32Size),
	}
	m.addressWidth = addressColumnWidth(aliases)
	m.applyFilter()
	if len(m.rows) > 0 {
		m.selectedID = m.rows[0].alias.ID
	}
	return m
}

// addressColumnWidth sizes the address column to the longest address,
// clamped so one outlier does not squeeze the labels off screen.
func addressColumnWidth(aliases []relay.Alias) int {
	width := 20
	for _, alias := range aliases {
		if length := len([]rune(alias.Address)); length > width {
			width = length
		}
	}
	if width > 40 {
		width = 40
	}
	return width
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if m.filterActive {
			return m.handleFilterKeys(message)
		}
		return m.handleListKeys(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.ensureCursorVisible()

	case aliasesLoadedMsg:
		m.loading = false
		if message.err != nil {
			m.notice = fmt.Sprintf("reload failed: %v", message.err)
			return m, fadeNotice()
		}
		m.aliases = message.aliases
		m.addressWidth = addressColumnWidth(m.aliases)
		m.applyFilter()

	case mutationDoneMsg:
		if message.err != nil {
			m.notice = fmt.Sprintf("%s %s failed: %v", strings.ToLower(message.verb), message.address, message.err)
			return m, fadeNotice()
		}
		m.notice = fmt.Sprintf("%s %s", message.verb, message.address)
		return m, tea.Batch(m.reload(), fadeNotice())

	case noticeFadeMsg:
		m.notice = ""
	}
	return m, nil
}

// handleFilterKeys routes input while the filter bar has focus. Esc
// clears the filter entirely; Enter keeps the text and returns focus
// to the list.
func (m model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filter = ""
		m.filterActive = false
		m.applyFilter()
	case tea.KeyEnter:
		m.filterActive = false
	case tea.KeyBackspace:
		if m.filter != "" {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
			m.applyFilter()
		}
	case tea.KeyRunes:
		m.filter += string(message.Runes)
		m.applyFilter()
	case tea.KeySpace:
		m.filter += " "
		m.applyFilter()
	}
	return m, nil
}

func (m model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(message, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(message, m.keys.PageUp):
		m.moveCursor(-m.visibleHeight())

	case key.Matches(message, m.keys.PageDown):
		m.moveCursor(m.visibleHeight())

	case key.Matches(message, m.keys.Home):
		m.cursor = 0
		m.syncSelection()
		m.ensureCursorVisible()

	case key.Matches(message, m.keys.End):
		m.cursor = len(m.rows) - 1
		m.syncSelection()
		m.ensureCursorVisible()

	case key.Matches(message, m.keys.FilterActivate):
		m.filterActive = true
		m.cursor = 0
		m.scroll = 0

	case key.Matches(message, m.keys.FilterClear):
		if m.filter != "" {
			m.filter = ""
			m.applyFilter()
		}

	case key.Matches(message, m.keys.Activate):
		if selected, ok := m.selectedAlias(); ok && !selected.Active {
			return m, m.mutate("Activated", selected)
		}

	case key.Matches(message, m.keys.Deactivate):
		if selected, ok := m.selectedAlias(); ok && selected.Active {
			return m, m.mutate("Deactivated", selected)
		}

	case key.Matches(message, m.keys.Copy):
		if selected, ok := m.selectedAlias(); ok {
			m.notice = fmt.Sprintf("Copied %s", selected.Address)
			return m, tea.Batch(copyToClipboard(selected.Address), fadeNotice())
		}

	case key.Matches(message, m.keys.Reload):
		m.loading = true
		return m, m.reload()
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.syncSelection()
	m.ensureCursorVisible()
}

func (m *model) syncSelection() {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		m.selectedID = m.rows[m.cursor].alias.ID
	}
}

func (m *model) ensureCursorVisible() {
	visible := m.visibleHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// selectedAlias returns the alias under the cursor.
func (m *model) selectedAlias() (relay.Alias, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return relay.Alias{}, false
	}
	return m.rows[m.cursor].alias, true
}

// applyFilter rebuilds the visible rows from the full alias set. An
// empty filter shows everything in service order; otherwise rows are
// fuzzy-matched against "address label note" and ordered by score.
// The previous selection is restored by ID when it survives the
// filter; otherwise the cursor snaps to the top.
func (m *model) applyFilter() {
	if m.filter == "" {
		m.rows = make([]row, len(m.aliases))
		for index, alias := range m.aliases {
			m.rows[index] = row{alias: alias}
		}
		m.restoreSelection()
		return
	}

	pattern := []rune(m.filter)
	type scoredRow struct {
		row
		score int
	}
	var matches []scoredRow
	for _, alias := range m.aliases {
		text := alias.Address + "  " + alias.Label + "  " + alias.Note
		result := fuzzyMatch(text, pattern, m.slab)
		if result.Score <= 0 {
			continue
		}

		matched := scoredRow{row: row{alias: alias}, score: result.Score}
		addressLength := len([]rune(alias.Address))
		labelStart := addressLength + 2
		labelEnd := labelStart + len([]rune(alias.Label))
		for _, position := range result.Positions {
			switch {
			case position < addressLength:
				matched.addressPositions = append(matched.addressPositions, position)
			case position >= labelStart && position < labelEnd:
				matched.labelPositions = append(matched.labelPositions, position-labelStart)
			}
		}
		matches = append(matches, matched)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	m.rows = make([]row, len(matches))
	for index, matched := range matches {
		m.rows[index] = matched.row
	}
	m.restoreSelection()
}

// restoreSelection moves the cursor back to the alias it was on before
// the rows were rebuilt, when that alias is still visible.
func (m *model) restoreSelection() {
	for index := range m.rows {
		if m.rows[index].alias.ID == m.selectedID {
			m.cursor = index
			m.ensureCursorVisible()
			return
		}
	}
	m.cursor = 0
	m.scroll = 0
	m.syncSelection()
}

// reload refetches the alias list in the background.
func (m model) reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		aliases, err := client.List(ctx)
		return aliasesLoadedMsg{aliases: aliases, err: err}
	}
}

// mutate toggles forwarding for the alias in the background. The list
// is refetched on success (from Update), so the UI never shows a state
// the service did not confirm.
func (m model) mutate(verb string, alias relay.Alias) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		var err error
		if verb == "Activated" {
			err = client.Activate(ctx, alias.ID)
		} else {
			err = client.Deactivate(ctx, alias.ID)
		}
		return mutationDoneMsg{verb: verb, address: alias.Address, err: err}
	}
}

func fadeNotice() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

// copyToClipboard writes text to the system clipboard via the OSC 52
// escape sequence, written straight to /dev/tty so it bypasses
// bubbletea's managed output (OSC 52 has no screen effect). BEL
// terminates the sequence because it survives SSH and tmux layering;
// under tmux the sequence is additionally sent through DCS passthrough
// for allow-passthrough configurations.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			return nil
		}
		defer tty.Close()

		encoded := base64.StdEncoding.EncodeToString([]byte(text))
		osc52 := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)

		inTmux := os.Getenv("TMUX") != "" ||
			strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
			strings.HasPrefix(os.Getenv("TERM"), "screen")
		if inTmux {
			fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", osc52)
		}

		tty.WriteString(osc52)
		return nil
	}
}

// visibleHeight is the number of list rows that fit between the header
// and the help bar.
func (m model) visibleHeight() int {
	height := m.height - 3
	if height < 1 {
		return 1
	}
	return height
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sections []string

	// Top chrome: the filter bar replaces the header while active so
	// the layout does not shift.
	if m.filterActive || m.filter != "" {
		sections = append(sections, m.renderFilterBar())
	} else {
		sections = append(sections, m.renderHeader())
	}

	sections = append(sections, m.renderRows())

	separator := m.styles.border.Render(strings.Repeat("─", m.width))
	sections = append(sections, separator)

	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n")
}

func (m model) renderHeader() string {
	activeCount := 0
	for _, alias := range m.aliases {
		if alias.Active {
			activeCount++
		}
	}
	title := fmt.Sprintf(" veil · %d aliases (%d active)", len(m.aliases), activeCount)
	if m.loading {
		title += " · reloading"
	}
	return m.styles.header.Width(m.width).MaxWidth(m.width).Render(title)
}

func (m model) renderFilterBar() string {
	bar := " / " + m.filter
	if m.filterActive {
		bar += m.styles.header.Render("▎")
	} else {
		bar += fmt.Sprintf("  (%d/%d)", len(m.rows), len(m.aliases))
	}
	return m.styles.normal.Width(m.width).MaxWidth(m.width).Render(bar)
}

func (m model) renderRows() string {
	visible := m.visibleHeight()

	if len(m.rows) == 0 {
		empty := "No aliases yet. Run 'veil create <label>' to mint one."
		if m.filter != "" {
			empty = "No aliases match the filter."
		}
		lines := make([]string, visible)
		lines[0] = m.styles.faint.Render(" " + empty)
		return strings.Join(lines, "\n")
	}

	var lines []string
	for index := m.scroll; index < m.scroll+visible && index < len(m.rows); index++ {
		lines = append(lines, m.renderRow(m.rows[index], index == m.cursor))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one alias line: status dot, address column, label.
// Filter matches are tinted; on the selected row they are bold and
// underlined instead, since the selection background already differs.
func (m model) renderRow(r row, selected bool) string {
	base := m.styles.normal
	labelStyle := m.styles.faint
	dotStyle := m.styles.active
	highlight := m.styles.highlight
	dot := "●"
	if !r.alias.Active {
		dot = "○"
		dotStyle = m.styles.inactive
		base = m.styles.faint
	}
	if selected {
		base = m.styles.selected
		labelStyle = m.styles.selected
		dotStyle = m.styles.selected.Bold(true)
		highlight = m.styles.selected.Bold(true).Underline(true)
	}

	address := r.alias.Address
	if runes := []rune(address); len(runes) > m.addressWidth {
		address = string(runes[:m.addressWidth-1]) + "…"
	}
	addressCell := highlightSegment(address, r.addressPositions, base, highlight)
	if pad := m.addressWidth - lipgloss.Width(address); pad > 0 {
		addressCell += base.Render(strings.Repeat(" ", pad))
	}

	labelWidth := m.width - 3 - m.addressWidth - 2
	label := r.alias.Label
	if labelWidth < 1 {
		label = ""
	} else if runes := []rune(label); len(runes) > labelWidth {
		label = string(runes[:labelWidth-1]) + "…"
	}
	labelCell := highlightSegment(label, r.labelPositions, labelStyle, highlight)

	line := " " + dotStyle.Render(dot) + " " + addressCell + base.Render("  ") + labelCell

	if selected {
		return m.styles.selected.Width(m.width).MaxWidth(m.width).Render(line)
	}
	return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).Render(line)
}

func (m model) renderStatusBar() string {
	if m.notice != "" {
		return m.styles.header.Width(m.width).MaxWidth(m.width).Render(" " + m.notice)
	}
	bindings := []key.Binding{
		m.keys.Down, m.keys.FilterActivate, m.keys.Activate,
		m.keys.Deactivate, m.keys.Copy, m.keys.Reload, m.keys.Quit,
	}
	var parts []string
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return m.styles.help.Width(m.width).MaxWidth(m.width).Render(" " + strings.Join(parts, "  "))
}

// highlightSegment renders text with the characters at the given rune
// positions in the highlight style. Consecutive same-style runs are
// batched into one Render call to keep the ANSI output compact.
func highlightSegment(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}

	positionSet := make(map[int]bool, len(positions))
	for _, position := range positions {
		positionSet[position] = true
	}

	runes := []rune(text)
	var result strings.Builder
	runStart := 0
	highlighted := positionSet[0]

	for index := 1; index <= len(runes); index++ {
		current := index < len(runes) && positionSet[index]
		if current != highlighted || index == len(runes) {
			chunk := string(runes[runStart:index])
			if highlighted {
				result.WriteString(highlight.Render(chunk))
			} else {
				result.WriteString(base.Render(chunk))
			}
			runStart = index
			highlighted = current
		}
	}
	return result.String()
}
