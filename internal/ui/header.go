package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the logo, the status badge, and collection counts.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	left := styles.Logo.Render("shelf")
	status := styles.StatusStyle(m.status.String()).Render("APP STATUS = " + m.status.String())

	parts := []string{
		fmt.Sprintf("%d books", m.snapshot.Books.Len()),
		fmt.Sprintf("%d suggestions", m.snapshot.SuggestedBooks.Len()),
	}
	if m.inFlight > 0 {
		parts = append(parts, fmt.Sprintf("%d in flight", m.inFlight))
	}
	if !m.lastUpdated.IsZero() {
		parts = append(parts, "updated "+m.lastUpdated.Format("15:04:05"))
	}
	middle := styles.MutedText.Render(strings.Join(parts, "  "))
	right := styles.FaintText.Render(m.theme.Name)

	used := lipgloss.Width(left) + lipgloss.Width(status) + lipgloss.Width(middle) + lipgloss.Width(right) + 4
	gap := m.width - used
	if gap < 1 {
		gap = 1
	}
	line := left + "  " + status + "  " + middle + strings.Repeat(" ", gap) + right
	return styles.Header.Width(m.width).Render(line)
}

// renderCommandBar renders the short key help for the current focus.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	var bindings []key.Binding
	switch {
	case m.filtering:
		bindings = []key.Binding{m.keys.Submit, m.keys.Escape}
	case m.currentView == ViewDiagnostics:
		bindings = []key.Binding{m.keys.ViewBooks, m.keys.Follow, m.keys.Up, m.keys.Down, m.keys.Help, m.keys.Quit}
	case m.inputFocused():
		bindings = []key.Binding{m.keys.Tab, m.keys.Submit, m.keys.Escape, m.keys.ForceQuit}
	default:
		bindings = m.keys.ShortHelp()
	}

	items := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		items = append(items, styles.WarningText.Render(h.Key)+" "+styles.MutedText.Render(h.Desc))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(items, "   "))
}
