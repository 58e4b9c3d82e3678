package ui

import (
	"strings"

	"github.com/five82/shelf/internal/logtail"
)

// renderDiagnostics renders the log tail.
func (m Model) renderDiagnostics() string {
	styles := m.theme.Styles()
	footer := "following"
	if !m.follow {
		footer = "paused (f to follow)"
	}
	if m.logPath != "" {
		footer = m.logPath + "  " + footer
	}
	return m.logViewport.View() + "\n" + styles.FaintText.Render(footer)
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.SetContent(m.renderLogEntries())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogEntries() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render("Cannot read log: " + m.logErr.Error())
	}
	if len(m.logEntries) == 0 {
		if m.logPath == "" {
			return styles.MutedText.Render("Logging to a file is disabled.")
		}
		return styles.MutedText.Render("No log entries yet.")
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, renderLogEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

func renderLogEntry(e logtail.Entry, styles Styles) string {
	if !e.Structured() {
		return styles.Text.Render(e.Raw)
	}
	var b strings.Builder
	if clock := e.Clock(); clock != "" {
		b.WriteString(styles.FaintText.Render(clock))
		b.WriteString(" ")
	}
	b.WriteString(styles.LevelStyle(e.Level).Render(e.PaddedLevel()))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.AccentText.Render(a.Key))
		b.WriteString(styles.FaintText.Render("=" + a.QuotedValue()))
	}
	return b.String()
}
