package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"artassist/internal/model"
	"artassist/internal/util/format"
)

func (m Model) View() string {
	sections := []string{
		m.viewHeader(),
		m.viewControls(),
		m.viewProgress(),
	}
	if s := m.viewResults(); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, m.viewLogs(), m.viewFooter())
	return strings.Join(sections, "\n\n") + "\n"
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("artassist: sketch cleanup & face fix")
	server := m.styles.Error.Render("● server unreachable")
	if m.serverOK {
		server = m.styles.Success.Render("● " + m.deps.Settings.Server.URL)
	}
	return title + "\n" + server
}

func (m Model) viewControls() string {
	image := m.deps.Image
	if image == "" {
		image = m.styles.Error.Render("(none)")
	} else {
		image = filepath.Base(image)
	}

	parts := []string{
		fmt.Sprintf("task: %s", m.styles.Accent.Render(string(m.task))),
		fmt.Sprintf("strength: %s", m.styles.Accent.Render(string(m.strength))),
	}
	if m.task == model.TaskCleanup {
		parts = append(parts, fmt.Sprintf("detail: %s", m.styles.Accent.Render(string(m.detail))))
	}
	parts = append(parts, fmt.Sprintf("count: %s", m.styles.Accent.Render(fmt.Sprintf("%d", m.count))))

	lines := "source: " + image + "\n" + strings.Join(parts, "  ")
	if m.deps.Hint != "" {
		lines += "\nhint: " + m.styles.Faint.Render(m.deps.Hint)
	}
	return m.styles.Box.Render(lines)
}

func (m Model) viewProgress() string {
	switch {
	case m.running && m.display.Active:
		return fmt.Sprintf("%s %s  %s",
			m.spin.View(),
			m.bar.ViewAs(float64(m.display.Percent)/100.0),
			m.styles.Accent.Render(m.display.Label))
	case m.running:
		return m.spin.View() + " " + m.styles.Faint.Render(m.status)
	case m.lastErr != nil:
		return m.styles.Error.Render("✗ " + m.lastErr.Error())
	case len(m.results) > 0:
		return m.styles.Success.Render("✓ " + m.status)
	default:
		return m.styles.Faint.Render(m.status)
	}
}

func (m Model) viewResults() string {
	if len(m.results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Results (%d):", len(m.results))))
	for _, r := range m.results {
		b.WriteString("\n")
		b.WriteString(m.styles.Success.Render("  • " + r.Path))
		b.WriteString(m.styles.Faint.Render(" (" + format.HumanizeBytes(r.Bytes) + ")"))
	}
	return b.String()
}

func (m Model) viewLogs() string {
	return m.styles.Subtitle.Render("Log:") + "\n" + m.styles.LogBox.Render(m.logs.View())
}

func (m Model) viewFooter() string {
	keys := "enter: run  c: cancel  tab: task  s: strength  d: detail  +/-: count  o: open folder  q: quit"
	return m.styles.Faint.Render(keys)
}
