package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nroh/slidegen/internal/domain"
)

// View renders the shell
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return fmt.Sprintf("\n  %s Loading...", m.spinner.View())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("⚡ slidegen · AI presentations") + "\n\n")

	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner) + "\n\n")
	} else if m.notice != "" {
		b.WriteString(activeStyle.Render(m.notice) + "\n\n")
	}

	b.WriteString(m.viewForm())
	b.WriteString(m.viewSuggestions())
	b.WriteString(m.viewStatus())
	b.WriteString(m.viewList())
	b.WriteString(m.viewStatusBar())
	b.WriteString(helpStyle.Render(
		"tab focus · enter pick/generate · ↑/↓ suggestions · ctrl+↑/↓ slides · " +
			"ctrl+r refresh · ctrl+n/p select · ctrl+d delete · ctrl+o download · ctrl+c quit",
	))

	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder

	b.WriteString("  " + m.topicInput.View() + "\n")
	b.WriteString("  " + m.industryInput.View() + "   " + m.audienceInput.View() + "\n")
	b.WriteString("  " + infoStyle.Render(fmt.Sprintf("Slides: %d", m.slideCount)))

	if m.selectedTopic != "" && m.selectedTopic == m.topicInput.Value() {
		b.WriteString("   " + activeStyle.Render("✓ Topic selected"))
	}
	b.WriteString("\n\n")

	return b.String()
}

func (m Model) viewSuggestions() string {
	value := strings.TrimSpace(m.topicInput.Value())
	if len(value) < 3 {
		return infoStyle.Render("  Start typing a topic to see AI-generated suggestions...") + "\n\n"
	}
	if len(m.suggestions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("  Suggested Topics\n")
	for i, s := range m.suggestions {
		marker := "  "
		line := s
		if i == m.suggestIdx {
			marker = "> "
			line = selectedStyle.Render(s)
		}
		fmt.Fprintf(&b, "  %s%s\n", marker, line)
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStatus() string {
	if m.jobID == "" {
		return ""
	}

	var b strings.Builder

	b.WriteString("  Generation Status  ")
	b.WriteString(infoStyle.Render("ID: "+m.jobID) + "\n")

	switch {
	case m.current == nil:
		fmt.Fprintf(&b, "  %s Initializing...\n", m.spinner.View())
	case m.current.Status == domain.StatusPending:
		fmt.Fprintf(&b, "  %s Queued for processing...\n", m.spinner.View())
	case m.current.Status == domain.StatusProcessing:
		fmt.Fprintf(&b, "  %s Generating your presentation... (30-60 seconds)\n", m.spinner.View())
	case m.current.Status == domain.StatusCompleted:
		b.WriteString("  " + activeStyle.Render("✓ Presentation ready!") + "\n")
	case m.current.Status == domain.StatusFailed:
		msg := m.current.Error
		if msg == "" {
			msg = "Generation failed"
		}
		b.WriteString("  " + errorStyle.Render("✗ "+msg) + "\n")
	}

	if m.current != nil && len(m.current.SlidesPreview) > 0 {
		b.WriteString("  Preview:\n")
		max := len(m.current.SlidesPreview)
		if max > 3 {
			max = 3
		}
		for i := 0; i < max; i++ {
			fmt.Fprintf(&b, "    %d. %s\n", i+1, m.current.SlidesPreview[i].Title)
		}
		if rest := len(m.current.SlidesPreview) - max; rest > 0 {
			b.WriteString(infoStyle.Render(fmt.Sprintf("    ... and %d more slides", rest)) + "\n")
		}
	}

	b.WriteString("\n")
	return boxStyle.Render(b.String()) + "\n\n"
}

func (m Model) viewList() string {
	var b strings.Builder

	if len(m.items) == 0 {
		b.WriteString(infoStyle.Render("  No presentations yet. Generated decks will appear here.") + "\n\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  Your Presentations (%d)\n", len(m.items))
	for i, item := range m.items {
		marker := "  "
		if i == m.listIdx {
			marker = "> "
		}

		icon := statusGlyph(item.Status)
		shortID := item.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		line := fmt.Sprintf("%s%s %s  %s", marker, icon, item.Topic, infoStyle.Render(shortID))
		if i == m.listIdx {
			line = selectedStyle.Render(fmt.Sprintf("%s%s %s", marker, icon, item.Topic)) + "  " + infoStyle.Render(shortID)
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	return b.String()
}

func statusGlyph(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return activeStyle.Render("✓")
	case domain.StatusFailed:
		return errorStyle.Render("✗")
	case domain.StatusProcessing:
		return "◐"
	default:
		return "○"
	}
}

func (m Model) viewStatusBar() string {
	parts := []string{fmt.Sprintf("user %s", shorten(m.deps.Identity.UserID, 18))}
	if m.stats != nil {
		parts = append(parts, fmt.Sprintf("today %d/%d · %d left",
			m.stats.PresentationsToday, m.stats.DailyLimit, m.stats.Remaining))
	}
	if m.generating {
		parts = append(parts, "generating…")
	}

	bar := statusBarStyle.Render(strings.Join(parts, " │ "))
	return lipgloss.NewStyle().MarginTop(1).Render(bar) + "\n"
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
