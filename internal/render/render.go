// Package render provides terminal output formatting for the CLI commands.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/nroh/slidegen/internal/domain"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer. With pretty disabled the output is plain and
// machine-friendly.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// List formats presentation summaries.
func (r *Renderer) List(items []domain.Summary) string {
	if len(items) == 0 {
		return "No presentations yet"
	}

	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Your Presentations (%d)\n", len(items)))
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}

	for _, item := range items {
		r.formatSummary(&sb, item)
	}

	return sb.String()
}

func (r *Renderer) formatSummary(sb *strings.Builder, item domain.Summary) {
	shortID := item.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	if r.pretty {
		fmt.Fprintf(sb, "%s %s %s (%d slides) %s\n",
			r.statusIcon(item.Status),
			color.HiBlackString(shortID),
			item.Topic,
			item.SlideCount,
			color.HiBlackString(item.CreatedAt),
		)
	} else {
		fmt.Fprintf(sb, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.Status, item.Topic, item.SlideCount, item.CreatedAt)
	}
}

func (r *Renderer) statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return color.GreenString("✓")
	case domain.StatusFailed:
		return color.RedString("✗")
	case domain.StatusProcessing:
		return color.BlueString("◐")
	default:
		return color.YellowString("○")
	}
}

// StatusLine formats one live status update.
func (r *Renderer) StatusLine(p *domain.Presentation) string {
	text := map[domain.Status]string{
		domain.StatusPending:    "Queued for processing...",
		domain.StatusProcessing: "Generating your presentation...",
		domain.StatusCompleted:  "Presentation ready!",
		domain.StatusFailed:     "Generation failed",
	}[p.Status]
	if text == "" {
		text = string(p.Status)
	}
	if p.Status == domain.StatusFailed && p.Error != "" {
		text = p.Error
	}

	if r.pretty {
		return fmt.Sprintf("%s %s", r.statusIcon(p.Status), text)
	}
	return fmt.Sprintf("%s %s", p.Status, text)
}

// Preview formats the slide titles carried in a status payload.
func (r *Renderer) Preview(slides []domain.SlidePreview) string {
	if len(slides) == 0 {
		return ""
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.CyanString("Preview\n"))
	} else {
		sb.WriteString("Preview\n")
	}
	for i, slide := range slides {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, slide.Title)
	}
	return sb.String()
}

// Stats formats the usage snapshot.
func (r *Renderer) Stats(stats *domain.Stats) string {
	if r.pretty {
		return fmt.Sprintf("%s\n  Today:     %d\n  Limit:     %d\n  Remaining: %s\n",
			color.CyanString("Usage"),
			stats.PresentationsToday,
			stats.DailyLimit,
			r.remaining(stats.Remaining),
		)
	}
	return fmt.Sprintf("today=%d limit=%d remaining=%d\n",
		stats.PresentationsToday, stats.DailyLimit, stats.Remaining)
}

func (r *Renderer) remaining(n int) string {
	if n <= 0 {
		return color.RedString("%d", n)
	}
	return color.GreenString("%d", n)
}

// Suggestions formats a suggestion set.
func (r *Renderer) Suggestions(topics []string) string {
	if len(topics) == 0 {
		return "No suggestions found. Try a different topic."
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.CyanString("Suggested Topics\n"))
	}
	for i, t := range topics {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, t)
	}
	return sb.String()
}

// Identity formats the stored identifiers.
func (r *Renderer) Identity(id domain.Identity) string {
	if r.pretty {
		return fmt.Sprintf("%s %s\n%s %s\n",
			color.HiBlackString("client:"), id.ClientID,
			color.HiBlackString("user:  "), id.UserID,
		)
	}
	return fmt.Sprintf("client_id=%s\nuser_id=%s\n", id.ClientID, id.UserID)
}

// Error formats an error for the terminal.
func (r *Renderer) Error(err error) string {
	if r.pretty {
		return color.RedString("Error: %v", err)
	}
	return fmt.Sprintf("error: %v", err)
}
