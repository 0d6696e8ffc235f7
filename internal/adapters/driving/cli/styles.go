package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// Colour palette for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// renderSummary formats a run summary for terminal display.
func renderSummary(s *domain.RunSummary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s", s.RunID)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  started  %s", s.StartedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n")
	if !s.EndedAt.IsZero() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  duration %s", s.Duration().Round(time.Millisecond))))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("  %s  %d uploaded\n", successStyle.Render("✓"), len(s.Uploaded)))
	b.WriteString(fmt.Sprintf("  %s  %d unchanged\n", mutedStyle.Render("•"), len(s.Skipped)))
	b.WriteString(fmt.Sprintf("  %s  %d deleted\n", warningStyle.Render("–"), len(s.Deleted)))
	if len(s.Failed) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %d failed: %s\n", errorStyle.Render("✗"), len(s.Failed), strings.Join(s.Failed, ", ")))
	} else {
		b.WriteString(mutedStyle.Render("  ✗  0 failed"))
		b.WriteString("\n")
	}

	return b.String()
}
