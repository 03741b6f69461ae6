package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"buildwatchdog/internal/models"
	"buildwatchdog/internal/timeline"
)

// Palette entries are ANSI colour indexes so they degrade on 16-colour terminals.
var (
	colorSuccess = lipgloss.Color("2")
	colorWarning = lipgloss.Color("3")
	colorError   = lipgloss.Color("1")
	colorAccent  = lipgloss.Color("6")
	colorMuted   = lipgloss.Color("8")
)

// StatusIcon returns the glyph shown next to the overall build status.
func StatusIcon(status models.BuildStatus) string {
	switch status {
	case models.StatusInProgress:
		return "🟡"
	case models.StatusSucceeded:
		return "🟢"
	case models.StatusFailed, models.StatusFault, models.StatusTimedOut:
		return "🔴"
	case models.StatusStopped:
		return "🟠"
	default:
		return "⚪"
	}
}

// PhaseIcon returns the glyph for a resolved phase status.
func PhaseIcon(status models.BuildStatus) string {
	switch status {
	case models.StatusSucceeded:
		return "✓"
	case models.StatusInProgress:
		return "⏳"
	case models.StatusFailed, models.StatusFault, models.StatusTimedOut:
		return "✗"
	case models.StatusStopped:
		return "⏸"
	default:
		return "○"
	}
}

// ClassColor returns the colour for a timeline display class.
func ClassColor(className string) lipgloss.Color {
	switch className {
	case timeline.ClassSuccess:
		return colorSuccess
	case timeline.ClassWarning:
		return colorWarning
	case timeline.ClassError:
		return colorError
	default:
		return colorMuted
	}
}
