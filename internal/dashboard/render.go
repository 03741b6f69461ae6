// Package dashboard renders the build monitor panel for a terminal.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"

	"buildwatchdog/internal/events"
	"buildwatchdog/internal/models"
	"buildwatchdog/internal/timeline"
)

const (
	appName       = "BuildWatchDog"
	buildIDWidth  = 20
	eventTimeFmt  = "15:04:05"
	noPhasesLabel = "No phase information available"
	noEventsLabel = "No events yet"
)

// View is everything the panel displays.
type View struct {
	BuildID     string
	ProjectName string
	Interval    time.Duration
	Snapshot    *models.BuildSnapshot // nil renders a degraded panel
	Events      []models.BuildEvent
}

// Renderer draws Views with an explicit lipgloss renderer, so colour
// detection follows the output it is created for.
type Renderer struct {
	lg *lipgloss.Renderer
}

// NewRenderer creates a renderer. A nil lipgloss renderer uses the default one.
func NewRenderer(lg *lipgloss.Renderer) *Renderer {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Renderer{lg: lg}
}

func (r *Renderer) style() lipgloss.Style {
	return r.lg.NewStyle()
}

// Render returns the full panel for v.
func (r *Renderer) Render(v View) string {
	status := models.StatusUnknown
	if v.Snapshot != nil {
		status = v.Snapshot.Status
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		r.header(v),
		r.statusLine(status),
		"",
		r.style().Bold(true).Render("Build Phases:"),
		r.phaseTable(v.Snapshot),
		"",
		r.style().Bold(true).Render("Recent Events:"),
		r.eventTable(v.Events),
		"",
		r.style().Foreground(colorMuted).Render(Footer(v.Interval)),
	)

	return r.style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Render(body)
}

// TruncateBuildID shortens a build identifier for the header.
func TruncateBuildID(id string) string {
	return truncate.String(id, buildIDWidth) + "..."
}

// Footer is the help line under the panel.
func Footer(interval time.Duration) string {
	return fmt.Sprintf("Press Ctrl+C to quit | Interval: %ds", int(interval/time.Second))
}

func (r *Renderer) header(v View) string {
	plain := r.style()
	return r.style().Bold(true).Foreground(colorAccent).Render(appName) +
		plain.Render(" | Build: ") +
		r.style().Faint(true).Render(TruncateBuildID(v.BuildID)) +
		plain.Render(" | Project: ") +
		r.style().Bold(true).Foreground(colorWarning).Render(v.ProjectName)
}

func (r *Renderer) statusLine(status models.BuildStatus) string {
	color := ClassColor(timeline.StatusClass(status))
	return "Status: " + StatusIcon(status) + " " + r.style().Bold(true).Foreground(color).Render(status.String())
}

func (r *Renderer) phaseTable(snap *models.BuildSnapshot) string {
	rows := timeline.BuildPhaseRows(snap)
	t := r.newTable()
	if len(rows) == 0 {
		return t.Row(r.style().Faint(true).Render(noPhasesLabel), "").Render()
	}

	withDuration := false
	for _, row := range rows {
		if row.Duration > 0 {
			withDuration = true
			break
		}
	}

	for _, row := range rows {
		color := ClassColor(row.ClassName)
		name := r.style().Foreground(colorAccent).Render(row.Name)
		if row.Current {
			name = r.style().Bold(true).Foreground(colorAccent).Render(row.Name)
		}
		cells := []string{
			r.style().Foreground(color).Render(PhaseIcon(row.Status)) + " " + name,
			r.style().Foreground(color).Render(row.Status.String()),
		}
		if withDuration {
			cells = append(cells, formatDuration(row.Duration))
		}
		t.Row(cells...)
	}
	return t.Render()
}

func (r *Renderer) eventTable(evts []models.BuildEvent) string {
	t := r.newTable().Headers("Time", "Event")
	if len(evts) == 0 {
		return t.Row(r.style().Faint(true).Render(noEventsLabel), "").Render()
	}
	if len(evts) > events.DisplayLimit {
		evts = evts[len(evts)-events.DisplayLimit:]
	}
	for _, e := range evts {
		t.Row(
			r.style().Faint(true).Foreground(colorAccent).Render(e.Timestamp.Format(eventTimeFmt)),
			e.Message,
		)
	}
	return t.Render()
}

func (r *Renderer) newTable() *table.Table {
	cell := r.style().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.style().Foreground(colorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			return cell
		})
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(time.Second).String()
}
