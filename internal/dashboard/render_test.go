package dashboard

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"buildwatchdog/internal/models"
	"buildwatchdog/internal/timeline"
)

func plainRenderer() *Renderer {
	lg := lipgloss.NewRenderer(io.Discard)
	lg.SetColorProfile(termenv.Ascii)
	return NewRenderer(lg)
}

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 14, 30, sec, 0, time.Local)
}

func TestRenderInProgressScenario(t *testing.T) {
	view := View{
		BuildID:     "demo:6a1b0c5e-1234-4cde-9f00-abcdef012345",
		ProjectName: "demo",
		Interval:    10 * time.Second,
		Snapshot: &models.BuildSnapshot{
			Status:      models.StatusInProgress,
			ProjectName: "demo",
			Phases: []models.PhaseRecord{
				{PhaseType: "SUBMITTED", PhaseStatus: models.StatusSucceeded},
				{PhaseType: "BUILD", PhaseStatus: models.StatusInProgress},
			},
		},
		Events: []models.BuildEvent{
			{Timestamp: at(5), Status: "IN_PROGRESS", Message: "Started monitoring - IN_PROGRESS"},
		},
	}

	out := plainRenderer().Render(view)

	assert.Contains(t, out, "BuildWatchDog | Build: demo:6a1b0c5e-1234-4... | Project: demo")
	assert.Contains(t, out, "Status: 🟡 IN_PROGRESS")
	assert.Contains(t, out, "✓ SUBMITTED")
	assert.Contains(t, out, "⏳ BUILD")
	assert.Contains(t, out, "14:30:05")
	assert.Contains(t, out, "Started monitoring - IN_PROGRESS")
	assert.Contains(t, out, "Press Ctrl+C to quit | Interval: 10s")
	assert.NotContains(t, out, noPhasesLabel)
}

func TestRenderCompletedPhaseInference(t *testing.T) {
	phases := []models.PhaseRecord{{PhaseType: models.PhaseCompleted}}

	succeeded := plainRenderer().Render(View{Snapshot: &models.BuildSnapshot{Status: models.StatusSucceeded, Phases: phases}})
	assert.Contains(t, succeeded, "✓ COMPLETED")

	running := plainRenderer().Render(View{Snapshot: &models.BuildSnapshot{Status: models.StatusInProgress, Phases: phases}})
	assert.Contains(t, running, "○ COMPLETED")
	assert.Contains(t, running, "PENDING")
}

func TestRenderNilSnapshotDegrades(t *testing.T) {
	out := plainRenderer().Render(View{BuildID: "b-1", ProjectName: "demo", Interval: 3 * time.Second})

	assert.Contains(t, out, "Status: ⚪ UNKNOWN")
	assert.Contains(t, out, noPhasesLabel)
	assert.Contains(t, out, noEventsLabel)
	assert.Contains(t, out, "Interval: 3s")
}

func TestRenderShowsAtMostEightEvents(t *testing.T) {
	var evts []models.BuildEvent
	for i := 0; i < 15; i++ {
		evts = append(evts, models.BuildEvent{Timestamp: at(i), Message: fmt.Sprintf("event-%02d", i)})
	}

	out := plainRenderer().Render(View{Events: evts})

	shown := 0
	for i := 0; i < 15; i++ {
		if strings.Contains(out, fmt.Sprintf("event-%02d", i)) {
			shown++
		}
	}
	assert.Equal(t, 8, shown)
	assert.NotContains(t, out, "event-06")
	assert.Contains(t, out, "event-07")
	assert.Contains(t, out, "event-14")
}

func TestRenderDurationColumn(t *testing.T) {
	out := plainRenderer().Render(View{Snapshot: &models.BuildSnapshot{
		Status: models.StatusFailed,
		Phases: []models.PhaseRecord{
			{PhaseType: "PROVISIONING", PhaseStatus: models.StatusSucceeded, DurationSeconds: 75},
			{PhaseType: "BUILD", PhaseStatus: models.StatusFailed, DurationSeconds: 4},
		},
	}})

	assert.Contains(t, out, "1m15s")
	assert.Contains(t, out, "✗ BUILD")
	assert.Contains(t, out, "Status: 🔴 FAILED")
}

func TestStatusIcon(t *testing.T) {
	cases := map[models.BuildStatus]string{
		models.StatusInProgress: "🟡",
		models.StatusSucceeded:  "🟢",
		models.StatusFailed:     "🔴",
		models.StatusStopped:    "🟠",
		models.StatusFault:      "🔴",
		models.StatusTimedOut:   "🔴",
		models.StatusUnknown:    "⚪",
		"QUEUED":                "⚪",
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusIcon(status), status)
	}
}

func TestPhaseIcon(t *testing.T) {
	cases := map[models.BuildStatus]string{
		models.StatusSucceeded:  "✓",
		models.StatusInProgress: "⏳",
		models.StatusFailed:     "✗",
		models.StatusStopped:    "⏸",
		models.StatusFault:      "✗",
		models.StatusTimedOut:   "✗",
		models.StatusPending:    "○",
	}
	for status, want := range cases {
		assert.Equal(t, want, PhaseIcon(status), status)
	}
}

func TestClassColor(t *testing.T) {
	assert.Equal(t, colorSuccess, ClassColor(timeline.ClassSuccess))
	assert.Equal(t, colorWarning, ClassColor(timeline.ClassWarning))
	assert.Equal(t, colorError, ClassColor(timeline.ClassError))
	assert.Equal(t, colorMuted, ClassColor(timeline.ClassPending))
}

func TestTruncateBuildID(t *testing.T) {
	assert.Equal(t, "abcdefghijklmnopqrst...", TruncateBuildID("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "short...", TruncateBuildID("short"))
}
