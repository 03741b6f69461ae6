// Package timeline turns a build snapshot into display rows for its phases.
package timeline

import (
	"time"

	"buildwatchdog/internal/models"
)

// Display classes shared by the terminal dashboard and the live feed.
const (
	ClassSuccess = "state-success"
	ClassWarning = "state-warning"
	ClassError   = "state-error"
	ClassPending = "state-missing"
)

// PhaseRow is one line of the phase timeline.
type PhaseRow struct {
	Name      string             `json:"name"`
	Status    models.BuildStatus `json:"status"`
	ClassName string             `json:"className"`
	Label     string             `json:"label"`
	Duration  time.Duration      `json:"duration,omitempty"`
	Current   bool               `json:"current,omitempty"`
}

// ResolvePhaseStatus decides what status to display for a phase. A reported
// status wins. A COMPLETED phase without one inherits SUCCEEDED from a
// succeeded build. Everything else is pending.
func ResolvePhaseStatus(phase models.PhaseRecord, overall models.BuildStatus) models.BuildStatus {
	if phase.PhaseStatus != "" {
		return phase.PhaseStatus
	}
	if phase.PhaseType == models.PhaseCompleted && overall == models.StatusSucceeded {
		return models.StatusSucceeded
	}
	return models.StatusPending
}

// PhaseClass maps a resolved phase status onto a display class.
func PhaseClass(status models.BuildStatus) (className, label string) {
	switch status {
	case models.StatusSucceeded:
		return ClassSuccess, "Succeeded"
	case models.StatusInProgress:
		return ClassWarning, "Running"
	case models.StatusStopped:
		return ClassWarning, "Stopped"
	case models.StatusFailed:
		return ClassError, "Failed"
	case models.StatusFault:
		return ClassError, "Fault"
	case models.StatusTimedOut:
		return ClassError, "Timed out"
	default:
		return ClassPending, "Pending"
	}
}

// StatusClass maps an overall build status onto a display class. Only
// SUCCEEDED and IN_PROGRESS are not alarming.
func StatusClass(status models.BuildStatus) string {
	switch status {
	case models.StatusSucceeded:
		return ClassSuccess
	case models.StatusInProgress:
		return ClassWarning
	default:
		return ClassError
	}
}

// BuildPhaseRows returns one row per phase in the order the snapshot lists
// them. A nil snapshot yields no rows.
func BuildPhaseRows(snap *models.BuildSnapshot) []PhaseRow {
	if snap == nil || len(snap.Phases) == 0 {
		return nil
	}

	rows := make([]PhaseRow, 0, len(snap.Phases))
	for _, phase := range snap.Phases {
		name := phase.PhaseType
		if name == "" {
			name = "Unknown"
		}
		status := ResolvePhaseStatus(phase, snap.Status)
		class, label := PhaseClass(status)
		rows = append(rows, PhaseRow{
			Name:      name,
			Status:    status,
			ClassName: class,
			Label:     label,
			Duration:  time.Duration(phase.DurationSeconds) * time.Second,
			Current:   snap.CurrentPhase != "" && snap.CurrentPhase == phase.PhaseType && !snap.Status.IsTerminal(),
		})
	}
	return rows
}
