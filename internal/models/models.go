package models

import (
	"time"
)

// BuildStatus is a CodeBuild build or phase status value.
type BuildStatus string

const (
	StatusInProgress BuildStatus = "IN_PROGRESS"
	StatusSucceeded  BuildStatus = "SUCCEEDED"
	StatusFailed     BuildStatus = "FAILED"
	StatusStopped    BuildStatus = "STOPPED"
	StatusFault      BuildStatus = "FAULT"
	StatusTimedOut   BuildStatus = "TIMED_OUT"
	StatusUnknown    BuildStatus = "UNKNOWN"

	// StatusPending is never reported upstream; it marks a phase that has not
	// reported a status yet.
	StatusPending BuildStatus = "PENDING"
)

// PhaseCompleted is the phase type CodeBuild reports last, usually without a status.
const PhaseCompleted = "COMPLETED"

// ParseBuildStatus maps an empty upstream value to StatusUnknown. Anything
// else is kept verbatim so unrecognised values still compare as reported.
func ParseBuildStatus(raw string) BuildStatus {
	if raw == "" {
		return StatusUnknown
	}
	return BuildStatus(raw)
}

// Known reports whether s is one of the six statuses CodeBuild documents.
func (s BuildStatus) Known() bool {
	switch s {
	case StatusInProgress, StatusSucceeded, StatusFailed, StatusStopped, StatusFault, StatusTimedOut:
		return true
	}
	return false
}

// IsTerminal reports whether the build will not change any further.
func (s BuildStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusStopped, StatusFault, StatusTimedOut:
		return true
	}
	return false
}

func (s BuildStatus) String() string {
	return string(s)
}

// PhaseRecord is one named step of a build.
type PhaseRecord struct {
	PhaseType       string      `json:"phase_type"`
	PhaseStatus     BuildStatus `json:"phase_status,omitempty"`
	DurationSeconds int64       `json:"duration_seconds,omitempty"`
}

// BuildSnapshot is the decoded result of one status query.
type BuildSnapshot struct {
	BuildID      string        `json:"build_id"`
	BuildNumber  int64         `json:"build_number,omitempty"`
	Status       BuildStatus   `json:"status"`
	ProjectName  string        `json:"project_name"`
	CurrentPhase string        `json:"current_phase,omitempty"`
	Phases       []PhaseRecord `json:"phases"`
}

// BuildEvent is an entry in the monitor's event log.
type BuildEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
}

// DashboardState is the view published to live feed subscribers.
type DashboardState struct {
	SessionID       string         `json:"session_id"`
	BuildID         string         `json:"build_id"`
	ProjectName     string         `json:"project_name"`
	IntervalSeconds int            `json:"interval_seconds"`
	Snapshot        *BuildSnapshot `json:"snapshot,omitempty"`
	Events          []BuildEvent   `json:"events"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NotifyMode selects where status transitions are announced.
type NotifyMode string

const (
	NotifyTerminal NotifyMode = "terminal"
	NotifyDesktop  NotifyMode = "desktop"
	NotifyBoth     NotifyMode = "both"
)

// Valid reports whether m is a recognised mode.
func (m NotifyMode) Valid() bool {
	switch m {
	case NotifyTerminal, NotifyDesktop, NotifyBoth:
		return true
	}
	return false
}

// Desktop reports whether m includes desktop notifications.
func (m NotifyMode) Desktop() bool {
	return m == NotifyDesktop || m == NotifyBoth
}
