package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildwatchdog/internal/models"
)

func TestResolvePhaseStatus(t *testing.T) {
	completed := models.PhaseRecord{PhaseType: models.PhaseCompleted}

	assert.Equal(t, models.StatusSucceeded, ResolvePhaseStatus(completed, models.StatusSucceeded))
	assert.Equal(t, models.StatusPending, ResolvePhaseStatus(completed, models.StatusInProgress))
	assert.Equal(t, models.StatusPending, ResolvePhaseStatus(completed, models.StatusFailed))

	other := models.PhaseRecord{PhaseType: "POST_BUILD"}
	assert.Equal(t, models.StatusPending, ResolvePhaseStatus(other, models.StatusSucceeded))

	reported := models.PhaseRecord{PhaseType: models.PhaseCompleted, PhaseStatus: models.StatusFailed}
	assert.Equal(t, models.StatusFailed, ResolvePhaseStatus(reported, models.StatusSucceeded))
}

func TestPhaseClass(t *testing.T) {
	cases := map[models.BuildStatus]string{
		models.StatusSucceeded:  ClassSuccess,
		models.StatusInProgress: ClassWarning,
		models.StatusStopped:    ClassWarning,
		models.StatusFailed:     ClassError,
		models.StatusFault:      ClassError,
		models.StatusTimedOut:   ClassError,
		models.StatusPending:    ClassPending,
		models.StatusUnknown:    ClassPending,
		"QUEUED":                ClassPending,
	}
	for status, want := range cases {
		got, label := PhaseClass(status)
		assert.Equal(t, want, got, status)
		assert.NotEmpty(t, label)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, ClassSuccess, StatusClass(models.StatusSucceeded))
	assert.Equal(t, ClassWarning, StatusClass(models.StatusInProgress))
	for _, s := range []models.BuildStatus{models.StatusFailed, models.StatusStopped, models.StatusFault, models.StatusTimedOut} {
		assert.Equal(t, ClassError, StatusClass(s), s)
	}
}

func TestBuildPhaseRows(t *testing.T) {
	snap := &models.BuildSnapshot{
		Status:       models.StatusInProgress,
		CurrentPhase: "BUILD",
		Phases: []models.PhaseRecord{
			{PhaseType: "SUBMITTED", PhaseStatus: models.StatusSucceeded, DurationSeconds: 2},
			{PhaseType: "BUILD", PhaseStatus: models.StatusInProgress},
			{PhaseType: ""},
		},
	}

	rows := BuildPhaseRows(snap)
	require.Len(t, rows, 3)
	assert.Equal(t, "SUBMITTED", rows[0].Name)
	assert.Equal(t, ClassSuccess, rows[0].ClassName)
	assert.Equal(t, 2*time.Second, rows[0].Duration)
	assert.True(t, rows[1].Current)
	assert.Equal(t, ClassWarning, rows[1].ClassName)
	assert.Equal(t, "Unknown", rows[2].Name)
	assert.Equal(t, models.StatusPending, rows[2].Status)
}

func TestBuildPhaseRowsEmpty(t *testing.T) {
	assert.Nil(t, BuildPhaseRows(nil))
	assert.Nil(t, BuildPhaseRows(&models.BuildSnapshot{Status: models.StatusInProgress}))
}
