package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"buildwatchdog/internal/models"
	"buildwatchdog/internal/timeline"
)

// BuildSummary summarises the phases of a finished build.
type BuildSummary struct {
	Status           models.BuildStatus `json:"status"`
	TotalPhases      int                `json:"total_phases"`
	Succeeded        int                `json:"succeeded"`
	Failed           int                `json:"failed"`
	Other            int                `json:"other"`
	SucceededPercent float64            `json:"succeeded_percent"`
	Duration         time.Duration      `json:"duration"`
}

// Summarize aggregates phase outcomes from a snapshot. A nil snapshot yields
// an UNKNOWN summary with no phases.
func Summarize(snap *models.BuildSnapshot) BuildSummary {
	if snap == nil {
		return BuildSummary{Status: models.StatusUnknown}
	}

	summary := BuildSummary{Status: snap.Status}
	for _, row := range timeline.BuildPhaseRows(snap) {
		summary.TotalPhases++
		summary.Duration += row.Duration
		switch row.ClassName {
		case timeline.ClassSuccess:
			summary.Succeeded++
		case timeline.ClassError:
			summary.Failed++
		default:
			summary.Other++
		}
	}
	if summary.TotalPhases > 0 {
		summary.SucceededPercent = round2(float64(summary.Succeeded) / float64(summary.TotalPhases) * 100)
	}
	return summary
}

// String renders the summary for the final status line.
func (s BuildSummary) String() string {
	if s.TotalPhases == 0 {
		return "no phase information"
	}
	parts := []string{fmt.Sprintf("%d/%d phases succeeded", s.Succeeded, s.TotalPhases)}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.Duration > 0 {
		parts = append(parts, "took "+s.Duration.String())
	}
	return strings.Join(parts, ", ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
