package model

import (
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// MonthlySummary is the digest of a month posted to chat
type MonthlySummary struct {
	Month types.Month
	Title string
	// Config is nil when the month has no configuration file
	Config            *MonthConfig
	Incidents         IncidentSummary
	TopRootCause      string
	TopRootCauseCount int
	CompletedProjects int
	OngoingProjects   int
	OutOfSprintTotal  int
	DashboardURL      string
}

// NewMonthlySummary digests a loaded month
func NewMonthlySummary(report *MonthReport, title string) *MonthlySummary {
	s := &MonthlySummary{
		Month:             report.Month,
		Title:             title,
		Config:            report.Config,
		Incidents:         SummarizeIncidents(report.Incidents),
		CompletedProjects: len(report.CompletedProjects),
		OngoingProjects:   len(FilterOngoingProjects(report.OngoingProjects, TeamAll)),
	}

	counts := map[string]int{}
	for _, inc := range report.Incidents {
		counts[inc.RootCause]++
		// First category to reach the highest count wins
		if counts[inc.RootCause] > s.TopRootCauseCount {
			s.TopRootCause = inc.RootCause
			s.TopRootCauseCount = counts[inc.RootCause]
		}
	}

	for _, total := range SummarizeOutOfSprint(report.OutOfSprint) {
		s.OutOfSprintTotal += total.Total
	}
	return s
}
