package usecase_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/repository"
)

func intPtr(v int) *int { return &v }

// newTestSource returns a memory source holding 2025-06 (incidents only)
// and 2025-07 (every category)
func newTestSource(t *testing.T) *repository.Memory {
	t.Helper()
	mem := repository.NewMemory()

	june := model.NewMonthReport("2025-06")
	gt.NoError(t, june.Set(types.CategoryIncidentReport, []model.Incident{
		{Team: "Invoice", DurationMinutes: 15, Start: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), RootCause: "Deploy"},
	})).Required()
	gt.NoError(t, mem.Put(june)).Required()

	july := model.NewMonthReport("2025-07")
	sets := map[types.Category]any{
		types.CategoryConfig: &model.MonthConfig{
			TargetYear:                2025,
			TargetMonth:               7,
			TargetMonthName:           "Temmuz",
			NumberOfCompletedProjects: 2,
			NumberOfOngoingProjects:   3,
			UptimePercentage:          "99.9",
			NumberOfBugFixes:          14,
			NumberOfDeployments:       40,
		},
		types.CategoryCompletedProjects: []model.Project{
			{Title: "Gateway migration", Progress: "100%", Status: "Completed", Group: "Payment"},
		},
		types.CategoryOngoingProjects: []model.Project{
			{Title: "Refund automation", Progress: "65%", Status: "In Progress", Group: "Payment"},
			{Title: "Ledger rewrite", Progress: "30%", Status: "Blocked", Group: "Finance"},
			{Title: "", Group: "Invoice"},
		},
		types.CategoryIncidentReport: []model.Incident{
			{Team: "Payment", DurationMinutes: 30, Start: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), RootCause: "Bug"},
			{Team: "Payment", DurationMinutes: 20, Start: time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC), RootCause: "Bug"},
			{Team: "Finance", DurationMinutes: 10, Start: time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC), RootCause: "Bug"},
			{Team: "Invoice", DurationMinutes: 5, Start: time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC), RootCause: "Deploy"},
		},
		types.CategoryInfraDevOps: []model.Project{
			{Title: "Kubernetes upgrade", Progress: "80%", Status: "Test"},
		},
		types.CategorySecurity: []model.Project{
			{Title: "WAF rules", Progress: "45%", Status: "In Progress"},
		},
		types.CategoryTechOpsRecurringTasks: []model.RecurringTask{
			{Team: "Payment", RequestCount: 40, ReopenCount: 4, ReopenRate: "10%", RiskLevel: "Orta"},
		},
		types.CategoryTechOpsLifecycleTasks: []model.LifecycleTask{
			{Team: "Payment", LeadAverage: 4.5, CycleAverage: 2, ReactionAverage: 0.5},
		},
		types.CategoryOutOfSprint: []model.OutOfSprintItem{
			{Team: "Payment", Sprint: "S-1", Count: intPtr(12)},
			{Team: "Finance", Sprint: "S-1", Count: intPtr(25)},
			{Team: "Finance", Sprint: "S-2", Note: "ad-hoc audit"},
		},
	}
	for category, v := range sets {
		gt.NoError(t, july.Set(category, v)).Required()
	}
	gt.NoError(t, mem.Put(july)).Required()

	return mem
}
