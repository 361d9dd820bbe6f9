package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/service/chart"
)

// DashboardView is the view model of the monthly report page
type DashboardView struct {
	Month  types.Month
	Months []types.Month
	Title  string
	// Config is nil when the month has no configuration file
	Config *model.MonthConfig
	Report *model.MonthReport

	CompletedProjects []model.ProjectView
	OngoingProjects   []model.ProjectView
	Teams             []string
	SelectedTeam      string

	Incidents        []model.Incident
	IncidentSummary  model.IncidentSummary
	RootCauses       *chart.Donut
	MonthlyIncidents *chart.BarChart

	InfraDevOps    []model.ProjectView
	Security       []model.ProjectView
	RecurringTasks []model.RecurringTaskView
	LifecycleTasks []model.LifecycleTask
	OutOfSprint    []model.SprintTeamTotal
}

// Has reports whether the month had data for the category
func (d *DashboardView) Has(category string) bool {
	return d.Report.Has(types.Category(category))
}

// DashboardRequest selects the month and team filter of a dashboard
type DashboardRequest struct {
	Month string
	Team  string
}

// DashboardUseCase builds dashboard view models
type DashboardUseCase struct {
	report  *ReportUseCase
	palette *model.Palette
	now     func() time.Time
}

// DashboardOption configures DashboardUseCase
type DashboardOption func(*DashboardUseCase)

// WithClock overrides the clock used for the trailing incident window
func WithClock(now func() time.Time) DashboardOption {
	return func(uc *DashboardUseCase) {
		uc.now = now
	}
}

// NewDashboardUseCase creates a new DashboardUseCase. A nil palette selects
// the built-in palette.
func NewDashboardUseCase(report *ReportUseCase, palette *model.Palette, opts ...DashboardOption) *DashboardUseCase {
	if palette == nil {
		palette = model.DefaultPalette()
	}

	uc := &DashboardUseCase{
		report:  report,
		palette: palette,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Build loads the requested month and assembles its dashboard
func (uc *DashboardUseCase) Build(ctx context.Context, req DashboardRequest) (*DashboardView, error) {
	month, err := uc.report.ResolveMonth(ctx, req.Month)
	if err != nil {
		return nil, err
	}

	report, err := uc.report.GetMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	months, err := uc.report.ListMonths(ctx)
	if err != nil {
		return nil, err
	}

	team := req.Team
	if team == "" {
		team = model.TeamAll
	}

	d := &DashboardView{
		Month:        month,
		Months:       months,
		Title:        report.Title(),
		Config:       report.Config,
		Report:       report,
		Teams:        model.ProjectTeams(report.OngoingProjects),
		SelectedTeam: team,

		CompletedProjects: model.NewProjectViews(report.CompletedProjects, uc.palette),
		OngoingProjects:   model.NewProjectViews(model.FilterOngoingProjects(report.OngoingProjects, team), uc.palette),

		Incidents:        report.Incidents,
		IncidentSummary:  model.SummarizeIncidents(report.Incidents),
		RootCauses:       chart.BuildDonut(report.Incidents, uc.palette),
		MonthlyIncidents: chart.BuildBarChart(report.Incidents, uc.now()),

		InfraDevOps:    model.NewProjectViews(report.InfraDevOps, uc.palette),
		Security:       model.NewProjectViews(report.Security, uc.palette),
		RecurringTasks: model.NewRecurringTaskViews(report.RecurringTasks, uc.palette),
		LifecycleTasks: report.LifecycleTasks,
		OutOfSprint:    model.SummarizeOutOfSprint(report.OutOfSprint),
	}
	return d, nil
}
