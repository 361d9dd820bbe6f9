package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/usecase"
)

func newDashboardUseCase(t *testing.T) *usecase.DashboardUseCase {
	report := usecase.NewReportUseCase(newTestSource(t), "")
	now := func() time.Time { return time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC) }
	return usecase.NewDashboardUseCase(report, nil, usecase.WithClock(now))
}

func TestDashboardUseCase_Build(t *testing.T) {
	ctx := context.Background()
	uc := newDashboardUseCase(t)

	d, err := uc.Build(ctx, usecase.DashboardRequest{})
	gt.NoError(t, err).Required()

	t.Run("header", func(t *testing.T) {
		gt.Equal(t, d.Month, types.Month("2025-07"))
		gt.Equal(t, d.Title, "Temmuz 2025")
		gt.Equal(t, d.Months, []types.Month{"2025-06", "2025-07"})
		gt.V(t, d.Config).NotNil()
		gt.Equal(t, d.Config.NumberOfDeployments, 40)
	})

	t.Run("ongoing projects", func(t *testing.T) {
		gt.Equal(t, d.SelectedTeam, model.TeamAll)
		gt.Equal(t, d.Teams, []string{"Payment", "Finance", "Invoice"})
		gt.A(t, d.OngoingProjects).Length(2)

		refund := d.OngoingProjects[0]
		gt.Equal(t, refund.Percent, 65)
		gt.Equal(t, refund.ProgressTone, types.ToneBlue)
		gt.Equal(t, refund.StatusTone, types.ToneBlue)
		gt.Equal(t, refund.TeamTone, types.TonePurple)

		ledger := d.OngoingProjects[1]
		gt.Equal(t, ledger.ProgressTone, types.ToneRed)
		gt.Equal(t, ledger.StatusTone, types.ToneRed)
	})

	t.Run("incidents", func(t *testing.T) {
		gt.Equal(t, d.IncidentSummary.Count, 4)
		gt.Equal(t, d.IncidentSummary.TotalDowntimeMinutes, 65)
		gt.Equal(t, d.IncidentSummary.TopTeam, "Payment")

		gt.A(t, d.RootCauses.Slices).Length(2)
		gt.Equal(t, d.RootCauses.Slices[0].Category, "Bug")
		gt.Equal(t, d.RootCauses.Slices[0].Sweep(), 270.0)

		bars := d.MonthlyIncidents.Bars
		gt.A(t, bars).Length(6)
		gt.Equal(t, bars[5].Month, types.Month("2025-07"))
		gt.Equal(t, bars[5].Count, 4)
		// Only the selected month's incidents are charted
		gt.Equal(t, bars[4].Count, 0)
	})

	t.Run("techops and sprint", func(t *testing.T) {
		gt.A(t, d.RecurringTasks).Length(1)
		gt.Equal(t, d.RecurringTasks[0].RiskTone, types.ToneYellow)
		gt.A(t, d.LifecycleTasks).Length(1)

		gt.A(t, d.OutOfSprint).Length(2)
		gt.Equal(t, d.OutOfSprint[0].Team, "Finance")
		gt.Equal(t, d.OutOfSprint[0].Tone, types.ToneOrange)
		gt.Equal(t, d.OutOfSprint[1].Team, "Payment")
		gt.Equal(t, d.OutOfSprint[1].Tone, types.ToneYellow)
	})

	t.Run("present sections", func(t *testing.T) {
		gt.True(t, d.Has("security"))
		gt.True(t, d.Has("out-of-sprint"))
	})
}

func TestDashboardUseCase_BuildTeamFilter(t *testing.T) {
	uc := newDashboardUseCase(t)

	d, err := uc.Build(context.Background(), usecase.DashboardRequest{Month: "2025-07", Team: "Finance"})
	gt.NoError(t, err).Required()
	gt.Equal(t, d.SelectedTeam, "Finance")
	gt.A(t, d.OngoingProjects).Length(1)
	gt.Equal(t, d.OngoingProjects[0].Title, "Ledger rewrite")
	// The team list is not narrowed by the filter
	gt.A(t, d.Teams).Length(3)
}

func TestDashboardUseCase_BuildPartialMonth(t *testing.T) {
	uc := newDashboardUseCase(t)

	d, err := uc.Build(context.Background(), usecase.DashboardRequest{Month: "2025-06"})
	gt.NoError(t, err).Required()
	gt.V(t, d.Config).Nil()
	gt.Equal(t, d.Title, "2025-06")
	gt.False(t, d.Has("security"))
	gt.True(t, d.Has("incident-report"))
	gt.Equal(t, len(d.OngoingProjects), 0)
	gt.Equal(t, d.IncidentSummary.TopTeam, "Invoice")
}

func TestDashboardUseCase_BuildErrors(t *testing.T) {
	uc := newDashboardUseCase(t)
	ctx := context.Background()

	_, err := uc.Build(ctx, usecase.DashboardRequest{Month: "2030-01"})
	gt.True(t, errors.Is(err, model.ErrMonthNotFound))

	_, err = uc.Build(ctx, usecase.DashboardRequest{Month: "2030-1"})
	gt.True(t, errors.Is(err, model.ErrInvalidMonth))
}

func TestDashboardUseCase_Palette(t *testing.T) {
	palette, err := model.ParsePalette([]byte("teams:\n  payment: rose\n"))
	gt.NoError(t, err).Required()

	report := usecase.NewReportUseCase(newTestSource(t), "")
	uc := usecase.NewDashboardUseCase(report, palette)

	d, err := uc.Build(context.Background(), usecase.DashboardRequest{Month: "2025-07"})
	gt.NoError(t, err).Required()
	gt.Equal(t, d.OngoingProjects[0].TeamTone, types.ToneRose)
}
