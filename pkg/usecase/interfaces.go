package usecase

import (
	"context"

	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// Report defines the interface for monthly data selection
type Report interface {
	// ListMonths returns the available months in ascending order
	ListMonths(ctx context.Context) ([]types.Month, error)

	// GetData returns one category of a month, or the whole month when
	// rawType is empty. An empty rawMonth selects the default month.
	GetData(ctx context.Context, rawMonth, rawType string) (any, error)
}

// Dashboard defines the interface for building the report page
type Dashboard interface {
	// Build loads a month and assembles its view model
	Build(ctx context.Context, req DashboardRequest) (*DashboardView, error)
}

var (
	_ Report    = (*ReportUseCase)(nil)
	_ Dashboard = (*DashboardUseCase)(nil)
)
