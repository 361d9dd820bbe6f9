package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// Memory implements Source with in-memory storage
type Memory struct {
	mu      sync.RWMutex
	reports map[types.Month]*model.MonthReport
}

// NewMemory creates a new memory source
func NewMemory() *Memory {
	return &Memory{
		reports: make(map[types.Month]*model.MonthReport),
	}
}

// Put stores a month report, replacing any report of the same month
func (m *Memory) Put(report *model.MonthReport) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if err := checkMonth(report.Month); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[report.Month] = report
	return nil
}

// ListMonths returns the stored months in ascending order
func (m *Memory) ListMonths(ctx context.Context) ([]types.Month, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	months := make([]types.Month, 0, len(m.reports))
	for month := range m.reports {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months, nil
}

// LoadCategory returns one category of a stored month
func (m *Memory) LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	report, err := m.LoadMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	v, ok := report.Get(category)
	if !ok {
		return nil, goerr.Wrap(model.ErrCategoryNotFound, "category not found",
			goerr.V("month", month),
			goerr.V("category", category))
	}
	return v, nil
}

// LoadMonth returns a stored month report
func (m *Memory) LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[month]
	if !ok {
		return nil, goerr.Wrap(model.ErrMonthNotFound, "month not found", goerr.V("month", month))
	}
	return report, nil
}

var _ interfaces.Source = (*Memory)(nil)
