package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// ReportUseCase selects monthly data from a source
type ReportUseCase struct {
	source       interfaces.Source
	defaultMonth types.Month
}

// NewReportUseCase creates a new ReportUseCase. An empty defaultMonth means
// the latest available month.
func NewReportUseCase(source interfaces.Source, defaultMonth types.Month) *ReportUseCase {
	return &ReportUseCase{
		source:       source,
		defaultMonth: defaultMonth,
	}
}

// ListMonths returns the available months in ascending order
func (uc *ReportUseCase) ListMonths(ctx context.Context) ([]types.Month, error) {
	months, err := uc.source.ListMonths(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list months")
	}
	return months, nil
}

// ResolveMonth parses a requested month key, falling back to the default
// month and then to the latest available month
func (uc *ReportUseCase) ResolveMonth(ctx context.Context, raw string) (types.Month, error) {
	if raw != "" {
		month, err := types.ParseMonth(raw)
		if err != nil {
			return "", goerr.Wrap(model.ErrInvalidMonth, "invalid month parameter",
				goerr.V("month", raw),
				goerr.V("cause", err.Error()))
		}
		return month, nil
	}

	if uc.defaultMonth != "" {
		return uc.defaultMonth, nil
	}

	months, err := uc.ListMonths(ctx)
	if err != nil {
		return "", err
	}
	if len(months) == 0 {
		return "", goerr.Wrap(model.ErrMonthNotFound, "no month data available")
	}
	return months[len(months)-1], nil
}

// GetData returns one category of a month, or every present category when
// rawType is empty
func (uc *ReportUseCase) GetData(ctx context.Context, rawMonth, rawType string) (any, error) {
	month, err := uc.ResolveMonth(ctx, rawMonth)
	if err != nil {
		return nil, err
	}

	if rawType == "" {
		return uc.GetMonth(ctx, month)
	}

	category, err := types.ParseCategory(rawType)
	if err != nil {
		return nil, goerr.Wrap(model.ErrUnknownCategory, "invalid type parameter",
			goerr.V("type", rawType))
	}

	data, err := uc.source.LoadCategory(ctx, month, category)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load category data",
			goerr.V("month", month),
			goerr.V("category", category))
	}
	return data, nil
}

// GetMonth returns every present category of a month
func (uc *ReportUseCase) GetMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	report, err := uc.source.LoadMonth(ctx, month)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load month data", goerr.V("month", month))
	}
	return report, nil
}

// ValidationResult is the outcome of strictly loading one category file
type ValidationResult struct {
	Month    types.Month
	Category types.Category
	Err      error
}

// Validate loads every category of the given months, or of all months when
// none are given, and returns one result per present category file
func (uc *ReportUseCase) Validate(ctx context.Context, months ...types.Month) ([]ValidationResult, error) {
	logger := ctxlog.From(ctx)

	if len(months) == 0 {
		all, err := uc.ListMonths(ctx)
		if err != nil {
			return nil, err
		}
		months = all
	}

	var results []ValidationResult
	for _, month := range months {
		found := false
		for _, category := range types.AllCategories() {
			_, err := uc.source.LoadCategory(ctx, month, category)
			if errors.Is(err, model.ErrCategoryNotFound) {
				found = true
				continue
			}
			if errors.Is(err, model.ErrMonthNotFound) {
				break
			}
			found = true

			results = append(results, ValidationResult{
				Month:    month,
				Category: category,
				Err:      err,
			})
			if err != nil {
				logger.Warn("Malformed category data",
					"month", month,
					"category", category,
					"error", err,
				)
			}
		}

		if !found {
			return results, goerr.Wrap(model.ErrMonthNotFound, "month data not found",
				goerr.V("month", month))
		}
	}

	return results, nil
}
