package interfaces

import (
	"context"

	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// Source provides read access to monthly report data
type Source interface {
	// ListMonths returns every available month in ascending order
	ListMonths(ctx context.Context) ([]types.Month, error)

	// LoadCategory returns the decoded data of one category. It returns
	// model.ErrMonthNotFound when the month does not exist and
	// model.ErrCategoryNotFound when the month lacks the category.
	LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error)

	// LoadMonth returns every category present for the month
	LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error)
}
