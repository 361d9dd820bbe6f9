package apperr

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/rapor/pkg/domain/model"
)

// Handle logs an error that ends a command. Errors caused by the request,
// such as an unknown or malformed month, are logged as warnings.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if IsUserError(err) {
		logger.Warn("command rejected", "error", err)
		return
	}
	logger.Error("application error", "error", err)
}

// IsUserError reports whether err stems from invalid input rather than a
// failure of the application
func IsUserError(err error) bool {
	return errors.Is(err, model.ErrInvalidMonth) ||
		errors.Is(err, model.ErrUnknownCategory) ||
		errors.Is(err, model.ErrMonthNotFound) ||
		errors.Is(err, model.ErrCategoryNotFound)
}
