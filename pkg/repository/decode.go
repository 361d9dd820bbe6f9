package repository

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

// RawCategory is a category file as stored, before decoding
type RawCategory struct {
	Category types.Category
	// Format is only meaningful for the config category
	Format model.ConfigFormat
	Data   []byte
}

// Decode parses the raw data into the category's model type
func (r *RawCategory) Decode() (any, error) {
	if r.Category == types.CategoryConfig {
		cfg, err := model.ParseMonthConfig(r.Format, r.Data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode category",
				goerr.V("category", r.Category))
		}
		return cfg, nil
	}
	return model.DecodeCategory(r.Category, r.Data)
}

func checkMonth(month types.Month) error {
	if !month.IsValid() {
		return goerr.Wrap(model.ErrInvalidMonth, "malformed month key", goerr.V("month", month))
	}
	return nil
}

func checkCategory(category types.Category) error {
	if !category.IsValid() {
		return goerr.Wrap(model.ErrUnknownCategory, "unknown category", goerr.V("category", category))
	}
	return nil
}
