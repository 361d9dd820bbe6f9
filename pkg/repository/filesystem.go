package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// Filesystem reads monthly data from a data root holding one directory per
// month, e.g. data/2025-07/incident-report.json
type Filesystem struct {
	root string
}

// NewFilesystem creates a source rooted at dir
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to access data directory", goerr.V("dir", dir))
	}
	if !info.IsDir() {
		return nil, goerr.New("data path is not a directory", goerr.V("dir", dir))
	}

	return &Filesystem{root: dir}, nil
}

// ListMonths returns the month directories under the data root
func (f *Filesystem) ListMonths(ctx context.Context) ([]types.Month, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read data directory", goerr.V("dir", f.root))
	}

	var months []types.Month
	for _, entry := range entries {
		month := types.Month(entry.Name())
		if !entry.IsDir() || !month.IsValid() {
			continue
		}
		months = append(months, month)
	}

	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months, nil
}

// LoadCategory reads and decodes one category file of a month
func (f *Filesystem) LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error) {
	raw, err := f.ReadCategory(ctx, month, category)
	if err != nil {
		return nil, err
	}

	v, err := raw.Decode()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load category",
			goerr.V("month", month),
			goerr.V("category", category))
	}
	return v, nil
}

// LoadMonth reads every category file present in the month directory.
// Files are read concurrently; the first failure cancels the rest.
func (f *Filesystem) LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	if _, err := f.monthDir(month); err != nil {
		return nil, err
	}

	categories := types.AllCategories()
	results := make([]any, len(categories))

	eg, ctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := f.LoadCategory(ctx, month, category)
			if errors.Is(err, model.ErrCategoryNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := model.NewMonthReport(month)
	for i, category := range categories {
		if results[i] == nil {
			continue
		}
		if err := report.Set(category, results[i]); err != nil {
			return nil, goerr.Wrap(err, "failed to build month report", goerr.V("month", month))
		}
	}

	ctxlog.From(ctx).Debug("Month loaded from filesystem",
		"month", month,
		"categories", report.Categories(),
	)
	return report, nil
}

// ReadCategory returns the undecoded file of a category
func (f *Filesystem) ReadCategory(ctx context.Context, month types.Month, category types.Category) (*RawCategory, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	dir, err := f.monthDir(month)
	if err != nil {
		return nil, err
	}

	if category == types.CategoryConfig {
		for _, file := range model.ConfigFiles() {
			data, err := readFile(filepath.Join(dir, file.Name))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			return &RawCategory{Category: category, Format: file.Format, Data: data}, nil
		}
		return nil, goerr.Wrap(model.ErrCategoryNotFound, "config file not found",
			goerr.V("month", month))
	}

	data, err := readFile(filepath.Join(dir, category.String()+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, goerr.Wrap(model.ErrCategoryNotFound, "category file not found",
			goerr.V("month", month),
			goerr.V("category", category))
	}
	if err != nil {
		return nil, err
	}
	return &RawCategory{Category: category, Data: data}, nil
}

func (f *Filesystem) monthDir(month types.Month) (string, error) {
	if err := checkMonth(month); err != nil {
		return "", err
	}

	dir := filepath.Join(f.root, month.String())
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", goerr.Wrap(model.ErrMonthNotFound, "month directory not found",
			goerr.V("month", month))
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to access month directory", goerr.V("dir", dir))
	}
	return dir, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to read data file", goerr.V("path", path))
	}
	return data, nil
}

var _ interfaces.Source = (*Filesystem)(nil)
