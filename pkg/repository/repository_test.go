package repository_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/repository"
)

// fixture is the data set every source is seeded with
type fixture map[types.Month][]*repository.RawCategory

func newFixture(july, june, empty types.Month) fixture {
	return fixture{
		empty: {},
		july: {
			{
				Category: types.CategoryConfig,
				Format:   model.ConfigFormatYAML,
				Data:     []byte("target_year: 2025\ntarget_month: 7\ntarget_month_name: Temmuz\nnumber_of_bug_fixes: 41\n"),
			},
			{
				Category: types.CategoryIncidentReport,
				Data: []byte(`[
  {"Takım": "Payment", "Süre (.dk)": 30, "Başlangıç": "2025-07-01T10:00:00Z", "Konu": "A", "Kök Sebep Kategorisi": "Bug"},
  {"Takım": "Payment", "Süre (.dk)": 15, "Başlangıç": "2025-07-02T10:00:00Z", "Konu": "B", "Kök Sebep Kategorisi": "Deploy"}
]`),
			},
			{
				Category: types.CategoryCompletedProjects,
				Data:     []byte(`[{"Başlık ": "Gateway migration", "Group": "Payment"}]`),
			},
		},
		june: {
			{
				Category: types.CategoryConfig,
				Format:   model.ConfigFormatLegacy,
				Data:     []byte("const config = { target_year: 2025, target_month: 6, target_month_name: 'Haziran' };\nmodule.exports = config;\n"),
			},
			{
				Category: types.CategorySecurity,
				Data:     []byte(`[{"Başlık": "WAF rules", "Statü": "Done"}]`),
			},
		},
	}
}

func writeFilesystemFixture(t *testing.T, dir string, fx fixture) {
	t.Helper()
	for month, files := range fx {
		monthDir := filepath.Join(dir, month.String())
		gt.NoError(t, os.MkdirAll(monthDir, 0755)).Required()

		for _, raw := range files {
			name := raw.Category.String() + ".json"
			if raw.Category == types.CategoryConfig {
				switch raw.Format {
				case model.ConfigFormatLegacy:
					name = "config.js"
				case model.ConfigFormatJSON:
					name = "config.json"
				default:
					name = "config.yaml"
				}
			}
			gt.NoError(t, os.WriteFile(filepath.Join(monthDir, name), raw.Data, 0600)).Required()
		}
	}
}

func testSource(t *testing.T, newSource func(t *testing.T, fx fixture) interfaces.Source) {
	// Unique months keep shared backends such as Firestore isolated between runs
	base := time.Date(2000+int(time.Now().UnixNano()%900), time.Month(1+time.Now().Nanosecond()%11), 1, 0, 0, 0, 0, time.UTC)
	june := types.MonthOf(base)
	july := types.MonthOf(base.AddDate(0, 1, 0))
	missing := types.MonthOf(base.AddDate(0, 2, 0))
	empty := types.MonthOf(base.AddDate(0, 3, 0))

	source := newSource(t, newFixture(july, june, empty))
	ctx := context.Background()

	t.Run("ListMonths", func(t *testing.T) {
		months, err := source.ListMonths(ctx)
		gt.NoError(t, err).Required()

		index := map[types.Month]int{}
		for i, m := range months {
			index[m] = i
		}
		gt.True(t, index[june] < index[july])
		_, hasJuly := index[july]
		gt.True(t, hasJuly)
	})

	t.Run("LoadCategory", func(t *testing.T) {
		v, err := source.LoadCategory(ctx, july, types.CategoryIncidentReport)
		gt.NoError(t, err).Required()

		incidents, ok := v.([]model.Incident)
		gt.True(t, ok)
		gt.A(t, incidents).Length(2)
		gt.Equal(t, incidents[0].RootCause, "Bug")
	})

	t.Run("LoadCategory config", func(t *testing.T) {
		v, err := source.LoadCategory(ctx, june, types.CategoryConfig)
		gt.NoError(t, err).Required()

		cfg, ok := v.(*model.MonthConfig)
		gt.True(t, ok)
		gt.Equal(t, cfg.TargetMonth, 6)
		gt.Equal(t, cfg.TargetMonthName, "Haziran")
	})

	t.Run("LoadCategory missing file", func(t *testing.T) {
		_, err := source.LoadCategory(ctx, july, types.CategorySecurity)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrCategoryNotFound))
	})

	t.Run("LoadCategory missing month", func(t *testing.T) {
		_, err := source.LoadCategory(ctx, missing, types.CategoryConfig)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrMonthNotFound))
	})

	t.Run("LoadCategory unknown category", func(t *testing.T) {
		_, err := source.LoadCategory(ctx, july, types.Category("payroll"))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrUnknownCategory))
	})

	t.Run("LoadMonth", func(t *testing.T) {
		report, err := source.LoadMonth(ctx, july)
		gt.NoError(t, err).Required()

		gt.Equal(t, report.Categories(), []types.Category{
			types.CategoryConfig,
			types.CategoryCompletedProjects,
			types.CategoryIncidentReport,
		})
		gt.Equal(t, report.Config.NumberOfBugFixes, 41)
		gt.Equal(t, report.CompletedProjects[0].Title, "Gateway migration")
		gt.False(t, report.Has(types.CategoryOutOfSprint))
	})

	t.Run("LoadMonth month without files", func(t *testing.T) {
		report, err := source.LoadMonth(ctx, empty)
		gt.NoError(t, err).Required()
		gt.Equal(t, report.Month, empty)
		gt.A(t, report.Categories()).Length(0)
		gt.False(t, report.Has(types.CategoryConfig))

		_, err = source.LoadCategory(ctx, empty, types.CategoryConfig)
		gt.True(t, errors.Is(err, model.ErrCategoryNotFound))
	})

	t.Run("LoadMonth missing month", func(t *testing.T) {
		_, err := source.LoadMonth(ctx, missing)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrMonthNotFound))
	})

	t.Run("LoadMonth malformed month", func(t *testing.T) {
		_, err := source.LoadMonth(ctx, types.Month("../etc"))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrInvalidMonth))
	})
}

func TestFilesystemSource(t *testing.T) {
	testSource(t, func(t *testing.T, fx fixture) interfaces.Source {
		dir := t.TempDir()
		writeFilesystemFixture(t, dir, fx)

		src, err := repository.NewFilesystem(dir)
		gt.NoError(t, err).Required()
		return src
	})
}

func TestMemorySource(t *testing.T) {
	testSource(t, func(t *testing.T, fx fixture) interfaces.Source {
		mem := repository.NewMemory()
		for month, files := range fx {
			report := model.NewMonthReport(month)
			for _, raw := range files {
				v, err := raw.Decode()
				gt.NoError(t, err).Required()
				gt.NoError(t, report.Set(raw.Category, v)).Required()
			}
			gt.NoError(t, mem.Put(report)).Required()
		}
		return mem
	})
}

func TestCachedSource(t *testing.T) {
	testSource(t, func(t *testing.T, fx fixture) interfaces.Source {
		dir := t.TempDir()
		writeFilesystemFixture(t, dir, fx)

		src, err := repository.NewFilesystem(dir)
		gt.NoError(t, err).Required()
		return repository.NewCached(src, 16, time.Minute)
	})
}

func TestFirestoreSource(t *testing.T) {
	// Skip test if Firestore test environment variables are not set
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	if projectID == "" || databaseID == "" {
		t.Skip("Skipping Firestore test: TEST_FIRESTORE_PROJECT and TEST_FIRESTORE_DATABASE must be set")
	}

	testSource(t, func(t *testing.T, fx fixture) interfaces.Source {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx = ctxlog.With(ctx, logger)

		src, err := repository.NewFirestore(ctx, projectID, databaseID)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = src.Close() })

		for month, files := range fx {
			gt.NoError(t, src.PutMonth(ctx, month)).Required()
			for _, raw := range files {
				gt.NoError(t, src.PutCategory(ctx, month, raw)).Required()
			}
		}
		return src
	})
}

func TestNewFilesystem(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := repository.NewFilesystem(filepath.Join(t.TempDir(), "nope"))
		gt.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data")
		gt.NoError(t, os.WriteFile(path, []byte("x"), 0600)).Required()
		_, err := repository.NewFilesystem(path)
		gt.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := repository.NewFilesystem("")
		gt.Error(t, err)
	})
}

func TestFilesystemIgnoresUnrelatedEntries(t *testing.T) {
	dir := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(dir, "2025-07"), 0755)).Required()
	gt.NoError(t, os.MkdirAll(filepath.Join(dir, "2025-13"), 0755)).Required()
	gt.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0755)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "2025-08"), []byte("not a dir"), 0600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "2025-07", "notes.md"), []byte("# notes"), 0600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "2025-07", "security.json"), []byte(`[]`), 0600)).Required()

	src, err := repository.NewFilesystem(dir)
	gt.NoError(t, err).Required()
	ctx := context.Background()

	months, err := src.ListMonths(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, months, []types.Month{"2025-07"})

	report, err := src.LoadMonth(ctx, "2025-07")
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Categories(), []types.Category{types.CategorySecurity})

	_, err = src.LoadMonth(ctx, "2025-08")
	gt.True(t, errors.Is(err, model.ErrMonthNotFound))
}

func TestFilesystemConfigLookupOrder(t *testing.T) {
	dir := t.TempDir()
	monthDir := filepath.Join(dir, "2025-07")
	gt.NoError(t, os.MkdirAll(monthDir, 0755)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(monthDir, "config.yaml"),
		[]byte("target_year: 2025\ntarget_month: 7\ntarget_month_name: from-yaml\n"), 0600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(monthDir, "config.js"),
		[]byte("config = { target_year: 2025, target_month: 7, target_month_name: 'from-js' }"), 0600)).Required()

	src, err := repository.NewFilesystem(dir)
	gt.NoError(t, err).Required()

	v, err := src.LoadCategory(context.Background(), "2025-07", types.CategoryConfig)
	gt.NoError(t, err).Required()
	gt.Equal(t, v.(*model.MonthConfig).TargetMonthName, "from-yaml")
}

func TestFilesystemMalformedFileFailsMonth(t *testing.T) {
	dir := t.TempDir()
	monthDir := filepath.Join(dir, "2025-07")
	gt.NoError(t, os.MkdirAll(monthDir, 0755)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(monthDir, "security.json"), []byte(`[]`), 0600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(monthDir, "incident-report.json"), []byte(`{"broken": `), 0600)).Required()

	src, err := repository.NewFilesystem(dir)
	gt.NoError(t, err).Required()

	_, err = src.LoadMonth(context.Background(), "2025-07")
	gt.Error(t, err)
	gt.False(t, errors.Is(err, model.ErrCategoryNotFound))
	gt.S(t, err.Error()).Contains("failed to")
}

func TestCachedServesStaleDataWithinTTL(t *testing.T) {
	dir := t.TempDir()
	monthDir := filepath.Join(dir, "2025-07")
	gt.NoError(t, os.MkdirAll(monthDir, 0755)).Required()
	path := filepath.Join(monthDir, "security.json")
	gt.NoError(t, os.WriteFile(path, []byte(`[{"title": "first"}]`), 0600)).Required()

	fs, err := repository.NewFilesystem(dir)
	gt.NoError(t, err).Required()
	src := repository.NewCached(fs, 8, time.Hour)
	ctx := context.Background()

	report, err := src.LoadMonth(ctx, "2025-07")
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Security[0].Title, "first")

	gt.NoError(t, os.WriteFile(path, []byte(`[{"title": "second"}]`), 0600)).Required()

	report, err = src.LoadMonth(ctx, "2025-07")
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Security[0].Title, "first")

	// Category lookups are answered from the cached month
	v, err := src.LoadCategory(ctx, "2025-07", types.CategorySecurity)
	gt.NoError(t, err).Required()
	gt.Equal(t, v.([]model.Project)[0].Title, "first")
}

func TestNewCachedDisabled(t *testing.T) {
	mem := repository.NewMemory()
	src := repository.NewCached(mem, 8, 0)
	gt.Equal(t, fmt.Sprintf("%T", src), "*repository.Memory")
}
