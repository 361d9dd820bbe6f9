package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Data holds the monthly data source configuration
type Data struct {
	Dir          string
	DefaultMonth string
	Palette      string
	CacheTTL     time.Duration
	CacheSize    int
}

// Flags returns CLI flags for Data configuration
func (d *Data) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory holding one YYYY-MM subdirectory per month",
			Category:    "Data",
			Value:       "data",
			Sources:     cli.EnvVars("RAPOR_DATA_DIR"),
			Destination: &d.Dir,
		},
		&cli.StringFlag{
			Name:        "default-month",
			Usage:       "Month (YYYY-MM) shown when a request names none; latest available month if empty",
			Category:    "Data",
			Sources:     cli.EnvVars("RAPOR_DEFAULT_MONTH"),
			Destination: &d.DefaultMonth,
		},
		&cli.StringFlag{
			Name:        "palette",
			Usage:       "YAML file mapping teams, statuses, risks and root causes to colors",
			Category:    "Data",
			Sources:     cli.EnvVars("RAPOR_PALETTE"),
			Destination: &d.Palette,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of cached month data (0 disables the cache)",
			Category:    "Data",
			Value:       0,
			Sources:     cli.EnvVars("RAPOR_CACHE_TTL"),
			Destination: &d.CacheTTL,
		},
		&cli.IntFlag{
			Name:        "cache-size",
			Usage:       "Maximum number of cached entries",
			Category:    "Data",
			Value:       128,
			Sources:     cli.EnvVars("RAPOR_CACHE_SIZE"),
			Destination: &d.CacheSize,
		},
	}
}

// Configure creates the data source. Firestore is used when configured,
// otherwise the data directory. The returned function releases the source.
func (d *Data) Configure(ctx context.Context, fs *Firestore) (interfaces.Source, func(), error) {
	logger := ctxlog.From(ctx)

	var (
		source  interfaces.Source
		cleanup = func() {}
	)

	if fs != nil && fs.IsConfigured() {
		repo, err := fs.Configure(ctx)
		if err != nil {
			return nil, nil, err
		}
		source = repo
		cleanup = func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close firestore client", "error", err)
			}
		}
		logger.Info("Using firestore data source", "firestore", fs)
	} else {
		repo, err := repository.NewFilesystem(d.Dir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open data directory", goerr.V("dir", d.Dir))
		}
		source = repo
		logger.Info("Using filesystem data source", "dir", d.Dir)
	}

	if d.CacheTTL > 0 {
		logger.Info("Month data cache enabled", "ttl", d.CacheTTL, "size", d.CacheSize)
	}
	return repository.NewCached(source, d.CacheSize, d.CacheTTL), cleanup, nil
}

// Month returns the configured default month, empty when none is set
func (d *Data) Month() (types.Month, error) {
	if d.DefaultMonth == "" {
		return "", nil
	}
	month, err := types.ParseMonth(d.DefaultMonth)
	if err != nil {
		return "", goerr.Wrap(err, "invalid default month", goerr.V("month", d.DefaultMonth))
	}
	return month, nil
}

// ConfigurePalette loads the palette file, or the built-in palette when no
// file is configured
func (d *Data) ConfigurePalette() (*model.Palette, error) {
	if d.Palette == "" {
		return model.DefaultPalette(), nil
	}
	return model.LoadPalette(d.Palette)
}

// LogValue returns structured log value
func (d Data) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", d.Dir),
		slog.String("default_month", d.DefaultMonth),
		slog.String("palette", d.Palette),
		slog.Duration("cache_ttl", d.CacheTTL),
		slog.Int("cache_size", d.CacheSize),
	)
}
