package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/cli/config"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/repository"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var (
		dataCfg      config.Data
		firestoreCfg config.Firestore
		month        string
	)

	flags := joinFlags(
		dataCfg.Flags(),
		firestoreCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Usage:       "Import only this month (YYYY-MM)",
				Sources:     cli.EnvVars("RAPOR_MONTH"),
				Destination: &month,
			},
		},
	)

	return &cli.Command{
		Name:  "import",
		Usage: "Copy month files from the data directory into Firestore",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Importing month data",
				slog.Any("data", dataCfg),
				slog.Any("firestore", firestoreCfg),
			)

			src, err := repository.NewFilesystem(dataCfg.Dir)
			if err != nil {
				return err
			}

			dst, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := dst.Close(); err != nil {
					logger.Warn("Failed to close firestore client", "error", err)
				}
			}()

			var months []types.Month
			if month != "" {
				m, err := types.ParseMonth(month)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidMonth, "invalid month", goerr.V("month", month))
				}
				months = []types.Month{m}
			} else if months, err = src.ListMonths(ctx); err != nil {
				return err
			}

			imported, err := importMonths(ctx, src, dst, months)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "imported %d category files from %d months\n", imported, len(months))
			return nil
		},
	}
}

// categoryWriter stores months and their raw category files
type categoryWriter interface {
	PutMonth(ctx context.Context, month types.Month) error
	PutCategory(ctx context.Context, month types.Month, raw *repository.RawCategory) error
}

// importMonths copies every category file of months. Each file is decoded
// first so malformed data never reaches the destination.
func importMonths(ctx context.Context, src *repository.Filesystem, dst categoryWriter, months []types.Month) (int, error) {
	logger := ctxlog.From(ctx)
	imported := 0

	for _, month := range months {
		if err := dst.PutMonth(ctx, month); err != nil {
			return imported, err
		}

		for _, category := range types.AllCategories() {
			raw, err := src.ReadCategory(ctx, month, category)
			if err != nil {
				if isCategoryMissing(err) {
					continue
				}
				return imported, err
			}

			if _, err := raw.Decode(); err != nil {
				return imported, goerr.Wrap(err, "refusing to import malformed data",
					goerr.V("month", month),
					goerr.V("category", category))
			}

			if err := dst.PutCategory(ctx, month, raw); err != nil {
				return imported, err
			}
			imported++
			logger.Debug("Imported category", "month", month, "category", category)
		}
	}

	return imported, nil
}
