package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/cli/config"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"github.com/secmon-lab/rapor/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
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
				Usage:       "Validate only this month (YYYY-MM)",
				Sources:     cli.EnvVars("RAPOR_MONTH"),
				Destination: &month,
			},
		},
	)

	return &cli.Command{
		Name:  "validate",
		Usage: "Strictly load month data and report malformed files",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Validation must see the files, not cached data
			dataCfg.CacheTTL = 0

			source, cleanup, err := dataCfg.Configure(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var months []types.Month
			if month != "" {
				m, err := types.ParseMonth(month)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidMonth, "invalid month", goerr.V("month", month))
				}
				months = append(months, m)
			}

			reportUC := usecase.NewReportUseCase(source, "")
			results, err := reportUC.Validate(ctx, months...)
			if err != nil {
				return err
			}

			return printValidation(c.Root().Writer, results)
		},
	}
}

// printValidation writes one line per category file and fails when any
// file is malformed
func printValidation(w io.Writer, results []usecase.ValidationResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "NG  %s/%s: %v\n", r.Month, r.Category, r.Err)
			continue
		}
		fmt.Fprintf(w, "OK  %s/%s\n", r.Month, r.Category)
	}

	if failed > 0 {
		return goerr.New("malformed month data found",
			goerr.V("failed", failed),
			goerr.V("checked", len(results)))
	}
	return nil
}
