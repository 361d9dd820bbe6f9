package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/cli/config"
	"github.com/secmon-lab/rapor/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdNotify() *cli.Command {
	var (
		dataCfg      config.Data
		firestoreCfg config.Firestore
		slackCfg     config.Slack
		month        string
	)

	flags := joinFlags(
		dataCfg.Flags(),
		firestoreCfg.Flags(),
		slackCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Usage:       "Month (YYYY-MM) to summarize; defaults to --default-month or the latest month",
				Sources:     cli.EnvVars("RAPOR_MONTH"),
				Destination: &month,
			},
		},
	)

	return &cli.Command{
		Name:  "notify",
		Usage: "Post the monthly summary to Slack",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Posting monthly summary",
				slog.String("month", month),
				slog.Any("slack", slackCfg),
			)

			if slackCfg.Channel == "" {
				return goerr.New("slack channel is required. Please provide --slack-channel")
			}

			slackClient, err := slackCfg.Configure()
			if err != nil {
				return err
			}

			// Fail before loading data when the token is rejected
			auth, err := slackClient.AuthTestContext(ctx)
			if err != nil {
				return goerr.Wrap(err, "slack authentication failed")
			}
			logger.Debug("Slack authenticated", "team", auth.Team, "user", auth.User)

			defaultMonth, err := dataCfg.Month()
			if err != nil {
				return err
			}

			source, cleanup, err := dataCfg.Configure(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			reportUC := usecase.NewReportUseCase(source, defaultMonth)
			notifyUC := usecase.NewNotifyUseCase(reportUC, slackClient, slackCfg.DashboardURL)

			return notifyUC.Notify(ctx, month, slackCfg.Channel)
		},
	}
}
