package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/cli/config"
	controller "github.com/secmon-lab/rapor/pkg/controller/http"
	slackCtrl "github.com/secmon-lab/rapor/pkg/controller/slack"
	"github.com/secmon-lab/rapor/pkg/usecase"
	"github.com/secmon-lab/rapor/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		dataCfg      config.Data
		firestoreCfg config.Firestore
		slackCfg     config.Slack
	)

	flags := joinFlags(
		serverCfg.Flags(),
		dataCfg.Flags(),
		firestoreCfg.Flags(),
		slackCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting rapor server",
				slog.Any("server", serverCfg),
				slog.Any("data", dataCfg),
				slog.Any("firestore", firestoreCfg),
				slog.Any("slack", slackCfg),
			)

			defaultMonth, err := dataCfg.Month()
			if err != nil {
				return err
			}

			palette, err := dataCfg.ConfigurePalette()
			if err != nil {
				return err
			}

			source, cleanup, err := dataCfg.Configure(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			// Create use cases
			reportUC := usecase.NewReportUseCase(source, defaultMonth)
			dashboardUC := usecase.NewDashboardUseCase(reportUC, palette)

			pages, err := controller.NewPageRenderer(palette)
			if err != nil {
				return err
			}

			var opts []controller.ServerOption
			if slackCfg.IsCommandEnabled() {
				// Summaries are returned in the command response, no token needed
				notifyUC := usecase.NewNotifyUseCase(reportUC, nil, slackCfg.DashboardURL)
				opts = append(opts, controller.WithSlackCommand(slackCtrl.NewHandler(slackCfg.SigningSecret, notifyUC)))
				logger.Info("Slack slash command enabled")
			}

			server, err := controller.NewServer(ctx, serverCfg.Addr, reportUC, dashboardUC, pages, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Load the default month ahead of the first request
			if dataCfg.CacheTTL > 0 {
				async.Dispatch(ctx, "cache-warmup", func(ctx context.Context) error {
					month, err := reportUC.ResolveMonth(ctx, "")
					if err != nil {
						return err
					}
					if _, err := reportUC.GetMonth(ctx, month); err != nil {
						return err
					}
					ctxlog.From(ctx).Info("Month data cached", "month", month)
					return nil
				})
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
