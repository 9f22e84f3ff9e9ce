package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auto_repost_instagram/internal/delivery/cron"
	"auto_repost_instagram/internal/delivery/httpapi"
	"auto_repost_instagram/internal/infrastructure/downloader"
	httpclient "auto_repost_instagram/internal/infrastructure/http"
	"auto_repost_instagram/internal/infrastructure/instagram"
	"auto_repost_instagram/internal/logger"
	"auto_repost_instagram/internal/usecase"
)

func newRunCmd() *cobra.Command {
	var (
		once     bool
		noServer bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run repost cycles on the cron schedule",
		Long:  "Runs a repost cycle immediately and then on cron.schedule, serving the admin API alongside. Exits non-zero when a cycle fails fatally.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg
			if err := cfg.Validate(); err != nil {
				return err
			}

			httpClient := httpclient.NewHTTPClient(cfg)
			downloadService, err := downloader.NewService(cfg, httpClient)
			if err != nil {
				return err
			}
			platform := instagram.NewService(cfg, httpClient, downloadService)

			accountManager := usecase.NewAccountManager(a.accountRepo)
			processor := usecase.NewRepostProcessor(cfg, a.accountRepo, a.postRepo, platform)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				return runOnce(ctx, cfg.AccountListPath, cfg.CleanupMaxAge, accountManager, processor, downloadService)
			}

			scheduler := cron.NewScheduler(ctx, cfg, processor, accountManager, downloadService)
			fatal := make(chan error, 1)
			scheduler.OnFatal(func(err error) {
				select {
				case fatal <- err:
				default:
				}
			})
			if err := scheduler.Start(); err != nil {
				return err
			}

			var apiServer *httpapi.Server
			if !noServer {
				apiServer = httpapi.NewServer(cfg, accountManager, a.postRepo)
				if err := apiServer.Start(); err != nil {
					scheduler.Stop()
					return err
				}
			}

			logger.Info().Println("Application started. Press Ctrl+C to stop.")
			var runErr error
			select {
			case <-ctx.Done():
			case runErr = <-fatal:
				logger.Error().Errorf("Stopping after fatal error: %v", runErr)
			}

			logger.Info().Println("Shutting down...")
			scheduler.Stop()
			if apiServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := apiServer.Shutdown(shutdownCtx); err != nil {
					logger.Error().Errorf("HTTP API shutdown error: %v", err)
				}
			}
			logger.Info().Println("Application stopped.")
			return runErr
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	cmd.Flags().BoolVar(&noServer, "no-server", false, "do not start the admin HTTP API")
	return cmd
}

func runOnce(
	ctx context.Context,
	accountList string,
	cleanupMaxAge time.Duration,
	accountManager *usecase.AccountManager,
	processor *usecase.RepostProcessor,
	downloadService *downloader.Service,
) error {
	if accountList != "" {
		if _, err := accountManager.IngestAccountList(ctx, accountList); err != nil {
			logger.Error().Errorf("Account list intake failed: %v", err)
		}
	}

	_, err := processor.RunCycle(ctx)

	if cleanupMaxAge > 0 {
		if _, cerr := downloadService.CleanupOldDownloads(cleanupMaxAge); cerr != nil {
			logger.Warn().Warnf("Download cleanup failed: %v", cerr)
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
