package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cron "github.com/robfig/cron/v3"

	"auto_repost_instagram/config"
	"auto_repost_instagram/internal/logger"
	"auto_repost_instagram/internal/usecase"
)

// CycleRunner runs one repost cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) (*usecase.CycleReport, error)
}

// AccountIntake registers usernames queued in the account list file
type AccountIntake interface {
	IngestAccountList(ctx context.Context, path string) (int, error)
}

// DownloadCleaner removes stale downloaded media
type DownloadCleaner interface {
	CleanupOldDownloads(maxAge time.Duration) (int, error)
}

// Scheduler manages cron jobs for the application
type Scheduler struct {
	cron      *cron.Cron
	config    *config.Config
	processor CycleRunner
	intake    AccountIntake
	cleaner   DownloadCleaner
	onFatal   func(error)
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler creates a new cron scheduler. intake and cleaner may be nil.
func NewScheduler(
	parent context.Context,
	cfg *config.Config,
	processor CycleRunner,
	intake AccountIntake,
	cleaner DownloadCleaner,
) *Scheduler {
	ctx, cancel := context.WithCancel(parent)

	printf := cron.PrintfLogger(logger.Info())
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)

	return &Scheduler{
		cron:      c,
		config:    cfg,
		processor: processor,
		intake:    intake,
		cleaner:   cleaner,
		onFatal:   func(error) {},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnFatal registers a callback invoked when a cycle ends with a fatal error
func (s *Scheduler) OnFatal(fn func(error)) {
	if fn == nil {
		fn = func(error) {}
	}
	s.onFatal = fn
}

// Start schedules the repost job and runs it once immediately
func (s *Scheduler) Start() error {
	schedule := normalizeSchedule(s.config.CronSchedule)
	jobID, err := s.cron.AddFunc(schedule, s.repostJob)
	if err != nil {
		return fmt.Errorf("failed to schedule repost job: %w", err)
	}
	logger.Info().Printf("Scheduled repost job with ID: %d, schedule: %s", jobID, schedule)

	s.cron.Start()
	logger.Info().Println("Cron scheduler started")

	go s.cron.Entry(jobID).WrappedJob.Run()

	return nil
}

// Stop stops the cron scheduler and waits for a running cycle to return
func (s *Scheduler) Stop() {
	logger.Info().Println("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info().Println("Cron scheduler stopped")
}

// repostJob ingests new accounts, runs one cycle and prunes old downloads
func (s *Scheduler) repostJob() {
	logger.Info().Println("Starting repost job...")
	startTime := time.Now()

	if s.intake != nil && s.config.AccountListPath != "" {
		if _, err := s.intake.IngestAccountList(s.ctx, s.config.AccountListPath); err != nil {
			logger.Error().Errorf("Account list intake failed: %v", err)
		}
	}

	report, err := s.processor.RunCycle(s.ctx)

	if s.cleaner != nil && s.config.CleanupMaxAge > 0 {
		if removed, cerr := s.cleaner.CleanupOldDownloads(s.config.CleanupMaxAge); cerr != nil {
			logger.Warn().Warnf("Download cleanup failed: %v", cerr)
		} else if removed > 0 {
			logger.Info().Printf("Removed %d stale downloads", removed)
		}
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info().Printf("Repost job interrupted: %v", err)
		return
	case err != nil:
		logger.Error().Errorf("Repost job failed: %v", err)
		s.onFatal(err)
		return
	}

	logger.Info().Printf("Repost job completed in %v (%d posts)", time.Since(startTime), len(report.Posts))
}

// normalizeSchedule ensures cron expressions are compatible with cron.WithSeconds
func normalizeSchedule(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) == 5 {
		return "0 " + expr
	}
	return expr
}
