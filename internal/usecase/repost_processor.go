package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"auto_repost_instagram/config"
	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/logger"
	"auto_repost_instagram/internal/metrics"
	"auto_repost_instagram/internal/policy"
)

// CycleReport summarizes one pass over the due accounts
type CycleReport struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	Due              int
	Skipped          int
	DownloadFailures int
	Posts            []*domain.PostRecord
}

// RepostProcessor runs the select, download, publish and record workflow
type RepostProcessor struct {
	config      *config.Config
	accountRepo domain.AccountRepository
	postRepo    domain.PostRepository
	platform    domain.PlatformClient
	planner     *policy.Planner
	captions    policy.CaptionBuilder
	rng         *rand.Rand
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRepostProcessor creates a new repost processor. postRepo may be nil.
func NewRepostProcessor(
	cfg *config.Config,
	accountRepo domain.AccountRepository,
	postRepo domain.PostRepository,
	platform domain.PlatformClient,
) *RepostProcessor {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	return &RepostProcessor{
		config:      cfg,
		accountRepo: accountRepo,
		postRepo:    postRepo,
		platform:    platform,
		planner: &policy.Planner{
			TopMediaCount: cfg.TopMediaCount,
			TopTagCount:   cfg.TopTagCount,
			AcceptVideo:   cfg.AcceptVideo,
			HashtagPool:   cfg.HashtagTemplates,
			Rand:          rng,
		},
		captions: policy.CaptionBuilder{SeparatorLines: cfg.SeparatorLines},
		rng:      rng,
		now:      time.Now,
		sleep:    waitContext,
	}
}

// SetRand replaces the random source used for queue order and hashtag sampling
func (p *RepostProcessor) SetRand(rng *rand.Rand) {
	p.rng = rng
	p.planner.Rand = rng
}

// SetClock replaces the clock used for eligibility and ledger timestamps
func (p *RepostProcessor) SetClock(now func() time.Time) {
	p.now = now
}

// SetSleep replaces the throttle between accounts
func (p *RepostProcessor) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	p.sleep = sleep
}

// RunCycle processes every due account once. It stops on the first fatal
// error (upload failure or ledger write failure) or when ctx is done.
func (p *RepostProcessor) RunCycle(ctx context.Context) (report *CycleReport, err error) {
	started := time.Now()
	report = &CycleReport{RunID: uuid.NewString(), StartedAt: p.now()}

	defer func() {
		report.FinishedAt = p.now()
		result := metrics.CycleResultOK
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			result = metrics.CycleResultCancelled
		case err != nil:
			result = metrics.CycleResultFatal
		}
		metrics.RecordCycle(result, time.Since(started))
		logger.Info().Printf("Cycle %s finished (%s): due=%d posted=%d skipped=%d download_failures=%d",
			report.RunID, result, report.Due, len(report.Posts), report.Skipped, report.DownloadFailures)
	}()

	accounts, err := p.accountRepo.GetAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load accounts: %w", err)
	}

	due := policy.DueAccounts(accounts, p.now(), p.config.Cooldown, p.rng)
	report.Due = len(due)
	logger.Info().Printf("Cycle %s: %d of %d accounts due", report.RunID, len(due), len(accounts))
	if len(due) == 0 {
		return report, nil
	}

	if err := p.platform.Login(ctx, p.config.Username, p.config.Password); err != nil {
		return report, fmt.Errorf("failed to login as %s: %w", p.config.Username, err)
	}

	for i, account := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := p.processAccount(ctx, account, report); err != nil {
			return report, err
		}

		if i < len(due)-1 {
			if err := p.sleep(ctx, p.config.InterAccountDelay); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

// processAccount returns only fatal errors; skips are logged and counted.
func (p *RepostProcessor) processAccount(ctx context.Context, account *domain.SourceAccount, report *CycleReport) error {
	username := account.Username

	accountID, err := p.platform.ResolveAccountID(ctx, username)
	if err != nil {
		p.skip(report, username, metrics.SkipReasonResolve, err)
		return nil
	}

	media, err := p.platform.ListMedia(ctx, accountID)
	if err != nil {
		p.skip(report, username, metrics.SkipReasonListMedia, err)
		return nil
	}

	plan, ok := p.planner.Plan(account, media)
	if !ok {
		p.skip(report, username, metrics.SkipReasonEmptyCatalog, domain.ErrEmptyCatalog)
		return nil
	}

	draft, usedKeys := p.materialize(ctx, plan, report)
	if len(draft.Files) == 0 {
		p.skip(report, username, metrics.SkipReasonDownload, domain.ErrEmptyCatalog)
		return nil
	}
	draft.Caption = p.captions.Build(p.config.Username, plan.Hashtags, plan.Attribution)

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := p.publish(ctx, draft)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUploadFailure, username, err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s: platform returned an empty caption", domain.ErrUploadFailure, username)
	}

	postedAt := p.now()
	usage := domain.Usage{MediaIDs: usedKeys, Hashtags: plan.Hashtags, At: postedAt}
	if err := p.accountRepo.MergeUsage(ctx, username, usage); err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", username, err)
	}

	record := &domain.PostRecord{
		Username:      username,
		Type:          draft.Type,
		MediaIDs:      usedKeys,
		Hashtags:      plan.Hashtags,
		RemoteMediaID: result.MediaID,
		Caption:       draft.Caption,
		CreatedAt:     postedAt,
	}
	if p.postRepo != nil {
		if err := p.postRepo.Save(ctx, record); err != nil {
			logger.Warn().Warnf("Failed to save post record for %s: %v", username, err)
		}
	}
	report.Posts = append(report.Posts, record)
	metrics.RecordPost(string(draft.Type))
	logger.Info().Printf("Reposted %d file(s) from %s as %s (remote media %s)", len(draft.Files), username, draft.Type, result.MediaID)

	return nil
}

// materialize downloads every part of the plan, dropping parts that fail.
// It returns the draft without caption and the ledger keys of every item
// whose download was attempted, so a failing candidate is not retried on the
// next cycle. Items cut by the album cap stay unused.
func (p *RepostProcessor) materialize(ctx context.Context, plan policy.Plan, report *CycleReport) (domain.PostDraft, []string) {
	maxFiles := p.config.MaxAlbumItems
	var (
		files    []string
		kinds    []domain.MediaKind
		usedKeys []string
	)

	for _, item := range plan.Items {
		attempted := false
		for _, part := range item.Parts() {
			if maxFiles > 0 && len(files) >= maxFiles {
				break
			}
			attempted = true
			path, err := p.platform.DownloadMedia(ctx, part, p.config.DownloadDir)
			if err != nil {
				report.DownloadFailures++
				metrics.RecordDownloadFailure()
				logger.Warn().Warnf("Dropping media %s of %s: %v", part.ID, item.ID, err)
				continue
			}
			files = append(files, path)
			kinds = append(kinds, part.Kind)
		}
		if attempted {
			usedKeys = append(usedKeys, item.DedupKey())
		}
	}

	draft := domain.PostDraft{Type: domain.PostTypeAlbum, Files: files}
	if len(files) == 1 {
		draft.Type = domain.PostTypePhoto
		if kinds[0] == domain.MediaKindVideo {
			draft.Type = domain.PostTypeVideo
		}
	}
	return draft, usedKeys
}

func (p *RepostProcessor) publish(ctx context.Context, draft domain.PostDraft) (*domain.PostResult, error) {
	if len(draft.Files) == 1 {
		return p.platform.UploadSingle(ctx, draft.Files[0], draft.Caption)
	}
	return p.platform.UploadAlbum(ctx, draft.Files, draft.Caption)
}

func (p *RepostProcessor) skip(report *CycleReport, username, reason string, err error) {
	report.Skipped++
	metrics.RecordSkip(reason)
	logger.Warn().Warnf("Skipping %s (%s): %v", username, reason, err)
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
