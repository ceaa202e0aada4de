package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/expiry"
	"github.com/smarthousehold/inventory-service/internal/repository"
	"github.com/smarthousehold/inventory-service/internal/runlock"
	"github.com/smarthousehold/inventory-service/internal/worker"
)

// Dispatcher sends composed messages and reports one outcome per message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs []domain.PushMessage) []worker.Outcome
}

// ExpiryConfig tunes a run. Zero values fall back to the defaults.
type ExpiryConfig struct {
	Location     *time.Location
	Window       expiry.Window
	MaxBodyItems int

	// Now overrides the clock in tests.
	Now func() time.Time

	// OnFinished is called with every completed report, e.g. for metrics.
	OnFinished func(*domain.RunReport)
}

// ExpiryService runs the daily expiry check: scan, group, compose, dispatch.
type ExpiryService struct {
	items      repository.ItemRepository
	tokens     repository.TokenRepository
	dispatcher Dispatcher
	lock       runlock.Locker
	composer   *expiry.Composer
	cfg        ExpiryConfig
	logger     *zap.Logger

	mu   sync.RWMutex
	last *domain.RunReport
}

func NewExpiryService(
	items repository.ItemRepository,
	tokens repository.TokenRepository,
	dispatcher Dispatcher,
	lock runlock.Locker,
	cfg ExpiryConfig,
	logger *zap.Logger,
) *ExpiryService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Window.HorizonDays == 0 && len(cfg.Window.NotifyDays) == 0 {
		cfg.Window = expiry.DefaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnFinished == nil {
		cfg.OnFinished = func(*domain.RunReport) {}
	}
	if lock == nil {
		lock = runlock.NopLocker{}
	}
	return &ExpiryService{
		items:      items,
		tokens:     tokens,
		dispatcher: dispatcher,
		lock:       lock,
		composer:   expiry.NewComposer(cfg.MaxBodyItems),
		cfg:        cfg,
		logger:     logger,
	}
}

// Run performs one expiry check for today in the configured zone.
//
// A failed item scan or token lookup aborts the run before anything is sent
// and is returned wrapped in domain.ErrScanFailed or domain.ErrTokenLookupFailed.
// Per-user send failures never fail the run; they are listed in the report.
// When another replica already holds today's lock the run is skipped.
func (s *ExpiryService) Run(ctx context.Context) (*domain.RunReport, error) {
	start := s.cfg.Now()
	today := domain.DateOf(start, s.cfg.Location)
	report := &domain.RunReport{
		Date:      today,
		TimeZone:  s.cfg.Location.String(),
		StartedAt: start.UTC(),
	}
	log := s.logger.With(zap.String("run_date", today.String()))

	lockKey := today.String()
	if err := s.lock.Acquire(ctx, lockKey); err != nil {
		if errors.Is(err, domain.ErrRunLocked) {
			log.Info("expiry check already ran today, skipping")
			report.Outcome = domain.OutcomeSkipped
			return s.finish(report, start), nil
		}
		// Proceed without the lock rather than miss the day.
		log.Warn("run lock unavailable, continuing without it", zap.Error(err))
	}

	if err := s.run(ctx, today, report, log); err != nil {
		log.Error("expiry check failed", zap.Error(err))
		report.Outcome = domain.OutcomeFailed
		report.Error = err.Error()
		if relErr := s.lock.Release(context.WithoutCancel(ctx), lockKey); relErr != nil {
			log.Warn("failed to release run lock", zap.Error(relErr))
		}
		return s.finish(report, start), err
	}

	log.Info("expiry check finished",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("items_fetched", report.ItemsFetched),
		zap.Int("candidates", report.Candidates),
		zap.Int("dispatched", report.Dispatched),
		zap.Int("failed", len(report.Failed)),
		zap.Int("skipped_no_tokens", report.UsersSkipped),
	)
	return s.finish(report, start), nil
}

func (s *ExpiryService) run(ctx context.Context, today domain.Date, report *domain.RunReport, log *zap.Logger) error {
	from, to := s.cfg.Window.Range(today)
	rows, err := s.items.FindExpiring(ctx, from, to)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrScanFailed, err)
	}
	report.ItemsFetched = len(rows)

	groups := expiry.Collect(rows, today, s.cfg.Window)
	report.Candidates = expiry.CountCandidates(groups)
	report.Users = len(groups)
	if len(groups) == 0 {
		report.Outcome = domain.OutcomeNoCandidates
		return nil
	}

	tokens, err := s.tokens.FindByUsers(ctx, expiry.UserIDs(groups))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTokenLookupFailed, err)
	}

	msgs, skipped := s.composer.Compose(groups, tokens)
	report.UsersSkipped = len(skipped)
	for _, id := range skipped {
		log.Debug("user has no push tokens", zap.String("user_id", id))
	}

	report.Dispatched = len(msgs)
	for _, o := range s.dispatcher.Dispatch(ctx, msgs) {
		if o.Result != nil {
			report.TokensSucceeded += o.Result.SuccessCount
			report.TokensFailed += o.Result.FailureCount
		}
		if o.Err != nil {
			report.Failed = append(report.Failed, domain.UserFailure{UserID: o.UserID, Reason: o.Err.Error()})
			continue
		}
		report.Succeeded++
	}
	report.Outcome = domain.OutcomeDispatched
	return nil
}

func (s *ExpiryService) finish(report *domain.RunReport, start time.Time) *domain.RunReport {
	report.Duration = s.cfg.Now().Sub(start)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.cfg.OnFinished(report)
	return report
}

// LastReport returns the most recent run's report, or domain.ErrNotFound
// if no run has finished since startup.
func (s *ExpiryService) LastReport() (*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, domain.ErrNotFound
	}
	clone := *s.last
	clone.Failed = append([]domain.UserFailure(nil), s.last.Failed...)
	return &clone, nil
}
