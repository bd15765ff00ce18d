package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/logging"
)

// Refresher runs one sync.
type Refresher interface {
	Refresh(ctx context.Context) (explorer.Outcome, error)
}

// Observer is told about every completed scheduled refresh.
type Observer interface {
	Observe(ctx context.Context, outcome explorer.Outcome)
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithObserver registers observer for completed refreshes.
func WithObserver(observer Observer) SchedulerOption {
	return func(s *Scheduler) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// Scheduler triggers refreshes on a standard five-field cron schedule.
type Scheduler struct {
	refresher Refresher
	spec      string
	logger    *slog.Logger
	observers []Observer

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	entryID cron.EntryID
}

// NewScheduler validates spec and returns a stopped scheduler.
func NewScheduler(refresher Refresher, spec string, logger *slog.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if refresher == nil {
		return nil, errors.New("scheduler: refresher is required")
	}
	spec = strings.TrimSpace(spec)
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		refresher: refresher,
		spec:      spec,
		logger:    logging.NewComponentLogger(logger, "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins firing refreshes until ctx is canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New()
	id, err := s.cron.AddFunc(s.spec, s.Tick)
	if err != nil {
		s.cancel()
		s.cron = nil
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("refresh schedule started",
		logging.String(logging.FieldEventType, "schedule_started"),
		logging.String("schedule", s.spec),
		logging.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

// Stop halts the schedule, cancels a running refresh and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	s.logger.Info("refresh schedule stopped",
		logging.String(logging.FieldEventType, "schedule_stopped"))
}

// Tick runs one scheduled refresh. An overlapping refresh is skipped.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	outcome, err := s.refresher.Refresh(ctx)
	if ctx.Err() != nil {
		s.logger.Info("scheduled refresh canceled",
			logging.String(logging.FieldEventType, "schedule_refresh_canceled"))
		return
	}
	switch {
	case errors.Is(err, explorer.ErrRefreshInProgress):
		s.logger.Info("scheduled refresh skipped",
			logging.String(logging.FieldEventType, "schedule_refresh_skipped"),
			logging.String("reason", "refresh already in progress"))
	case err != nil:
		logging.WarnWithContext(s.logger, "scheduled refresh failed", "schedule_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run n8nexplorer login to save credentials"),
			logging.String(logging.FieldImpact, "the tree is not refreshed until the next run"))
	default:
		s.logger.Debug("scheduled refresh completed",
			logging.String(logging.FieldEventType, "schedule_refresh_completed"),
			logging.String("state", string(outcome.State)),
			logging.String(logging.FieldCorrelationID, outcome.CorrelationID))
		for _, observer := range s.observers {
			observer.Observe(ctx, outcome)
		}
	}
}
