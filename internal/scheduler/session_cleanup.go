// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/logging"
)

// SessionExpirer drops import sessions that were idle for too long.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context) (int, error)
}

// CleanupAuditor records cleanup runs.
type CleanupAuditor interface {
	LogCleanup(action string, removed int64, err error)
}

// SessionCleanupScheduler periodically expires idle import sessions so
// their parsed spreadsheets do not stay in memory.
type SessionCleanupScheduler struct {
	expirer  SessionExpirer
	auditor  CleanupAuditor
	schedule string
	logger   *zap.Logger

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	// cleaning is separate from mu: Stop holds mu while waiting for a
	// running cleanup to finish.
	cleaning atomic.Bool
}

// NewSessionCleanupScheduler creates a scheduler for a standard five field
// cron schedule. auditor may be nil.
func NewSessionCleanupScheduler(expirer SessionExpirer, auditor CleanupAuditor, schedule string, logger *zap.Logger) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		expirer:  expirer,
		auditor:  auditor,
		schedule: schedule,
		logger:   logging.OrNop(logger).Named("scheduler"),
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule checks a five field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// Start begins the scheduler. An empty schedule disables it.
func (s *SessionCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.logger.Info("session cleanup disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.RunNow(cancelCtx)
	}); err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("session cleanup scheduled", zap.String("schedule", s.schedule))

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running cleanup.
func (s *SessionCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	<-done.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.logger.Info("session cleanup stopped")
}

// RunNow expires idle sessions immediately. Overlapping runs are skipped.
func (s *SessionCleanupScheduler) RunNow(ctx context.Context) (int, error) {
	if !s.cleaning.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.cleaning.Store(false)

	expired, err := s.expirer.ExpireSessions(ctx)
	if err != nil {
		s.logger.Error("session cleanup failed", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("expired import sessions", zap.Int("count", expired))
	}
	if s.auditor != nil && (expired > 0 || err != nil) {
		s.auditor.LogCleanup("expire_import_sessions", int64(expired), err)
	}
	return expired, err
}

// IsRunning returns whether the scheduler is active
func (s *SessionCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
