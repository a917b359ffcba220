package scheduler

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_qr_tracker/metrics"
	"Gin_postgres_redis_qr_tracker/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueSource lists unique items borrowed for longer than a duration.
type OverdueSource interface {
	OverdueItems(ctx context.Context, after time.Duration) ([]models.Item, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	after   time.Duration
	source  OverdueSource
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewScheduler creates a scheduler running the overdue report on spec, a
// standard 5-field cron expression.
func NewScheduler(spec string, after time.Duration, source OverdueSource, rec *metrics.Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		after:   after,
		source:  source,
		metrics: rec,
		logger:  logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("overdue_cron", s.spec))
	if _, err := s.cron.AddFunc(s.spec, s.reportOverdue); err != nil {
		return fmt.Errorf("schedule overdue report: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reportOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.RunOverdueReport(ctx)
}

// RunOverdueReport logs every overdue item once and returns how many there were.
func (s *Scheduler) RunOverdueReport(ctx context.Context) int {
	items, err := s.source.OverdueItems(ctx, s.after)
	if err != nil {
		s.logger.Error("failed to build overdue report", zap.Error(err))
		return 0
	}
	s.metrics.Overdue(len(items))
	for _, it := range items {
		holder := ""
		if it.CurrentHolder != nil {
			holder = *it.CurrentHolder
		}
		var since time.Time
		if it.LoanDate != nil {
			since = *it.LoanDate
		}
		s.logger.Warn("item overdue",
			zap.String("code", it.QRCode),
			zap.String("name", it.Name),
			zap.String("holder", holder),
			zap.Time("loan_date", since))
	}
	s.logger.Info("overdue report done", zap.Int("overdue", len(items)))
	return len(items)
}
