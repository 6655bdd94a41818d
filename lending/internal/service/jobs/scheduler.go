package jobs

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// NewScheduler registers both scans. A scan never overlaps a still running run of itself.
func NewScheduler(svc *Service, cfg config.Jobs, log *zap.Logger) (*Scheduler, error) {
	log = log.Named("scheduler")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))

	if _, err := c.AddFunc(cfg.OverdueSpec, func() {
		if _, err := svc.OverdueScan(context.Background()); err != nil {
			log.Error("overdue scan", zap.Error(err))
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "overdue spec %q", cfg.OverdueSpec)
	}
	if _, err := c.AddFunc(cfg.ExpirationSpec, func() {
		if _, err := svc.ExpirationScan(context.Background()); err != nil {
			log.Error("expiration scan", zap.Error(err))
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "expiration spec %q", cfg.ExpirationSpec)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler start", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for running scans until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
