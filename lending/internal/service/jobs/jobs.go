// Package jobs holds the periodic scans: overdue borrowings and expiring payment sessions.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/gateway"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service/events"
	"github.com/Astemirdum/lending-service/lending/internal/service/notify"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const noOverdueText = "No overdue borrowing today."

type Repository interface {
	ListOverdue(ctx context.Context, today time.Time) ([]model.OverdueBorrowing, error)
	ListPendingPayments(ctx context.Context) ([]model.Payment, error)
	TransitionPayment(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
}

type Service struct {
	log      *zap.Logger
	repo     Repository
	gw       gateway.Gateway
	notifier notify.Notifier
	events   events.Emitter
	cfg      config.Jobs
	now      func() time.Time
}

func NewService(repo Repository, gw gateway.Gateway, notifier notify.Notifier, ev events.Emitter, cfg config.Jobs, log *zap.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		log:      log.Named("jobs"),
		repo:     repo,
		gw:       gw,
		notifier: notifier,
		events:   ev,
		cfg:      cfg,
		now:      time.Now,
	}
}

// OverdueScan notifies about every active borrowing due today or earlier. It changes nothing.
func (s *Service) OverdueScan(ctx context.Context) (int, error) {
	overdue, err := s.repo.ListOverdue(ctx, model.Today(s.now()))
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		s.notifier.Notify(ctx, noOverdueText)
		return 0, nil
	}
	for _, o := range overdue {
		s.notifier.Notify(ctx, fmt.Sprintf("Overdue borrowing - book: %s, must be returned: %s.",
			o.BookTitle, o.ExpectedReturn.Format(time.DateOnly)))
	}
	s.log.Info("overdue scan", zap.Int("overdue", len(overdue)))
	return len(overdue), nil
}

type Summary struct {
	Checked int64
	Expired int64
	Paid    int64
	Failed  int64
}

// ExpirationScan settles PENDING payments against their sessions: paid ones
// become PAID, lapsed ones EXPIRED. A payment whose session was never opened
// lapses once it is older than the session grace. Per-payment failures are
// logged and counted.
func (s *Service) ExpirationScan(ctx context.Context) (Summary, error) {
	pending, err := s.repo.ListPendingPayments(ctx)
	if err != nil {
		return Summary{}, err
	}

	var checked, expired, paid, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, p := range pending {
		p := p
		g.Go(func() error {
			checked.Add(1)
			switch to, err := s.settle(gctx, p); {
			case err != nil:
				failed.Add(1)
				s.log.Warn("expiration check", zap.Int64("payment_id", p.ID), zap.Error(err))
			case to == model.PaymentExpired:
				expired.Add(1)
			case to == model.PaymentPaid:
				paid.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{Checked: checked.Load(), Expired: expired.Load(), Paid: paid.Load(), Failed: failed.Load()}
	s.log.Info("expiration scan", zap.Int64("checked", sum.Checked), zap.Int64("expired", sum.Expired),
		zap.Int64("paid", sum.Paid), zap.Int64("failed", sum.Failed))
	return sum, nil
}

// settle returns the status the payment moved to, or "" when it was left alone.
func (s *Service) settle(ctx context.Context, p model.Payment) (model.PaymentStatus, error) {
	if s.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ItemTimeout)
		defer cancel()
	}
	to, err := s.target(ctx, p)
	if err != nil || to == "" {
		return "", err
	}
	ok, err := s.repo.TransitionPayment(ctx, p.ID, model.PaymentPending, to)
	if err != nil || !ok {
		return "", err
	}

	p.Status = to
	if to == model.PaymentExpired {
		s.notifier.Notify(ctx, expiredText(p))
		s.events.Emit(ctx, events.PaymentEvent(kafka.EventPaymentExpired, p))
	} else {
		s.events.Emit(ctx, events.PaymentEvent(kafka.EventPaymentPaid, p))
	}
	return to, nil
}

func (s *Service) target(ctx context.Context, p model.Payment) (model.PaymentStatus, error) {
	// the session was never opened; give the post-commit hook its grace first
	if !p.Opened() {
		if s.now().Sub(p.CreatedAt) < s.cfg.SessionGrace {
			return "", nil
		}
		return model.PaymentExpired, nil
	}

	info, err := s.gw.Retrieve(ctx, p.SessionID)
	if err != nil {
		return "", err
	}
	switch {
	case info.Paid:
		return model.PaymentPaid, nil
	case info.Expired(s.now()):
		return model.PaymentExpired, nil
	}
	return "", nil
}

func expiredText(p model.Payment) string {
	if !p.Opened() {
		return fmt.Sprintf("Payment %d is expired.", p.ID)
	}
	return fmt.Sprintf("Session %s is expired.", p.SessionID)
}
