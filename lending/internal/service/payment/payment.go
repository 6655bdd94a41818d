// Package payment drives payment sessions at the external gateway and the
// PENDING -> PAID | EXPIRED -> PENDING lifecycle of the payment rows.
package payment

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/gateway"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service/events"
	"github.com/Astemirdum/lending-service/lending/internal/service/fee"
	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	GetBorrowing(ctx context.Context, id int64) (model.BorrowingDetail, error)
	GetPayment(ctx context.Context, id int64) (model.Payment, error)
	GetPaymentBySession(ctx context.Context, sessionID string) (model.Payment, error)
	ListPayments(ctx context.Context, userID int64) ([]model.Payment, error)
	LatestExpiredPayment(ctx context.Context, userID int64) (model.Payment, error)
	TransitionPayment(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
	AttachSession(ctx context.Context, id int64, sessionID, sessionURL string) (bool, error)
	RenewPayment(ctx context.Context, id int64, sessionID, sessionURL string) (model.Payment, error)
}

type Service struct {
	log    *zap.Logger
	repo   Repository
	gw     gateway.Gateway
	events events.Emitter
	cfg    config.Stripe
}

func NewService(repo Repository, gw gateway.Gateway, ev events.Emitter, cfg config.Stripe, log *zap.Logger) *Service {
	return &Service{
		log:    log.Named("payment"),
		repo:   repo,
		gw:     gw,
		events: ev,
		cfg:    cfg,
	}
}

// Draft prices a PENDING payment for the borrowing without touching the gateway.
// PAYMENT charges the whole amount owed, FINE only the overdue part.
func (s *Service) Draft(b model.BorrowingDetail, typ model.PaymentType) model.Payment {
	breakdown := fee.Compute(b.Borrowing, b.Book.DailyFee)
	return model.Payment{
		Status:      model.PaymentPending,
		Type:        typ,
		BorrowingID: b.ID,
		MoneyToPay:  fee.FromCents(fee.AmountCents(breakdown, typ)),
		UserID:      b.UserID,
	}
}

// Open requests a checkout session for a stored PENDING payment and attaches it.
// A session that can no longer be attached is expired at the gateway.
func (s *Service) Open(ctx context.Context, p model.Payment, b model.BorrowingDetail) (model.Payment, error) {
	session, err := s.gw.CreateCheckout(ctx, s.checkout(p, b))
	if err != nil {
		return p, errors.Wrapf(err, "create session for payment %d", p.ID)
	}

	ok, err := s.repo.AttachSession(ctx, p.ID, session.ID, session.URL)
	if err != nil {
		s.discard(ctx, p.ID, session.ID)
		return p, err
	}
	if !ok {
		s.discard(ctx, p.ID, session.ID)
		return p, errors.Errorf("payment %d no longer awaits a session", p.ID)
	}

	p.SessionID, p.SessionURL = session.ID, session.URL
	s.log.Info("payment session created",
		zap.Int64("payment_id", p.ID), zap.Int64("borrowing_id", b.ID),
		zap.String("type", string(p.Type)), zap.String("amount", p.MoneyToPay.StringFixed(2)))
	s.events.Emit(ctx, events.PaymentEvent(kafka.EventPaymentCreated, p))
	return p, nil
}

func (s *Service) checkout(p model.Payment, b model.BorrowingDetail) model.CheckoutRequest {
	breakdown := fee.Compute(b.Borrowing, b.Book.DailyFee)
	return model.CheckoutRequest{
		AmountCents: fee.ToCents(p.MoneyToPay),
		Description: fee.Describe(b.Book.Title, breakdown, p.Type),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	}
}

// discard expires a session no payment row points at.
func (s *Service) discard(ctx context.Context, paymentID int64, sessionID string) {
	if err := s.gw.Expire(ctx, sessionID); err != nil {
		s.log.Error("orphaned checkout session",
			zap.Int64("payment_id", paymentID), zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.log.Warn("orphaned checkout session expired",
		zap.Int64("payment_id", paymentID), zap.String("session_id", sessionID))
}

// Confirm marks the payment PAID once the gateway reports the session as paid.
// Confirming an already PAID payment is a no-op.
func (s *Service) Confirm(ctx context.Context, sessionID string) (model.Payment, error) {
	p, err := s.repo.GetPaymentBySession(ctx, sessionID)
	if err != nil {
		return model.Payment{}, err
	}
	if p.Status == model.PaymentPaid {
		return p, nil
	}

	info, err := s.gw.Retrieve(ctx, sessionID)
	if err != nil {
		return model.Payment{}, err
	}
	if !info.Paid {
		return model.Payment{}, errors.Wrapf(errs.ErrNotPaid, "session status %q", info.PaymentStatus)
	}

	ok, err := s.repo.TransitionPayment(ctx, p.ID, model.PaymentPending, model.PaymentPaid)
	if err != nil {
		return model.Payment{}, err
	}
	if ok {
		s.log.Info("payment paid", zap.Int64("payment_id", p.ID))
		p.Status = model.PaymentPaid
		s.events.Emit(ctx, events.PaymentEvent(kafka.EventPaymentPaid, p))
		return p, nil
	}
	return s.repo.GetPayment(ctx, p.ID)
}

// Cancel reports the payment behind a cancelled checkout. Nothing changes: the
// payment stays PENDING and can still be paid while the session lives.
func (s *Service) Cancel(ctx context.Context, sessionID string) (model.Payment, error) {
	p, err := s.repo.GetPaymentBySession(ctx, sessionID)
	if err != nil {
		return model.Payment{}, err
	}
	s.log.Info("checkout cancelled", zap.Int64("payment_id", p.ID), zap.String("session_id", sessionID))
	return p, nil
}

// Renew reopens the caller's most recent EXPIRED payment with a fresh session
// for the same amount. errs.ErrNoneToRenew is a regular outcome.
func (s *Service) Renew(ctx context.Context, id auth.Identity) (model.Payment, error) {
	p, err := s.repo.LatestExpiredPayment(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Payment{}, errs.ErrNoneToRenew
		}
		return model.Payment{}, err
	}
	b, err := s.repo.GetBorrowing(ctx, p.BorrowingID)
	if err != nil {
		return model.Payment{}, err
	}

	session, err := s.gw.CreateCheckout(ctx, s.checkout(p, b))
	if err != nil {
		return model.Payment{}, errors.Wrapf(err, "renew payment %d", p.ID)
	}

	renewed, err := s.repo.RenewPayment(ctx, p.ID, session.ID, session.URL)
	if err != nil {
		// a concurrent renewal won; its session is the live one
		s.discard(ctx, p.ID, session.ID)
		return model.Payment{}, err
	}
	s.log.Info("payment renewed", zap.Int64("payment_id", renewed.ID), zap.String("session_id", session.ID))
	s.events.Emit(ctx, events.PaymentEvent(kafka.EventPaymentCreated, renewed))
	return renewed, nil
}

func (s *Service) ListPayments(ctx context.Context, id auth.Identity) ([]model.Payment, error) {
	if id.IsStaff() {
		return s.repo.ListPayments(ctx, 0)
	}
	return s.repo.ListPayments(ctx, id.UserID)
}

func (s *Service) GetPayment(ctx context.Context, id auth.Identity, paymentID int64) (model.Payment, error) {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	if !id.IsStaff() && p.UserID != id.UserID {
		return model.Payment{}, errs.ErrNotFound
	}
	return p, nil
}
