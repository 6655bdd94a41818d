// Package borrowing owns the borrowing lifecycle. Eligibility checks, inventory
// moves and the PENDING payment row share one transaction; gateway sessions,
// notifications and events run after commit.
package borrowing

import (
	"context"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/lending/internal/service/events"
	"github.com/Astemirdum/lending-service/lending/internal/service/fee"
	"github.com/Astemirdum/lending-service/lending/internal/service/notify"
	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	GetBorrowing(ctx context.Context, id int64) (model.BorrowingDetail, error)
	ListBorrowings(ctx context.Context, filter model.BorrowingFilter) ([]model.BorrowingDetail, error)
	InTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

type Payments interface {
	Draft(b model.BorrowingDetail, typ model.PaymentType) model.Payment
	Open(ctx context.Context, p model.Payment, b model.BorrowingDetail) (model.Payment, error)
}

type Service struct {
	log      *zap.Logger
	repo     Repository
	payments Payments
	notifier notify.Notifier
	events   events.Emitter
	hooks    []hook
	now      func() time.Time
}

func NewService(repo Repository, payments Payments, notifier notify.Notifier, ev events.Emitter, log *zap.Logger) *Service {
	s := &Service{
		log:      log.Named("borrowing"),
		repo:     repo,
		payments: payments,
		notifier: notifier,
		events:   ev,
		now:      time.Now,
	}
	// order matters: the notification quotes the payment amount
	s.hooks = []hook{
		{name: "payment", run: s.paymentHook},
		{name: "notify", run: s.notifyHook},
		{name: "event", run: s.eventHook},
	}
	return s
}

// CreateBorrowing lends a copy of the book to the caller until expected_return.
func (s *Service) CreateBorrowing(ctx context.Context, id auth.Identity, req model.CreateBorrowingRequest) (model.BorrowingDetail, error) {
	today := model.Today(s.now())
	expected := model.Today(req.ExpectedReturn.Time)
	if !expected.After(today) {
		return model.BorrowingDetail{}, errors.Wrapf(errs.ErrValidation,
			"expected return %s must be after %s", expected.Format(time.DateOnly), today.Format(time.DateOnly))
	}

	var detail model.BorrowingDetail
	err := s.repo.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.LockUser(ctx, id.UserID); err != nil {
			return err
		}
		pending, err := tx.HasPendingPayment(ctx, id.UserID)
		if err != nil {
			return err
		}
		if pending {
			return errs.ErrPendingPaymentExists
		}
		if err := tx.DecrementInventory(ctx, req.BookID); err != nil {
			return err
		}
		book, err := tx.GetBook(ctx, req.BookID)
		if err != nil {
			return err
		}
		created, err := tx.InsertBorrowing(ctx, model.Borrowing{
			BorrowDate:     today,
			ExpectedReturn: expected,
			BookID:         req.BookID,
			UserID:         id.UserID,
			UserName:       id.UserName,
		})
		if err != nil {
			return err
		}
		detail = model.NewBorrowingDetail(created, book)
		// the row is visible to the next create of this user once the lock is released
		return s.insertPayment(ctx, tx, &detail, model.PaymentTypePayment)
	})
	if err != nil {
		return model.BorrowingDetail{}, err
	}

	o := &outcome{kind: outcomeCreated, detail: detail}
	s.afterCommit(ctx, o)
	return o.detail, nil
}

// ReturnBorrowing closes the borrowing today. Ordinary callers may only return their own.
func (s *Service) ReturnBorrowing(ctx context.Context, id auth.Identity, borrowingID int64) (model.BorrowingDetail, error) {
	var owner *int64
	if !id.IsStaff() {
		owner = &id.UserID
	}
	today := model.Today(s.now())

	var detail model.BorrowingDetail
	err := s.repo.InTx(ctx, func(tx repository.Tx) error {
		returned, err := tx.MarkReturned(ctx, borrowingID, owner, today)
		if err != nil {
			return err
		}
		if err := tx.IncrementInventory(ctx, returned.BookID); err != nil {
			return err
		}
		book, err := tx.GetBook(ctx, returned.BookID)
		if err != nil {
			return err
		}
		detail = model.NewBorrowingDetail(returned, book)
		if !fee.Compute(returned, book.DailyFee).Overdue() {
			return nil
		}
		return s.insertPayment(ctx, tx, &detail, model.PaymentTypeFine)
	})
	if err != nil {
		return model.BorrowingDetail{}, err
	}

	o := &outcome{kind: outcomeReturned, detail: detail}
	s.afterCommit(ctx, o)
	return o.detail, nil
}

// insertPayment stores the PENDING payment for d; its session is opened after commit.
func (s *Service) insertPayment(ctx context.Context, tx repository.Tx, d *model.BorrowingDetail, typ model.PaymentType) error {
	p, err := tx.InsertPayment(ctx, s.payments.Draft(*d, typ))
	if err != nil {
		return err
	}
	d.Payment = &p
	return nil
}

func (s *Service) ListBorrowings(ctx context.Context, id auth.Identity, filter model.BorrowingFilter) ([]model.BorrowingDetail, error) {
	if !id.IsStaff() {
		filter.UserIDs = []int64{id.UserID}
	}
	return s.repo.ListBorrowings(ctx, filter)
}

func (s *Service) GetBorrowing(ctx context.Context, id auth.Identity, borrowingID int64) (model.BorrowingDetail, error) {
	b, err := s.repo.GetBorrowing(ctx, borrowingID)
	if err != nil {
		return model.BorrowingDetail{}, err
	}
	if !id.IsStaff() && b.UserID != id.UserID {
		return model.BorrowingDetail{}, errs.ErrNotFound
	}
	return b, nil
}
