package borrowing

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service/events"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"go.uber.org/zap"
)

type outcomeKind int

const (
	outcomeCreated outcomeKind = iota
	outcomeReturned
)

type outcome struct {
	kind   outcomeKind
	detail model.BorrowingDetail
}

type hook struct {
	name string
	run  func(ctx context.Context, o *outcome) error
}

// afterCommit runs every hook in order. A failing hook is logged and the rest still run.
func (s *Service) afterCommit(ctx context.Context, o *outcome) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range s.hooks {
		if err := h.run(ctx, o); err != nil {
			s.log.Error("post-commit hook failed",
				zap.String("hook", h.name), zap.Int64("borrowing_id", o.detail.ID), zap.Error(err))
		}
	}
}

// paymentHook opens the gateway session of the payment stored with the borrowing.
// On failure the payment stays PENDING without a session until the expiration scan lapses it.
func (s *Service) paymentHook(ctx context.Context, o *outcome) error {
	if o.detail.Payment == nil {
		return nil
	}
	p, err := s.payments.Open(ctx, *o.detail.Payment, o.detail)
	if err != nil {
		return err
	}
	o.detail.Payment = &p
	return nil
}

func (s *Service) notifyHook(ctx context.Context, o *outcome) error {
	s.notifier.Notify(ctx, notificationText(o))
	return nil
}

func (s *Service) eventHook(ctx context.Context, o *outcome) error {
	typ := kafka.EventBorrowingCreated
	if o.kind == outcomeReturned {
		typ = kafka.EventBorrowingReturned
	}
	e := events.BorrowingEvent(typ, o.detail.Borrowing)
	if o.detail.Payment != nil {
		e.PaymentID = o.detail.Payment.ID
		e.Amount = o.detail.Payment.MoneyToPay.StringFixed(2)
	}
	s.events.Emit(ctx, e)
	return nil
}

func notificationText(o *outcome) string {
	d := o.detail
	if o.kind == outcomeCreated {
		text := fmt.Sprintf("New borrowing - user: %s, book: %s, must be returned: %s.",
			d.UserName, d.Book.Title, d.ExpectedReturn.Format(time.DateOnly))
		if d.Payment != nil {
			text += fmt.Sprintf(" Amount to pay: %s.", d.Payment.MoneyToPay.StringFixed(2))
		}
		return text
	}
	text := fmt.Sprintf("Borrowing returned - user: %s, book: %s, returned: %s.",
		d.UserName, d.Book.Title, d.ActualReturn.Format(time.DateOnly))
	if d.Payment != nil {
		text += fmt.Sprintf(" Fine to pay: %s.", d.Payment.MoneyToPay.StringFixed(2))
	}
	return text
}
