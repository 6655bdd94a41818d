package service

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/auth"
)

// Command is one state-changing operation run on behalf of a caller.
type Command[In, Out any] func(ctx context.Context, id auth.Identity, in In) (Out, error)

type BorrowingCommands interface {
	CreateBorrowing(ctx context.Context, id auth.Identity, req model.CreateBorrowingRequest) (model.BorrowingDetail, error)
	ReturnBorrowing(ctx context.Context, id auth.Identity, borrowingID int64) (model.BorrowingDetail, error)
}

type PaymentCommands interface {
	Confirm(ctx context.Context, sessionID string) (model.Payment, error)
	Renew(ctx context.Context, id auth.Identity) (model.Payment, error)
}

// Commands is the closed set of state-changing operations.
type Commands struct {
	Create  Command[model.CreateBorrowingRequest, model.BorrowingDetail]
	Return  Command[int64, model.BorrowingDetail]
	Confirm Command[string, model.Payment]
	Renew   Command[struct{}, model.Payment]
}

func NewCommands(b BorrowingCommands, p PaymentCommands) Commands {
	return Commands{
		Create: b.CreateBorrowing,
		Return: b.ReturnBorrowing,
		Confirm: func(ctx context.Context, _ auth.Identity, sessionID string) (model.Payment, error) {
			return p.Confirm(ctx, sessionID)
		},
		Renew: func(ctx context.Context, id auth.Identity, _ struct{}) (model.Payment, error) {
			return p.Renew(ctx, id)
		},
	}
}
