package errs

import (
	"errors"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrInsufficientInventory = errors.New("there isn't available book")
	ErrPendingPaymentExists  = errors.New("user has a pending payment")
	ErrAlreadyReturned       = errors.New("borrowing has already been returned")
	ErrNotPaid               = errors.New("payment is not completed")
	ErrNoneToRenew           = errors.New("no expired payment to renew")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrNotificationFailure   = errors.New("notification failure")
	ErrForbidden             = errors.New("forbidden")
	ErrUnauthorized          = errors.New("unauthorized")
)
