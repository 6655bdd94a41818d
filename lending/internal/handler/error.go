package handler

import (
	"net/http"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func httpError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotPaid):
		code = http.StatusPaymentRequired
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientInventory),
		errors.Is(err, errs.ErrPendingPaymentExists),
		errors.Is(err, errs.ErrAlreadyReturned):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrGatewayUnavailable):
		code = http.StatusServiceUnavailable
	}
	return echo.NewHTTPError(code, err.Error())
}
