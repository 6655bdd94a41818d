package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// idempotent rejects a repeated key per user. A failed request frees its key.
// Redis being unavailable does not block the request.
func (h *Handler) idempotent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(HeaderIdempotencyKey)
		if h.idempotency == nil || key == "" {
			return next(c)
		}
		ctx := c.Request().Context()
		if id, err := auth.FromContext(ctx); err == nil {
			key = strconv.FormatInt(id.UserID, 10) + ":" + key
		}

		ok, err := h.idempotency.Acquire(ctx, key)
		if err != nil {
			h.log.Warn("idempotency acquire", zap.Error(err))
			return next(c)
		}
		if !ok {
			return echo.NewHTTPError(http.StatusConflict, "duplicate request")
		}
		if err := next(c); err != nil {
			if rerr := h.idempotency.Release(ctx, key); rerr != nil {
				h.log.Warn("idempotency release", zap.Error(rerr))
			}
			return err
		}
		return nil
	}
}
