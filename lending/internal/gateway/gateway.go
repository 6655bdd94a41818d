// Package gateway guards calls to the external payment gateway.
package gateway

import (
	"context"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/pkg/errors"
)

type Gateway interface {
	CreateCheckout(ctx context.Context, req model.CheckoutRequest) (model.CheckoutSession, error)
	Retrieve(ctx context.Context, sessionID string) (model.SessionInfo, error)
	Expire(ctx context.Context, sessionID string) error
}

type guarded struct {
	next    Gateway
	cb      circuit_breaker.CircuitBreaker
	timeout time.Duration
}

// Guard bounds every call by timeout and routes it through the breaker.
// All failures come back wrapped in errs.ErrGatewayUnavailable.
func Guard(next Gateway, cb circuit_breaker.CircuitBreaker, timeout time.Duration) Gateway {
	return &guarded{next: next, cb: cb, timeout: timeout}
}

func (g *guarded) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (model.CheckoutSession, error) {
	var out model.CheckoutSession
	err := g.call(ctx, func(ctx context.Context) error {
		s, err := g.next.CreateCheckout(ctx, req)
		out = s
		return err
	})
	return out, err
}

func (g *guarded) Retrieve(ctx context.Context, sessionID string) (model.SessionInfo, error) {
	var out model.SessionInfo
	err := g.call(ctx, func(ctx context.Context) error {
		s, err := g.next.Retrieve(ctx, sessionID)
		out = s
		return err
	})
	return out, err
}

func (g *guarded) Expire(ctx context.Context, sessionID string) error {
	return g.call(ctx, func(ctx context.Context) error {
		return g.next.Expire(ctx, sessionID)
	})
}

func (g *guarded) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	err := g.cb.Call(func() error { return fn(ctx) })
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return errors.Wrapf(errs.ErrGatewayUnavailable, "%v", err)
}
