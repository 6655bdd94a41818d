package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/gateway"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	calls int
	err   error
	block bool
}

func (s *stubGateway) CreateCheckout(ctx context.Context, _ model.CheckoutRequest) (model.CheckoutSession, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return model.CheckoutSession{}, ctx.Err()
	}
	return model.CheckoutSession{ID: "cs_1", URL: "https://pay/cs_1"}, s.err
}

func (s *stubGateway) Retrieve(_ context.Context, id string) (model.SessionInfo, error) {
	s.calls++
	return model.SessionInfo{ID: id}, s.err
}

func (s *stubGateway) Expire(context.Context, string) error {
	s.calls++
	return s.err
}

func newBreaker() circuit_breaker.CircuitBreaker {
	return circuit_breaker.New(circuit_breaker.Config{RecordLength: 2, Timeout: time.Hour, Percentile: 1, RecoveryRequests: 1})
}

func TestGuard_Success(t *testing.T) {
	t.Parallel()
	g := gateway.Guard(&stubGateway{}, newBreaker(), time.Second)

	s, err := g.CreateCheckout(context.Background(), model.CheckoutRequest{AmountCents: 100})
	require.NoError(t, err)
	require.Equal(t, "cs_1", s.ID)

	info, err := g.Retrieve(context.Background(), "cs_1")
	require.NoError(t, err)
	require.Equal(t, "cs_1", info.ID)

	require.NoError(t, g.Expire(context.Background(), "cs_1"))
}

func TestGuard_TimeoutIsGatewayUnavailable(t *testing.T) {
	t.Parallel()
	g := gateway.Guard(&stubGateway{block: true}, newBreaker(), 10*time.Millisecond)

	_, err := g.CreateCheckout(context.Background(), model.CheckoutRequest{})
	require.ErrorIs(t, err, errs.ErrGatewayUnavailable)
}

func TestGuard_OpenBreakerFailsFast(t *testing.T) {
	t.Parallel()
	stub := &stubGateway{err: errors.New("500")}
	g := gateway.Guard(stub, newBreaker(), time.Second)

	for i := 0; i < 2; i++ {
		_, err := g.Retrieve(context.Background(), "cs")
		require.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	}
	require.Equal(t, 2, stub.calls)

	_, err := g.Retrieve(context.Background(), "cs")
	require.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	require.Equal(t, 2, stub.calls)
}
