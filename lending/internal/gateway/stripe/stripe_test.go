package stripe

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type fakeSessions struct {
	created *stripeapi.CheckoutSessionParams
	get     *stripeapi.CheckoutSession
	expired []string
	err     error
}

func (f *fakeSessions) New(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	f.created = params
	return &stripeapi.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/cs_test_1"}, f.err
}

func (f *fakeSessions) Get(string, *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	return f.get, f.err
}

func (f *fakeSessions) Expire(id string, params *stripeapi.CheckoutSessionExpireParams) (*stripeapi.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.expired = append(f.expired, id)
	return &stripeapi.CheckoutSession{ID: id, Status: stripeapi.CheckoutSessionStatusExpired}, nil
}

func TestClient_CreateCheckout(t *testing.T) {
	t.Parallel()
	fs := &fakeSessions{}
	c := newClient(fs, "usd", zap.NewNop())

	s, err := c.CreateCheckout(context.Background(), model.CheckoutRequest{
		AmountCents: 2800,
		Description: "Payment for borrowing of Dune",
		SuccessURL:  "http://ok",
		CancelURL:   "http://cancel",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", s.ID)

	item := fs.created.LineItems[0]
	require.Equal(t, int64(2800), *item.PriceData.UnitAmount)
	require.Equal(t, "usd", *item.PriceData.Currency)
	require.Equal(t, "Payment for borrowing of Dune", *item.PriceData.ProductData.Name)
	require.Equal(t, "payment", *fs.created.Mode)
	require.NotNil(t, fs.created.Context)
}

func TestClient_Retrieve(t *testing.T) {
	t.Parallel()
	expires := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fs := &fakeSessions{get: &stripeapi.CheckoutSession{
		ID:            "cs_test_1",
		PaymentStatus: stripeapi.CheckoutSessionPaymentStatusPaid,
		ExpiresAt:     expires.Unix(),
		AmountTotal:   2000,
	}}
	c := newClient(fs, "usd", zap.NewNop())

	info, err := c.Retrieve(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.True(t, info.Paid)
	require.Equal(t, expires, info.ExpiresAt)
	require.Equal(t, int64(2000), info.AmountTotal)
}

func TestClient_RetrieveMissing(t *testing.T) {
	t.Parallel()
	fs := &fakeSessions{err: &stripeapi.Error{Code: stripeapi.ErrorCodeResourceMissing}}
	c := newClient(fs, "usd", zap.NewNop())

	_, err := c.Retrieve(context.Background(), "cs_gone")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_Expire(t *testing.T) {
	t.Parallel()
	fs := &fakeSessions{}
	c := newClient(fs, "usd", zap.NewNop())

	require.NoError(t, c.Expire(context.Background(), "cs_test_1"))
	require.Equal(t, []string{"cs_test_1"}, fs.expired)

	fs.err = &stripeapi.Error{Code: stripeapi.ErrorCodeResourceMissing}
	require.ErrorIs(t, c.Expire(context.Background(), "cs_gone"), errs.ErrNotFound)
}
