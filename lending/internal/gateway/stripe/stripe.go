// Package stripe is the checkout-session client for Stripe.
package stripe

import (
	"context"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/pkg/errors"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

type sessions interface {
	New(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	Get(id string, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	Expire(id string, params *stripeapi.CheckoutSessionExpireParams) (*stripeapi.CheckoutSession, error)
}

type Client struct {
	sessions sessions
	currency string
	log      *zap.Logger
}

// New builds a client bound to its own key; the package-level stripe.Key is never touched.
func New(cfg config.Stripe, log *zap.Logger) *Client {
	api := client.New(cfg.SecretKey, nil)
	return newClient(api.CheckoutSessions, cfg.Currency, log)
}

func newClient(s sessions, currency string, log *zap.Logger) *Client {
	return &Client{sessions: s, currency: currency, log: log.Named("stripe")}
}

func (c *Client) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (model.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(c.currency),
					UnitAmount: stripeapi.Int64(req.AmountCents),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		c.log.Error("checkout session create", zap.Int64("amount", req.AmountCents), zap.Error(err))
		return model.CheckoutSession{}, errors.Wrap(err, "stripe checkout session create")
	}
	return model.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (c *Client) Retrieve(ctx context.Context, sessionID string) (model.SessionInfo, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripeapi.ErrorCodeResourceMissing {
			return model.SessionInfo{}, errors.Wrap(errs.ErrNotFound, sessionID)
		}
		return model.SessionInfo{}, errors.Wrap(err, "stripe checkout session get")
	}
	return toSessionInfo(s), nil
}

// Expire closes an open session so it can no longer be paid.
func (c *Client) Expire(ctx context.Context, sessionID string) error {
	params := &stripeapi.CheckoutSessionExpireParams{}
	params.Context = ctx

	if _, err := c.sessions.Expire(sessionID, params); err != nil {
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripeapi.ErrorCodeResourceMissing {
			return errors.Wrap(errs.ErrNotFound, sessionID)
		}
		return errors.Wrap(err, "stripe checkout session expire")
	}
	return nil
}

func toSessionInfo(s *stripeapi.CheckoutSession) model.SessionInfo {
	info := model.SessionInfo{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Paid:          s.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   s.AmountTotal,
	}
	if s.ExpiresAt > 0 {
		info.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}
	return info
}
