package jobs

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

type memRepo struct {
	mu       sync.Mutex
	overdue  []model.OverdueBorrowing
	payments map[int64]model.Payment
	asOf     time.Time
}

func (m *memRepo) ListOverdue(_ context.Context, today time.Time) ([]model.OverdueBorrowing, error) {
	m.asOf = today
	var out []model.OverdueBorrowing
	for _, o := range m.overdue {
		if !o.ExpectedReturn.After(today) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) ListPendingPayments(context.Context) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, p := range m.payments {
		if p.Status == model.PaymentPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) TransitionPayment(_ context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	m.payments[id] = p
	return true, nil
}

type fakeGateway struct {
	sessions map[string]model.SessionInfo
}

func (g *fakeGateway) CreateCheckout(context.Context, model.CheckoutRequest) (model.CheckoutSession, error) {
	return model.CheckoutSession{}, errors.New("not used")
}

func (g *fakeGateway) Retrieve(_ context.Context, id string) (model.SessionInfo, error) {
	s, ok := g.sessions[id]
	if !ok {
		return model.SessionInfo{}, errors.Wrap(errs.ErrGatewayUnavailable, "connection refused")
	}
	return s, nil
}

func (g *fakeGateway) Expire(context.Context, string) error {
	return errors.New("not used")
}

type recorder struct {
	mu     sync.Mutex
	texts  []string
	events []kafka.LendingEvent
}

func (r *recorder) Notify(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recorder) Emit(_ context.Context, e kafka.LendingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func newTestService(repo *memRepo, gw *fakeGateway) (*Service, *recorder) {
	rec := &recorder{}
	s := NewService(repo, gw, rec, rec, config.Jobs{Concurrency: 2, ItemTimeout: time.Second, SessionGrace: 15 * time.Minute}, zap.NewNop())
	s.now = func() time.Time { return now }
	return s, rec
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_OverdueScan(t *testing.T) {
	t.Parallel()
	repo := &memRepo{overdue: []model.OverdueBorrowing{
		{BorrowingID: 1, BookTitle: "Dune", UserName: "reader", ExpectedReturn: date(2024, 2, 1)},
		{BorrowingID: 2, BookTitle: "Solaris", UserName: "reader", ExpectedReturn: date(2024, 2, 10)},
		{BorrowingID: 3, BookTitle: "Ubik", UserName: "reader", ExpectedReturn: date(2024, 2, 11)},
	}}
	svc, rec := newTestService(repo, &fakeGateway{})

	n, err := svc.OverdueScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, date(2024, 2, 10), repo.asOf)
	want := []string{
		"Overdue borrowing - book: Dune, must be returned: 2024-02-01.",
		"Overdue borrowing - book: Solaris, must be returned: 2024-02-10.",
	}
	require.Equal(t, want, rec.texts)

	n, err = svc.OverdueScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, append(want, want...), rec.texts)
}

func TestService_OverdueScanNothingDue(t *testing.T) {
	t.Parallel()
	svc, rec := newTestService(&memRepo{}, &fakeGateway{})

	n, err := svc.OverdueScan(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, []string{"No overdue borrowing today."}, rec.texts)
}

func TestService_ExpirationScan(t *testing.T) {
	t.Parallel()
	repo := &memRepo{payments: map[int64]model.Payment{
		1: {ID: 1, Status: model.PaymentPending, SessionID: "cs_expired"},
		2: {ID: 2, Status: model.PaymentPending, SessionID: "cs_live"},
		3: {ID: 3, Status: model.PaymentPending, SessionID: "cs_paid"},
		4: {ID: 4, Status: model.PaymentPending, SessionID: "cs_broken"},
		5: {ID: 5, Status: model.PaymentPaid, SessionID: "cs_old"},
		6: {ID: 6, Status: model.PaymentPending, CreatedAt: now.Add(-time.Hour)},
		7: {ID: 7, Status: model.PaymentPending, CreatedAt: now.Add(-time.Minute)},
	}}
	gw := &fakeGateway{sessions: map[string]model.SessionInfo{
		"cs_expired": {ID: "cs_expired", ExpiresAt: now.Add(-time.Minute)},
		"cs_live":    {ID: "cs_live", ExpiresAt: now.Add(time.Hour)},
		"cs_paid":    {ID: "cs_paid", Paid: true, ExpiresAt: now.Add(-time.Hour)},
		"cs_old":     {ID: "cs_old", ExpiresAt: now.Add(-time.Hour)},
	}}
	svc, rec := newTestService(repo, gw)

	sum, err := svc.ExpirationScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, Summary{Checked: 6, Expired: 2, Paid: 1, Failed: 1}, sum)
	require.Equal(t, model.PaymentExpired, repo.payments[1].Status)
	require.Equal(t, model.PaymentPending, repo.payments[2].Status)
	require.Equal(t, model.PaymentPaid, repo.payments[3].Status)
	require.Equal(t, model.PaymentPending, repo.payments[4].Status)
	require.Equal(t, model.PaymentPaid, repo.payments[5].Status)
	require.Equal(t, model.PaymentExpired, repo.payments[6].Status)
	require.Equal(t, model.PaymentPending, repo.payments[7].Status)
	require.ElementsMatch(t, []string{"Session cs_expired is expired.", "Payment 6 is expired."}, rec.texts)
	require.Len(t, rec.events, 3)

	sum, err = svc.ExpirationScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, Summary{Checked: 3, Failed: 1}, sum)
	require.Equal(t, model.PaymentExpired, repo.payments[1].Status)
	require.Len(t, rec.texts, 2)
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(&memRepo{}, &fakeGateway{})

	s, err := NewScheduler(svc, config.Jobs{OverdueSpec: "0 9 * * *", ExpirationSpec: "*/30 * * * *"}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, s.cron.Entries(), 2)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, err = NewScheduler(svc, config.Jobs{OverdueSpec: "every day", ExpirationSpec: "*/30 * * * *"}, zap.NewNop())
	require.Error(t, err)
}
