package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func exact(s string) string {
	return regexp.QuoteMeta(s)
}

const (
	decrementSQL  = "UPDATE books SET inventory = inventory - 1 WHERE id = $1 AND inventory > 0"
	bookExistsSQL = "select exists(select 1 from books where id = $1)"
)

func TestTx_DecrementInventory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mock    func(m pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "in stock",
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec(exact(decrementSQL)).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "out of stock",
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec(exact(decrementSQL)).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				m.ExpectQuery(exact(bookExistsSQL)).WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: errs.ErrInsufficientInventory,
		},
		{
			name: "unknown book",
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec(exact(decrementSQL)).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				m.ExpectQuery(exact(bookExistsSQL)).WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec(exact(decrementSQL)).WithArgs(int64(7)).WillReturnError(errors.New("conn reset"))
			},
			wantErr: errors.New("DecrementInventory: conn reset"),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.mock(mock)
			tx := &txRepository{q: mock, log: zap.NewNop()}

			err := tx.DecrementInventory(context.Background(), 7)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, errs.ErrNotFound), errors.Is(tt.wantErr, errs.ErrInsufficientInventory):
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.EqualError(t, err, tt.wantErr.Error())
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTx_IncrementInventory(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	const q = "UPDATE books SET inventory = inventory + 1 WHERE id = $1"
	mock.ExpectExec(exact(q)).WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(exact(q)).WithArgs(int64(8)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	tx := &txRepository{q: mock, log: zap.NewNop()}

	require.NoError(t, tx.IncrementInventory(context.Background(), 7))
	require.ErrorIs(t, tx.IncrementInventory(context.Background(), 8), errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_LockUser(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	mock.ExpectExec(exact("select pg_advisory_xact_lock($1::bigint)")).WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	tx := &txRepository{q: mock, log: zap.NewNop()}

	require.NoError(t, tx.LockUser(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_MarkReturned(t *testing.T) {
	t.Parallel()
	date := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	owner := int64(5)
	const (
		updateOwnSQL = "UPDATE borrowings SET actual_return = $1 WHERE (id = $2 AND user_id = $3) AND actual_return IS NULL returning"
		countOwnSQL  = "SELECT count(*) FROM borrowings WHERE (id = $1 AND user_id = $2)"
		updateAnySQL = "UPDATE borrowings SET actual_return = $1 WHERE (id = $2) AND actual_return IS NULL returning"
		countAnySQL  = "SELECT count(*) FROM borrowings WHERE (id = $1)"
	)
	tests := []struct {
		name    string
		owner   *int64
		mock    func(m pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name:  "already returned",
			owner: &owner,
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(exact(updateOwnSQL)).WithArgs(date, int64(3), owner).
					WillReturnRows(pgxmock.NewRows(borrowingColumns))
				m.ExpectQuery(exact(countOwnSQL)).WithArgs(int64(3), owner).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
			},
			wantErr: errs.ErrAlreadyReturned,
		},
		{
			name:  "someone else's borrowing",
			owner: &owner,
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(exact(updateOwnSQL)).WithArgs(date, int64(3), owner).
					WillReturnRows(pgxmock.NewRows(borrowingColumns))
				m.ExpectQuery(exact(countOwnSQL)).WithArgs(int64(3), owner).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "staff, unknown borrowing",
			mock: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(exact(updateAnySQL)).WithArgs(date, int64(3)).
					WillReturnRows(pgxmock.NewRows(borrowingColumns))
				m.ExpectQuery(exact(countAnySQL)).WithArgs(int64(3)).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
			},
			wantErr: errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.mock(mock)
			tx := &txRepository{q: mock, log: zap.NewNop()}

			_, err := tx.MarkReturned(context.Background(), 3, tt.owner, date)
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_TransitionPayment(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	const q = "UPDATE payments SET status = $1 WHERE id = $2 AND status = $3"
	mock.ExpectExec(exact(q)).WithArgs(model.PaymentPaid, int64(9), model.PaymentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(exact(q)).WithArgs(model.PaymentPaid, int64(9), model.PaymentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	r := &repository{db: mock, log: zap.NewNop()}

	ok, err := r.TransitionPayment(context.Background(), 9, model.PaymentPending, model.PaymentPaid)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.TransitionPayment(context.Background(), 9, model.PaymentPending, model.PaymentPaid)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AttachSession(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	const q = "UPDATE payments SET session_id = $1, session_url = $2 WHERE id = $3 AND status = $4 AND session_id = $5"
	mock.ExpectExec(exact(q)).WithArgs("cs_1", "https://pay/cs_1", int64(9), model.PaymentPending, "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	r := &repository{db: mock, log: zap.NewNop()}

	ok, err := r.AttachSession(context.Background(), 9, "cs_1", "https://pay/cs_1")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RenewPaymentRequiresExpired(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	const q = "UPDATE payments SET status = $1, session_id = $2, session_url = $3 WHERE id = $4 AND status = $5"
	mock.ExpectExec(exact(q)).
		WithArgs(model.PaymentPending, "cs_2", "https://pay/cs_2", int64(9), model.PaymentExpired).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	r := &repository{db: mock, log: zap.NewNop()}

	_, err := r.RenewPayment(context.Background(), 9, "cs_2", "https://pay/cs_2")
	require.ErrorIs(t, err, errs.ErrNoneToRenew)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPaymentBySessionEmpty(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	r := &repository{db: mock, log: zap.NewNop()}

	_, err := r.GetPaymentBySession(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
