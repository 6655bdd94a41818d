package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type txRepository struct {
	q   querier
	log *zap.Logger
}

// LockUser serialises borrowing creation per user until the transaction ends.
func (t *txRepository) LockUser(ctx context.Context, userID int64) error {
	_, err := t.q.Exec(ctx, `select pg_advisory_xact_lock($1::bigint)`, userID)
	return errors.Wrap(err, "LockUser")
}

func (t *txRepository) HasPendingPayment(ctx context.Context, userID int64) (bool, error) {
	const q = `
	select exists(
		select 1 from payments p
		join borrowings b on b.id = p.borrowing_id
		where b.user_id = @user_id and p.status = @status
	)`
	var exists bool
	err := t.q.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "status": model.PaymentPending}).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "HasPendingPayment")
	}
	return exists, nil
}

func (t *txRepository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return getBook(ctx, t.q, id)
}

// DecrementInventory is a single compare-and-decrement; it never takes inventory below zero.
func (t *txRepository) DecrementInventory(ctx context.Context, bookID int64) error {
	query, args, err := qb.Update(booksTableName).
		Set("inventory", sq.Expr("inventory - 1")).
		Where(sq.Eq{"id": bookID}).
		Where("inventory > 0").
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "DecrementInventory")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := t.q.QueryRow(ctx, `select exists(select 1 from books where id = $1)`, bookID).Scan(&exists); err != nil {
		return errors.Wrap(err, "DecrementInventory lookup")
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrInsufficientInventory
}

func (t *txRepository) IncrementInventory(ctx context.Context, bookID int64) error {
	query, args, err := qb.Update(booksTableName).
		Set("inventory", sq.Expr("inventory + 1")).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "IncrementInventory")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (t *txRepository) InsertBorrowing(ctx context.Context, b model.Borrowing) (model.Borrowing, error) {
	query, args, err := qb.Insert(borrowingsTableName).
		Columns("borrow_date", "expected_return", "book_id", "user_id", "username").
		Values(b.BorrowDate, b.ExpectedReturn, b.BookID, b.UserID, b.UserName).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	if err := t.q.QueryRow(ctx, query, args...).Scan(&b.ID); err != nil {
		t.log.Error("InsertBorrowing", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Borrowing{}, mapPgError(err)
	}
	return b, nil
}

// MarkReturned sets actual_return once. ownerID restricts the update to that user's borrowing.
func (t *txRepository) MarkReturned(ctx context.Context, borrowingID int64, ownerID *int64, date time.Time) (model.Borrowing, error) {
	where := sq.And{sq.Eq{"id": borrowingID}}
	if ownerID != nil {
		where = append(where, sq.Eq{"user_id": *ownerID})
	}
	query, args, err := qb.Update(borrowingsTableName).
		Set("actual_return", date).
		Where(where).
		Where(sq.Eq{"actual_return": nil}).
		Suffix("returning " + strings.Join(borrowingColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return model.Borrowing{}, errors.Wrap(err, "MarkReturned")
	}
	b, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrowing])
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Borrowing{}, mapPgError(err)
	}

	query, args, err = qb.Select("count(*)").From(borrowingsTableName).Where(where).ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var n int
	if err := t.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return model.Borrowing{}, errors.Wrap(err, "MarkReturned lookup")
	}
	if n == 0 {
		return model.Borrowing{}, errs.ErrNotFound
	}
	return model.Borrowing{}, errs.ErrAlreadyReturned
}

// InsertPayment stores a payment before its gateway session exists; the session is attached after commit.
func (t *txRepository) InsertPayment(ctx context.Context, p model.Payment) (model.Payment, error) {
	query, args, err := qb.Insert(paymentsTableName).
		Columns("status", "type", "borrowing_id", "session_url", "session_id", "money_to_pay").
		Values(p.Status, p.Type, p.BorrowingID, p.SessionURL, p.SessionID, p.MoneyToPay).
		Suffix("returning id, created_at").
		ToSql()
	if err != nil {
		return model.Payment{}, err
	}
	if err := t.q.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		t.log.Error("InsertPayment", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Payment{}, mapPgError(err)
	}
	return p, nil
}
