package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	GetBorrowing(ctx context.Context, id int64) (model.BorrowingDetail, error)
	ListBorrowings(ctx context.Context, filter model.BorrowingFilter) ([]model.BorrowingDetail, error)
	ListOverdue(ctx context.Context, today time.Time) ([]model.OverdueBorrowing, error)

	GetPayment(ctx context.Context, id int64) (model.Payment, error)
	GetPaymentBySession(ctx context.Context, sessionID string) (model.Payment, error)
	ListPayments(ctx context.Context, userID int64) ([]model.Payment, error)
	ListPendingPayments(ctx context.Context) ([]model.Payment, error)
	LatestExpiredPayment(ctx context.Context, userID int64) (model.Payment, error)
	TransitionPayment(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
	AttachSession(ctx context.Context, id int64, sessionID, sessionURL string) (bool, error)
	RenewPayment(ctx context.Context, id int64, sessionID, sessionURL string) (model.Payment, error)

	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx holds the operations that must share one transaction.
type Tx interface {
	LockUser(ctx context.Context, userID int64) error
	HasPendingPayment(ctx context.Context, userID int64) (bool, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	DecrementInventory(ctx context.Context, bookID int64) error
	IncrementInventory(ctx context.Context, bookID int64) error
	InsertBorrowing(ctx context.Context, b model.Borrowing) (model.Borrowing, error)
	MarkReturned(ctx context.Context, borrowingID int64, ownerID *int64, date time.Time) (model.Borrowing, error)
	InsertPayment(ctx context.Context, p model.Payment) (model.Payment, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type repository struct {
	db  pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName      = `books`
	borrowingsTableName = `borrowings`
	paymentsTableName   = `payments`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	bookColumns      = []string{"id", "title", "author", "cover", "inventory", "daily_fee"}
	borrowingColumns = []string{"id", "borrow_date", "expected_return", "actual_return", "book_id", "user_id", "username"}
	paymentColumns   = []string{"p.id", "p.status", "p.type", "p.borrowing_id", "p.session_url", "p.session_id", "p.money_to_pay", "p.created_at", "b.user_id"}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

func (r *repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&txRepository{q: tx, log: r.log})
	})
}

func booksQuery(filter model.BookFilter) sq.SelectBuilder {
	q := qb.Select(bookColumns...).Distinct().From(booksTableName)
	if filter.Title != "" {
		q = q.Where(sq.ILike{"title": "%" + likeEscaper.Replace(filter.Title) + "%"})
	}
	if filter.Author != "" {
		q = q.Where(sq.ILike{"author": "%" + likeEscaper.Replace(filter.Author) + "%"})
	}
	return q.OrderBy("id")
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	query, args, err := booksQuery(filter).ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListBooks")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return getBook(ctx, r.db, id)
}

func getBook(ctx context.Context, q querier, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "GetBook")
	}
	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "cover", "inventory", "daily_fee").
		Values(book.Title, book.Author, book.Cover, book.Inventory, book.DailyFee).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&book.ID); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Book{}, mapPgError(err)
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `delete from books where id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "DeleteBook")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type borrowingRow struct {
	model.Borrowing
	Title     string          `db:"title"`
	Author    string          `db:"author"`
	Cover     string          `db:"cover"`
	Inventory int             `db:"inventory"`
	DailyFee  decimal.Decimal `db:"daily_fee"`
}

func (row borrowingRow) detail() model.BorrowingDetail {
	return model.NewBorrowingDetail(row.Borrowing, model.Book{
		ID:        row.BookID,
		Title:     row.Title,
		Author:    row.Author,
		Cover:     model.Cover(row.Cover),
		Inventory: row.Inventory,
		DailyFee:  row.DailyFee,
	})
}

func borrowingDetailQuery() sq.SelectBuilder {
	return qb.Select(
		"br.id", "br.borrow_date", "br.expected_return", "br.actual_return", "br.book_id", "br.user_id", "br.username",
		"bk.title", "bk.author", "bk.cover", "bk.inventory", "bk.daily_fee",
	).
		From(borrowingsTableName + " br").
		Join(booksTableName + " bk on bk.id = br.book_id")
}

func (r *repository) GetBorrowing(ctx context.Context, id int64) (model.BorrowingDetail, error) {
	query, args, err := borrowingDetailQuery().Where(sq.Eq{"br.id": id}).ToSql()
	if err != nil {
		return model.BorrowingDetail{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BorrowingDetail{}, errors.Wrap(err, "GetBorrowing")
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[borrowingRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BorrowingDetail{}, errs.ErrNotFound
		}
		return model.BorrowingDetail{}, err
	}
	return row.detail(), nil
}

func (r *repository) ListBorrowings(ctx context.Context, filter model.BorrowingFilter) ([]model.BorrowingDetail, error) {
	q := borrowingDetailQuery()
	if filter.IsActive {
		q = q.Where(sq.Eq{"br.actual_return": nil})
	}
	if len(filter.UserIDs) > 0 {
		q = q.Where(sq.Eq{"br.user_id": filter.UserIDs})
	}
	query, args, err := q.OrderBy("br.id").ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBorrowings", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListBorrowings")
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[borrowingRow])
	if err != nil {
		return nil, err
	}
	items := make([]model.BorrowingDetail, 0, len(list))
	for _, row := range list {
		items = append(items, row.detail())
	}
	return items, nil
}

func (r *repository) ListOverdue(ctx context.Context, today time.Time) ([]model.OverdueBorrowing, error) {
	const q = `
	select br.id, bk.title, br.username, br.expected_return
	from borrowings br
	join books bk on bk.id = br.book_id
	where br.expected_return <= @today and br.actual_return is null
	order by br.expected_return, br.id`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"today": today})
	if err != nil {
		return nil, errors.Wrap(err, "ListOverdue")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.OverdueBorrowing])
}

func paymentQuery() sq.SelectBuilder {
	return qb.Select(paymentColumns...).
		From(paymentsTableName + " p").
		Join(borrowingsTableName + " b on b.id = p.borrowing_id")
}

func (r *repository) getPayment(ctx context.Context, where sq.Sqlizer) (model.Payment, error) {
	query, args, err := paymentQuery().Where(where).ToSql()
	if err != nil {
		return model.Payment{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Payment{}, errors.Wrap(err, "getPayment")
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Payment{}, errs.ErrNotFound
		}
		return model.Payment{}, err
	}
	return p, nil
}

func (r *repository) GetPayment(ctx context.Context, id int64) (model.Payment, error) {
	return r.getPayment(ctx, sq.Eq{"p.id": id})
}

// GetPaymentBySession never matches payments whose session is not opened yet.
func (r *repository) GetPaymentBySession(ctx context.Context, sessionID string) (model.Payment, error) {
	if sessionID == "" {
		return model.Payment{}, errs.ErrNotFound
	}
	return r.getPayment(ctx, sq.Eq{"p.session_id": sessionID})
}

func (r *repository) listPayments(ctx context.Context, where sq.Sqlizer) ([]model.Payment, error) {
	q := paymentQuery()
	if where != nil {
		q = q.Where(where)
	}
	query, args, err := q.OrderBy("p.id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listPayments")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Payment])
}

// ListPayments returns every payment when userID is zero.
func (r *repository) ListPayments(ctx context.Context, userID int64) ([]model.Payment, error) {
	if userID == 0 {
		return r.listPayments(ctx, nil)
	}
	return r.listPayments(ctx, sq.Eq{"b.user_id": userID})
}

func (r *repository) ListPendingPayments(ctx context.Context) ([]model.Payment, error) {
	return r.listPayments(ctx, sq.Eq{"p.status": model.PaymentPending})
}

func (r *repository) LatestExpiredPayment(ctx context.Context, userID int64) (model.Payment, error) {
	query, args, err := paymentQuery().
		Where(sq.Eq{"b.user_id": userID, "p.status": model.PaymentExpired}).
		OrderBy("p.id desc").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Payment{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Payment{}, errors.Wrap(err, "LatestExpiredPayment")
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Payment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Payment{}, errs.ErrNotFound
		}
		return model.Payment{}, err
	}
	return p, nil
}

func (r *repository) updatePayment(ctx context.Context, op string, q sq.UpdateBuilder) (bool, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, op)
	}
	return tag.RowsAffected() == 1, nil
}

// TransitionPayment moves a payment between statuses only if it is still in from.
func (r *repository) TransitionPayment(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	return r.updatePayment(ctx, "TransitionPayment", qb.Update(paymentsTableName).
		Set("status", to).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": from}))
}

// AttachSession fills the session of a PENDING payment that has none yet.
func (r *repository) AttachSession(ctx context.Context, id int64, sessionID, sessionURL string) (bool, error) {
	return r.updatePayment(ctx, "AttachSession", qb.Update(paymentsTableName).
		Set("session_id", sessionID).
		Set("session_url", sessionURL).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": model.PaymentPending}).
		Where(sq.Eq{"session_id": ""}))
}

// RenewPayment reopens an EXPIRED payment with a new session.
func (r *repository) RenewPayment(ctx context.Context, id int64, sessionID, sessionURL string) (model.Payment, error) {
	ok, err := r.updatePayment(ctx, "RenewPayment", qb.Update(paymentsTableName).
		Set("status", model.PaymentPending).
		Set("session_id", sessionID).
		Set("session_url", sessionURL).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": model.PaymentExpired}))
	if err != nil {
		return model.Payment{}, err
	}
	if !ok {
		return model.Payment{}, errs.ErrNoneToRenew
	}
	return r.GetPayment(ctx, id)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		return errors.Wrap(errs.ErrNotFound, pgErr.ConstraintName)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
		return errors.Wrap(errs.ErrValidation, pgErr.Message)
	}
	return err
}
