package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Cover string

const (
	CoverHard Cover = "Hard"
	CoverSoft Cover = "Soft"
)

type Book struct {
	ID        int64           `json:"id" db:"id"`
	Title     string          `json:"title" db:"title" validate:"required,max=256"`
	Author    string          `json:"author" db:"author" validate:"required,max=256"`
	Cover     Cover           `json:"cover" db:"cover" validate:"required,oneof=Hard Soft"`
	Inventory int             `json:"inventory" db:"inventory" validate:"gte=0"`
	DailyFee  decimal.Decimal `json:"dailyFee" db:"daily_fee" validate:"gte=0"`
}

type BookFilter struct {
	Title  string
	Author string
}

type Borrowing struct {
	ID             int64      `json:"id" db:"id"`
	BorrowDate     time.Time  `json:"borrowDate" db:"borrow_date"`
	ExpectedReturn time.Time  `json:"expectedReturn" db:"expected_return"`
	ActualReturn   *time.Time `json:"actualReturn" db:"actual_return"`
	BookID         int64      `json:"bookId" db:"book_id"`
	UserID         int64      `json:"userId" db:"user_id"`
	UserName       string     `json:"username" db:"username"`
}

func (b Borrowing) IsActive() bool {
	return b.ActualReturn == nil
}

// BorrowingDetail is a borrowing joined with its book.
type BorrowingDetail struct {
	Borrowing `json:",inline"`
	IsActive  bool     `json:"isActive"`
	Book      Book     `json:"book"`
	Payment   *Payment `json:"payment,omitempty"`
}

func NewBorrowingDetail(b Borrowing, book Book) BorrowingDetail {
	return BorrowingDetail{Borrowing: b, IsActive: b.IsActive(), Book: book}
}

type BorrowingFilter struct {
	// IsActive keeps only borrowings that are not returned yet.
	IsActive bool
	UserIDs  []int64
}

type CreateBorrowingRequest struct {
	BookID         int64 `json:"bookId" validate:"required,gt=0"`
	ExpectedReturn Date  `json:"expectedReturn" validate:"required"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

type Payment struct {
	ID          int64           `json:"id" db:"id"`
	Status      PaymentStatus   `json:"status" db:"status"`
	Type        PaymentType     `json:"type" db:"type"`
	BorrowingID int64           `json:"borrowingId" db:"borrowing_id"`
	SessionURL  string          `json:"sessionUrl" db:"session_url"`
	SessionID   string          `json:"sessionId" db:"session_id"`
	MoneyToPay  decimal.Decimal `json:"moneyToPay" db:"money_to_pay"`
	CreatedAt   time.Time       `json:"-" db:"created_at"`
	UserID      int64           `json:"userId" db:"user_id"`
}

// Opened reports whether a gateway session is attached.
func (p Payment) Opened() bool {
	return p.SessionID != ""
}

// OverdueBorrowing is the projection the overdue scan reports on.
type OverdueBorrowing struct {
	BorrowingID    int64     `db:"id"`
	BookTitle      string    `db:"title"`
	UserName       string    `db:"username"`
	ExpectedReturn time.Time `db:"expected_return"`
}

type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

// Today truncates t to a UTC calendar day.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CheckoutRequest struct {
	AmountCents int64
	Description string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionInfo struct {
	ID            string
	PaymentStatus string
	Paid          bool
	ExpiresAt     time.Time
	AmountTotal   int64
}

func (s SessionInfo) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}
