// Package fee computes what a borrowing costs, in integer cents.
package fee

import (
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/shopspring/decimal"
)

const FineMultiplier = 2

type Breakdown struct {
	BorrowedDays int64
	OverdueDays  int64
	BaseCents    int64
	FineCents    int64
}

func (b Breakdown) TotalCents() int64 {
	return b.BaseCents + b.FineCents
}

func (b Breakdown) Overdue() bool {
	return b.OverdueDays > 0
}

// Compute applies the daily fee to the borrowed period and, when the book came
// back after expected_return, the doubled fee to every overdue day.
func Compute(b model.Borrowing, dailyFee decimal.Decimal) Breakdown {
	feeCents := ToCents(dailyFee)
	out := Breakdown{
		BorrowedDays: days(b.BorrowDate, b.ExpectedReturn),
	}
	out.BaseCents = feeCents * out.BorrowedDays
	if b.ActualReturn != nil && b.ActualReturn.After(b.ExpectedReturn) {
		out.OverdueDays = days(b.ExpectedReturn, *b.ActualReturn)
		out.FineCents = feeCents * FineMultiplier * out.OverdueDays
	}
	return out
}

// AmountCents is what a payment of the given type charges.
func AmountCents(b Breakdown, typ model.PaymentType) int64 {
	if typ == model.PaymentTypeFine {
		return b.FineCents
	}
	return b.TotalCents()
}

func Describe(title string, b Breakdown, typ model.PaymentType) string {
	if typ == model.PaymentTypeFine {
		return fmt.Sprintf("Fine for overdue borrowing of %s: %d day(s), %s",
			title, b.OverdueDays, FromCents(b.FineCents).StringFixed(2))
	}
	if b.Overdue() {
		return fmt.Sprintf("Payment for borrowing of %s consists of expected fee - %s and overdue fee - %s",
			title, FromCents(b.BaseCents).StringFixed(2), FromCents(b.FineCents).StringFixed(2))
	}
	return fmt.Sprintf("Payment for borrowing of %s is %s", title, FromCents(b.TotalCents()).StringFixed(2))
}

func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func days(from, to time.Time) int64 {
	d := model.Today(to).Sub(model.Today(from)).Hours() / 24
	if d < 0 {
		return 0
	}
	return int64(d)
}
