package kafka

import "time"

type EventType string

const (
	EventBorrowingCreated  EventType = "BORROWING_CREATED"
	EventBorrowingReturned EventType = "BORROWING_RETURNED"
	EventPaymentCreated    EventType = "PAYMENT_CREATED"
	EventPaymentPaid       EventType = "PAYMENT_PAID"
	EventPaymentExpired    EventType = "PAYMENT_EXPIRED"
)

type LendingEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      int64     `json:"userId"`
	BorrowingID int64     `json:"borrowingId"`
	BookID      int64     `json:"bookId,omitempty"`
	PaymentID   int64     `json:"paymentId,omitempty"`
	Amount      string    `json:"amount,omitempty"`
}

type NotificationMessage struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
