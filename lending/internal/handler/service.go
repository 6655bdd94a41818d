package handler

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service/borrowing"
	"github.com/Astemirdum/lending-service/lending/internal/service/catalog"
	"github.com/Astemirdum/lending-service/lending/internal/service/payment"
	"github.com/Astemirdum/lending-service/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type BorrowingService interface {
	CreateBorrowing(ctx context.Context, id auth.Identity, req model.CreateBorrowingRequest) (model.BorrowingDetail, error)
	ReturnBorrowing(ctx context.Context, id auth.Identity, borrowingID int64) (model.BorrowingDetail, error)
	ListBorrowings(ctx context.Context, id auth.Identity, filter model.BorrowingFilter) ([]model.BorrowingDetail, error)
	GetBorrowing(ctx context.Context, id auth.Identity, borrowingID int64) (model.BorrowingDetail, error)
}

type PaymentService interface {
	Confirm(ctx context.Context, sessionID string) (model.Payment, error)
	Cancel(ctx context.Context, sessionID string) (model.Payment, error)
	Renew(ctx context.Context, id auth.Identity) (model.Payment, error)
	ListPayments(ctx context.Context, id auth.Identity) ([]model.Payment, error)
	GetPayment(ctx context.Context, id auth.Identity, paymentID int64) (model.Payment, error)
}

type IdempotencyStore interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

var (
	_ CatalogService   = (*catalog.Service)(nil)
	_ BorrowingService = (*borrowing.Service)(nil)
	_ PaymentService   = (*payment.Service)(nil)
)
