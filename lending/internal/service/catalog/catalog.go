package catalog

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type Service struct {
	log  *zap.Logger
	repo Repository
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log.Named("catalog"),
		repo: repo,
	}
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, filter)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	if err := checkBook(book); err != nil {
		return model.Book{}, err
	}
	book.DailyFee = book.DailyFee.Round(2)
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book created", zap.Int64("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// DeleteBook also removes the book's borrowings and their payments.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.log.Info("book deleted", zap.Int64("id", id))
	return nil
}

func checkBook(b model.Book) error {
	switch {
	case b.Title == "" || b.Author == "":
		return errors.Wrap(errs.ErrValidation, "title and author are required")
	case b.Cover != model.CoverHard && b.Cover != model.CoverSoft:
		return errors.Wrapf(errs.ErrValidation, "cover %q is not one of Hard, Soft", b.Cover)
	case b.Inventory < 0:
		return errors.Wrap(errs.ErrValidation, "inventory must not be negative")
	case b.DailyFee.IsNegative():
		return errors.Wrap(errs.ErrValidation, "daily fee must not be negative")
	}
	return nil
}
