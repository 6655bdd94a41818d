package catalog_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	books  map[int64]model.Book
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{books: map[int64]model.Book{}}
}

func (m *memRepo) ListBooks(_ context.Context, f model.BookFilter) ([]model.Book, error) {
	var out []model.Book
	for _, b := range m.books {
		if f.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Author)) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetBook(_ context.Context, id int64) (model.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return b, nil
}

func (m *memRepo) CreateBook(_ context.Context, b model.Book) (model.Book, error) {
	m.nextID++
	b.ID = m.nextID
	m.books[b.ID] = b
	return b, nil
}

func (m *memRepo) DeleteBook(_ context.Context, id int64) error {
	if _, ok := m.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	valid := model.Book{Title: "Dune", Author: "Frank Herbert", Cover: model.CoverHard, Inventory: 3, DailyFee: decimal.RequireFromString("1.505")}

	tests := []struct {
		name    string
		mutate  func(b *model.Book)
		wantErr error
	}{
		{name: "ok", mutate: func(*model.Book) {}},
		{name: "bad cover", mutate: func(b *model.Book) { b.Cover = "Leather" }, wantErr: errs.ErrValidation},
		{name: "negative inventory", mutate: func(b *model.Book) { b.Inventory = -1 }, wantErr: errs.ErrValidation},
		{name: "negative fee", mutate: func(b *model.Book) { b.DailyFee = decimal.NewFromInt(-1) }, wantErr: errs.ErrValidation},
		{name: "no title", mutate: func(b *model.Book) { b.Title = "" }, wantErr: errs.ErrValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := catalog.NewService(newMemRepo(), zap.NewNop())
			b := valid
			tt.mutate(&b)

			got, err := svc.CreateBook(context.Background(), b)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(1), got.ID)
			require.Equal(t, "1.51", got.DailyFee.StringFixed(2))
		})
	}
}

func TestService_ListGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := catalog.NewService(newMemRepo(), zap.NewNop())
	for _, b := range []model.Book{
		{Title: "Dune", Author: "Frank Herbert", Cover: model.CoverHard, Inventory: 1},
		{Title: "Children of Dune", Author: "Frank Herbert", Cover: model.CoverSoft, Inventory: 1},
		{Title: "Solaris", Author: "Stanislaw Lem", Cover: model.CoverSoft, Inventory: 1},
	} {
		_, err := svc.CreateBook(ctx, b)
		require.NoError(t, err)
	}

	books, err := svc.ListBooks(ctx, model.BookFilter{Title: "dune"})
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.Equal(t, int64(1), books[0].ID)

	books, err = svc.ListBooks(ctx, model.BookFilter{Author: "LEM"})
	require.NoError(t, err)
	require.Len(t, books, 1)

	require.NoError(t, svc.DeleteBook(ctx, 3))
	_, err = svc.GetBook(ctx, 3)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, svc.DeleteBook(ctx, 3), errs.ErrNotFound)
}
