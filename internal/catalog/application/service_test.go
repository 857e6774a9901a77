package application

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/librarylending/internal/catalog/domain"
)

type memoryBookRepo struct {
	books  map[uint]*domain.Book
	nextID uint

	// beforeTx 模拟在事务取得行锁前提交的并发写入
	beforeTx func()
}

func newMemoryBookRepo() *memoryBookRepo {
	return &memoryBookRepo{books: map[uint]*domain.Book{}}
}

func (m *memoryBookRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.beforeTx != nil {
		m.beforeTx()
	}
	return fn(ctx)
}

func (m *memoryBookRepo) GetForUpdate(ctx context.Context, id uint) (*domain.Book, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryBookRepo) Save(_ context.Context, book *domain.Book) error {
	if book.ID == 0 {
		m.nextID++
		book.ID = m.nextID
	}
	m.books[book.ID] = book
	return nil
}

func (m *memoryBookRepo) GetByID(_ context.Context, id uint) (*domain.Book, error) {
	return m.books[id], nil
}

func (m *memoryBookRepo) GetByISBN(_ context.Context, isbn string) (*domain.Book, error) {
	for _, b := range m.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memoryBookRepo) List(_ context.Context) ([]*domain.Book, error) {
	var out []*domain.Book
	for _, b := range m.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryBookRepo) Search(_ context.Context, query string) ([]*domain.Book, error) {
	q := strings.ToLower(query)
	var out []*domain.Book
	for _, b := range m.books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryBookRepo) Delete(_ context.Context, id uint) error {
	delete(m.books, id)
	return nil
}

type stubLoanCounter struct {
	open map[uint]int64
}

func (s *stubLoanCounter) CountOpenByBook(_ context.Context, bookID uint) (int64, error) {
	return s.open[bookID], nil
}

func newCatalogTestService() (*CatalogService, *memoryBookRepo, *stubLoanCounter) {
	repo := newMemoryBookRepo()
	loans := &stubLoanCounter{open: map[uint]int64{}}
	return NewCatalogService(repo, loans), repo, loans
}

func TestRegisterBook(t *testing.T) {
	ctx := context.Background()

	t.Run("new book starts fully available", func(t *testing.T) {
		svc, _, _ := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{
			Title:         "The Go Programming Language",
			Author:        "Donovan & Kernighan",
			ISBN:          "978-0134190440",
			TotalQuantity: 3,
			ShelfLocation: "A-12",
		})
		require.NoError(t, err)
		assert.NotZero(t, book.ID)
		assert.Equal(t, 3, book.TotalQuantity)
		assert.Equal(t, 3, book.AvailableQuantity)
	})

	t.Run("duplicate ISBN leaves catalog unchanged", func(t *testing.T) {
		svc, repo, _ := newCatalogTestService()

		_, err := svc.Register(ctx, RegisterBookCommand{Title: "First", ISBN: "978-1", TotalQuantity: 1})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterBookCommand{Title: "Second", ISBN: "978-1", TotalQuantity: 1})
		assert.ErrorIs(t, err, domain.ErrISBNTaken)
		assert.Len(t, repo.books, 1)
	})
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogTestService()

	book, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 1})
	require.NoError(t, err)

	got, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }
	intPtr := func(n int) *int { return &n }

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc, _, _ := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{
			Title: "Old Title", Author: "Author", ISBN: "978-1", TotalQuantity: 2, ShelfLocation: "A-1",
		})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, book.ID, UpdateBookCommand{Title: strPtr("New Title")})
		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "Author", updated.Author)
		assert.Equal(t, "978-1", updated.ISBN)
	})

	t.Run("changing ISBN to a taken one fails", func(t *testing.T) {
		svc, _, _ := newCatalogTestService()

		_, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 1})
		require.NoError(t, err)
		second, err := svc.Register(ctx, RegisterBookCommand{Title: "Two", ISBN: "978-2", TotalQuantity: 1})
		require.NoError(t, err)

		_, err = svc.Update(ctx, second.ID, UpdateBookCommand{ISBN: strPtr("978-1")})
		assert.ErrorIs(t, err, domain.ErrISBNTaken)
	})

	t.Run("quantity change rederives availability from open loans", func(t *testing.T) {
		svc, _, loans := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 5})
		require.NoError(t, err)
		loans.open[book.ID] = 3

		updated, err := svc.Update(ctx, book.ID, UpdateBookCommand{TotalQuantity: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.TotalQuantity)
		assert.Equal(t, 1, updated.AvailableQuantity)

		// 总量降到在借数量以下时可借数量下限为 0
		updated, err = svc.Update(ctx, book.ID, UpdateBookCommand{TotalQuantity: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.TotalQuantity)
		assert.Equal(t, 0, updated.AvailableQuantity)
	})

	t.Run("metadata update keeps a concurrent availability change", func(t *testing.T) {
		svc, repo, _ := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 1})
		require.NoError(t, err)

		// 借出在更新事务取得行锁前提交，锁内读必须看到 available=0
		repo.beforeTx = func() {
			repo.books[book.ID].AvailableQuantity = 0
		}

		updated, err := svc.Update(ctx, book.ID, UpdateBookCommand{Title: strPtr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, 0, updated.AvailableQuantity)
		assert.Equal(t, 0, repo.books[book.ID].AvailableQuantity)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _, _ := newCatalogTestService()

		_, err := svc.Update(ctx, 999, UpdateBookCommand{Title: strPtr("X")})
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestRemoveBook(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an idle book", func(t *testing.T) {
		svc, repo, _ := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 1})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, book.ID))
		assert.Empty(t, repo.books)
	})

	t.Run("blocked while copies are on loan", func(t *testing.T) {
		svc, repo, loans := newCatalogTestService()

		book, err := svc.Register(ctx, RegisterBookCommand{Title: "One", ISBN: "978-1", TotalQuantity: 1})
		require.NoError(t, err)
		loans.open[book.ID] = 1

		err = svc.Remove(ctx, book.ID)
		assert.ErrorIs(t, err, domain.ErrBookOnLoan)
		assert.Len(t, repo.books, 1)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _, _ := newCatalogTestService()

		assert.ErrorIs(t, svc.Remove(ctx, 999), domain.ErrBookNotFound)
	})
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogTestService()

	_, err := svc.Register(ctx, RegisterBookCommand{Title: "The Go Programming Language", Author: "Donovan", ISBN: "978-0134190440", TotalQuantity: 1})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterBookCommand{Title: "Effective Java", Author: "Bloch", ISBN: "978-0134685991", TotalQuantity: 1})
	require.NoError(t, err)

	results, err := svc.Search(ctx, "go programming")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Go Programming Language", results[0].Title)

	results, err = svc.Search(ctx, "978-0134")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
