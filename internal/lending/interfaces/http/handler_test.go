package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/wyfcoding/librarylending/internal/catalog/domain"
	"github.com/wyfcoding/librarylending/internal/lending/application"
	"github.com/wyfcoding/librarylending/internal/lending/domain"
	patrondomain "github.com/wyfcoding/librarylending/internal/patron/domain"
)

type fakeLedger struct {
	records []*domain.BorrowingRecord
	nextID  uint
}

func (f *fakeLedger) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeLedger) Create(_ context.Context, record *domain.BorrowingRecord) error {
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	return nil
}

func (f *fakeLedger) Update(_ context.Context, _ *domain.BorrowingRecord) error { return nil }

func (f *fakeLedger) GetByID(_ context.Context, id uint) (*domain.BorrowingRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) FindOpen(_ context.Context, bookID, borrowerID uint) (*domain.BorrowingRecord, error) {
	for _, r := range f.records {
		if r.Open() && r.BookID == bookID && r.BorrowerID == borrowerID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) FindOpenBySelector(ctx context.Context, selector domain.ReturnSelector) (*domain.BorrowingRecord, error) {
	if selector.ByRecord() {
		record, err := f.GetByID(ctx, selector.RecordID)
		if err != nil || record == nil || !record.Open() {
			return nil, err
		}
		return record, nil
	}
	return f.FindOpen(ctx, selector.BookID, selector.BorrowerID)
}

func (f *fakeLedger) ListOpenByBorrower(_ context.Context, borrowerID uint) ([]*domain.BorrowingRecord, error) {
	var out []*domain.BorrowingRecord
	for _, r := range f.records {
		if r.Open() && r.BorrowerID == borrowerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListOverdue(_ context.Context, now time.Time) ([]*domain.BorrowingRecord, error) {
	var out []*domain.BorrowingRecord
	for _, r := range f.records {
		if r.Overdue(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListAll(_ context.Context) ([]*domain.BorrowingRecord, error) {
	return f.records, nil
}

func (f *fakeLedger) CountOpen(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeLedger) CountOpenByBook(_ context.Context, _ uint) (int64, error) { return 0, nil }

func (f *fakeLedger) CountOpenByBorrower(_ context.Context, _ uint) (int64, error) { return 0, nil }

type fakeBooks struct {
	books map[uint]*catalogdomain.Book
}

func (f *fakeBooks) GetByID(_ context.Context, id uint) (*catalogdomain.Book, error) {
	return f.books[id], nil
}

func (f *fakeBooks) GetForUpdate(_ context.Context, id uint) (*catalogdomain.Book, error) {
	return f.books[id], nil
}

func (f *fakeBooks) AdjustAvailable(_ context.Context, bookID uint, delta int) (bool, error) {
	book, ok := f.books[bookID]
	if !ok {
		return false, nil
	}
	next := book.AvailableQuantity + delta
	if next < 0 || next > book.TotalQuantity {
		return false, nil
	}
	book.AvailableQuantity = next
	return true, nil
}

type fakeBorrowers struct {
	borrowers map[uint]*patrondomain.Borrower
}

func (f *fakeBorrowers) GetByID(_ context.Context, id uint) (*patrondomain.Borrower, error) {
	return f.borrowers[id], nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := &fakeLedger{}
	books := &fakeBooks{books: map[uint]*catalogdomain.Book{
		1: {ID: 1, Title: "The Go Programming Language", TotalQuantity: 1, AvailableQuantity: 1},
		2: {ID: 2, Title: "Out of Stock", TotalQuantity: 1, AvailableQuantity: 0},
	}}
	borrowers := &fakeBorrowers{borrowers: map[uint]*patrondomain.Borrower{
		10: {ID: 10, Name: "Alice", Email: "alice@example.com"},
	}}

	svc := application.NewLendingService(ledger, books, borrowers, nil)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 1, "borrower_id": 10})
		require.Equal(t, http.StatusCreated, w.Code)

		var record domain.BorrowingRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, uint(1), record.BookID)
		assert.Equal(t, uint(10), record.BorrowerID)
		assert.Nil(t, record.ReturnDate)
	})

	t.Run("missing fields rejected by binding", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book maps to 404", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 999, "borrower_id": 10})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("unavailable book maps to 400", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 2, "borrower_id": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReturnEndpoint(t *testing.T) {
	t.Run("by record id", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 1, "borrower_id": 10})
		require.Equal(t, http.StatusCreated, w.Code)

		var record domain.BorrowingRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))

		w = doJSON(t, r, http.MethodPost, "/api/v1/borrowing/return", gin.H{"record_id": record.ID})
		require.Equal(t, http.StatusOK, w.Code)

		var closed domain.BorrowingRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &closed))
		assert.NotNil(t, closed.ReturnDate)
	})

	t.Run("by book and borrower pair", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 1, "borrower_id": 10})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/v1/borrowing/return", gin.H{"book_id": 1, "borrower_id": 10})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no active checkout maps to 404", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/return", gin.H{"record_id": 42})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("incomplete selector maps to 400", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/return", gin.H{"book_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCurrentBooksEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/borrowing/checkout", gin.H{"book_id": 1, "borrower_id": 10})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/borrowing/borrowers/10/current-books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records []*domain.BorrowingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/borrowing/borrowers/999/current-books", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/borrowing/borrowers/abc/current-books", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
