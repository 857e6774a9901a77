package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogdomain "github.com/wyfcoding/librarylending/internal/catalog/domain"
	"github.com/wyfcoding/librarylending/internal/lending/domain"
	patrondomain "github.com/wyfcoding/librarylending/internal/patron/domain"
	"github.com/wyfcoding/librarylending/pkg/db"
)

type ledgerRepository struct{ db *db.DB }

func NewLedgerRepository(database *db.DB) domain.LedgerRepository {
	return &ledgerRepository{db: database}
}

func (r *ledgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

func (r *ledgerRepository) Create(ctx context.Context, record *domain.BorrowingRecord) error {
	return r.db.Conn(ctx).Omit("Book", "Borrower").Create(record).Error
}

func (r *ledgerRepository) Update(ctx context.Context, record *domain.BorrowingRecord) error {
	return r.db.Conn(ctx).Omit("Book", "Borrower").Save(record).Error
}

func (r *ledgerRepository) GetByID(ctx context.Context, id uint) (*domain.BorrowingRecord, error) {
	var record domain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").Preload("Borrower").
		First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ledgerRepository) FindOpen(ctx context.Context, bookID, borrowerID uint) (*domain.BorrowingRecord, error) {
	var record domain.BorrowingRecord
	err := r.db.Conn(ctx).
		Where("book_id = ? AND borrower_id = ? AND return_date IS NULL", bookID, borrowerID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ledgerRepository) FindOpenBySelector(ctx context.Context, selector domain.ReturnSelector) (*domain.BorrowingRecord, error) {
	q := r.db.Conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if selector.ByRecord() {
		q = q.Where("id = ? AND return_date IS NULL", selector.RecordID)
	} else {
		q = q.Where("book_id = ? AND borrower_id = ? AND return_date IS NULL", selector.BookID, selector.BorrowerID)
	}

	var record domain.BorrowingRecord
	err := q.First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ledgerRepository) ListOpenByBorrower(ctx context.Context, borrowerID uint) ([]*domain.BorrowingRecord, error) {
	var records []*domain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").
		Where("borrower_id = ? AND return_date IS NULL", borrowerID).
		Order("checkout_date DESC, id DESC").
		Find(&records).Error
	return records, err
}

func (r *ledgerRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.BorrowingRecord, error) {
	var records []*domain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").Preload("Borrower").
		Where("return_date IS NULL AND due_date < ?", now).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

func (r *ledgerRepository) ListAll(ctx context.Context) ([]*domain.BorrowingRecord, error) {
	var records []*domain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").Preload("Borrower").
		Order("created_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

func (r *ledgerRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Conn(ctx).Model(&domain.BorrowingRecord{}).
		Where("return_date IS NULL").
		Count(&count).Error
	return count, err
}

func (r *ledgerRepository) CountOpenByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.Conn(ctx).Model(&domain.BorrowingRecord{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&count).Error
	return count, err
}

func (r *ledgerRepository) CountOpenByBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	var count int64
	err := r.db.Conn(ctx).Model(&domain.BorrowingRecord{}).
		Where("borrower_id = ? AND return_date IS NULL", borrowerID).
		Count(&count).Error
	return count, err
}

type bookStore struct{ db *db.DB }

func NewBookStore(database *db.DB) domain.BookStore {
	return &bookStore{db: database}
}

func (s *bookStore) GetByID(ctx context.Context, id uint) (*catalogdomain.Book, error) {
	var book catalogdomain.Book
	err := s.db.Conn(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *bookStore) GetForUpdate(ctx context.Context, id uint) (*catalogdomain.Book, error) {
	var book catalogdomain.Book
	err := s.db.Conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *bookStore) AdjustAvailable(ctx context.Context, bookID uint, delta int) (bool, error) {
	q := s.db.Conn(ctx).Model(&catalogdomain.Book{}).Where("id = ?", bookID)
	if delta < 0 {
		q = q.Where("available_quantity >= ?", -delta)
	} else {
		q = q.Where("available_quantity + ? <= total_quantity", delta)
	}

	res := q.UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type borrowerStore struct{ db *db.DB }

func NewBorrowerStore(database *db.DB) domain.BorrowerStore {
	return &borrowerStore{db: database}
}

func (s *borrowerStore) GetByID(ctx context.Context, id uint) (*patrondomain.Borrower, error) {
	var borrower patrondomain.Borrower
	err := s.db.Conn(ctx).First(&borrower, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}
