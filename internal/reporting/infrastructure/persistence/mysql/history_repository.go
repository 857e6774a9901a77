package mysql

import (
	"context"
	"time"

	lendingdomain "github.com/wyfcoding/librarylending/internal/lending/domain"
	"github.com/wyfcoding/librarylending/internal/reporting/domain"
	"github.com/wyfcoding/librarylending/pkg/db"
)

type historyRepository struct{ db *db.DB }

func NewHistoryRepository(database *db.DB) domain.HistoryRepository {
	return &historyRepository{db: database}
}

func (r *historyRepository) ListOverdueCheckedOutBetween(ctx context.Context, now, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error) {
	var records []*lendingdomain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").Preload("Borrower").
		Where("return_date IS NULL AND due_date < ? AND checkout_date >= ? AND checkout_date < ?", now, start, end).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

func (r *historyRepository) ListCheckedOutBetween(ctx context.Context, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error) {
	var records []*lendingdomain.BorrowingRecord
	err := r.db.Conn(ctx).
		Preload("Book").Preload("Borrower").
		Where("checkout_date >= ? AND checkout_date < ?", start, end).
		Order("checkout_date DESC, id DESC").
		Find(&records).Error
	return records, err
}
