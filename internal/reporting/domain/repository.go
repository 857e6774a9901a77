package domain

import (
	"context"
	"time"

	lendingdomain "github.com/wyfcoding/librarylending/internal/lending/domain"
)

// HistoryRepository 借阅台账的只读报表视角
type HistoryRepository interface {
	// ListOverdueCheckedOutBetween 在借且已逾期、借出时间落在 [start, end) 的记录，按到期日升序
	ListOverdueCheckedOutBetween(ctx context.Context, now, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error)
	// ListCheckedOutBetween 借出时间落在 [start, end) 的全部记录，按借出时间倒序
	ListCheckedOutBetween(ctx context.Context, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error)
}
