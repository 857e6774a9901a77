package domain

import (
	"context"
	"time"

	catalogdomain "github.com/wyfcoding/librarylending/internal/catalog/domain"
	patrondomain "github.com/wyfcoding/librarylending/internal/patron/domain"
)

// LedgerRepository 借阅台账仓储。WithTx 保证借出/归还的读检写序列在一个数据库事务内提交。
type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, record *BorrowingRecord) error
	Update(ctx context.Context, record *BorrowingRecord) error
	// GetByID 返回带书目与借阅人的记录，不存在时返回 nil
	GetByID(ctx context.Context, id uint) (*BorrowingRecord, error)
	// FindOpen 查找（书目，借阅人）对的在借记录，不存在时返回 nil
	FindOpen(ctx context.Context, bookID, borrowerID uint) (*BorrowingRecord, error)
	// FindOpenBySelector 按选择器查找在借记录，事务中加行锁
	FindOpenBySelector(ctx context.Context, selector ReturnSelector) (*BorrowingRecord, error)

	ListOpenByBorrower(ctx context.Context, borrowerID uint) ([]*BorrowingRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*BorrowingRecord, error)
	ListAll(ctx context.Context) ([]*BorrowingRecord, error)

	CountOpen(ctx context.Context) (int64, error)
	CountOpenByBook(ctx context.Context, bookID uint) (int64, error)
	CountOpenByBorrower(ctx context.Context, borrowerID uint) (int64, error)
}

// BookStore 借阅协调器对书目的最小视角
type BookStore interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Book, error)
	// GetForUpdate 在事务中锁定书目行后返回，不存在时返回 nil
	GetForUpdate(ctx context.Context, id uint) (*catalogdomain.Book, error)
	// AdjustAvailable 以守护条件原子调整可借数量（不为负、不超过总量），守护失败时返回 false
	AdjustAvailable(ctx context.Context, bookID uint, delta int) (bool, error)
}

// BorrowerStore 借阅协调器对借阅人的最小视角
type BorrowerStore interface {
	GetByID(ctx context.Context, id uint) (*patrondomain.Borrower, error)
}
