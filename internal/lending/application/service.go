package application

import (
	"context"
	"time"

	"github.com/wyfcoding/librarylending/internal/lending/domain"
	"github.com/wyfcoding/librarylending/pkg/logger"
	"github.com/wyfcoding/librarylending/pkg/metrics"
)

// LendingService 借阅协调器。借出与归还各自在一个数据库事务内完成可用性检查、
// 数量调整与台账写入，保证 0 <= available <= total 在并发下也成立。
type LendingService struct {
	ledger    domain.LedgerRepository
	books     domain.BookStore
	borrowers domain.BorrowerStore
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewLendingService(ledger domain.LedgerRepository, books domain.BookStore, borrowers domain.BorrowerStore, m *metrics.Metrics) *LendingService {
	return &LendingService{
		ledger:    ledger,
		books:     books,
		borrowers: borrowers,
		metrics:   m,
		now:       time.Now,
	}
}

// Checkout 借出一本书。前置条件按序校验：书目存在、有可借副本、借阅人存在、
// 该（书目，借阅人）对没有在借记录。
func (s *LendingService) Checkout(ctx context.Context, bookID, borrowerID uint) (*domain.BorrowingRecord, error) {
	var created *domain.BorrowingRecord

	err := s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		book, err := s.books.GetForUpdate(txCtx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return domain.ErrBookNotFound
		}
		if !book.Available() {
			return domain.ErrBookUnavailable
		}

		borrower, err := s.borrowers.GetByID(txCtx, borrowerID)
		if err != nil {
			return err
		}
		if borrower == nil {
			return domain.ErrBorrowerNotFound
		}

		open, err := s.ledger.FindOpen(txCtx, bookID, borrowerID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrAlreadyCheckedOut
		}

		ok, err := s.books.AdjustAvailable(txCtx, bookID, -1)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBookUnavailable
		}

		created = domain.NewBorrowingRecord(bookID, borrowerID, s.now())
		return s.ledger.Create(txCtx, created)
	})
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CheckoutsTotal.Inc()
		s.metrics.LoansActive.Inc()
	}
	logger.Info(ctx, "book checked out",
		"record_id", created.ID,
		"book_id", bookID,
		"borrower_id", borrowerID,
		"due_date", created.DueDate,
	)

	return s.ledger.GetByID(ctx, created.ID)
}

// Return 归还一本书，选择器支持记录 ID 或（书目，借阅人）对两种形态。
func (s *LendingService) Return(ctx context.Context, selector domain.ReturnSelector) (*domain.BorrowingRecord, error) {
	if err := selector.Validate(); err != nil {
		return nil, err
	}

	var closed *domain.BorrowingRecord

	err := s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.ledger.FindOpenBySelector(txCtx, selector)
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrNoActiveCheckout
		}

		if err := record.Close(s.now()); err != nil {
			return err
		}
		if err := s.ledger.Update(txCtx, record); err != nil {
			return err
		}

		ok, err := s.books.AdjustAvailable(txCtx, record.BookID, 1)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrQuantityOutOfSync
		}

		closed = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReturnsTotal.Inc()
		s.metrics.LoansActive.Dec()
	}
	logger.Info(ctx, "book returned",
		"record_id", closed.ID,
		"book_id", closed.BookID,
		"borrower_id", closed.BorrowerID,
	)

	return s.ledger.GetByID(ctx, closed.ID)
}

// CurrentBooksForBorrower 借阅人当前在借的记录，按借出时间倒序
func (s *LendingService) CurrentBooksForBorrower(ctx context.Context, borrowerID uint) ([]*domain.BorrowingRecord, error) {
	borrower, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if borrower == nil {
		return nil, domain.ErrBorrowerNotFound
	}

	return s.ledger.ListOpenByBorrower(ctx, borrowerID)
}

// OverdueBooks 所有逾期未还的记录，按到期日升序
func (s *LendingService) OverdueBooks(ctx context.Context) ([]*domain.BorrowingRecord, error) {
	return s.ledger.ListOverdue(ctx, s.now())
}

// AllRecords 全部借阅记录，按创建时间倒序
func (s *LendingService) AllRecords(ctx context.Context) ([]*domain.BorrowingRecord, error) {
	return s.ledger.ListAll(ctx)
}

func (s *LendingService) countRejection(err error) {
	if s.metrics == nil {
		return
	}
	switch err {
	case domain.ErrBookUnavailable, domain.ErrAlreadyCheckedOut:
		s.metrics.CheckoutRejectionsTotal.Inc()
	}
}
