package domain

import "context"

type BorrowerRepository interface {
	Save(ctx context.Context, borrower *Borrower) error
	GetByID(ctx context.Context, id uint) (*Borrower, error)
	GetByEmail(ctx context.Context, email string) (*Borrower, error)
	List(ctx context.Context) ([]*Borrower, error)
	Search(ctx context.Context, query string) ([]*Borrower, error)
	Delete(ctx context.Context, id uint) error
}

// LoanCounter 借阅台账对借阅人的只读视角，删除时用于核对在借数量
type LoanCounter interface {
	CountOpenByBorrower(ctx context.Context, borrowerID uint) (int64, error)
}
