package domain

import "context"

// BookRepository 书目仓储。改量与删除须在 WithTx 中配合 GetForUpdate 使用，
// 防止并发借还对 available_quantity 的修改被整行回写覆盖。
type BookRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Save(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id uint) (*Book, error)
	// GetForUpdate 在事务中锁定书目行后返回，不存在时返回 nil
	GetForUpdate(ctx context.Context, id uint) (*Book, error)
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	List(ctx context.Context) ([]*Book, error)
	Search(ctx context.Context, query string) ([]*Book, error)
	Delete(ctx context.Context, id uint) error
}

// LoanCounter 借阅台账对书目的只读视角，删除/改量时用于核对在借数量
type LoanCounter interface {
	CountOpenByBook(ctx context.Context, bookID uint) (int64, error)
}
