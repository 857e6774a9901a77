package application

import (
	"context"

	"github.com/wyfcoding/librarylending/internal/catalog/domain"
)

// RegisterBookCommand 登记新书
type RegisterBookCommand struct {
	Title         string
	Author        string
	ISBN          string
	TotalQuantity int
	ShelfLocation string
}

// UpdateBookCommand 部分更新，nil 字段保持不变
type UpdateBookCommand struct {
	Title         *string
	Author        *string
	ISBN          *string
	TotalQuantity *int
	ShelfLocation *string
}

type CatalogService struct {
	repo  domain.BookRepository
	loans domain.LoanCounter
}

func NewCatalogService(repo domain.BookRepository, loans domain.LoanCounter) *CatalogService {
	return &CatalogService{repo: repo, loans: loans}
}

func (s *CatalogService) Register(ctx context.Context, cmd RegisterBookCommand) (*domain.Book, error) {
	existing, err := s.repo.GetByISBN(ctx, cmd.ISBN)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrISBNTaken
	}

	book := domain.NewBook(cmd.Title, cmd.Author, cmd.ISBN, cmd.TotalQuantity, cmd.ShelfLocation)
	if err := s.repo.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (s *CatalogService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.repo.List(ctx)
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	return s.repo.Search(ctx, query)
}

// Update 部分更新书目。整个读改写在一个事务中执行并锁定书目行，
// 否则整行回写会覆盖并发借还对 available_quantity 的修改。
func (s *CatalogService) Update(ctx context.Context, id uint, cmd UpdateBookCommand) (*domain.Book, error) {
	var updated *domain.Book

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		book, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return domain.ErrBookNotFound
		}

		if cmd.ISBN != nil && *cmd.ISBN != book.ISBN {
			existing, err := s.repo.GetByISBN(txCtx, *cmd.ISBN)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrISBNTaken
			}
			book.ISBN = *cmd.ISBN
		}

		if cmd.Title != nil {
			book.Title = *cmd.Title
		}
		if cmd.Author != nil {
			book.Author = *cmd.Author
		}
		if cmd.ShelfLocation != nil {
			book.ShelfLocation = *cmd.ShelfLocation
		}
		if cmd.TotalQuantity != nil && *cmd.TotalQuantity != book.TotalQuantity {
			// 总量变化时按在借数量重新推导可借数量，保持 0 <= available <= total
			open, err := s.loans.CountOpenByBook(txCtx, id)
			if err != nil {
				return err
			}
			book.TotalQuantity = *cmd.TotalQuantity
			book.AvailableQuantity = *cmd.TotalQuantity - int(open)
			if book.AvailableQuantity < 0 {
				book.AvailableQuantity = 0
			}
		}

		if err := s.repo.Save(txCtx, book); err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove 删除书目；存在未归还记录时拒绝删除。
// 行锁与在借数量核对在同一事务内，与并发借出串行化。
func (s *CatalogService) Remove(ctx context.Context, id uint) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		book, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if book == nil {
			return domain.ErrBookNotFound
		}

		open, err := s.loans.CountOpenByBook(txCtx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrBookOnLoan
		}

		return s.repo.Delete(txCtx, id)
	})
}
