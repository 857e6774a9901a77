package application

import (
	"context"
	"time"

	"github.com/wyfcoding/librarylending/internal/patron/domain"
)

// RegisterBorrowerCommand 登记借阅人
type RegisterBorrowerCommand struct {
	Name  string
	Email string
}

// UpdateBorrowerCommand 部分更新，nil 字段保持不变
type UpdateBorrowerCommand struct {
	Name  *string
	Email *string
}

type PatronService struct {
	repo  domain.BorrowerRepository
	loans domain.LoanCounter
	now   func() time.Time
}

func NewPatronService(repo domain.BorrowerRepository, loans domain.LoanCounter) *PatronService {
	return &PatronService{repo: repo, loans: loans, now: time.Now}
}

func (s *PatronService) Register(ctx context.Context, cmd RegisterBorrowerCommand) (*domain.Borrower, error) {
	existing, err := s.repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	borrower := domain.NewBorrower(cmd.Name, cmd.Email, s.now())
	if err := s.repo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

func (s *PatronService) Get(ctx context.Context, id uint) (*domain.Borrower, error) {
	borrower, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if borrower == nil {
		return nil, domain.ErrBorrowerNotFound
	}
	return borrower, nil
}

func (s *PatronService) List(ctx context.Context) ([]*domain.Borrower, error) {
	return s.repo.List(ctx)
}

func (s *PatronService) Search(ctx context.Context, query string) ([]*domain.Borrower, error) {
	return s.repo.Search(ctx, query)
}

func (s *PatronService) Update(ctx context.Context, id uint, cmd UpdateBorrowerCommand) (*domain.Borrower, error) {
	borrower, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Email != nil && *cmd.Email != borrower.Email {
		existing, err := s.repo.GetByEmail(ctx, *cmd.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrEmailTaken
		}
		borrower.Email = *cmd.Email
	}
	if cmd.Name != nil {
		borrower.Name = *cmd.Name
	}

	if err := s.repo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

// Remove 删除借阅人；存在未归还记录时拒绝删除
func (s *PatronService) Remove(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	open, err := s.loans.CountOpenByBorrower(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrBorrowerHasLoans
	}

	return s.repo.Delete(ctx, id)
}
