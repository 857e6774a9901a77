package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/librarylending/internal/patron/domain"
	"github.com/wyfcoding/librarylending/pkg/db"
)

type borrowerRepository struct{ db *db.DB }

func NewBorrowerRepository(database *db.DB) domain.BorrowerRepository {
	return &borrowerRepository{db: database}
}

// translateSaveError 将驱动层的唯一键冲突翻译为领域冲突错误
func translateSaveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *borrowerRepository) Save(ctx context.Context, borrower *domain.Borrower) error {
	return translateSaveError(r.db.Conn(ctx).Save(borrower).Error)
}

func (r *borrowerRepository) GetByID(ctx context.Context, id uint) (*domain.Borrower, error) {
	var borrower domain.Borrower
	err := r.db.Conn(ctx).First(&borrower, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) GetByEmail(ctx context.Context, email string) (*domain.Borrower, error) {
	var borrower domain.Borrower
	err := r.db.Conn(ctx).Where("email = ?", email).First(&borrower).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) List(ctx context.Context) ([]*domain.Borrower, error) {
	var borrowers []*domain.Borrower
	err := r.db.Conn(ctx).Order("created_at DESC, id DESC").Find(&borrowers).Error
	return borrowers, err
}

func (r *borrowerRepository) Search(ctx context.Context, query string) ([]*domain.Borrower, error) {
	var borrowers []*domain.Borrower
	pattern := "%" + query + "%"
	err := r.db.Conn(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&borrowers).Error
	return borrowers, err
}

func (r *borrowerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.Conn(ctx).Delete(&domain.Borrower{}, id).Error
}
