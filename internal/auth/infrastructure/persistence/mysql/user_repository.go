package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/librarylending/internal/auth/domain"
	"github.com/wyfcoding/librarylending/pkg/db"
)

type userRepository struct{ db *db.DB }

func NewUserRepository(database *db.DB) domain.UserRepository {
	return &userRepository{db: database}
}

// translateSaveError 将驱动层的唯一键冲突翻译为领域冲突错误
func translateSaveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserExists
	}
	return err
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	return translateSaveError(r.db.Conn(ctx).Save(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.Conn(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.Conn(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
