package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/librarylending/internal/catalog/domain"
	"github.com/wyfcoding/librarylending/pkg/db"
)

type bookRepository struct{ db *db.DB }

func NewBookRepository(database *db.DB) domain.BookRepository {
	return &bookRepository{db: database}
}

// translateSaveError 将驱动层的唯一键冲突翻译为领域冲突错误
func translateSaveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrISBNTaken
	}
	return err
}

func (r *bookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

func (r *bookRepository) Save(ctx context.Context, book *domain.Book) error {
	return translateSaveError(r.db.Conn(ctx).Save(book).Error)
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	err := r.db.Conn(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	err := r.db.Conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	var book domain.Book
	err := r.db.Conn(ctx).Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := r.db.Conn(ctx).Order("created_at DESC, id DESC").Find(&books).Error
	return books, err
}

func (r *bookRepository) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	var books []*domain.Book
	pattern := "%" + query + "%"
	err := r.db.Conn(ctx).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(isbn) LIKE LOWER(?)", pattern, pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&books).Error
	return books, err
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.Conn(ctx).Delete(&domain.Book{}, id).Error
}
