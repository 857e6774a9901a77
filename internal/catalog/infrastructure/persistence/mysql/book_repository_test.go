package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/wyfcoding/librarylending/internal/catalog/domain"
)

func TestTranslateSaveError(t *testing.T) {
	assert.ErrorIs(t, translateSaveError(gorm.ErrDuplicatedKey), domain.ErrISBNTaken)
	assert.ErrorIs(t, translateSaveError(fmt.Errorf("save book: %w", gorm.ErrDuplicatedKey)), domain.ErrISBNTaken)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateSaveError(other))
	assert.NoError(t, translateSaveError(nil))
}
