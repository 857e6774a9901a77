package mysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/wyfcoding/librarylending/internal/patron/domain"
)

func TestTranslateSaveError(t *testing.T) {
	assert.ErrorIs(t, translateSaveError(gorm.ErrDuplicatedKey), domain.ErrEmailTaken)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateSaveError(other))
	assert.NoError(t, translateSaveError(nil))
}
