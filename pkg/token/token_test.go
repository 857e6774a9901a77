package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "library-lending")

	signed, expiresAt, err := m.Generate(42, "librarian", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "librarian", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "library-lending", claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, _, err := NewManager("secret-a", time.Hour, "library-lending").Generate(1, "u", "librarian")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, "library-lending").Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, "library-lending")

	signed, _, err := m.Generate(1, "u", "librarian")
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "library-lending")

	_, err := m.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
