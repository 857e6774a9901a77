package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/librarylending/internal/auth/domain"
	"github.com/wyfcoding/librarylending/pkg/token"
)

type memoryUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func (m *memoryUserRepo) Save(_ context.Context, user *domain.User) error {
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	return m.users[id], nil
}

func (m *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func newAuthTestService() (*AuthService, *memoryUserRepo) {
	repo := &memoryUserRepo{users: map[uint]*domain.User{}}
	tokens := token.NewManager("test-secret", time.Hour, "library-lending")
	return NewAuthService(repo, tokens), repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a bcrypt hash, not the password", func(t *testing.T) {
		svc, _ := newAuthTestService()

		user, err := svc.Register(ctx, RegisterCommand{
			Username: "librarian",
			Email:    "librarian@example.com",
			Password: "correct horse battery staple",
		})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, domain.RoleLibrarian, user.Role)
		assert.NotContains(t, user.PasswordHash, "correct horse")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery staple")))
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		svc, repo := newAuthTestService()

		_, err := svc.Register(ctx, RegisterCommand{Username: "librarian", Email: "a@example.com", Password: "password-one"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterCommand{Username: "librarian", Email: "b@example.com", Password: "password-two"})
		assert.ErrorIs(t, err, domain.ErrUserExists)
		assert.Len(t, repo.users, 1)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a parsable bearer token", func(t *testing.T) {
		svc, _ := newAuthTestService()

		user, err := svc.Register(ctx, RegisterCommand{Username: "librarian", Email: "a@example.com", Password: "password-one"})
		require.NoError(t, err)

		result, err := svc.Login(ctx, LoginCommand{Username: "librarian", Password: "password-one"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Greater(t, result.ExpiresAt, time.Now().Unix())

		claims, err := svc.tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "librarian", claims.Username)
		assert.Equal(t, string(domain.RoleLibrarian), claims.Role)
	})

	t.Run("wrong password and unknown user fail alike", func(t *testing.T) {
		svc, _ := newAuthTestService()

		_, err := svc.Register(ctx, RegisterCommand{Username: "librarian", Email: "a@example.com", Password: "password-one"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, LoginCommand{Username: "librarian", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		_, err = svc.Login(ctx, LoginCommand{Username: "nobody", Password: "password-one"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestValidateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthTestService()

	user, err := svc.Register(ctx, RegisterCommand{Username: "librarian", Email: "a@example.com", Password: "password-one"})
	require.NoError(t, err)

	got, err := svc.ValidateUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	got, err = svc.ValidateUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}
