package application

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/librarylending/internal/auth/domain"
	"github.com/wyfcoding/librarylending/pkg/logger"
	"github.com/wyfcoding/librarylending/pkg/token"
)

const bcryptCost = 10

// RegisterCommand 注册命令
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	Role     domain.UserRole
}

// LoginCommand 登录命令
type LoginCommand struct {
	Username string
	Password string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"type"`
	ExpiresAt int64        `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	repo   domain.UserRepository
	tokens *token.Manager
}

func NewAuthService(repo domain.UserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register 注册管理员账号
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	existing, err := s.repo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(cmd.Username, cmd.Email, string(hash), cmd.Role)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login 校验凭证并签发访问令牌
func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.tokens.Generate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return &LoginResult{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	}, nil
}

// ValidateUser 按 ID 查找用户，供令牌校验后的身份回查使用
func (s *AuthService) ValidateUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}
