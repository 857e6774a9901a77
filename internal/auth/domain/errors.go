package domain

import "errors"

var (
	// ErrInvalidCredentials 用户不存在与密码错误统一返回该错误，避免账号枚举
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
)
