package domain

import "time"

type UserRole string

const (
	RoleLibrarian UserRole = "librarian"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex:uniq_users_username" json:"username"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uniq_users_email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"column:role;type:varchar(16);not null;default:librarian" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func NewUser(username, email, passwordHash string, role UserRole) *User {
	if role == "" {
		role = RoleLibrarian
	}
	return &User{Username: username, Email: email, PasswordHash: passwordHash, Role: role}
}
