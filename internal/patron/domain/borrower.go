package domain

import "time"

type Borrower struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"column:name;type:varchar(255);not null;index:idx_borrowers_name" json:"name"`
	Email          string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uniq_borrowers_email" json:"email"`
	RegisteredDate time.Time `gorm:"column:registered_date;not null" json:"registered_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Borrower) TableName() string { return "borrowers" }

// NewBorrower 登记新借阅人，注册日期取当前时间
func NewBorrower(name, email string, now time.Time) *Borrower {
	return &Borrower{Name: name, Email: email, RegisteredDate: now}
}
