package domain

import (
	"time"

	catalogdomain "github.com/wyfcoding/librarylending/internal/catalog/domain"
	patrondomain "github.com/wyfcoding/librarylending/internal/patron/domain"
)

// LoanPeriod 固定借期：到期日为借出日 + 14 天
const LoanPeriod = 14 * 24 * time.Hour

type BorrowingRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BookID       uint       `gorm:"column:book_id;not null;index:idx_records_book" json:"book_id"`
	BorrowerID   uint       `gorm:"column:borrower_id;not null;index:idx_records_borrower" json:"borrower_id"`
	CheckoutDate time.Time  `gorm:"column:checkout_date;not null" json:"checkout_date"`
	DueDate      time.Time  `gorm:"column:due_date;not null;index:idx_records_due" json:"due_date"`
	ReturnDate   *time.Time `gorm:"column:return_date" json:"return_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Book     *catalogdomain.Book    `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Borrower *patrondomain.Borrower `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

func (BorrowingRecord) TableName() string { return "borrowing_records" }

// NewBorrowingRecord 创建未归还的借阅记录
func NewBorrowingRecord(bookID, borrowerID uint, now time.Time) *BorrowingRecord {
	return &BorrowingRecord{
		BookID:       bookID,
		BorrowerID:   borrowerID,
		CheckoutDate: now,
		DueDate:      now.Add(LoanPeriod),
	}
}

// Open 是否仍在借
func (r *BorrowingRecord) Open() bool {
	return r.ReturnDate == nil
}

// Overdue 是否已逾期（仍在借且已过到期日）
func (r *BorrowingRecord) Overdue(now time.Time) bool {
	return r.Open() && r.DueDate.Before(now)
}

// Close 关闭记录。记录只允许从在借到已还迁移一次，重复关闭返回错误。
func (r *BorrowingRecord) Close(now time.Time) error {
	if !r.Open() {
		return ErrNoActiveCheckout
	}
	r.ReturnDate = &now
	return nil
}
