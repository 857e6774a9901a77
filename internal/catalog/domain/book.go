package domain

import "time"

type Book struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"column:title;type:varchar(255);not null;index:idx_books_title" json:"title"`
	Author            string    `gorm:"column:author;type:varchar(255);not null;index:idx_books_author" json:"author"`
	ISBN              string    `gorm:"column:isbn;type:varchar(32);not null;uniqueIndex:uniq_books_isbn" json:"isbn"`
	TotalQuantity     int       `gorm:"column:total_quantity;not null" json:"total_quantity"`
	AvailableQuantity int       `gorm:"column:available_quantity;not null;default:0" json:"available_quantity"`
	ShelfLocation     string    `gorm:"column:shelf_location;type:varchar(64)" json:"shelf_location"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Book) TableName() string { return "books" }

// NewBook 创建新书目，可借数量初始化为总数量
func NewBook(title, author, isbn string, totalQuantity int, shelfLocation string) *Book {
	return &Book{
		Title:             title,
		Author:            author,
		ISBN:              isbn,
		TotalQuantity:     totalQuantity,
		AvailableQuantity: totalQuantity,
		ShelfLocation:     shelfLocation,
	}
}

// Available 是否还有可借副本
func (b *Book) Available() bool {
	return b.AvailableQuantity > 0
}

// OnLoan 当前在借副本数
func (b *Book) OnLoan() int {
	return b.TotalQuantity - b.AvailableQuantity
}
