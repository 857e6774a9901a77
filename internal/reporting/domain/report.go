package domain

import (
	"time"

	lendingdomain "github.com/wyfcoding/librarylending/internal/lending/domain"
)

const (
	StatusReturned = "Returned"
	StatusActive   = "Active"
)

const dateLayout = "2006-01-02"

// Row 报表行，承载导出所需的全部列
type Row struct {
	RecordID      uint   `json:"record_id"`
	BookTitle     string `json:"book_title"`
	BookAuthor    string `json:"book_author"`
	BookISBN      string `json:"book_isbn"`
	BorrowerName  string `json:"borrower_name"`
	BorrowerEmail string `json:"borrower_email"`
	CheckoutDate  string `json:"checkout_date"`
	DueDate       string `json:"due_date"`
	ReturnDate    string `json:"return_date"`
	Status        string `json:"status"`
	DaysOverdue   int    `json:"days_overdue"`
}

// Headers 报表列名，CSV 与 XLSX 共用
func Headers() []string {
	return []string{
		"Borrowing ID", "Book Title", "Book Author", "Book ISBN",
		"Borrower Name", "Borrower Email",
		"Checkout Date", "Due Date", "Return Date",
		"Status", "Days Overdue",
	}
}

// Values 按 Headers 顺序展开一行
func (r Row) Values() []interface{} {
	return []interface{}{
		r.RecordID, r.BookTitle, r.BookAuthor, r.BookISBN,
		r.BorrowerName, r.BorrowerEmail,
		r.CheckoutDate, r.DueDate, r.ReturnDate,
		r.Status, r.DaysOverdue,
	}
}

// BuildRows 将借阅记录转换为报表行。逾期天数只对在借记录计算，
// 取当前时间与到期日之差向下取整到整天，永不为负。
func BuildRows(records []*lendingdomain.BorrowingRecord, now time.Time) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := Row{
			RecordID:     record.ID,
			CheckoutDate: record.CheckoutDate.Format(dateLayout),
			DueDate:      record.DueDate.Format(dateLayout),
			ReturnDate:   "Not Returned",
			Status:       StatusActive,
		}

		if record.Book != nil {
			row.BookTitle = record.Book.Title
			row.BookAuthor = record.Book.Author
			row.BookISBN = record.Book.ISBN
		}
		if record.Borrower != nil {
			row.BorrowerName = record.Borrower.Name
			row.BorrowerEmail = record.Borrower.Email
		}

		if record.ReturnDate != nil {
			row.ReturnDate = record.ReturnDate.Format(dateLayout)
			row.Status = StatusReturned
		} else if overdue := int(now.Sub(record.DueDate).Hours() / 24); overdue > 0 {
			row.DaysOverdue = overdue
		}

		rows = append(rows, row)
	}
	return rows
}

// LastMonthWindow 上一个日历月窗口：[上月 1 日 00:00, 本月 1 日 00:00)
func LastMonthWindow(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, -1, 0)
	return start, end
}
