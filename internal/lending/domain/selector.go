package domain

// ReturnSelector 定位待归还的在借记录：按记录 ID，或按（书目，借阅人）对，二选一
type ReturnSelector struct {
	RecordID   uint
	BookID     uint
	BorrowerID uint
}

// ByRecordID 按记录 ID 归还
func ByRecordID(recordID uint) ReturnSelector {
	return ReturnSelector{RecordID: recordID}
}

// ByBookAndBorrower 按（书目，借阅人）对归还
func ByBookAndBorrower(bookID, borrowerID uint) ReturnSelector {
	return ReturnSelector{BookID: bookID, BorrowerID: borrowerID}
}

// ByRecord 是否按记录 ID 定位
func (s ReturnSelector) ByRecord() bool {
	return s.RecordID != 0
}

// Validate 校验选择器形态
func (s ReturnSelector) Validate() error {
	if s.RecordID != 0 {
		return nil
	}
	if s.BookID != 0 && s.BorrowerID != 0 {
		return nil
	}
	return ErrInvalidSelector
}
