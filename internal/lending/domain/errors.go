package domain

import "errors"

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBorrowerNotFound  = errors.New("borrower not found")
	ErrBookUnavailable   = errors.New("book is not available for checkout")
	ErrAlreadyCheckedOut = errors.New("borrower already has this book checked out")
	ErrNoActiveCheckout  = errors.New("no active checkout found")
	ErrInvalidSelector   = errors.New("return selector requires a record id or a book and borrower pair")
	ErrQuantityOutOfSync = errors.New("book availability out of sync with ledger")
)
