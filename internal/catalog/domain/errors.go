package domain

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrISBNTaken    = errors.New("book with this ISBN already exists")
	ErrBookOnLoan   = errors.New("book has active loans")
)
