package domain

import "errors"

var (
	ErrBorrowerNotFound = errors.New("borrower not found")
	ErrEmailTaken       = errors.New("borrower with this email already exists")
	ErrBorrowerHasLoans = errors.New("borrower has active loans")
)
