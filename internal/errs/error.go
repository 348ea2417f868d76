package errs

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotAvailable = errors.New("book is not available")
	ErrNoActiveLoan = errors.New("no active loan")
	ErrConflict     = errors.New("conflict")
	ErrUserName     = errors.New("username is required")
)
