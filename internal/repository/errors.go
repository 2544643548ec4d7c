package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates a credential with the same email already exists.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)
