package store

import "errors"

var (
	// ErrUserExists is returned when creating a user whose username is taken
	ErrUserExists = errors.New("store: username already exists")

	// ErrNotFound wraps GORM's not found error for consistency
	ErrNotFound = errors.New("store: record not found")
)
