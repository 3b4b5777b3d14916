package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("security not found")
	ErrEmptyCode = errors.New("empty security code")
)
