package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidLimit = errors.New("invalid candidate limit")
)
