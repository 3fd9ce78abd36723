package nvram

import "errors"

var (
	ErrCorruptFormat     = errors.New("nvram: corrupt format")
	ErrNotFound          = errors.New("nvram: not found")
	ErrInsufficientSpace = errors.New("nvram: insufficient space in partition")
	ErrLimitExceeded     = errors.New("nvram: limit exceeded")
)
