package models

import (
	"errors"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("event not found")
	ErrInvalidState = errors.New("invalid event state")
)
