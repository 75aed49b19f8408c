package application

import "errors"

var (
	ErrNotFound    = errors.New("application not found")
	ErrDuplicate   = errors.New("applicant already has an open application")
	ErrInvalidSlot = errors.New("unknown document slot")
)
