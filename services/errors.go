package services

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrNotLoggedIn     = errors.New("not logged in")
)
