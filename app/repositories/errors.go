package repositories

import "errors"

var (
	ErrOrderNotFound = errors.New("repositories: order not found")
	ErrImageNotFound = errors.New("repositories: image not found")
	ErrUserNotFound  = errors.New("repositories: user not found")
	ErrUsernameTaken = errors.New("repositories: username already taken")
	ErrInvalidMonth  = errors.New("repositories: month must be YYYY-MM")
)
