package domain

import "errors"

// Closed set of failure variants. Callers match these with errors.Is; the
// HTTP layer owns the mapping to status codes. Never match on message text.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrInvalidImage       = errors.New("invalid image upload")
)
