package models

import "errors"

// Domain specific errors. Services wrap these with %w and handlers map them
// to HTTP status codes.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotMember       = errors.New("user is not a member of this group")
	ErrAlreadyMember   = errors.New("user is already a member of this group")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already in use")
)
