package services

import "errors"

// Core error taxonomy. Controllers map these onto HTTP responses; any other
// error returned from a service is treated as a server fault.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("record not found")
	ErrEmptyContent       = errors.New("content cannot be empty")
	ErrDataIntegrity      = errors.New("dangling reference")
)
