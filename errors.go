package di

import (
	"errors"
)

var (
	// ErrTypeMismatch is returned when a producer does not support the service type it is registered for.
	ErrTypeMismatch = errors.New("producer does not support service type")
	// ErrDuplicateRegistration is returned when a service type already has a registration
	// and multiple registrations are not allowed.
	ErrDuplicateRegistration = errors.New("service type already registered")
	// ErrNotFound is returned when no producer matches a requested type.
	// Fetch reports this as a false result instead.
	ErrNotFound = errors.New("no producer found")
	// ErrNilIndex is returned when creating a Store without an Index.
	ErrNilIndex = errors.New("index is nil")
)
