package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrUnauthorized       = errors.New("subscription does not belong to requesting customer")
	ErrUnsupported        = errors.New("operation not supported by active backend")
	ErrNoBackend          = errors.New("no supported subscription backend detected")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("backend operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)
