package entity

import "errors"

// Validation errors. These are rejected locally and never reach the
// network.
var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrEmptyText     = errors.New("text is empty")
	ErrEmptyFile     = errors.New("file is empty")
	ErrEmptyPassword = errors.New("password is empty")

	// ErrExchangeInFlight is returned when a session that allows only
	// one outstanding exchange is asked to start another.
	ErrExchangeInFlight = errors.New("previous exchange still in flight")

	ErrUnsupportedFormat = errors.New("unsupported transcript format")
)
