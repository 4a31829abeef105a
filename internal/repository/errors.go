package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when no task matches the id/owner pair
	ErrTaskNotFound = errors.New("task not found")
)
