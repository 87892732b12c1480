package types

import "errors"

// Domain errors for request validation
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrInvalidLimit = errors.New("limit must be >= 1")
	ErrNoDocuments  = errors.New("at least one document is required")
)
