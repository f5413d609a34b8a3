package service

import (
	"errors"
	"fmt"
)

// Client-facing errors. Their messages are returned to API callers as is.
var (
	ErrInvalidURL          = errors.New("Invalid URL format")
	ErrInvalidValidity     = errors.New("Validity must be between 1 and 525600 minutes")
	ErrInvalidShortcode    = errors.New("Shortcode must be alphanumeric and between 1-20 characters")
	ErrShortcodeTaken      = errors.New("Shortcode already exists. Please choose a different one.")
	ErrGenerationExhausted = errors.New("Unable to generate unique shortcode")
	ErrNotFound            = errors.New("Short URL not found")
	ErrExpired             = errors.New("Short URL has expired")
)

// ValidityRangeError reports a validity outside 1..Max minutes. It matches ErrInvalidValidity.
type ValidityRangeError struct {
	Max int
}

func (e *ValidityRangeError) Error() string {
	return fmt.Sprintf("Validity must be between 1 and %d minutes", e.Max)
}

func (e *ValidityRangeError) Is(target error) bool {
	return target == ErrInvalidValidity
}
