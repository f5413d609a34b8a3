// Package random produces cryptographically secure random identifiers.
package random

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of characters used for generated shortcodes.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewRandomString returns a string of the given length drawn uniformly from Alphabet.
func NewRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("random string length must be positive, got %d", length)
	}

	s, err := gonanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate random string: %w", err)
	}

	return s, nil
}

// NewID returns a 21 character URL-safe identifier.
func NewID() (string, error) {
	return gonanoid.New()
}
