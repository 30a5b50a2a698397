// Package topic validates presentation topics locally before any network
// call is made.
package topic

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MinLength is the minimum trimmed topic length.
	MinLength = 10
	// MinWords is the minimum word count.
	MinWords = 2
	// MaxLength is the maximum topic length.
	MaxLength = 100
)

// Validation errors, worded for direct display.
var (
	ErrTooShort     = errors.New("Topic must be at least 10 characters long")
	ErrTooFewWords  = errors.New("Topic must contain at least 2 words")
	ErrTooLong      = errors.New("Topic must be less than 100 characters")
	ErrNotSuggested = errors.New("Please select a topic from the suggestions")
)

// Validate checks a topic against the local rules. It returns nil for a
// valid topic and never touches the network. Lengths count runes so
// multi-byte input is not penalized.
func Validate(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < MinLength {
		return ErrTooShort
	}
	if len(strings.Fields(trimmed)) < MinWords {
		return ErrTooFewWords
	}
	if utf8.RuneCountInString(raw) > MaxLength {
		return ErrTooLong
	}
	return nil
}
