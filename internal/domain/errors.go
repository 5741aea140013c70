package domain

import "errors"

// Error kinds. Operations wrap one of these with fmt.Errorf("%w: ...") so
// callers can classify failures with errors.Is.
var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when an identity does not resolve to a record.
	ErrNotFound = errors.New("record not found")

	// ErrTranslation is returned when the translation backend fails or
	// returns no text.
	ErrTranslation = errors.New("translation failed")

	// ErrBackend is returned when the key-value store call fails.
	ErrBackend = errors.New("backend error")
)
