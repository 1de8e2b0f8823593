package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound is returned when a project id does not exist
	ErrProjectNotFound = errors.New("project not found")

	// ErrDuplicateOffset is returned when an offset is already scheduled for a project
	ErrDuplicateOffset = errors.New("offset is already scheduled for this project")
)

// ValidationError reports input rejected before it reaches the store
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError with a formatted message
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
