package board

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks user input that was rejected before any change.
	ErrValidation = errors.New("validation failed")

	// ErrNoCategories is returned when knowledge is added before any category exists.
	ErrNoCategories = fmt.Errorf("%w: create a category first", ErrValidation)

	// ErrCategoryNotFound is returned when knowledge targets an unknown category.
	ErrCategoryNotFound = fmt.Errorf("%w: category not found", ErrValidation)

	// ErrNotConfirmed is returned by destructive operations called without confirmation.
	ErrNotConfirmed = errors.New("operation requires confirmation")

	// ErrTemplateExists is returned when a save or import would overwrite a template
	// without permission.
	ErrTemplateExists = errors.New("template already exists")

	// ErrTemplateNotFound is returned for unknown template names.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrPersist wraps storage failures. The in-memory change has been applied
	// but is not durable.
	ErrPersist = errors.New("state not persisted")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
