package service

import (
	"errors"
	"fmt"

	"assetcat/internal/permission"
)

// Error taxonomy shared by all services. Validation and authorization errors are
// detected before any mutation; storage unavailability is surfaced separately via
// storage.ErrUnavailable so handlers can name the collaborator.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// ForbiddenError names the field the actor may not touch and the capability that
// would be required. Matches ErrForbidden under errors.Is.
type ForbiddenError struct {
	Field      string
	Capability permission.Capability
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("editing %s requires the %s capability", e.Field, e.Capability)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
