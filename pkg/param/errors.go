package param

import "github.com/pkg/errors"

var (
	ErrNameRequired   = errors.New("param name is required")
	ErrNilParam       = errors.New("param must be set")
	ErrDuplicateParam = errors.New("duplicate param")
	ErrInvalidRange   = errors.New("invalid range")
	ErrOutOfRange     = errors.New("value out of range")
	ErrInvalidPrior   = errors.New("invalid prior")
	ErrKindMismatch   = errors.New("string and quantity params are not interchangeable")
)
