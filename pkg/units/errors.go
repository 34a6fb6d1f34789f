package units

import "github.com/pkg/errors"

var (
	ErrNotNumeric        = errors.New("not a numeric literal")
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrDivisionByZero    = errors.New("division by zero")
)
