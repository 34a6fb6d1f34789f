package maps

import "github.com/pkg/errors"

var (
	ErrBinningRequired = errors.New("binning must be set")
	ErrShape           = errors.New("histogram does not match binning")
	ErrDuplicateMap    = errors.New("duplicate map")
)
