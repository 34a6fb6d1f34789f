package binning

import "github.com/pkg/errors"

var (
	ErrInvalidBinning   = errors.New("invalid binning")
	ErrMissingArgs      = errors.New("missing binning arguments")
	ErrDuplicateBinning = errors.New("duplicate binning")
	ErrDownsample       = errors.New("cannot downsample")
)
