package kernel

import "github.com/pkg/errors"

var (
	ErrLength = errors.New("mismatched lengths")
	ErrSigma  = errors.New("sigma must be positive")
)
