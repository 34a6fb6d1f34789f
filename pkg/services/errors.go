package services

import "github.com/pkg/errors"

var (
	ErrInputType  = errors.New("unexpected input type")
	ErrParamType  = errors.New("param is not numeric")
	ErrDimensions = errors.New("incompatible binning")
)
