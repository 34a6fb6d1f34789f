package stage

import "github.com/pkg/errors"

var (
	ErrNilStage          = errors.New("factory returned no stage")
	ErrIdentity          = errors.New("stage identity mismatch")
	ErrNoParams          = errors.New("stage exposes no param set")
	ErrInvalidKey        = errors.New("invalid registry key")
	ErrAlreadyRegistered = errors.New("service already registered")
	ErrUnknownService    = errors.New("unknown service")
	ErrKwarg             = errors.New("invalid keyword argument")
	ErrMissingBinning    = errors.New("missing binning")
	ErrMissingParam      = errors.New("missing param")
)
