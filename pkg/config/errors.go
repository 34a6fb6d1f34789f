package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrSyntax           = errors.New("syntax error")
	ErrMissingSection   = errors.New("missing section")
	ErrMissingKey       = errors.New("missing key")
	ErrDuplicateSection = errors.New("duplicate section")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrDuplicateStage   = errors.New("duplicate stage")
	ErrStageToken       = errors.New("stage token must be stage:service")
	ErrServiceMismatch  = errors.New("service does not match pipeline order")
	ErrUnknownBinning   = errors.New("unknown binning")
	ErrLegacyGaussPrior = errors.New("gaussian priors are declared with +/- notation on the value, e.g. 1.0+/-0.1")
	ErrUnknownPrior     = errors.New("unknown prior")
	ErrPriorData        = errors.New("invalid prior data")
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidBool      = errors.New("not a boolean")
	ErrUnsupportedValue = errors.New("unsupported value type")
	ErrStringParam      = errors.New("string params take no prior or range")
)

// ParseError locates a configuration failure. Line is zero when the source
// position is unknown.
type ParseError struct {
	Section string
	Key     string
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse config")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Section != "" {
		fmt.Fprintf(&b, " [%s]", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " %s", e.Key)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(section, key string, err error) *ParseError {
	return &ParseError{Section: section, Key: key, Err: err}
}
