package stage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/param"
)

// Stage is one computational unit of a pipeline. GetOutputs must be
// idempotent for identical parameter values and inputs.
type Stage interface {
	StageName() string
	ServiceName() string
	Params() *param.Set
	GetOutputs(ctx context.Context, inputs any) (any, error)
}

// Binned is implemented by stages that consume or produce binned maps.
type Binned interface {
	Stage
	InputNames() []string
	InputBinning() *binning.MultiDim
	OutputBinning() *binning.MultiDim
}

// Transformer is implemented by stages whose computation is expressed as a
// reusable transform.
type Transformer interface {
	Stage
	UseTransforms() bool
	Transforms() any
}

// Cached is implemented by stages that keep their last output.
type Cached interface {
	Stage
	Outputs() any
}

// Validate checks that s satisfies the stage contract for the given identity.
func Validate(s Stage, role, service string) error {
	if s == nil {
		return ErrNilStage
	}
	if s.StageName() != role || s.ServiceName() != service {
		return errors.Wrapf(ErrIdentity, "built %s:%s, want %s:%s", s.StageName(), s.ServiceName(), role, service)
	}
	if s.Params() == nil {
		return errors.Wrapf(ErrNoParams, "%s:%s", role, service)
	}
	return nil
}
