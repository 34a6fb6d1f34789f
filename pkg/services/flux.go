package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/stage"
	"github.com/askiada/go-pisa/pkg/units"
)

// ConstantFlux produces one map per output name with every bin set to
// flux_norm, times <name>_norm when that param is declared. It ignores its
// inputs.
type ConstantFlux struct {
	*stage.Base
	names   []string
	binning *binning.MultiDim
}

// NewConstantFlux builds a flux:constant stage. It needs the output_binning
// and output_names keyword arguments and the flux_norm param.
func NewConstantFlux(args stage.Args) (stage.Stage, error) {
	b, err := args.Binning("output_binning")
	if err != nil {
		return nil, err
	}
	names := args.List("output_names")
	if len(names) == 0 {
		return nil, errors.Wrap(stage.ErrKwarg, "output_names is required")
	}
	if err := args.RequireParams("flux_norm"); err != nil {
		return nil, err
	}
	return &ConstantFlux{Base: stage.NewBase(args), names: names, binning: b}, nil
}

func (f *ConstantFlux) InputNames() []string              { return nil }
func (f *ConstantFlux) InputBinning() *binning.MultiDim  { return nil }
func (f *ConstantFlux) OutputBinning() *binning.MultiDim { return f.binning }

// GetOutputs returns the flux maps.
func (f *ConstantFlux) GetOutputs(_ context.Context, _ any) (any, error) {
	return f.Compute(0, func() (any, error) {
		norm, err := value(f.Params(), "flux_norm", units.Dimensionless)
		if err != nil {
			return nil, err
		}
		out := make([]*maps.Map, len(f.names))
		for i, name := range f.names {
			scale, err := optional(f.Params(), name+"_norm", units.Dimensionless, 1)
			if err != nil {
				return nil, err
			}
			out[i] = maps.Filled(name, f.binning, norm*scale)
		}
		return maps.NewMapSet(f.StageName(), out...)
	})
}
