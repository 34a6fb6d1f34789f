package services

import (
	"context"

	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/stage"
	"github.com/askiada/go-pisa/pkg/units"
)

// SimpleAeff weights every input map by aeff_scale times the livetime in
// seconds, and by <map>_norm when that param is declared.
type SimpleAeff struct {
	*stage.Base
	names   []string
	binning *binning.MultiDim
}

// NewSimpleAeff builds an aeff:simple stage. It needs the aeff_scale and
// livetime params. input_names and input_binning are optional and only used
// to fabricate inputs when the stage runs alone.
func NewSimpleAeff(args stage.Args) (stage.Stage, error) {
	if err := args.RequireParams("aeff_scale", "livetime"); err != nil {
		return nil, err
	}
	a := &SimpleAeff{Base: stage.NewBase(args), names: args.List("input_names")}
	if b, err := args.Binning("input_binning"); err == nil {
		a.binning = b
	}
	return a, nil
}

func (a *SimpleAeff) InputNames() []string              { return a.names }
func (a *SimpleAeff) InputBinning() *binning.MultiDim  { return a.binning }
func (a *SimpleAeff) OutputBinning() *binning.MultiDim { return a.binning }

// GetOutputs expects a *maps.MapSet and returns the weighted maps on the same
// binnings.
func (a *SimpleAeff) GetOutputs(_ context.Context, inputs any) (any, error) {
	in, err := mapSetInput(inputs)
	if err != nil {
		return nil, err
	}
	return a.Compute(in.Hash(), func() (any, error) {
		scale, err := value(a.Params(), "aeff_scale", units.Dimensionless)
		if err != nil {
			return nil, err
		}
		livetime, err := value(a.Params(), "livetime", seconds)
		if err != nil {
			return nil, err
		}
		out := make([]*maps.Map, 0, in.Len())
		for _, m := range in.Maps() {
			norm, err := optional(a.Params(), m.Name+"_norm", units.Dimensionless, 1)
			if err != nil {
				return nil, err
			}
			out = append(out, m.Scale(scale*livetime*norm))
		}
		return maps.NewMapSet(a.StageName(), out...)
	})
}
