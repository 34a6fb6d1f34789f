package services

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/stage"
	"github.com/askiada/go-pisa/pkg/units"
)

var seconds = units.MustParseUnit("s")

// value returns the magnitude of a numeric param expressed in unit.
func value(params *param.Set, name string, unit units.Unit) (float64, error) {
	p, ok := params.Get(name)
	if !ok {
		return 0, errors.Wrap(stage.ErrMissingParam, name)
	}
	return magnitude(p, unit)
}

// optional is like value but returns def when the param is absent.
func optional(params *param.Set, name string, unit units.Unit, def float64) (float64, error) {
	p, ok := params.Get(name)
	if !ok {
		return def, nil
	}
	return magnitude(p, unit)
}

func magnitude(p *param.Param, unit units.Unit) (float64, error) {
	if p.IsString() {
		return 0, errors.Wrapf(ErrParamType, "%s=%q", p.Name, p.Literal)
	}
	v, err := p.Value.MagnitudeIn(unit)
	if err != nil {
		return 0, errors.Wrap(err, p.Name)
	}
	return v, nil
}

func mapSetInput(inputs any) (*maps.MapSet, error) {
	set, ok := inputs.(*maps.MapSet)
	if !ok || set == nil {
		return nil, errors.Wrapf(ErrInputType, "want *maps.MapSet, got %T", inputs)
	}
	return set, nil
}
