package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/internal/expr"
	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/units"
)

// Modifier suffixes of a "param.<name>" key.
const (
	suffixFixed     = ".fixed"
	suffixPrior     = ".prior"
	suffixPriorData = ".prior.data"
	suffixRange     = ".range"
)

var modifierSuffixes = []string{suffixPriorData, suffixFixed, suffixPrior, suffixRange}

// buildParam turns the entry sec[key] and its modifier keys into a parameter
// called name.
func (p *parser) buildParam(sec *Section, key, name, selector string) (*param.Param, error) {
	raw, _ := sec.Get(key)

	fixed := true
	if v, ok := sec.Get(key + suffixFixed); ok {
		b, err := ParseBool(v)
		if err != nil {
			return nil, parseErr(sec.Name, key+suffixFixed, err)
		}
		fixed = b
	}

	q, err := units.ParseQuantity(raw)
	if err != nil {
		if !errors.Is(err, units.ErrNotNumeric) {
			return nil, parseErr(sec.Name, key, err)
		}
		for _, suffix := range []string{suffixPrior, suffixRange} {
			if sec.Has(key + suffix) {
				return nil, parseErr(sec.Name, key+suffix, ErrStringParam)
			}
		}
		return param.NewString(name, raw, fixed)
	}

	opts := []param.Option{param.WithFixed(fixed)}

	prior, err := p.buildPrior(sec, key, name, selector, q)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		opts = append(opts, param.WithPrior(prior))
	}

	if text, ok := sec.Get(key + suffixRange); ok {
		low, high, err := evalRange(text, q)
		if err != nil {
			return nil, parseErr(sec.Name, key+suffixRange, err)
		}
		opts = append(opts, param.WithRange(low, high))
	}

	prm, err := param.New(name, q, opts...)
	if err != nil {
		return nil, parseErr(sec.Name, key, err)
	}
	return prm, nil
}

func (p *parser) buildPrior(sec *Section, key, name, selector string, q units.Quantity) (param.Prior, error) {
	kind, ok := sec.Get(key + suffixPrior)
	if !ok {
		if q.Sigma != 0 {
			return param.Gaussian{Fiducial: q.Magnitude, Sigma: q.Sigma}, nil
		}
		return nil, nil
	}

	kind = strings.TrimSpace(kind)
	switch {
	case kind == string(param.UniformKind):
		return param.Uniform{}, nil
	case kind == string(param.SplineKind):
		prior, err := p.loadSpline(sec, key, name, selector, q.Unit)
		if err != nil {
			return nil, parseErr(sec.Name, key+suffixPriorData, err)
		}
		return prior, nil
	case strings.Contains(kind, "gauss"):
		return nil, parseErr(sec.Name, key+suffixPrior, ErrLegacyGaussPrior)
	default:
		return nil, parseErr(sec.Name, key+suffixPrior, errors.Wrapf(ErrUnknownPrior, "%q", kind))
	}
}

// loadSpline reads the spline table for name, or name_selector when a selector
// is active, and converts its knots to unit.
func (p *parser) loadSpline(sec *Section, key, name, selector string, unit units.Unit) (*param.Spline, error) {
	resource, ok := sec.Get(key + suffixPriorData)
	if !ok {
		return nil, ErrMissingKey
	}
	tables, err := p.priors.Load(resource)
	if err != nil {
		return nil, err
	}
	priorName := name
	if selector != "" {
		priorName += "_" + selector
	}
	data, ok := tables[priorName]
	if !ok {
		return nil, errors.Wrapf(ErrPriorData, "%s has no entry %q", resource, priorName)
	}

	knotUnit := units.Dimensionless
	if data.Units != "" {
		if knotUnit, err = units.ParseUnit(data.Units); err != nil {
			return nil, err
		}
	}
	factor, err := knotUnit.ConversionFactor(unit)
	if err != nil {
		return nil, err
	}
	knots := make([]float64, len(data.Knots))
	for i, k := range data.Knots {
		knots[i] = k * factor
	}
	return param.NewSpline(knots, data.Coeffs, data.Deg)
}

// evalRange evaluates a two element range expression in which nominal and
// sigma stand for the parameter's value and uncertainty, and returns the
// bounds in q's unit.
func evalRange(text string, q units.Quantity) (float64, float64, error) {
	v, err := expr.Eval(text, expr.Env{
		"nominal": q.Nominal(),
		"sigma":   q.SigmaQuantity(),
	})
	if err != nil {
		return 0, 0, err
	}
	bounds, err := v.Quantities()
	if err != nil {
		return 0, 0, err
	}
	if len(bounds) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidRange, "expected 2 bounds, got %d", len(bounds))
	}
	low, err := bounds[0].MagnitudeIn(q.Unit)
	if err != nil {
		return 0, 0, err
	}
	high, err := bounds[1].MagnitudeIn(q.Unit)
	if err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

// isModifier reports whether key is a modifier of another parameter entry of sec.
func isModifier(sec *Section, key string) bool {
	for _, suffix := range modifierSuffixes {
		if base, ok := strings.CutSuffix(key, suffix); ok && sec.Has(base) {
			return true
		}
	}
	return false
}
