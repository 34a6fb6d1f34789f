package param

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/units"
)

// Range bounds a parameter's magnitude, expressed in the parameter's unit.
type Range struct {
	Low, High float64
}

// Contains reports whether x lies in [Low, High].
func (r Range) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// Param is a named pipeline parameter. It holds either a quantity or, for
// categorical choices, a string literal.
//
// A *Param is shared by reference between the stage that owns it and every
// aggregate Set built over the pipeline; mutating it through one view is
// visible through all of them.
type Param struct {
	Name    string
	Value   units.Quantity
	Literal string
	IsFixed bool
	Prior   Prior
	Range   *Range

	isString bool
}

// Option configures a Param at construction.
type Option func(*Param)

// WithFixed sets the fixed flag. Parameters are fixed unless told otherwise.
func WithFixed(fixed bool) Option {
	return func(p *Param) { p.IsFixed = fixed }
}

// WithPrior attaches a prior.
func WithPrior(prior Prior) Option {
	return func(p *Param) { p.Prior = prior }
}

// WithRange bounds the magnitude to [low, high] in the parameter's unit.
func WithRange(low, high float64) Option {
	return func(p *Param) { p.Range = &Range{Low: low, High: high} }
}

// New returns a quantity-valued parameter.
func New(name string, value units.Quantity, opts ...Option) (*Param, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	p := &Param{Name: name, Value: value, IsFixed: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.Range != nil {
		if p.Range.Low > p.Range.High {
			return nil, errors.Wrapf(ErrInvalidRange, "%s: [%g, %g]", name, p.Range.Low, p.Range.High)
		}
		if !p.Range.Contains(value.Magnitude) {
			return nil, errors.Wrapf(ErrOutOfRange, "%s: %g not in [%g, %g]", name, value.Magnitude, p.Range.Low, p.Range.High)
		}
	}
	if g, ok := p.Prior.(Gaussian); ok && g.Sigma <= 0 {
		return nil, errors.Wrapf(ErrInvalidPrior, "%s: gaussian sigma must be positive", name)
	}
	return p, nil
}

// NewString returns a string-valued parameter. String parameters carry no
// prior and no range.
func NewString(name, literal string, fixed bool) (*Param, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Param{Name: name, Literal: literal, IsFixed: fixed, isString: true}, nil
}

// IsString reports whether the parameter holds a string literal.
func (p *Param) IsString() bool {
	return p.isString
}

// Unit returns the unit of the parameter's value.
func (p *Param) Unit() units.Unit {
	return p.Value.Unit
}

// SetValue converts q to the parameter's unit and stores its magnitude. The
// parameter keeps its own uncertainty.
func (p *Param) SetValue(q units.Quantity) error {
	if p.isString {
		return errors.Wrap(ErrKindMismatch, p.Name)
	}
	m, err := q.MagnitudeIn(p.Value.Unit)
	if err != nil {
		return errors.Wrap(err, p.Name)
	}
	if p.Range != nil && !p.Range.Contains(m) {
		return errors.Wrapf(ErrOutOfRange, "%s: %g not in [%g, %g]", p.Name, m, p.Range.Low, p.Range.High)
	}
	p.Value.Magnitude = m
	return nil
}

// SetLiteral replaces the value of a string parameter.
func (p *Param) SetLiteral(s string) error {
	if !p.isString {
		return errors.Wrap(ErrKindMismatch, p.Name)
	}
	p.Literal = s
	return nil
}

// UpdateFrom copies src's value into p.
func (p *Param) UpdateFrom(src *Param) error {
	if src.isString {
		return p.SetLiteral(src.Literal)
	}
	return p.SetValue(src.Value)
}

// Equal reports whether both parameters have the same definition.
func (p *Param) Equal(o *Param) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	if p.Name != o.Name || p.isString != o.isString || p.IsFixed != o.IsFixed || p.Literal != o.Literal {
		return false
	}
	if !p.isString && !p.Value.Equal(o.Value) {
		return false
	}
	if (p.Range == nil) != (o.Range == nil) || (p.Range != nil && *p.Range != *o.Range) {
		return false
	}
	return priorsEqual(p.Prior, o.Prior)
}

func (p *Param) String() string {
	if p.isString {
		return fmt.Sprintf("%s=%q", p.Name, p.Literal)
	}
	s := fmt.Sprintf("%s=%s", p.Name, p.Value)
	if p.IsFixed {
		s += " (fixed)"
	}
	return s
}
