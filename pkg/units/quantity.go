package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// UnitMarker precedes the unit token in a value literal, e.g. "1.5+/-0.2 units.GeV".
const UnitMarker = "units."

const uncertaintySep = "+/-"

// Quantity is a nominal magnitude with a symmetric standard deviation in a physical unit.
type Quantity struct {
	Magnitude float64
	Sigma     float64
	Unit      Unit
}

// New returns an exact quantity.
func New(magnitude float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unit}
}

// NewWithSigma returns a quantity carrying an uncertainty.
func NewWithSigma(magnitude, sigma float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Sigma: math.Abs(sigma), Unit: unit}
}

// ParseQuantity parses the value literal grammar <number>[+/-<number>][units.<unit>].
// Whitespace is ignored and a '*' joining the number to the unit marker is dropped.
// ErrNotNumeric is returned when the numeric part is malformed and ErrUnknownUnit
// when the unit token cannot be resolved.
func ParseQuantity(s string) (Quantity, error) {
	value := strings.Join(strings.Fields(s), "")
	unitName := ""
	if idx := strings.Index(value, UnitMarker); idx >= 0 {
		unitName = value[idx+len(UnitMarker):]
		value = value[:idx]
	}
	value = strings.TrimRight(value, "*")

	var (
		magnitude, sigma float64
		err              error
	)
	if strings.Contains(value, uncertaintySep) {
		magnitude, sigma, err = parseUncertain(value)
	} else {
		magnitude, err = strconv.ParseFloat(value, 64)
	}
	if err != nil {
		return Quantity{}, errors.Wrapf(ErrNotNumeric, "%q", s)
	}

	unit := Dimensionless
	if unitName != "" {
		unit, err = ParseUnit(unitName)
		if err != nil {
			return Quantity{}, err
		}
	}
	return NewWithSigma(magnitude, sigma, unit), nil
}

func parseUncertain(value string) (float64, float64, error) {
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		value = value[1 : len(value)-1]
	}
	nominal, sigma, ok := strings.Cut(value, uncertaintySep)
	if !ok {
		return 0, 0, ErrNotNumeric
	}
	n, err := strconv.ParseFloat(nominal, 64)
	if err != nil {
		return 0, 0, err
	}
	s, err := strconv.ParseFloat(sigma, 64)
	if err != nil {
		return 0, 0, err
	}
	if s < 0 {
		return 0, 0, ErrNotNumeric
	}
	return n, s, nil
}

// Nominal returns the quantity without its uncertainty.
func (q Quantity) Nominal() Quantity {
	return Quantity{Magnitude: q.Magnitude, Unit: q.Unit}
}

// SigmaQuantity returns the uncertainty as an exact quantity in the same unit.
func (q Quantity) SigmaQuantity() Quantity {
	return Quantity{Magnitude: q.Sigma, Unit: q.Unit}
}

// To converts the quantity to another unit of the same dimension.
func (q Quantity) To(u Unit) (Quantity, error) {
	f, err := q.Unit.ConversionFactor(u)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude * f, Sigma: q.Sigma * f, Unit: u}, nil
}

// MagnitudeIn returns the magnitude expressed in u.
func (q Quantity) MagnitudeIn(u Unit) (float64, error) {
	c, err := q.To(u)
	if err != nil {
		return 0, err
	}
	return c.Magnitude, nil
}

// Add returns q+o in q's unit.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	c, err := o.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude + c.Magnitude, Sigma: math.Hypot(q.Sigma, c.Sigma), Unit: q.Unit}, nil
}

// Sub returns q-o in q's unit.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.Add(o.Neg())
}

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	return Quantity{Magnitude: -q.Magnitude, Sigma: q.Sigma, Unit: q.Unit}
}

// Mul returns q*o.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{
		Magnitude: q.Magnitude * o.Magnitude,
		Sigma:     math.Hypot(o.Magnitude*q.Sigma, q.Magnitude*o.Sigma),
		Unit:      q.Unit.Mul(o.Unit),
	}
}

// Div returns q/o.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	if o.Magnitude == 0 {
		return Quantity{}, ErrDivisionByZero
	}
	return Quantity{
		Magnitude: q.Magnitude / o.Magnitude,
		Sigma:     math.Hypot(q.Sigma/o.Magnitude, q.Magnitude*o.Sigma/(o.Magnitude*o.Magnitude)),
		Unit:      q.Unit.Div(o.Unit),
	}, nil
}

// Pow returns q**n.
func (q Quantity) Pow(n int) Quantity {
	m := math.Pow(q.Magnitude, float64(n))
	s := 0.0
	if q.Sigma != 0 {
		s = math.Abs(float64(n) * math.Pow(q.Magnitude, float64(n-1)) * q.Sigma)
	}
	return Quantity{Magnitude: m, Sigma: s, Unit: q.Unit.Pow(n)}
}

// Equal reports exact equality of magnitude, uncertainty and unit.
func (q Quantity) Equal(o Quantity) bool {
	return q.Magnitude == o.Magnitude && q.Sigma == o.Sigma && q.Unit.Equal(o.Unit)
}

func (q Quantity) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(q.Magnitude, 'g', -1, 64))
	if q.Sigma != 0 {
		b.WriteString(uncertaintySep)
		b.WriteString(strconv.FormatFloat(q.Sigma, 'g', -1, 64))
	}
	if !q.Unit.isOne() {
		fmt.Fprintf(&b, " %s", q.Unit)
	}
	return b.String()
}
