package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dimension holds the exponents of the base dimensions length, mass, time and angle.
type Dimension [4]int8

const (
	dimLength = iota
	dimMass
	dimTime
	dimAngle
)

// Unit is a physical unit: a scale factor relative to the SI base units of its dimension.
type Unit struct {
	Name   string
	Factor float64
	Dim    Dimension
}

const electronVolt = 1.602176634e-19

var (
	energy = Dimension{dimLength: 2, dimMass: 1, dimTime: -2}
	length = Dimension{dimLength: 1}
	mass   = Dimension{dimMass: 1}
	tm     = Dimension{dimTime: 1}
	angle  = Dimension{dimAngle: 1}
)

// Dimensionless is the unit of pure numbers.
var Dimensionless = Unit{Name: "dimensionless", Factor: 1}

var registry = map[string]Unit{
	"dimensionless": Dimensionless,
	"percent":       {Name: "percent", Factor: 0.01},

	"eV":  {Name: "eV", Factor: electronVolt, Dim: energy},
	"keV": {Name: "keV", Factor: 1e3 * electronVolt, Dim: energy},
	"MeV": {Name: "MeV", Factor: 1e6 * electronVolt, Dim: energy},
	"GeV": {Name: "GeV", Factor: 1e9 * electronVolt, Dim: energy},
	"TeV": {Name: "TeV", Factor: 1e12 * electronVolt, Dim: energy},
	"PeV": {Name: "PeV", Factor: 1e15 * electronVolt, Dim: energy},
	"J":   {Name: "J", Factor: 1, Dim: energy},

	"m":          {Name: "m", Factor: 1, Dim: length},
	"meter":      {Name: "meter", Factor: 1, Dim: length},
	"cm":         {Name: "cm", Factor: 1e-2, Dim: length},
	"centimeter": {Name: "centimeter", Factor: 1e-2, Dim: length},
	"mm":         {Name: "mm", Factor: 1e-3, Dim: length},
	"km":         {Name: "km", Factor: 1e3, Dim: length},
	"kilometer":  {Name: "kilometer", Factor: 1e3, Dim: length},

	"g":        {Name: "g", Factor: 1e-3, Dim: mass},
	"gram":     {Name: "gram", Factor: 1e-3, Dim: mass},
	"kg":       {Name: "kg", Factor: 1, Dim: mass},
	"kilogram": {Name: "kilogram", Factor: 1, Dim: mass},

	"s":           {Name: "s", Factor: 1, Dim: tm},
	"sec":         {Name: "sec", Factor: 1, Dim: tm},
	"second":      {Name: "second", Factor: 1, Dim: tm},
	"ms":          {Name: "ms", Factor: 1e-3, Dim: tm},
	"us":          {Name: "us", Factor: 1e-6, Dim: tm},
	"ns":          {Name: "ns", Factor: 1e-9, Dim: tm},
	"minute":      {Name: "minute", Factor: 60, Dim: tm},
	"hour":        {Name: "hour", Factor: 3600, Dim: tm},
	"day":         {Name: "day", Factor: 86400, Dim: tm},
	"year":        {Name: "year", Factor: 365 * 86400, Dim: tm},
	"common_year": {Name: "common_year", Factor: 365 * 86400, Dim: tm},
	"julian_year": {Name: "julian_year", Factor: 365.25 * 86400, Dim: tm},

	"rad":    {Name: "rad", Factor: 1, Dim: angle},
	"radian": {Name: "radian", Factor: 1, Dim: angle},
	"deg":    {Name: "deg", Factor: math.Pi / 180, Dim: angle},
	"degree": {Name: "degree", Factor: math.Pi / 180, Dim: angle},
}

// Lookup returns the registered unit with the given name.
func Lookup(name string) (Unit, bool) {
	u, ok := registry[name]
	return u, ok
}

// MustParseUnit is ParseUnit that panics on error. Intended for package-level values and tests.
func MustParseUnit(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUnit parses a unit expression such as "GeV", "m**2", "1/s" or "(km*s)^-1".
// An empty string is dimensionless.
func ParseUnit(s string) (Unit, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Dimensionless, nil
	}
	p := &unitParser{src: s}
	u, err := p.expr()
	if err != nil {
		return Unit{}, errors.Wrapf(err, "unit %q", s)
	}
	if p.pos != len(p.src) {
		return Unit{}, errors.Wrapf(ErrUnknownUnit, "unit %q: trailing %q", s, p.src[p.pos:])
	}
	u.Name = s
	return u, nil
}

type unitParser struct {
	src string
	pos int
}

func (p *unitParser) expr() (Unit, error) {
	u, err := p.term()
	if err != nil {
		return Unit{}, err
	}
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '*':
			if strings.HasPrefix(p.src[p.pos:], "**") {
				return Unit{}, errors.Wrapf(ErrUnknownUnit, "unexpected power at %d", p.pos)
			}
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return Unit{}, err
			}
			u = u.Mul(rhs)
		case '/':
			p.pos++
			rhs, err := p.term()
			if err != nil {
				return Unit{}, err
			}
			u = u.Div(rhs)
		default:
			return u, nil
		}
	}
	return u, nil
}

func (p *unitParser) term() (Unit, error) {
	u, err := p.factor()
	if err != nil {
		return Unit{}, err
	}
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "**"):
		p.pos += 2
	case strings.HasPrefix(rest, "^"):
		p.pos++
	default:
		return u, nil
	}
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return Unit{}, errors.Wrapf(ErrUnknownUnit, "bad exponent %q", p.src[start:p.pos])
	}
	return u.Pow(n), nil
}

func (p *unitParser) factor() (Unit, error) {
	if p.pos >= len(p.src) {
		return Unit{}, errors.Wrap(ErrUnknownUnit, "unexpected end")
	}
	if p.src[p.pos] == '(' {
		p.pos++
		u, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return Unit{}, errors.Wrap(ErrUnknownUnit, "missing )")
		}
		p.pos++
		return u, nil
	}
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "1" {
		return Dimensionless, nil
	}
	u, ok := registry[name]
	if !ok {
		return Unit{}, errors.Wrapf(ErrUnknownUnit, "%q", name)
	}
	return u, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Mul returns the product unit.
func (u Unit) Mul(o Unit) Unit {
	if o.isOne() {
		return u
	}
	if u.isOne() {
		return o
	}
	var d Dimension
	for i := range d {
		d[i] = u.Dim[i] + o.Dim[i]
	}
	return Unit{Name: u.Name + "*" + wrap(o.Name), Factor: u.Factor * o.Factor, Dim: d}
}

// Div returns the quotient unit.
func (u Unit) Div(o Unit) Unit {
	if o.isOne() {
		return u
	}
	var d Dimension
	for i := range d {
		d[i] = u.Dim[i] - o.Dim[i]
	}
	num := u.Name
	if u.isOne() {
		num = "1"
	}
	return Unit{Name: num + "/" + wrap(o.Name), Factor: u.Factor / o.Factor, Dim: d}
}

// Pow returns the unit raised to an integer power.
func (u Unit) Pow(n int) Unit {
	if n == 1 || u.isOne() {
		return u
	}
	var d Dimension
	for i := range d {
		d[i] = u.Dim[i] * int8(n)
	}
	return Unit{Name: wrap(u.Name) + "**" + strconv.Itoa(n), Factor: math.Pow(u.Factor, float64(n)), Dim: d}
}

// Compatible reports whether values in u can be converted to o.
func (u Unit) Compatible(o Unit) bool {
	return u.Dim == o.Dim
}

// IsDimensionless reports whether u has no dimension.
func (u Unit) IsDimensionless() bool {
	return u.Dim == Dimension{}
}

// Equal reports whether both units denote the same scale of the same dimension.
func (u Unit) Equal(o Unit) bool {
	return u.Dim == o.Dim && closeTo(u.Factor, o.Factor)
}

// ConversionFactor returns the factor converting magnitudes in u to magnitudes in o.
func (u Unit) ConversionFactor(o Unit) (float64, error) {
	if !u.Compatible(o) {
		return 0, errors.Wrapf(ErrIncompatibleUnits, "%s to %s", u, o)
	}
	return u.Factor / o.Factor, nil
}

func (u Unit) String() string {
	if u.Name == "" {
		return Dimensionless.Name
	}
	return u.Name
}

func (u Unit) isOne() bool {
	return u.IsDimensionless() && u.Factor == 1
}

func wrap(name string) string {
	if strings.ContainsAny(name, "*/") {
		return "(" + name + ")"
	}
	return name
}

func closeTo(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-12*math.Max(math.Abs(a), math.Abs(b))
}
