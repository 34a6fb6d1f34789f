package expr

import (
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/units"
)

// Kind enumerates the value types an expression can produce.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindString
	KindBool
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating an expression.
type Value struct {
	Kind     Kind
	Quantity units.Quantity
	Str      string
	Bool     bool
	List     []Value
	Dict     *Dict
}

// Dict is an insertion-ordered keyword mapping.
type Dict struct {
	Keys   []string
	Values map[string]Value
}

func newDict() *Dict {
	return &Dict{Values: make(map[string]Value)}
}

func (d *Dict) set(key string, v Value) error {
	if _, ok := d.Values[key]; ok {
		return errors.Wrapf(ErrSyntax, "duplicate key %q", key)
	}
	d.Keys = append(d.Keys, key)
	d.Values[key] = v
	return nil
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.Values[key]
	return v, ok
}

// Number wraps a quantity.
func Number(q units.Quantity) Value {
	return Value{Kind: KindNumber, Quantity: q}
}

// Quantities returns the list elements as quantities.
func (v Value) Quantities() ([]units.Quantity, error) {
	if v.Kind != KindList {
		return nil, errors.Wrapf(ErrType, "expected list, got %s", v.Kind)
	}
	out := make([]units.Quantity, len(v.List))
	for i, item := range v.List {
		if item.Kind != KindNumber {
			return nil, errors.Wrapf(ErrType, "element %d: expected number, got %s", i, item.Kind)
		}
		out[i] = item.Quantity
	}
	return out, nil
}

// Float returns the magnitude of a dimensionless number.
func (v Value) Float() (float64, error) {
	if v.Kind != KindNumber {
		return 0, errors.Wrapf(ErrType, "expected number, got %s", v.Kind)
	}
	if !v.Quantity.Unit.IsDimensionless() {
		return 0, errors.Wrapf(ErrType, "expected dimensionless number, got %s", v.Quantity.Unit)
	}
	return v.Quantity.Magnitude * v.Quantity.Unit.Factor, nil
}

// Int returns an integral dimensionless number.
func (v Value) Int() (int, error) {
	f, err := v.Float()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.Wrapf(ErrType, "expected integer, got %g", f)
	}
	return int(f), nil
}

// Truthy returns the boolean value of v. Only bools are accepted.
func (v Value) Truthy() (bool, error) {
	if v.Kind != KindBool {
		return false, errors.Wrapf(ErrType, "expected bool, got %s", v.Kind)
	}
	return v.Bool, nil
}

func binary(op string, a, b Value) (Value, error) {
	switch {
	case a.Kind == KindList && b.Kind == KindList:
		if len(a.List) != len(b.List) {
			return Value{}, errors.Wrapf(ErrType, "list length mismatch %d vs %d", len(a.List), len(b.List))
		}
		out := make([]Value, len(a.List))
		for i := range a.List {
			r, err := binary(op, a.List[i], b.List[i])
			if err != nil {
				return Value{}, err
			}
			out[i] = r
		}
		return Value{Kind: KindList, List: out}, nil
	case a.Kind == KindList:
		return broadcast(a.List, func(item Value) (Value, error) { return binary(op, item, b) })
	case b.Kind == KindList:
		return broadcast(b.List, func(item Value) (Value, error) { return binary(op, a, item) })
	case a.Kind != KindNumber || b.Kind != KindNumber:
		return Value{}, errors.Wrapf(ErrType, "unsupported operands %s %s %s", a.Kind, op, b.Kind)
	}

	x, y := a.Quantity, b.Quantity
	var (
		q   units.Quantity
		err error
	)
	switch op {
	case "+":
		q, err = x.Add(y)
	case "-":
		q, err = x.Sub(y)
	case "*":
		q = x.Mul(y)
	case "/":
		q, err = x.Div(y)
	case "**":
		q, err = power(x, y)
	default:
		err = errors.Wrapf(ErrSyntax, "unknown operator %q", op)
	}
	if err != nil {
		return Value{}, err
	}
	return Number(q), nil
}

func power(base, exp units.Quantity) (units.Quantity, error) {
	if !exp.Unit.IsDimensionless() || exp.Sigma != 0 {
		return units.Quantity{}, errors.Wrap(ErrType, "exponent must be an exact dimensionless number")
	}
	e := exp.Magnitude * exp.Unit.Factor
	if e == math.Trunc(e) {
		return base.Pow(int(e)), nil
	}
	if !base.Unit.IsDimensionless() {
		return units.Quantity{}, errors.Wrapf(ErrType, "non-integer power of %s", base.Unit)
	}
	m := math.Pow(base.Magnitude*base.Unit.Factor, e)
	return units.New(m, units.Dimensionless), nil
}

func negate(v Value) (Value, error) {
	switch v.Kind {
	case KindNumber:
		return Number(v.Quantity.Neg()), nil
	case KindList:
		return broadcast(v.List, negate)
	default:
		return Value{}, errors.Wrapf(ErrType, "cannot negate %s", v.Kind)
	}
}

func broadcast(items []Value, fn func(Value) (Value, error)) (Value, error) {
	out := make([]Value, len(items))
	for i, item := range items {
		r, err := fn(item)
		if err != nil {
			return Value{}, err
		}
		out[i] = r
	}
	return Value{Kind: KindList, List: out}, nil
}
