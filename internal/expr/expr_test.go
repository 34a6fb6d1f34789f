package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/internal/expr"
	"github.com/askiada/go-pisa/pkg/units"
)

func TestEvalRangeWithSubstitution(t *testing.T) {
	t.Parallel()

	gev := units.MustParseUnit("GeV")
	env := expr.Env{
		"nominal": units.New(10, gev),
		"sigma":   units.New(1, gev),
	}
	v, err := expr.Eval("[nominal-5*sigma, nominal+5*sigma]", env)
	require.NoError(t, err)
	qs, err := v.Quantities()
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.InDelta(t, 5.0, qs[0].Magnitude, 1e-12)
	assert.InDelta(t, 15.0, qs[1].Magnitude, 1e-12)
	assert.True(t, qs[0].Unit.Equal(gev))
}

func TestEvalListTimesUnit(t *testing.T) {
	t.Parallel()

	v, err := expr.Eval("[1, 80] * units.GeV", nil)
	require.NoError(t, err)
	qs, err := v.Quantities()
	require.NoError(t, err)
	assert.Equal(t, 80.0, qs[1].Magnitude)
	assert.Equal(t, "GeV", qs[1].Unit.String())
}

func TestEvalArithmetic(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src  string
		want float64
	}{
		"precedence":      {src: "1 + 2 * 3", want: 7},
		"parentheses":     {src: "(1 + 2) * 3", want: 9},
		"power binds":     {src: "-2**2", want: -4},
		"right assoc":     {src: "2**3**2", want: 512},
		"negative power":  {src: "2**-1", want: 0.5},
		"fractional":      {src: "4**0.5", want: 2},
		"scientific":      {src: "1.5e2 / 3", want: 50},
		"leading decimal": {src: ".5 + .25", want: 0.75},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := expr.Eval(tc.src, nil)
			require.NoError(t, err)
			f, err := v.Float()
			require.NoError(t, err)
			assert.InDelta(t, tc.want, f, 1e-12)
		})
	}
}

func TestEvalDicts(t *testing.T) {
	t.Parallel()

	v, err := expr.Eval(`dict(num_bins=40, is_log=True, domain=[1,80]*units.GeV, tex=r'E_{\rm true}')`, nil)
	require.NoError(t, err)
	require.Equal(t, expr.KindDict, v.Kind)
	assert.Equal(t, []string{"num_bins", "is_log", "domain", "tex"}, v.Dict.Keys)

	n, ok := v.Dict.Get("num_bins")
	require.True(t, ok)
	bins, err := n.Int()
	require.NoError(t, err)
	assert.Equal(t, 40, bins)

	tex, _ := v.Dict.Get("tex")
	assert.Equal(t, `E_{\rm true}`, tex.Str)

	v, err = expr.Eval(`{'num_bins': 10, "is_lin": False}`, nil)
	require.NoError(t, err)
	lin, _ := v.Dict.Get("is_lin")
	b, err := lin.Truthy()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestEvalRejectsUnknownInput(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src string
		err error
	}{
		"unknown name":      {src: "__import__", err: expr.ErrUnknownIdentifier},
		"call":              {src: "open('x')", err: expr.ErrUnknownIdentifier},
		"attribute on name": {src: "nominal.m", err: expr.ErrUnknownIdentifier},
		"unbalanced":        {src: "[1, 2", err: expr.ErrSyntax},
		"trailing":          {src: "1 2", err: expr.ErrSyntax},
		"string math":       {src: "'a' * 2", err: expr.ErrType},
		"bad unit":          {src: "units.furlong", err: units.ErrUnknownUnit},
		"unit mismatch":     {src: "units.GeV + units.m", err: units.ErrIncompatibleUnits},
		"duplicate key":     {src: "dict(a=1, a=2)", err: expr.ErrSyntax},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := expr.Eval(tc.src, expr.Env{"nominal": units.New(1, units.Dimensionless)})
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
