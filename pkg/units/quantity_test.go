package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/units"
)

func TestParseQuantityWithUncertainty(t *testing.T) {
	t.Parallel()

	q, err := units.ParseQuantity("1.5+/-0.2 units.GeV")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, q.Magnitude, 1e-12)
	assert.InDelta(t, 0.2, q.Sigma, 1e-12)
	assert.Equal(t, "GeV", q.Unit.String())
}

func TestParseQuantityPlain(t *testing.T) {
	t.Parallel()

	q, err := units.ParseQuantity(" 3.0 ")
	require.NoError(t, err)
	assert.Equal(t, 3.0, q.Magnitude)
	assert.Zero(t, q.Sigma)
	assert.True(t, q.Unit.IsDimensionless())
}

func TestParseQuantityVariants(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in        string
		magnitude float64
		sigma     float64
		unit      string
	}{
		"star before marker": {in: "2.5 * units.common_year", magnitude: 2.5, unit: "common_year"},
		"parenthesised":      {in: "(0.7+/-0.1)", magnitude: 0.7, sigma: 0.1, unit: "dimensionless"},
		"exponent":           {in: "1e3 units.m**2", magnitude: 1000, unit: "m**2"},
		"negative":           {in: "-45 units.deg", magnitude: -45, unit: "deg"},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			q, err := units.ParseQuantity(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.magnitude, q.Magnitude, 1e-9)
			assert.InDelta(t, tc.sigma, q.Sigma, 1e-12)
			assert.Equal(t, tc.unit, q.Unit.String())
		})
	}
}

func TestParseQuantityErrors(t *testing.T) {
	t.Parallel()

	_, err := units.ParseQuantity("honda-2015-spl-solmax")
	assert.ErrorIs(t, err, units.ErrNotNumeric)

	_, err = units.ParseQuantity("1.0+/-abc")
	assert.ErrorIs(t, err, units.ErrNotNumeric)

	_, err = units.ParseQuantity("1.0 units.parsec_of_cheese")
	assert.ErrorIs(t, err, units.ErrUnknownUnit)
}

func TestQuantityConversion(t *testing.T) {
	t.Parallel()

	q := units.NewWithSigma(1, 0.1, units.MustParseUnit("GeV"))
	mev, err := q.To(units.MustParseUnit("MeV"))
	require.NoError(t, err)
	assert.InDelta(t, 1000, mev.Magnitude, 1e-9)
	assert.InDelta(t, 100, mev.Sigma, 1e-9)

	_, err = q.To(units.MustParseUnit("s"))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)

	yr, err := units.New(1, units.MustParseUnit("common_year")).MagnitudeIn(units.MustParseUnit("s"))
	require.NoError(t, err)
	assert.Equal(t, 365*86400.0, yr)
}

func TestQuantityArithmetic(t *testing.T) {
	t.Parallel()

	gev := units.MustParseUnit("GeV")
	a := units.NewWithSigma(10, 0.3, gev)
	b := units.NewWithSigma(500, 400, units.MustParseUnit("MeV"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, sum.Magnitude, 1e-9)
	assert.InDelta(t, 0.5, sum.Sigma, 1e-9)

	prod := a.Nominal().Mul(units.New(2, units.Dimensionless))
	assert.Equal(t, 20.0, prod.Magnitude)
	assert.True(t, prod.Unit.Equal(gev))

	_, err = a.Add(units.New(1, units.MustParseUnit("m")))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)

	_, err = a.Div(units.New(0, units.Dimensionless))
	assert.ErrorIs(t, err, units.ErrDivisionByZero)
}

func TestParseUnitExpressions(t *testing.T) {
	t.Parallel()

	area := units.MustParseUnit("m**2")
	cm2 := units.MustParseUnit("cm^2")
	f, err := cm2.ConversionFactor(area)
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, f, 1e-15)

	rate := units.MustParseUnit("1/s")
	perHour := units.MustParseUnit("(hour)**-1")
	assert.True(t, rate.Compatible(perHour))

	_, err = units.ParseUnit("GeV*")
	assert.Error(t, err)
	_, err = units.ParseUnit("GeV)")
	assert.Error(t, err)
}
