package binning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/binning"
)

func argsLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestParseOneDimLinear(t *testing.T) {
	t.Parallel()

	b, err := binning.ParseOneDim("coszen", "dict(num_bins=4, is_lin=True, domain=[-1, 1])")
	require.NoError(t, err)
	assert.Equal(t, 4, b.NumBins())
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, b.Edges())
	assert.Equal(t, []float64{-0.75, -0.25, 0.25, 0.75}, b.Centers())
	assert.False(t, b.IsLog())
}

func TestParseOneDimLog(t *testing.T) {
	t.Parallel()

	b, err := binning.ParseOneDim("true_energy", "dict(num_bins=2, is_log=True, domain=[1, 100]*units.GeV, tex=r'E_{\\rm true}')")
	require.NoError(t, err)
	edges := b.Edges()
	require.Len(t, edges, 3)
	assert.InDelta(t, 10, edges[1], 1e-9)
	assert.Equal(t, "GeV", b.Unit().String())
	assert.InDelta(t, 10, b.Centers()[1]/b.Centers()[0], 1e-9)
}

func TestParseOneDimBinEdges(t *testing.T) {
	t.Parallel()

	b, err := binning.ParseOneDim("pid", "{'bin_edges': [-3, 2, 1000]}")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 998}, b.Widths())
}

func TestParseOneDimErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"not a dict":        "[1, 2]",
		"unknown argument":  "dict(num_bins=2, domain=[0, 1], colour='red')",
		"missing domain":    "dict(num_bins=2)",
		"decreasing edges":  "dict(bin_edges=[3, 2, 1])",
		"log with zero":     "dict(num_bins=2, is_log=True, domain=[0, 10])",
		"malformed literal": "dict(num_bins=2, domain=[0, 1]",
		"conflicting flags": "dict(num_bins=2, domain=[1, 2], is_log=True, is_lin=True)",
		"mixed units":       "dict(num_bins=2, domain=[1*units.GeV, 2*units.m])",
	}
	for name, src := range tcs {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := binning.ParseOneDim("x", src)
			assert.Error(t, err)
		})
	}
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	reg, err := binning.BuildRegistry(binning.RegistrySpec{
		Order:    []string{"true_energy", "true_coszen"},
		Binnings: []string{"fine", "coarse"},
		Args: argsLookup(map[string]string{
			"fine.true_energy":   "dict(num_bins=40, is_log=True, domain=[1,80]*units.GeV)",
			"fine.true_coszen":   "dict(num_bins=20, is_lin=True, domain=[-1,1])",
			"coarse.true_energy": "dict(num_bins=4, is_log=True, domain=[1,80]*units.GeV)",
			"coarse.true_coszen": "dict(num_bins=2, is_lin=True, domain=[-1,1])",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fine", "coarse"}, reg.Names())

	fine, ok := reg.Get("fine")
	require.True(t, ok)
	assert.Equal(t, []string{"true_energy", "true_coszen"}, fine.Names())
	assert.Equal(t, []int{40, 20}, fine.Shape())
	assert.Equal(t, 800, fine.Size())

	same, _ := reg.Get("fine")
	assert.Same(t, fine, same)

	down, err := fine.Downsample(10)
	require.NoError(t, err)
	coarse, _ := reg.Get("coarse")
	assert.Equal(t, coarse.Shape(), down.Shape())
}

func TestBuildRegistryMissingArgs(t *testing.T) {
	t.Parallel()

	_, err := binning.BuildRegistry(binning.RegistrySpec{
		Order:    []string{"true_energy", "true_coszen"},
		Binnings: []string{"fine"},
		Args: argsLookup(map[string]string{
			"fine.true_energy": "dict(num_bins=40, is_log=True, domain=[1,80]*units.GeV)",
		}),
	})
	require.ErrorIs(t, err, binning.ErrMissingArgs)

	var argErr *binning.ArgError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "fine.true_coszen", argErr.Key)
}

func TestMultiDimDownsampleIndivisible(t *testing.T) {
	t.Parallel()

	d, err := binning.ParseOneDim("x", "dict(num_bins=7, domain=[0, 7])")
	require.NoError(t, err)
	md, err := binning.NewMultiDim(d)
	require.NoError(t, err)
	_, err = md.Downsample(2)
	assert.ErrorIs(t, err, binning.ErrDownsample)

	_, err = binning.NewMultiDim(d, d)
	assert.ErrorIs(t, err, binning.ErrInvalidBinning)
}
