package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/internal/kernel"
	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/services"
	"github.com/askiada/go-pisa/pkg/stage"
)

func build(t *testing.T, text string) (stage.Stage, *config.Definition, error) {
	t.Helper()

	def, err := config.Parse(text)
	require.NoError(t, err)
	reg := stage.NewRegistry()
	require.NoError(t, services.Register(reg))
	s, err := reg.Build(stage.ArgsFromDef(def.Stages[0]))
	return s, def, err
}

func mustBuild(t *testing.T, text string) (stage.Stage, *config.Definition) {
	t.Helper()

	s, def, err := build(t, text)
	require.NoError(t, err)
	return s, def
}

func mapSet(t *testing.T, out any) *maps.MapSet {
	t.Helper()

	set, ok := out.(*maps.MapSet)
	require.True(t, ok, "got %T", out)
	return set
}

func get(t *testing.T, set *maps.MapSet, name string) *maps.Map {
	t.Helper()

	m, ok := set.Get(name)
	require.True(t, ok, name)
	return m
}

const smallBinning = `
[binning]
order = true_energy
binnings = b
b.true_energy = dict(num_bins=4, is_log=True, domain=[1, 16]*units.GeV)
`

func TestRegisterTwice(t *testing.T) {
	t.Parallel()

	reg := stage.NewRegistry()
	require.NoError(t, services.Register(reg))
	assert.Len(t, reg.Keys(), 3)
	assert.ErrorIs(t, services.Register(reg), stage.ErrAlreadyRegistered)
}

func TestConstantFlux(t *testing.T) {
	t.Parallel()

	s, def := mustBuild(t, smallBinning+`
[pipeline]
order = flux:constant

[stage:flux]
service = constant
output_binning = b
output_names = nue, numu
param.flux_norm = 2
param.numu_norm = 3
`)
	b, _ := def.Binnings.Get("b")
	binned, ok := s.(stage.Binned)
	require.True(t, ok)
	assert.Same(t, b, binned.OutputBinning())
	assert.Nil(t, binned.InputBinning())

	out, err := s.GetOutputs(context.Background(), nil)
	require.NoError(t, err)
	set := mapSet(t, out)
	assert.Equal(t, []string{"nue", "numu"}, set.Names())
	assert.Equal(t, []float64{2, 2, 2, 2}, get(t, set, "nue").Hist)
	assert.Equal(t, []float64{6, 6, 6, 6}, get(t, set, "numu").Hist)

	again, err := s.GetOutputs(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Same(t, set, again)
}

func TestConstantFluxErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stage string
		want  error
	}{
		"missing names": {
			stage: "output_binning = b\nparam.flux_norm = 1",
			want:  stage.ErrKwarg,
		},
		"missing binning": {
			stage: "output_names = nue\nparam.flux_norm = 1",
			want:  stage.ErrMissingBinning,
		},
		"missing norm": {
			stage: "output_binning = b\noutput_names = nue",
			want:  stage.ErrMissingParam,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := build(t, smallBinning+"\n[pipeline]\norder = flux:constant\n\n[stage:flux]\n"+tt.stage+"\n")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConstantFluxStringNorm(t *testing.T) {
	t.Parallel()

	s, _ := mustBuild(t, smallBinning+`
[pipeline]
order = flux:constant

[stage:flux]
output_binning = b
output_names = nue
param.flux_norm = honda
`)
	_, err := s.GetOutputs(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrParamType)
}

func TestSimpleAeff(t *testing.T) {
	t.Parallel()

	s, def := mustBuild(t, smallBinning+`
[pipeline]
order = aeff:simple

[stage:aeff]
service = simple
input_binning = b
input_names = nue, numu
param.aeff_scale = 0.5
param.livetime = 2 units.s
param.nue_norm = 2
`)
	b, _ := def.Binnings.Get("b")
	binned := s.(stage.Binned)
	assert.Equal(t, []string{"nue", "numu"}, binned.InputNames())
	assert.Same(t, b, binned.OutputBinning())

	in, err := maps.NewMapSet("flux", maps.Filled("nue", b, 1), maps.Filled("numu", b, 3))
	require.NoError(t, err)
	out, err := s.GetOutputs(context.Background(), in)
	require.NoError(t, err)
	set := mapSet(t, out)
	assert.Equal(t, "aeff", set.Name)
	assert.Equal(t, []float64{2, 2, 2, 2}, get(t, set, "nue").Hist)
	assert.Equal(t, []float64{3, 3, 3, 3}, get(t, set, "numu").Hist)
	assert.Equal(t, []float64{1, 1, 1, 1}, get(t, in, "nue").Hist, "inputs are not modified")

	_, err = s.GetOutputs(context.Background(), []float64{1})
	assert.ErrorIs(t, err, services.ErrInputType)
	_, err = s.GetOutputs(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrInputType)
}

func TestSimpleAeffLivetimeUnits(t *testing.T) {
	t.Parallel()

	s, def := mustBuild(t, smallBinning+`
[pipeline]
order = aeff:simple

[stage:aeff]
param.aeff_scale = 1
param.livetime = 1 units.common_year
`)
	b, _ := def.Binnings.Get("b")
	in, _ := maps.NewMapSet("flux", maps.Filled("nue", b, 1))
	out, err := s.GetOutputs(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 365*86400.0, get(t, mapSet(t, out), "nue").Hist[0], 1e-6)

	_, _, err = build(t, smallBinning+"\n[pipeline]\norder = aeff:simple\n\n[stage:aeff]\nparam.aeff_scale = 1\n")
	assert.ErrorIs(t, err, stage.ErrMissingParam)
}

const recoConfig = `
[binning]
order = true_energy, true_coszen
binnings = fine, finer, odd
fine.true_energy = dict(num_bins=20, is_lin=True, domain=[0, 20]*units.GeV)
fine.true_coszen = dict(num_bins=2, is_lin=True, domain=[-1, 1])
finer.true_energy = dict(num_bins=40, is_lin=True, domain=[0, 20000]*units.MeV)
finer.true_coszen = dict(num_bins=2, is_lin=True, domain=[-1, 1])
odd.true_energy = dict(num_bins=20, is_lin=True, domain=[0, 20]*units.GeV)
odd.true_coszen = dict(num_bins=3, is_lin=True, domain=[-1, 1])

[pipeline]
order = reco:gaussian

[stage:reco]
service = gaussian
input_binning = fine
output_binning = finer
input_names = numu
threads = 3
use_transforms = USE
param.energy_resolution = 1 units.GeV
`

func recoInput(t *testing.T, b *binning.MultiDim) *maps.MapSet {
	t.Helper()

	hist := make([]float64, b.Size())
	hist[10*2+0] = 4
	hist[10*2+1] = 1
	m, err := maps.New("numu", b, hist)
	require.NoError(t, err)
	set, err := maps.NewMapSet("aeff", m)
	require.NoError(t, err)
	return set
}

func runReco(t *testing.T, useTransforms string) (stage.Stage, *maps.Map) {
	t.Helper()

	s, def := mustBuild(t, strings.Replace(recoConfig, "USE", useTransforms, 1))
	fine, _ := def.Binnings.Get("fine")
	out, err := s.GetOutputs(context.Background(), recoInput(t, fine))
	require.NoError(t, err)
	return s, get(t, mapSet(t, out), "numu")
}

func TestGaussianReco(t *testing.T) {
	t.Parallel()

	s, m := runReco(t, "false")
	assert.Equal(t, []int{40, 2}, m.Binning.Shape())

	var total [2]float64
	var mean float64
	centers := m.Binning.Dims()[0].Centers()
	for j, c := range centers {
		total[0] += m.Hist[j*2]
		total[1] += m.Hist[j*2+1]
		mean += c * m.Hist[j*2]
	}
	assert.InDelta(t, 4, total[0], 1e-9)
	assert.InDelta(t, 1, total[1], 1e-9)
	assert.InDelta(t, 10500, mean/total[0], 1e-6, "mean in MeV")

	tr, ok := s.(stage.Transformer)
	require.True(t, ok)
	assert.False(t, tr.UseTransforms())
	assert.Nil(t, tr.Transforms())
}

func TestGaussianRecoTransforms(t *testing.T) {
	t.Parallel()

	_, direct := runReco(t, "false")
	s, viaTransform := runReco(t, "true")
	assert.InDeltaSlice(t, direct.Hist, viaTransform.Hist, 1e-12)

	tr := s.(stage.Transformer)
	assert.True(t, tr.UseTransforms())
	smearing, ok := tr.Transforms().(*services.Smearing)
	require.True(t, ok)
	assert.Equal(t, "true_energy", smearing.Dim)
	require.Len(t, smearing.Matrix, 20)
	assert.Len(t, smearing.Matrix[0], 40)
	assert.InDelta(t, 10.25, smearing.Output[20], 1e-12, "output centres in the input unit")
}

func TestGaussianRecoErrors(t *testing.T) {
	t.Parallel()

	_, _, err := build(t, strings.Replace(strings.Replace(recoConfig, "USE", "no", 1), "input_binning = fine", "input_binning = odd", 1))
	assert.ErrorIs(t, err, services.ErrDimensions)

	_, _, err = build(t, strings.Replace(recoConfig, "USE", "maybe", 1))
	assert.ErrorIs(t, err, stage.ErrKwarg)

	s, def := mustBuild(t, strings.Replace(recoConfig, "USE", "no", 1))
	odd, _ := def.Binnings.Get("odd")
	_, err = s.GetOutputs(context.Background(), maps.DummyInputs([]string{"numu"}, odd))
	assert.ErrorIs(t, err, services.ErrDimensions)

	fine, _ := def.Binnings.Get("fine")
	mixed, err := maps.NewMapSet("aeff", maps.Filled("a", fine, 1), maps.Filled("b", odd, 1))
	require.NoError(t, err)
	_, err = s.GetOutputs(context.Background(), mixed)
	assert.ErrorIs(t, err, services.ErrDimensions)
}

func TestGaussianRecoZeroResolution(t *testing.T) {
	t.Parallel()

	s, def := mustBuild(t, `
[binning]
order = reco_energy
binnings = in, out
in.reco_energy = dict(num_bins=4, is_log=True, domain=[1, 10000]*units.GeV)
out.reco_energy = dict(num_bins=4, is_log=True, domain=[1, 10000]*units.GeV)

[pipeline]
order = reco:gaussian

[stage:reco]
input_binning = in
output_binning = out
param.energy_resolution = 0 units.dimensionless
`)
	in, _ := def.Binnings.Get("in")
	_, err := s.GetOutputs(context.Background(), maps.DummyInputs([]string{"numu"}, in))
	assert.ErrorIs(t, err, kernel.ErrSigma)
}
