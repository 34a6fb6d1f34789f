package services

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/internal/kernel"
	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/stage"
	"github.com/askiada/go-pisa/pkg/units"
)

// Smearing maps the content of every input bin of the first dimension onto
// the output bins of that dimension. Matrix[i][j] is the fraction of input bin
// i reconstructed in output bin j.
type Smearing struct {
	Dim    string      `json:"dim"`
	Input  []float64   `json:"input_centers"`
	Output []float64   `json:"output_centers"`
	Matrix [][]float64 `json:"matrix"`
}

// GaussianReco smears the first dimension of every input map with a gaussian
// resolution and rebins the result onto output_binning. The remaining
// dimensions are carried over bin by bin.
//
// A dimensionless energy_resolution is relative to the bin centre; one with
// a unit is an absolute width.
type GaussianReco struct {
	*stage.Base
	names         []string
	inBinning     *binning.MultiDim
	outBinning    *binning.MultiDim
	threads       int
	useTransforms bool

	transform    *Smearing
	transformKey uint64
	transformIn  *binning.OneDim
}

// NewGaussianReco builds a reco:gaussian stage.
func NewGaussianReco(args stage.Args) (stage.Stage, error) {
	out, err := args.Binning("output_binning")
	if err != nil {
		return nil, err
	}
	if err := args.RequireParams("energy_resolution"); err != nil {
		return nil, err
	}
	threads, err := args.Int("threads", 1)
	if err != nil {
		return nil, err
	}
	useTransforms, err := args.Bool("use_transforms", false)
	if err != nil {
		return nil, err
	}
	r := &GaussianReco{
		Base:          stage.NewBase(args),
		names:         args.List("input_names"),
		outBinning:    out,
		threads:       threads,
		useTransforms: useTransforms,
	}
	if in, err := args.Binning("input_binning"); err == nil {
		if err := checkCompatible(in, out); err != nil {
			return nil, err
		}
		r.inBinning = in
	}
	return r, nil
}

func (r *GaussianReco) InputNames() []string             { return r.names }
func (r *GaussianReco) InputBinning() *binning.MultiDim  { return r.inBinning }
func (r *GaussianReco) OutputBinning() *binning.MultiDim { return r.outBinning }
func (r *GaussianReco) UseTransforms() bool              { return r.useTransforms }

// Transforms returns the last smearing matrix, or nil when transforms are
// disabled or nothing ran yet.
func (r *GaussianReco) Transforms() any {
	if r.transform == nil {
		return nil
	}
	return r.transform
}

// GetOutputs expects a *maps.MapSet whose maps share one binning.
func (r *GaussianReco) GetOutputs(ctx context.Context, inputs any) (any, error) {
	in, err := mapSetInput(inputs)
	if err != nil {
		return nil, err
	}
	return r.Compute(in.Hash(), func() (any, error) {
		return r.smearAll(ctx, in)
	})
}

func (r *GaussianReco) smearAll(ctx context.Context, in *maps.MapSet) (*maps.MapSet, error) {
	ms := in.Maps()
	if len(ms) == 0 {
		return maps.NewMapSet(r.StageName())
	}
	b := ms[0].Binning
	for _, m := range ms[1:] {
		if !m.Binning.Equal(b) {
			return nil, errors.Wrapf(ErrDimensions, "%s and %s have different binnings", ms[0].Name, m.Name)
		}
	}
	if err := checkCompatible(b, r.outBinning); err != nil {
		return nil, err
	}
	geom, err := r.geometry(b)
	if err != nil {
		return nil, err
	}

	var smear func(context.Context, []float64) ([]float64, error)
	if r.useTransforms {
		t, err := r.smearing(ctx, geom)
		if err != nil {
			return nil, err
		}
		smear = func(_ context.Context, w []float64) ([]float64, error) { return t.apply(w), nil }
	} else {
		smear = geom.direct
	}

	out := make([]*maps.Map, len(ms))
	for i, m := range ms {
		hist, err := r.rebin(ctx, m.Hist, b.Shape(), smear)
		if err != nil {
			return nil, errors.Wrap(err, m.Name)
		}
		out[i], err = maps.New(m.Name, r.outBinning, hist)
		if err != nil {
			return nil, err
		}
	}
	return maps.NewMapSet(r.StageName(), out...)
}

// rebin applies smear to every column along the first dimension.
func (r *GaussianReco) rebin(ctx context.Context, hist []float64, shape []int, smear func(context.Context, []float64) ([]float64, error)) ([]float64, error) {
	stride := 1
	for _, n := range shape[1:] {
		stride *= n
	}
	nOut := r.outBinning.Dims()[0].NumBins()
	out := make([]float64, nOut*stride)
	col := make([]float64, shape[0])
	for c := 0; c < stride; c++ {
		for i := range col {
			col[i] = hist[i*stride+c]
		}
		res, err := smear(ctx, col)
		if err != nil {
			return nil, err
		}
		for j, v := range res {
			out[j*stride+c] = v
		}
	}
	return out, nil
}

// geometry holds the first-dimension centres and widths expressed in the
// input unit, and the resolution of every input bin.
type geometry struct {
	dim     *binning.OneDim
	mu      []float64
	sigma   []float64
	centers []float64
	widths  []float64
	threads int
}

func (r *GaussianReco) geometry(b *binning.MultiDim) (*geometry, error) {
	inDim, outDim := b.Dims()[0], r.outBinning.Dims()[0]
	factor, err := outDim.Unit().ConversionFactor(inDim.Unit())
	if err != nil {
		return nil, errors.Wrapf(ErrDimensions, "%s: %v", inDim.Name(), err)
	}
	g := &geometry{
		dim:     inDim,
		mu:      inDim.Centers(),
		centers: outDim.Centers(),
		widths:  outDim.Widths(),
		threads: r.threads,
	}
	for i := range g.centers {
		g.centers[i] *= factor
		g.widths[i] *= factor
	}

	p, _ := r.Params().Get("energy_resolution")
	g.sigma = make([]float64, len(g.mu))
	if p.Unit().IsDimensionless() {
		res, err := magnitude(p, units.Dimensionless)
		if err != nil {
			return nil, err
		}
		for i, m := range g.mu {
			g.sigma[i] = res * math.Abs(m)
		}
	} else {
		res, err := magnitude(p, inDim.Unit())
		if err != nil {
			return nil, err
		}
		for i := range g.sigma {
			g.sigma[i] = res
		}
	}
	return g, nil
}

// direct evaluates the weighted sum of gaussians of one column at the output
// centres. Empty columns stay empty.
func (g *geometry) direct(ctx context.Context, w []float64) ([]float64, error) {
	total := 0.0
	for _, v := range w {
		total += v
	}
	if total == 0 {
		return make([]float64, len(g.centers)), nil
	}
	density, err := kernel.Gaussians(ctx, g.centers, g.mu, g.sigma, w, g.threads)
	if err != nil {
		return nil, err
	}
	for j := range density {
		density[j] *= total * g.widths[j]
	}
	return density, nil
}

// smearing returns the transform for geom, rebuilding it only when the
// params or the input binning changed.
func (r *GaussianReco) smearing(ctx context.Context, geom *geometry) (*Smearing, error) {
	key := r.Params().Hash()
	if r.transform != nil && r.transformKey == key && r.transformIn.Equal(geom.dim) {
		return r.transform, nil
	}
	t := &Smearing{
		Dim:    geom.dim.Name(),
		Input:  geom.mu,
		Output: geom.centers,
		Matrix: make([][]float64, len(geom.mu)),
	}
	for i := range geom.mu {
		row, err := kernel.Gaussians(ctx, geom.centers, geom.mu[i:i+1], geom.sigma[i:i+1], nil, geom.threads)
		if err != nil {
			return nil, err
		}
		for j := range row {
			row[j] *= geom.widths[j]
		}
		t.Matrix[i] = row
	}
	r.transform, r.transformKey, r.transformIn = t, key, geom.dim
	return t, nil
}

func (t *Smearing) apply(w []float64) []float64 {
	out := make([]float64, len(t.Output))
	for i, wi := range w {
		if wi == 0 {
			continue
		}
		for j, v := range t.Matrix[i] {
			out[j] += wi * v
		}
	}
	return out
}

// checkCompatible verifies that out can receive maps binned as in: same
// dimensions in the same order, identical trailing dimensions and a first
// dimension in a compatible unit.
func checkCompatible(in, out *binning.MultiDim) error {
	inDims, outDims := in.Dims(), out.Dims()
	if len(inDims) == 0 || len(inDims) != len(outDims) {
		return errors.Wrapf(ErrDimensions, "%s onto %s", in, out)
	}
	if inDims[0].Name() != outDims[0].Name() || !inDims[0].Unit().Compatible(outDims[0].Unit()) {
		return errors.Wrapf(ErrDimensions, "first dimension %s onto %s", inDims[0].Name(), outDims[0].Name())
	}
	for i := 1; i < len(inDims); i++ {
		if !inDims[i].Equal(outDims[i]) {
			return errors.Wrapf(ErrDimensions, "dimension %s differs", inDims[i].Name())
		}
	}
	return nil
}
