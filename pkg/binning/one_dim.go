package binning

import (
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/internal/expr"
	"github.com/askiada/go-pisa/pkg/units"
)

// OneDim is an immutable one-dimensional binning. Edges are magnitudes in Unit.
type OneDim struct {
	name  string
	edges []float64
	unit  units.Unit
	isLog bool
	tex   string
}

// OneDimSpec holds the construction arguments of a OneDim. Either NumBins and
// Domain or BinEdges must be set.
type OneDimSpec struct {
	NumBins  int
	Domain   []units.Quantity
	BinEdges []units.Quantity
	IsLog    bool
	Tex      string
}

// NewOneDim builds a binning from spec.
func NewOneDim(name string, spec OneDimSpec) (*OneDim, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidBinning, "name is required")
	}
	var (
		edges []float64
		unit  units.Unit
		err   error
	)
	switch {
	case len(spec.BinEdges) > 0:
		if spec.NumBins != 0 || len(spec.Domain) != 0 {
			return nil, errors.Wrapf(ErrInvalidBinning, "%s: bin_edges excludes num_bins and domain", name)
		}
		unit = spec.BinEdges[0].Unit
		edges, err = magnitudes(spec.BinEdges, unit)
	case spec.NumBins > 0:
		if len(spec.Domain) != 2 {
			return nil, errors.Wrapf(ErrInvalidBinning, "%s: domain needs 2 values, got %d", name, len(spec.Domain))
		}
		unit = spec.Domain[0].Unit
		var domain []float64
		domain, err = magnitudes(spec.Domain, unit)
		if err == nil {
			edges, err = spaced(domain[0], domain[1], spec.NumBins, spec.IsLog)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidBinning, "%s: either num_bins with domain or bin_edges is required", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if err := checkEdges(edges, spec.IsLog); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return &OneDim{name: name, edges: edges, unit: unit, isLog: spec.IsLog, tex: spec.Tex}, nil
}

// ParseOneDim builds a binning from a keyword-argument expression such as
// "dict(num_bins=10, is_log=True, domain=[1,80]*units.GeV)".
func ParseOneDim(name, kwargs string) (*OneDim, error) {
	v, err := expr.Eval(kwargs, nil)
	if err != nil {
		return nil, err
	}
	if v.Kind != expr.KindDict {
		return nil, errors.Wrapf(ErrInvalidBinning, "%s: expected keyword arguments, got %s", name, v.Kind)
	}
	spec, err := specFromDict(v.Dict)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return NewOneDim(name, spec)
}

func specFromDict(d *expr.Dict) (OneDimSpec, error) {
	var (
		spec   OneDimSpec
		err    error
		linSet bool
		isLin  bool
		logSet bool
	)
	for _, key := range d.Keys {
		v := d.Values[key]
		switch key {
		case "num_bins":
			spec.NumBins, err = v.Int()
		case "is_log":
			spec.IsLog, err = v.Truthy()
			logSet = true
		case "is_lin":
			isLin, err = v.Truthy()
			linSet = true
		case "domain":
			spec.Domain, err = v.Quantities()
		case "bin_edges":
			spec.BinEdges, err = v.Quantities()
		case "tex":
			if v.Kind != expr.KindString {
				err = errors.Wrapf(expr.ErrType, "expected string, got %s", v.Kind)
			}
			spec.Tex = v.Str
		default:
			err = errors.Wrapf(ErrInvalidBinning, "unexpected argument %q", key)
		}
		if err != nil {
			return OneDimSpec{}, errors.Wrap(err, key)
		}
	}
	if linSet {
		if logSet && isLin == spec.IsLog {
			return OneDimSpec{}, errors.Wrap(ErrInvalidBinning, "is_lin and is_log disagree")
		}
		spec.IsLog = !isLin
	}
	return spec, nil
}

func magnitudes(qs []units.Quantity, unit units.Unit) ([]float64, error) {
	out := make([]float64, len(qs))
	for i, q := range qs {
		m, err := q.MagnitudeIn(unit)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func spaced(lo, hi float64, n int, isLog bool) ([]float64, error) {
	edges := make([]float64, n+1)
	if isLog {
		if lo <= 0 || hi <= 0 {
			return nil, errors.Wrap(ErrInvalidBinning, "log binning needs a positive domain")
		}
		llo, lhi := math.Log10(lo), math.Log10(hi)
		for i := range edges {
			edges[i] = math.Pow(10, llo+(lhi-llo)*float64(i)/float64(n))
		}
	} else {
		for i := range edges {
			edges[i] = lo + (hi-lo)*float64(i)/float64(n)
		}
	}
	edges[0], edges[n] = lo, hi
	return edges, nil
}

func checkEdges(edges []float64, isLog bool) error {
	if len(edges) < 2 {
		return errors.Wrap(ErrInvalidBinning, "at least 2 edges are required")
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return errors.Wrap(ErrInvalidBinning, "edges must be strictly increasing")
		}
	}
	if isLog && edges[0] <= 0 {
		return errors.Wrap(ErrInvalidBinning, "log binning needs positive edges")
	}
	return nil
}

// Name returns the dimension name.
func (b *OneDim) Name() string { return b.name }

// Unit returns the unit of the edges.
func (b *OneDim) Unit() units.Unit { return b.unit }

// IsLog reports whether bins are logarithmically spaced.
func (b *OneDim) IsLog() bool { return b.isLog }

// Tex returns the LaTeX label.
func (b *OneDim) Tex() string { return b.tex }

// NumBins returns the number of bins.
func (b *OneDim) NumBins() int { return len(b.edges) - 1 }

// Edges returns a copy of the bin edges.
func (b *OneDim) Edges() []float64 {
	return append([]float64(nil), b.edges...)
}

// Centers returns bin midpoints, geometric for log binnings.
func (b *OneDim) Centers() []float64 {
	out := make([]float64, b.NumBins())
	for i := range out {
		if b.isLog {
			out[i] = math.Sqrt(b.edges[i] * b.edges[i+1])
		} else {
			out[i] = (b.edges[i] + b.edges[i+1]) / 2
		}
	}
	return out
}

// Widths returns the bin widths.
func (b *OneDim) Widths() []float64 {
	out := make([]float64, b.NumBins())
	for i := range out {
		out[i] = b.edges[i+1] - b.edges[i]
	}
	return out
}

// Downsample merges every factor adjacent bins into one.
func (b *OneDim) Downsample(factor int) (*OneDim, error) {
	if factor < 1 || b.NumBins()%factor != 0 {
		return nil, errors.Wrapf(ErrDownsample, "%s: %d bins by %d", b.name, b.NumBins(), factor)
	}
	edges := make([]float64, 0, b.NumBins()/factor+1)
	for i := 0; i < len(b.edges); i += factor {
		edges = append(edges, b.edges[i])
	}
	return &OneDim{name: b.name, edges: edges, unit: b.unit, isLog: b.isLog, tex: b.tex}, nil
}

// Equal reports whether both binnings have the same name, unit and edges.
func (b *OneDim) Equal(o *OneDim) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil || b.name != o.name || !b.unit.Equal(o.unit) || len(b.edges) != len(o.edges) {
		return false
	}
	for i := range b.edges {
		if b.edges[i] != o.edges[i] {
			return false
		}
	}
	return true
}
