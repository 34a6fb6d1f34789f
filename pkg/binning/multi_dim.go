package binning

import (
	"strings"

	"github.com/pkg/errors"
)

// MultiDim is an immutable, ordered product of one-dimensional binnings.
type MultiDim struct {
	dims []*OneDim
}

// NewMultiDim concatenates dims in order. Dimension names must be unique.
func NewMultiDim(dims ...*OneDim) (*MultiDim, error) {
	if len(dims) == 0 {
		return nil, errors.Wrap(ErrInvalidBinning, "at least one dimension is required")
	}
	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if d == nil {
			return nil, errors.Wrap(ErrInvalidBinning, "nil dimension")
		}
		if _, ok := seen[d.name]; ok {
			return nil, errors.Wrapf(ErrInvalidBinning, "duplicate dimension %q", d.name)
		}
		seen[d.name] = struct{}{}
	}
	return &MultiDim{dims: append([]*OneDim(nil), dims...)}, nil
}

// Dims returns the dimensions in order.
func (m *MultiDim) Dims() []*OneDim {
	return append([]*OneDim(nil), m.dims...)
}

// Names returns the dimension names in order.
func (m *MultiDim) Names() []string {
	out := make([]string, len(m.dims))
	for i, d := range m.dims {
		out[i] = d.name
	}
	return out
}

// Dim returns the dimension with the given name.
func (m *MultiDim) Dim(name string) (*OneDim, bool) {
	for _, d := range m.dims {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Shape returns the number of bins per dimension.
func (m *MultiDim) Shape() []int {
	out := make([]int, len(m.dims))
	for i, d := range m.dims {
		out[i] = d.NumBins()
	}
	return out
}

// Size returns the total number of bins.
func (m *MultiDim) Size() int {
	n := 1
	for _, d := range m.dims {
		n *= d.NumBins()
	}
	return n
}

// Downsample merges factor adjacent bins along every dimension.
func (m *MultiDim) Downsample(factor int) (*MultiDim, error) {
	dims := make([]*OneDim, len(m.dims))
	for i, d := range m.dims {
		ds, err := d.Downsample(factor)
		if err != nil {
			return nil, err
		}
		dims[i] = ds
	}
	return &MultiDim{dims: dims}, nil
}

// Equal reports whether both binnings have equal dimensions in the same order.
func (m *MultiDim) Equal(o *MultiDim) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || len(m.dims) != len(o.dims) {
		return false
	}
	for i := range m.dims {
		if !m.dims[i].Equal(o.dims[i]) {
			return false
		}
	}
	return true
}

func (m *MultiDim) String() string {
	parts := make([]string, len(m.dims))
	for i, d := range m.dims {
		parts[i] = d.name
	}
	return "MultiDim(" + strings.Join(parts, " x ") + ")"
}
