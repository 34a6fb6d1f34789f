package maps

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/binning"
)

// Map is a histogram over a multi-dimensional binning. Hist is laid out in
// row-major order over the binning's dimensions.
type Map struct {
	Name    string
	Hist    []float64
	Binning *binning.MultiDim
}

// New returns a map after checking that hist matches the binning size.
func New(name string, b *binning.MultiDim, hist []float64) (*Map, error) {
	if b == nil {
		return nil, ErrBinningRequired
	}
	if len(hist) != b.Size() {
		return nil, errors.Wrapf(ErrShape, "%s: %d values for %d bins", name, len(hist), b.Size())
	}
	return &Map{Name: name, Hist: hist, Binning: b}, nil
}

// Filled returns a map with every bin set to value.
func Filled(name string, b *binning.MultiDim, value float64) *Map {
	hist := make([]float64, b.Size())
	if value != 0 {
		for i := range hist {
			hist[i] = value
		}
	}
	return &Map{Name: name, Hist: hist, Binning: b}
}

// Size returns the number of bins.
func (m *Map) Size() int {
	return len(m.Hist)
}

// Sum returns the total content.
func (m *Map) Sum() float64 {
	s := 0.0
	for _, v := range m.Hist {
		s += v
	}
	return s
}

// Clone returns a deep copy sharing the binning.
func (m *Map) Clone() *Map {
	return &Map{Name: m.Name, Hist: append([]float64(nil), m.Hist...), Binning: m.Binning}
}

// Scale returns a copy with every bin multiplied by f.
func (m *Map) Scale(f float64) *Map {
	out := m.Clone()
	for i := range out.Hist {
		out.Hist[i] *= f
	}
	return out
}

// Downsample merges factor adjacent bins along every dimension, summing their
// content.
func (m *Map) Downsample(factor int) (*Map, error) {
	coarse, err := m.Binning.Downsample(factor)
	if err != nil {
		return nil, errors.Wrap(err, m.Name)
	}
	oldShape, newShape := m.Binning.Shape(), coarse.Shape()
	hist := make([]float64, coarse.Size())
	idx := make([]int, len(oldShape))
	for flat, v := range m.Hist {
		rem := flat
		for d := len(oldShape) - 1; d >= 0; d-- {
			idx[d] = rem % oldShape[d]
			rem /= oldShape[d]
		}
		target := 0
		for d := range newShape {
			target = target*newShape[d] + idx[d]/factor
		}
		hist[target] += v
	}
	return &Map{Name: m.Name, Hist: hist, Binning: coarse}, nil
}

func (m *Map) writeHash(h hash.Hash) {
	var buf [8]byte
	h.Write([]byte(m.Name))
	h.Write([]byte{0})
	h.Write([]byte(m.Binning.String()))
	for _, v := range m.Hist {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
}

// Hash fingerprints the map's name, binning and content.
func (m *Map) Hash() uint64 {
	h := fnv.New64a()
	m.writeHash(h)
	return h.Sum64()
}

// MapSet is an ordered collection of maps with unique names.
type MapSet struct {
	Name  string
	maps  []*Map
	index map[string]int
}

// NewMapSet returns a set holding maps in order.
func NewMapSet(name string, maps ...*Map) (*MapSet, error) {
	s := &MapSet{Name: name, index: make(map[string]int, len(maps))}
	for _, m := range maps {
		if _, ok := s.index[m.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateMap, "%q", m.Name)
		}
		s.index[m.Name] = len(s.maps)
		s.maps = append(s.maps, m)
	}
	return s, nil
}

// Get returns the map called name.
func (s *MapSet) Get(name string) (*Map, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.maps[i], true
}

// Maps returns the maps in order.
func (s *MapSet) Maps() []*Map {
	return append([]*Map(nil), s.maps...)
}

// Names returns the map names in order.
func (s *MapSet) Names() []string {
	out := make([]string, len(s.maps))
	for i, m := range s.maps {
		out[i] = m.Name
	}
	return out
}

// Len returns the number of maps.
func (s *MapSet) Len() int {
	return len(s.maps)
}

// Size returns the total number of bins over all maps.
func (s *MapSet) Size() int {
	n := 0
	for _, m := range s.maps {
		n += m.Size()
	}
	return n
}

// Downsample downsamples every map by factor.
func (s *MapSet) Downsample(factor int) (*MapSet, error) {
	out := make([]*Map, len(s.maps))
	for i, m := range s.maps {
		ds, err := m.Downsample(factor)
		if err != nil {
			return nil, err
		}
		out[i] = ds
	}
	return NewMapSet(s.Name, out...)
}

// Scale returns a copy with every map multiplied by f.
func (s *MapSet) Scale(f float64) *MapSet {
	out := make([]*Map, len(s.maps))
	for i, m := range s.maps {
		out[i] = m.Scale(f)
	}
	res, _ := NewMapSet(s.Name, out...)
	return res
}

// Hash fingerprints every map in order. A nil set hashes to zero.
func (s *MapSet) Hash() uint64 {
	if s == nil {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(s.Name))
	for _, m := range s.maps {
		m.writeHash(h)
	}
	return h.Sum64()
}

func (s *MapSet) String() string {
	return "MapSet(" + s.Name + ": " + strings.Join(s.Names(), ", ") + ")"
}

// DummyInputs builds stand-in inputs for running a single stage in isolation:
// maps whose name contains "mu" are filled with ones, all others with zeros.
func DummyInputs(names []string, b *binning.MultiDim) *MapSet {
	out := make([]*Map, 0, len(names))
	for _, name := range names {
		value := 0.0
		if strings.Contains(name, "mu") {
			value = 1
		}
		out = append(out, Filled(name, b, value))
	}
	s, _ := NewMapSet("ones", out...)
	return s
}
