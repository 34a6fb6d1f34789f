package param

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Set is an ordered collection of parameters with unique names. It stores
// pointers, so a Set built from another Set is a live view over the same
// parameters. Set is not safe for concurrent use; updates and pipeline runs
// are expected to be serialised by the caller.
type Set struct {
	params []*Param
	index  map[string]int
}

// NewSet returns a set holding params in order. Duplicate names are rejected.
func NewSet(params ...*Param) (*Set, error) {
	s := &Set{index: make(map[string]int, len(params))}
	for _, p := range params {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends p. It fails if a parameter with the same name is present.
func (s *Set) Add(p *Param) error {
	if p == nil {
		return ErrNilParam
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[p.Name]; ok {
		return errors.Wrapf(ErrDuplicateParam, "%q", p.Name)
	}
	s.index[p.Name] = len(s.params)
	s.params = append(s.params, p)
	return nil
}

// Extend appends every parameter of other whose name is not present yet.
func (s *Set) Extend(other *Set) {
	if other == nil {
		return
	}
	for _, p := range other.params {
		if _, ok := s.index[p.Name]; ok {
			continue
		}
		_ = s.Add(p)
	}
}

// UpdateExisting copies values from other into the parameters of s that share
// a name, and returns how many were updated. Parameters of other that s does
// not hold are ignored.
func (s *Set) UpdateExisting(other *Set) (int, error) {
	if other == nil {
		return 0, nil
	}
	n := 0
	for _, src := range other.params {
		dst, ok := s.Get(src.Name)
		if !ok {
			continue
		}
		if dst != src {
			if err := dst.UpdateFrom(src); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

// Get returns the parameter called name.
func (s *Set) Get(name string) (*Param, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.params[i], true
}

// Has reports whether a parameter called name is present.
func (s *Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Params returns the parameters in order.
func (s *Set) Params() []*Param {
	if s == nil {
		return nil
	}
	return append([]*Param(nil), s.params...)
}

// Names returns the parameter names in order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.params))
	for i, p := range s.params {
		out[i] = p.Name
	}
	return out
}

// Len returns the number of parameters.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.params)
}

// Free returns a view over the parameters that are not fixed.
func (s *Set) Free() *Set {
	return s.filter(func(p *Param) bool { return !p.IsFixed })
}

// Fixed returns a view over the fixed parameters.
func (s *Set) Fixed() *Set {
	return s.filter(func(p *Param) bool { return p.IsFixed })
}

func (s *Set) filter(keep func(*Param) bool) *Set {
	out := &Set{index: make(map[string]int)}
	for _, p := range s.Params() {
		if keep(p) {
			_ = out.Add(p)
		}
	}
	return out
}

// Hash fingerprints the current names and values.
func (s *Set) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range s.Params() {
		h.Write([]byte(p.Name))
		h.Write([]byte{0})
		if p.IsString() {
			h.Write([]byte(p.Literal))
		} else {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Value.Magnitude))
			h.Write(buf[:])
			h.Write([]byte(p.Value.Unit.String()))
		}
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func (s *Set) String() string {
	parts := make([]string, 0, s.Len())
	for _, p := range s.Params() {
		parts = append(parts, p.String())
	}
	return "ParamSet[" + strings.Join(parts, ", ") + "]"
}
