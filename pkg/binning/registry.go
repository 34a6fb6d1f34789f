package binning

import (
	"fmt"

	"github.com/pkg/errors"
)

// ArgError reports the argument key that failed while building a registry.
type ArgError struct {
	Key string
	Err error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("binning %s: %v", e.Key, e.Err)
}

func (e *ArgError) Unwrap() error { return e.Err }

// RegistrySpec describes a binning section: the dimension order, the binning
// names and a lookup for the "<binning>.<dim>" keyword-argument expressions.
type RegistrySpec struct {
	Order    []string
	Binnings []string
	Args     func(key string) (string, bool)
}

// Registry maps binning names to immutable multi-dimensional binnings.
type Registry struct {
	names    []string
	binnings map[string]*MultiDim
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{binnings: make(map[string]*MultiDim)}
}

// BuildRegistry builds one MultiDim per binning name by concatenating one
// OneDim per entry of spec.Order.
func BuildRegistry(spec RegistrySpec) (*Registry, error) {
	reg := NewRegistry()
	for _, name := range spec.Binnings {
		dims := make([]*OneDim, 0, len(spec.Order))
		for _, dim := range spec.Order {
			key := name + "." + dim
			args, ok := spec.Args(key)
			if !ok {
				return nil, &ArgError{Key: key, Err: ErrMissingArgs}
			}
			d, err := ParseOneDim(dim, args)
			if err != nil {
				return nil, &ArgError{Key: key, Err: err}
			}
			dims = append(dims, d)
		}
		md, err := NewMultiDim(dims...)
		if err != nil {
			return nil, &ArgError{Key: name, Err: err}
		}
		if err := reg.Add(name, md); err != nil {
			return nil, &ArgError{Key: name, Err: err}
		}
	}
	return reg, nil
}

// Add registers a binning under name.
func (r *Registry) Add(name string, b *MultiDim) error {
	if _, ok := r.binnings[name]; ok {
		return errors.Wrapf(ErrDuplicateBinning, "%q", name)
	}
	r.names = append(r.names, name)
	r.binnings[name] = b
	return nil
}

// Get returns the binning registered under name.
func (r *Registry) Get(name string) (*MultiDim, bool) {
	b, ok := r.binnings[name]
	return b, ok
}

// Names returns registered names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered binnings.
func (r *Registry) Len() int {
	return len(r.names)
}
