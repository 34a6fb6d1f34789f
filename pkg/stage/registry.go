package stage

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Factory constructs a stage from its arguments.
type Factory func(Args) (Stage, error)

// Key identifies a service implementing a stage role.
type Key struct {
	Role    string
	Service string
}

func (k Key) String() string {
	return k.Role + ":" + k.Service
}

// Registry maps (role, service) pairs to factories. Services are installed
// explicitly at start-up.
type Registry struct {
	mu        sync.RWMutex
	factories map[Key]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[Key]Factory{}}
}

// Register installs a factory. Returns an error if the pair already exists.
func (r *Registry) Register(role, service string, factory Factory) error {
	if role == "" || service == "" {
		return errors.Wrap(ErrInvalidKey, "role and service are required")
	}
	if factory == nil {
		return errors.Wrapf(ErrInvalidKey, "factory is required for %s:%s", role, service)
	}
	key := Key{Role: role, Service: service}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return errors.Wrap(ErrAlreadyRegistered, key.String())
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(role, service string, factory Factory) {
	if err := r.Register(role, service, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for role and service.
func (r *Registry) Lookup(role, service string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[Key{Role: role, Service: service}]
	return f, ok
}

// Build constructs and validates the stage described by args.
func (r *Registry) Build(args Args) (Stage, error) {
	factory, ok := r.Lookup(args.StageName, args.ServiceName)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownService, "%s:%s", args.StageName, args.ServiceName)
	}
	s, err := factory(args)
	if err != nil {
		return nil, err
	}
	if err := Validate(s, args.StageName, args.ServiceName); err != nil {
		return nil, err
	}
	return s, nil
}

// Keys returns the registered pairs sorted by role then service.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Role != keys[j].Role {
			return keys[i].Role < keys[j].Role
		}
		return keys[i].Service < keys[j].Service
	})
	return keys
}
