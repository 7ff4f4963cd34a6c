package registry

import (
	"context"
	"slices"
)

// Registry reads and writes typed records.
type Registry interface {
	// Get returns the stored value of the record, or its default when unset.
	Get(ctx context.Context, iface, name string) (any, error)
	// Set validates value against the schema and stores it.
	Set(ctx context.Context, iface, name string, value any) error
}

// Backend is the raw storage used by Store.
type Backend interface {
	// Load returns the stored raw value and whether one exists.
	Load(ctx context.Context, iface, name string) (any, bool, error)
	// Save stores an already validated value.
	Save(ctx context.Context, iface, name string, value any) error
}

// Store implements Registry over a Backend, enforcing the schemas.
type Store struct {
	backend  Backend
	onChange []func(iface, name string)
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// OnChange registers fn to run after every successful Set.
func (s *Store) OnChange(fn func(iface, name string)) {
	s.onChange = append(s.onChange, fn)
}

// Get implements Registry.
func (s *Store) Get(ctx context.Context, iface, name string) (any, error) {
	f, err := lookupField(iface, name)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.backend.Load(ctx, iface, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaultValue(f), nil
	}
	return f.Coerce(raw)
}

// Set implements Registry.
func (s *Store) Set(ctx context.Context, iface, name string, value any) error {
	f, err := lookupField(iface, name)
	if err != nil {
		return err
	}
	v, err := f.Coerce(value)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, iface, name, v); err != nil {
		return err
	}
	for _, fn := range s.onChange {
		fn(iface, name)
	}
	return nil
}

// Backend returns the underlying storage.
func (s *Store) Backend() Backend { return s.backend }

func cloneValue(v any) any {
	if l, ok := v.([]string); ok {
		return slices.Clone(l)
	}
	return v
}
