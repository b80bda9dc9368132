package report

import (
	"context"
	"fmt"
	"sync"
)

// BackendSettings carries the connection parameters a backend may need.
// Each backend reads only the fields that apply to it.
type BackendSettings struct {
	// Path is the database file location for embedded backends.
	Path string
	// DSN is the connection string for server backends.
	DSN string
	// ProjectID and Collection address managed document backends.
	ProjectID  string
	Collection string
}

// Factory is a function type that creates a Store for one backend from the
// provided settings
type Factory func(ctx context.Context, settings BackendSettings) (Store, error)

// Registry manages storage backend factories
type Registry interface {
	// Register adds a new backend factory
	Register(backend string, factory Factory) error
	// Create instantiates a store for the specified backend using the provided settings
	Create(ctx context.Context, backend string, settings BackendSettings) (Store, error)
	// ListBackends returns a list of registered backends
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new backend registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

func (r *registry) Register(backend string, factory Factory) error {
	if backend == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[backend]; exists {
		return fmt.Errorf("backend %q is already registered", backend)
	}

	r.factories[backend] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, backend string, settings BackendSettings) (Store, error) {
	r.mu.RLock()
	factory, exists := r.factories[backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q is not registered", backend)
	}

	return factory(ctx, settings)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]string, 0, len(r.factories))
	for backend := range r.factories {
		backends = append(backends, backend)
	}
	return backends
}
