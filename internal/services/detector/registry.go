package detector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Factory constructs a detector. Model loading happens here so a broken
// deployment fails at startup instead of on the first request.
type Factory func(ctx context.Context, opts Options) (FaceDetector, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("detector name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("detector factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("detector %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register for use in package init functions.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) Create(ctx context.Context, name string, opts Options) (FaceDetector, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown detector strategy %q (registered: %v)", name, r.Names())
	}

	d, err := factory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s detector: %w", name, err)
	}

	opts.logger().Info("Face detector initialized", zap.String("strategy", name))
	return d, nil
}

func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is filled by the strategy packages' init functions.
var DefaultRegistry = NewRegistry()
