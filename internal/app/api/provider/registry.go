package provider

import (
	"fmt"
	"sort"
	"sync"

	"video-subtitler/internal/app/api"
	apperrors "video-subtitler/internal/app/errors"
)

// Registry holds the configured subtitle providers keyed by name. Selection
// is a pure lookup: asking for a name that was never configured fails fast
// with a provider-unavailable condition instead of substituting a default.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]api.SubtitleProvider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]api.SubtitleProvider)}
}

// Register adds a provider under the given name.
func (r *Registry) Register(name string, p api.SubtitleProvider) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (api.SubtitleProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, apperrors.ProviderUnavailable(name, "not configured")
	}
	return p, nil
}

// List returns the registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
