package scrape

import (
	"context"
	"fmt"

	"ContentCurator/internal/domain"
)

// Adapter fetches raw items for one source. Implementations talk to
// their platform only; filtering and deduplication happen downstream.
// Failures must be reported as *domain.FetchError so the orchestrator
// can distinguish transient from permanent.
type Adapter interface {
	Platform() domain.Platform
	Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error)
}

// Registry keeps the closed mapping from platform tags to their
// adapters. Adding a platform means registering a variant, not touching
// dispatch logic.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[domain.Platform]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.Platform]Adapter{}
	}
	r.adapters[adapter.Platform()] = adapter
}

// Resolve returns the adapter for a platform or an error if it is absent.
func (r *Registry) Resolve(platform domain.Platform) (Adapter, error) {
	if adapter, ok := r.adapters[platform]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("no adapter registered for platform %s", platform)
}
