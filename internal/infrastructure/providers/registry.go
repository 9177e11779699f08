package providers

import (
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// ProviderRegistry is a fixed set of adapters assembled at startup. The
// slice preserves registration order, which quote aggregation and selection
// rely on for deterministic tie-breaking. The registry is read-only after
// construction, so no locking is needed.
type ProviderRegistry struct {
	providers []fulfillment.Provider
	byCode    map[fulfillment.ProviderCode]fulfillment.Provider
}

// NewProviderRegistry creates a registry from the given adapters, keeping
// their order
func NewProviderRegistry(adapters ...fulfillment.Provider) *ProviderRegistry {
	r := &ProviderRegistry{
		byCode: make(map[fulfillment.ProviderCode]fulfillment.Provider, len(adapters)),
	}
	for _, adapter := range adapters {
		if _, exists := r.byCode[adapter.Code()]; exists {
			continue
		}
		r.providers = append(r.providers, adapter)
		r.byCode[adapter.Code()] = adapter
	}
	return r
}

var _ fulfillment.Registry = (*ProviderRegistry)(nil)

// Get returns the provider adapter for the given code
func (r *ProviderRegistry) Get(code fulfillment.ProviderCode) (fulfillment.Provider, error) {
	provider, ok := r.byCode[code]
	if !ok {
		return nil, fulfillment.ErrProviderNotRegistered
	}
	return provider, nil
}

// List returns all registered providers in registration order
func (r *ProviderRegistry) List() []fulfillment.Provider {
	return r.providers
}
