package provider

import (
	"sort"
	"time"
)

// Registry holds the configured providers. It is a pure read surface
// over health state; only the Tracker mutates providers.
type Registry struct {
	providers []*Provider
	byName    map[string]*Provider
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Provider)}
}

// Register adds a provider. Later registrations with the same name
// replace the earlier one.
func (r *Registry) Register(p *Provider) {
	if p == nil {
		return
	}
	if _, exists := r.byName[p.Name]; exists {
		for i, existing := range r.providers {
			if existing.Name == p.Name {
				r.providers[i] = p
				break
			}
		}
	} else {
		r.providers = append(r.providers, p)
	}
	r.byName[p.Name] = p
}

// Get returns the provider registered under name, or nil.
func (r *Registry) Get(name string) *Provider {
	return r.byName[name]
}

// All returns every registered provider in registration order.
func (r *Registry) All() []*Provider {
	return append([]*Provider(nil), r.providers...)
}

// Available returns the eligible providers of the requested capability,
// optionally filtered to those declaring strength, sorted ascending by
// cost per unit with ties broken by descending quality score.
func (r *Registry) Available(capability Capability, strength string, now time.Time) []*Provider {
	candidates := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Capability != capability {
			continue
		}
		if !p.HasStrength(strength) {
			continue
		}
		if !p.Eligible(now) {
			continue
		}
		candidates = append(candidates, p)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CostPerUnit != candidates[j].CostPerUnit {
			return candidates[i].CostPerUnit < candidates[j].CostPerUnit
		}
		return candidates[i].QualityScore > candidates[j].QualityScore
	})
	return candidates
}
