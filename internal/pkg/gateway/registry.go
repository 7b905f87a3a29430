package gateway

import (
	"fmt"
	"sort"
	"strings"
)

// Registry resolves a provider name to its adapter. Names are matched
// case-insensitively.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

// Register adds an adapter under its lowercased name. A later registration
// with the same name replaces the earlier one.
func (r *Registry) Register(g Gateway) {
	r.gateways[strings.ToLower(strings.TrimSpace(g.Name()))] = g
}

// Resolve returns the adapter for the given provider name. Unknown names fail
// with an error listing every registered provider.
func (r *Registry) Resolve(name string) (Gateway, error) {
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway %q, available: %s", name, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
