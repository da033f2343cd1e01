package ocr

import (
	"sort"
	"strings"
)

const DefaultProvider = "gemini"

// Registry is the static allow-list of providers, keyed by lowercase name.
type Registry struct {
	def       string
	providers map[string]Provider
}

func NewRegistry(def string, providers ...Provider) *Registry {
	r := &Registry{
		def:       strings.ToLower(strings.TrimSpace(def)),
		providers: make(map[string]Provider, len(providers)),
	}
	if r.def == "" {
		r.def = DefaultProvider
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// Lookup returns the named provider, or the default one when the name is
// not on the list. It returns nil only if the default itself is unregistered.
func (r *Registry) Lookup(name string) Provider {
	if p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return r.providers[r.def]
}

func (r *Registry) Default() string { return r.def }

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
