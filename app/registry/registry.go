// Package registry is the single entry point external collaborators
// use: a plugin id resolves to the validate/normalize/enrich/classify
// functions for one upstream source.
package registry

import (
	"sort"

	"github.com/osinthq/intake/app/normalize"
)

// Plugin bundles the pipeline stages for one source. Normalize is
// mandatory; the rest are optional. Validate is advisory only: its
// warnings may be logged but never block normalization, because
// upstream feeds routinely deviate from their nominal schema.
type Plugin struct {
	ID          string
	Description string

	Validate  func(payload any) []string
	Normalize func(payload any) []normalize.Item
	Enrich    func(items []normalize.Item) []normalize.Item
	Classify  func(items []normalize.Item) []normalize.Item
}

type Registry struct {
	plugins map[string]Plugin
}

func New() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

func (r *Registry) Register(plugin Plugin) {
	r.plugins[plugin.ID] = plugin
}

func (r *Registry) Get(id string) (Plugin, bool) {
	plugin, ok := r.plugins[id]
	return plugin, ok
}

// IDs returns all registered plugin ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run executes the full pipeline for one plugin: validate (advisory),
// normalize, then the optional enrich and classify stages. The item
// slice is never nil.
func (r *Registry) Run(id string, payload any) ([]normalize.Item, []string, bool) {
	plugin, ok := r.Get(id)
	if !ok {
		return nil, nil, false
	}

	var warnings []string
	if plugin.Validate != nil {
		warnings = plugin.Validate(payload)
	}

	items := plugin.Normalize(payload)
	if items == nil {
		items = []normalize.Item{}
	}

	if plugin.Enrich != nil {
		items = plugin.Enrich(items)
	}
	if plugin.Classify != nil {
		items = plugin.Classify(items)
	}

	return items, warnings, true
}
