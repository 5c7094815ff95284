package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Generator is the contract every output plugin instance satisfies: render
// the analyzer's gathered state into one artifact at targetPath.
type Generator interface {
	GenerateOutput(targetPath string) error
}

// Registration describes one output plugin: its format name, the filename
// extensions it can produce (non-empty, ordered; the first is used when a
// target path must be derived), and a constructor binding an instance to an
// Analyzer.
type Registration struct {
	FormatName string
	Extensions []string
	New        func(a *Analyzer) Generator
}

// Registry maps format names to plugin registrations and maintains the
// inverted extension index. It is populated before a run and read-only
// afterwards, except for disabling plugins by name.
type Registry struct {
	plugins  map[string]Registration
	extIndex map[string][]string // extension -> format names, sorted
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:  make(map[string]Registration),
		extIndex: make(map[string][]string),
	}
}

// Register adds a plugin registration. Format names are lowercased;
// extensions are normalized to a leading dot and lowercase. Registering a
// name twice or with no extensions is an error.
func (r *Registry) Register(reg Registration) error {
	name := strings.ToLower(strings.TrimSpace(reg.FormatName))
	if name == "" {
		return fmt.Errorf("plugin registration requires a format name")
	}
	if len(reg.Extensions) == 0 {
		return fmt.Errorf("plugin %q declares no extensions", name)
	}
	if reg.New == nil {
		return fmt.Errorf("plugin %q has no constructor", name)
	}
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q is already registered", name)
	}

	normalized := make([]string, 0, len(reg.Extensions))
	for _, ext := range reg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		return fmt.Errorf("plugin %q declares no usable extensions", name)
	}

	reg.FormatName = name
	reg.Extensions = normalized
	r.plugins[name] = reg
	r.rebuildIndex()
	return nil
}

// Remove disables a plugin by name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, exists := r.plugins[name]; !exists {
		return
	}
	delete(r.plugins, name)
	r.rebuildIndex()
}

// Get returns the registration for a format name.
func (r *Registry) Get(name string) (Registration, bool) {
	reg, ok := r.plugins[strings.ToLower(strings.TrimSpace(name))]
	return reg, ok
}

// Formats returns all registrations sorted by format name.
func (r *Registry) Formats() []Registration {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	regs := make([]Registration, 0, len(names))
	for _, name := range names {
		regs = append(regs, r.plugins[name])
	}
	return regs
}

// ByExtension returns the registrations claiming the given extension
// (leading dot, case-insensitive), sorted by format name.
func (r *Registry) ByExtension(ext string) []Registration {
	names := r.extIndex[strings.ToLower(ext)]
	regs := make([]Registration, 0, len(names))
	for _, name := range names {
		regs = append(regs, r.plugins[name])
	}
	return regs
}

// rebuildIndex recomputes the extension index by inverting every
// registration's extension list.
func (r *Registry) rebuildIndex() {
	r.extIndex = make(map[string][]string)
	for name, reg := range r.plugins {
		for _, ext := range reg.Extensions {
			r.extIndex[ext] = append(r.extIndex[ext], name)
		}
	}
	for ext := range r.extIndex {
		sort.Strings(r.extIndex[ext])
	}
}
