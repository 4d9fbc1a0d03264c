package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	rendertemplate "github.com/goliatone/go-orderform/pkg/render/template"
	"github.com/goliatone/go-orderform/pkg/schema"
)

// Renderer writes the control markup for one schema field into buf.
type Renderer func(buf *bytes.Buffer, field schema.Field, data ComponentData) error

// ComponentData carries the per-field render inputs.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ThemePartials maps partial keys such as "forms.select" to template
	// paths supplied by the active theme.
	ThemePartials map[string]string

	ControlID string
	Value     string
	Selected  map[string]bool
	Invalid   bool
	// Hints maps option values to formatted price hints ("×1.2", "+$9.99").
	Hints map[string]string
}

// Descriptor bundles a renderer with the stylesheets it needs.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
}

// Registry tracks component descriptors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
	kinds      map[schema.FieldKind]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
		kinds:      make(map[schema.FieldKind]string),
	}
}

// Clone returns a copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
		cloned.components[name] = descriptor
	}
	for kind, name := range r.kinds {
		cloned.kinds[kind] = name
	}
	return cloned
}

// Register associates a descriptor with name, replacing any existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	r.components[name] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Bind routes a field kind to a registered component.
func (r *Registry) Bind(kind schema.FieldKind, name string) error {
	name = normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[name]; !ok {
		return fmt.Errorf("components: bind %s: component %q not registered", kind, name)
	}
	r.kinds[kind] = name
	return nil
}

// ForKind returns the descriptor bound to kind.
func (r *Registry) ForKind(kind schema.FieldKind) (Descriptor, bool) {
	r.mu.RLock()
	name, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, false
	}
	return r.Descriptor(name)
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	return descriptor, true
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stylesheets collects the unique stylesheets of the named components.
func (r *Registry) Stylesheets(names []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, name := range names {
		for _, href := range r.components[normalize(name)].Stylesheets {
			if _, ok := seen[href]; ok || href == "" {
				continue
			}
			seen[href] = struct{}{}
			out = append(out, href)
		}
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
