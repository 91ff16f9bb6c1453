// Package registry holds the component capability lookup used by the
// renderer and published by theme packs.
//
// Registries are always instantiated fresh per theme, never a
// process-wide singleton, so multiple themes can coexist and a theme
// switch fully unloads the old theme's components.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrDuplicateComponent is returned when a type name is registered
	// twice in one registry. Duplicate registration is a theme-authoring
	// bug, surfaced at load time rather than deferred to render time.
	ErrDuplicateComponent = errors.New("registry: component already registered")

	// ErrUnknownComponent is returned by ValidateProps for a type that
	// was never registered.
	ErrUnknownComponent = errors.New("registry: unknown component")
)

// Node is the opaque host-runtime value a component's render capability
// produces. The registry does not interpret it.
type Node = any

// RenderFunc materializes a component instance from resolved props and
// already-rendered children.
type RenderFunc func(props map[string]any, children []Node) Node

// PropSchema documents one prop of a component for theme authors and
// for prompt assembly.
type PropSchema struct {
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Definition is a registered component capability.
type Definition struct {
	Type         string                `json:"type" yaml:"type"`
	DisplayName  string                `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Category     string                `json:"category,omitempty" yaml:"category,omitempty"`
	Description  string                `json:"description,omitempty" yaml:"description,omitempty"`
	Props        map[string]PropSchema `json:"props,omitempty" yaml:"props,omitempty"`
	DefaultProps map[string]any        `json:"defaultProps,omitempty" yaml:"defaultProps,omitempty"`

	// Schema is an optional raw JSON Schema for the props object,
	// compiled at registration and enforced by ValidateProps.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Render materializes the component. Nil is legal for definitions
	// that exist only for documentation/prompt purposes.
	Render RenderFunc `json:"-" yaml:"-"`
}

// Registry is a thread-safe name → capability map. Writes happen at
// theme-load time; renders only read.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]Definition
	compiled map[string]*jsonschema.Schema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		defs:     make(map[string]Definition),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a component definition. A second registration for the
// same type name fails with ErrDuplicateComponent.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return errors.New("registry: definition has no type name")
	}

	var compiled *jsonschema.Schema
	if def.Schema != "" {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		schemaURL := fmt.Sprintf("https://llm2ui.schemas.local/components/%s.schema.json", def.Type)
		if err := c.AddResource(schemaURL, strings.NewReader(def.Schema)); err != nil {
			return fmt.Errorf("registry: load props schema for %q: %w", def.Type, err)
		}
		s, err := c.Compile(schemaURL)
		if err != nil {
			return fmt.Errorf("registry: compile props schema for %q: %w", def.Type, err)
		}
		compiled = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, def.Type)
	}
	r.defs[def.Type] = def
	if compiled != nil {
		r.compiled[def.Type] = compiled
	}
	return nil
}

// Get returns the definition for a type name.
func (r *Registry) Get(typeName string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[typeName]
	return def, ok
}

// Has reports whether a type name is registered.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[typeName]
	return ok
}

// All returns every registered definition, sorted by type name for
// deterministic enumeration (prompt assembly depends on this).
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// ByCategory returns the definitions in a category, sorted by type name.
func (r *Registry) ByCategory(category string) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Definition
	for _, def := range r.defs {
		if def.Category == category {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// ValidateProps checks a props object against the component's compiled
// JSON Schema. Definitions without a schema accept anything.
func (r *Registry) ValidateProps(typeName string, props map[string]any) error {
	r.mu.RLock()
	compiled, hasSchema := r.compiled[typeName]
	_, known := r.defs[typeName]
	r.mu.RUnlock()

	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, typeName)
	}
	if !hasSchema {
		return nil
	}

	generic := make(map[string]any, len(props))
	for k, v := range props {
		generic[k] = v
	}
	if err := compiled.Validate(any(generic)); err != nil {
		return fmt.Errorf("registry: props for %q: %w", typeName, err)
	}
	return nil
}
