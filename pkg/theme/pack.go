// Package theme bundles everything one visual style publishes to the
// engine: a component registry, worked example schemas, color and
// design tokens, and layered templates.
//
// Each pack owns a fresh registry so activating one theme never leaks
// components into another.
package theme

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/siciyuan404/llm2ui/pkg/layering"
	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
)

var (
	// ErrDuplicateExample is returned when two examples in one pack
	// share an id. Uniqueness is enforced in full; tolerating partial
	// collisions only defers the bug to prompt assembly.
	ErrDuplicateExample = errors.New("theme: duplicate example id")

	// ErrIncompatibleEngine is returned when a pack's engine constraint
	// excludes the schema version this engine speaks.
	ErrIncompatibleEngine = errors.New("theme: incompatible engine constraint")
)

// Manifest describes a pack's identity.
type Manifest struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Platforms   []string `yaml:"platforms,omitempty" json:"platforms,omitempty"`

	// Engine is an optional semver constraint on the supported UI
	// Schema version, e.g. ">= 1.0".
	Engine string `yaml:"engine,omitempty" json:"engine,omitempty"`
}

// Validate checks identity fields and version/constraint syntax.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return errors.New("theme: manifest has no id")
	}
	if m.Name == "" {
		return errors.New("theme: manifest has no name")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("theme: manifest version %q: %w", m.Version, err)
	}
	if m.Engine != "" {
		c, err := semver.NewConstraint(m.Engine)
		if err != nil {
			return fmt.Errorf("theme: engine constraint %q: %w", m.Engine, err)
		}
		engineVer := semver.MustParse(schema.Version)
		if !c.Check(engineVer) {
			return fmt.Errorf("%w: %q does not admit schema version %s", ErrIncompatibleEngine, m.Engine, schema.Version)
		}
	}
	return nil
}

// Example is one worked schema shown to the model during prompt
// assembly.
type Example struct {
	ID          string           `json:"id"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Negative    bool             `json:"negative,omitempty"` // anti-pattern example
	Schema      *schema.UISchema `json:"schema"`
}

// ColorScheme is a pack's named palette.
type ColorScheme struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Colors      map[string]string `yaml:"colors" json:"colors"`
}

// Pack is one loaded theme.
type Pack struct {
	Manifest  Manifest
	Registry  *registry.Registry
	Templates *layering.Store
	Examples  []Example
	Colors    *ColorScheme
	Tokens    map[string]string
}

// New creates an empty pack with a fresh registry and template store.
func New(m Manifest) (*Pack, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Pack{
		Manifest:  m,
		Registry:  registry.New(),
		Templates: layering.NewStore(),
		Tokens:    make(map[string]string),
	}, nil
}

// AddExample appends an example, enforcing id uniqueness.
func (p *Pack) AddExample(e Example) error {
	if e.ID == "" {
		return errors.New("theme: example has no id")
	}
	if e.Schema == nil {
		return fmt.Errorf("theme: example %q has no schema", e.ID)
	}
	for _, existing := range p.Examples {
		if existing.ID == e.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateExample, e.ID)
		}
	}
	p.Examples = append(p.Examples, e)
	return nil
}

// ExampleByID returns the example with the given id.
func (p *Pack) ExampleByID(id string) (Example, bool) {
	for _, e := range p.Examples {
		if e.ID == id {
			return e, true
		}
	}
	return Example{}, false
}

// PositiveExamples returns the non-negative examples in pack order.
func (p *Pack) PositiveExamples() []Example {
	var out []Example
	for _, e := range p.Examples {
		if !e.Negative {
			out = append(out, e)
		}
	}
	return out
}

// NegativeExamples returns the anti-pattern examples in pack order.
func (p *Pack) NegativeExamples() []Example {
	var out []Example
	for _, e := range p.Examples {
		if e.Negative {
			out = append(out, e)
		}
	}
	return out
}
