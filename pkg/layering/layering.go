// Package layering composes base, platform and theme variants of a
// component template into one effective schema.
//
// Merge order is fixed: base → platform → theme. Later layers override
// only the fields they explicitly define, so theme authors get a
// deterministic override precedence without a schema diff/patch format.
package layering

import (
	"errors"
	"fmt"
	"sync"

	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// Layer identifies one position in the override chain.
type Layer string

const (
	LayerBase     Layer = "base"
	LayerPlatform Layer = "platform"
	LayerTheme    Layer = "theme"
)

var (
	// ErrTemplateNotFound is returned when no base layer exists for a
	// requested component name.
	ErrTemplateNotFound = errors.New("layering: template not found")

	// ErrDuplicateTemplate is returned when a template is registered
	// twice for the same (name, layer, platform/theme) key.
	ErrDuplicateTemplate = errors.New("layering: template already registered")

	// ErrInvalidLayer is returned for layers outside base/platform/theme
	// or for layer/qualifier mismatches.
	ErrInvalidLayer = errors.New("layering: invalid layer")
)

// ComponentTemplate is one layer's variant of a named component schema.
type ComponentTemplate struct {
	Layer    Layer             `json:"layer"`
	Platform string            `json:"platform,omitempty"` // set for layer "platform"
	Theme    string            `json:"theme,omitempty"`    // set for layer "theme"
	Template *schema.UISchema  `json:"template"`
	Styles   map[string]string `json:"styles,omitempty"`
}

func (t ComponentTemplate) key() string {
	switch t.Layer {
	case LayerBase:
		return "base"
	case LayerPlatform:
		return "platform:" + t.Platform
	case LayerTheme:
		return "theme:" + t.Theme
	}
	return string(t.Layer)
}

func (t ComponentTemplate) validate() error {
	if t.Template == nil {
		return errors.New("layering: template has no schema")
	}
	switch t.Layer {
	case LayerBase:
		if t.Platform != "" || t.Theme != "" {
			return fmt.Errorf("%w: base layer must not carry a platform or theme", ErrInvalidLayer)
		}
	case LayerPlatform:
		if t.Platform == "" {
			return fmt.Errorf("%w: platform layer requires a platform id", ErrInvalidLayer)
		}
	case LayerTheme:
		if t.Theme == "" {
			return fmt.Errorf("%w: theme layer requires a theme id", ErrInvalidLayer)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLayer, t.Layer)
	}
	return nil
}

// Merged is the result of folding the layers registered for a name.
type Merged struct {
	Schema *schema.UISchema  `json:"schema"`
	Styles map[string]string `json:"styles,omitempty"`
	Layers []Layer           `json:"layers"` // layers that contributed, in merge order
}

// Store keeps component templates keyed by (name, layer, qualifier).
// Multiple templates may exist per component name, at most one per key.
type Store struct {
	mu        sync.RWMutex
	templates map[string]map[string]ComponentTemplate // name → key → template
}

// NewStore creates an empty template store.
func NewStore() *Store {
	return &Store{templates: make(map[string]map[string]ComponentTemplate)}
}

// Register stores one layer's template for a component name.
func (s *Store) Register(name string, tmpl ComponentTemplate) error {
	if name == "" {
		return errors.New("layering: empty template name")
	}
	if err := tmpl.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.templates[name]
	if !ok {
		byKey = make(map[string]ComponentTemplate)
		s.templates[name] = byKey
	}
	key := tmpl.key()
	if _, exists := byKey[key]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateTemplate, name, key)
	}
	byKey[key] = tmpl
	return nil
}

// Names lists the registered component names.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

// Resolve looks up at most one template per layer (base is
// unconditional, platform matches the requested platform, theme
// matches the requested theme) and folds them in order. Absent
// platform/theme layers are legal; a missing base is not.
func (s *Store) Resolve(name, platform, theme string) (*Merged, error) {
	s.mu.RLock()
	byKey, ok := s.templates[name]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	base, haveBase := byKey["base"]
	plat, havePlat := byKey["platform:"+platform]
	them, haveTheme := byKey["theme:"+theme]
	s.mu.RUnlock()

	if !haveBase {
		return nil, fmt.Errorf("%w: %s has no base layer", ErrTemplateNotFound, name)
	}

	merged := &Merged{
		Schema: cloneSchemaTop(base.Template),
		Styles: copyStyles(nil, base.Styles),
		Layers: []Layer{LayerBase},
	}
	if havePlat && platform != "" {
		merged.Schema = Merge(merged.Schema, plat.Template)
		merged.Styles = copyStyles(merged.Styles, plat.Styles)
		merged.Layers = append(merged.Layers, LayerPlatform)
	}
	if haveTheme && theme != "" {
		merged.Schema = Merge(merged.Schema, them.Template)
		merged.Styles = copyStyles(merged.Styles, them.Styles)
		merged.Layers = append(merged.Layers, LayerTheme)
	}
	return merged, nil
}

// Merge folds override layers onto a base schema, left to right.
// Top-level scalars take the last defined value (an override's zero
// value does not clobber), root.props is a shallow merge where later
// keys win, and every other root field follows last-defined-wins.
// Inputs are never mutated.
func Merge(base *schema.UISchema, overrides ...*schema.UISchema) *schema.UISchema {
	out := cloneSchemaTop(base)
	for _, o := range overrides {
		if o == nil {
			continue
		}
		if o.Version != "" {
			out.Version = o.Version
		}
		if o.Meta != nil {
			meta := *o.Meta
			out.Meta = &meta
		}
		if len(o.Data) > 0 {
			if out.Data == nil {
				out.Data = make(map[string]any, len(o.Data))
			}
			for k, v := range o.Data {
				out.Data[k] = v
			}
		}
		if o.Root == nil {
			continue
		}
		if out.Root == nil {
			root := *o.Root
			out.Root = &root
			continue
		}
		mergeRoot(out.Root, o.Root)
	}
	return out
}

func mergeRoot(dst, src *schema.UIComponent) {
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.Text != "" {
		dst.Text = src.Text
	}
	if src.Binding != "" {
		dst.Binding = src.Binding
	}
	if src.Condition != "" {
		dst.Condition = src.Condition
	}
	if src.Loop != nil {
		loop := *src.Loop
		dst.Loop = &loop
	}
	if src.Style != nil {
		style := *src.Style
		dst.Style = &style
	}
	if len(src.Events) > 0 {
		dst.Events = append([]schema.EventBinding(nil), src.Events...)
	}
	if len(src.Children) > 0 {
		dst.Children = append([]*schema.UIComponent(nil), src.Children...)
	}
	if len(src.Props) > 0 {
		merged := make(map[string]any, len(dst.Props)+len(src.Props))
		for k, v := range dst.Props {
			merged[k] = v
		}
		for k, v := range src.Props {
			merged[k] = v
		}
		dst.Props = merged
	}
}

// cloneSchemaTop copies the document and its root one level deep —
// enough that merging never writes into a registered template.
func cloneSchemaTop(s *schema.UISchema) *schema.UISchema {
	if s == nil {
		return &schema.UISchema{}
	}
	out := *s
	if s.Meta != nil {
		meta := *s.Meta
		out.Meta = &meta
	}
	if s.Data != nil {
		data := make(map[string]any, len(s.Data))
		for k, v := range s.Data {
			data[k] = v
		}
		out.Data = data
	}
	if s.Root != nil {
		root := *s.Root
		if s.Root.Props != nil {
			props := make(map[string]any, len(s.Root.Props))
			for k, v := range s.Root.Props {
				props[k] = v
			}
			root.Props = props
		}
		out.Root = &root
	}
	return &out
}

func copyStyles(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
