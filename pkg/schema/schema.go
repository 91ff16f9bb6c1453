// Package schema defines the UI Schema document model: a versioned,
// tree-shaped description of a user interface produced by a language
// model or hand-authored, consumed by the renderer and the template
// layering merger.
package schema

// Version is the wire format version this engine understands.
// Producers (LLM output) must emit exactly this value.
const Version = "1.0"

// UISchema is the root document. It is owned by the caller and treated
// as immutable by everything in this module; the renderer never mutates
// the tree it is handed.
type UISchema struct {
	Version string         `json:"version"`
	Root    *UIComponent   `json:"root"`
	Data    map[string]any `json:"data,omitempty"`
	Meta    *Meta          `json:"meta,omitempty"`
}

// Meta carries optional document metadata.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// UIComponent is one node in the schema tree.
//
// ID must be unique within a schema; loop expansion derives per-iteration
// ids as "<id>-<index>", and host-runtime reconciliation keys off them.
type UIComponent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Props     map[string]any    `json:"props,omitempty"`
	Children  []*UIComponent    `json:"children,omitempty"`
	Events    []EventBinding    `json:"events,omitempty"`
	Style     *StyleProps       `json:"style,omitempty"`
	Text      string            `json:"text,omitempty"`
	Binding   string            `json:"binding,omitempty"`
	Condition string            `json:"condition,omitempty"`
	Loop      *LoopSpec         `json:"loop,omitempty"`
}

// EventBinding declares "on event X, signal action Y with payload Z".
// The renderer only wires the handler; the host application performs
// the action.
type EventBinding struct {
	Event   string `json:"event"`
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// LoopSpec repeats a component once per element of the sequence its
// Source path resolves to.
type LoopSpec struct {
	Source    string `json:"source"`
	ItemName  string `json:"itemName,omitempty"`  // overlay key for the element, default "item"
	IndexName string `json:"indexName,omitempty"` // overlay key for the index, default "index"
}

// StyleProps holds a node's styling: shorthand fields, a free-form
// inline map, and an optional class name applied verbatim by the host.
// Inline entries override shorthand fields of the same CSS property.
type StyleProps struct {
	ClassName    string            `json:"className,omitempty"`
	Inline       map[string]string `json:"inline,omitempty"`
	Width        string            `json:"width,omitempty"`
	Height       string            `json:"height,omitempty"`
	Margin       string            `json:"margin,omitempty"`
	Padding      string            `json:"padding,omitempty"`
	Background   string            `json:"background,omitempty"`
	Color        string            `json:"color,omitempty"`
	FontSize     string            `json:"fontSize,omitempty"`
	FontWeight   string            `json:"fontWeight,omitempty"`
	TextAlign    string            `json:"textAlign,omitempty"`
	Display      string            `json:"display,omitempty"`
	Gap          string            `json:"gap,omitempty"`
	BorderRadius string            `json:"borderRadius,omitempty"`
}

// Resolved flattens shorthand fields and the inline map into a single
// style map. Inline keys win over shorthands.
func (s *StyleProps) Resolved() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string)
	shorthands := map[string]string{
		"width":         s.Width,
		"height":        s.Height,
		"margin":        s.Margin,
		"padding":       s.Padding,
		"background":    s.Background,
		"color":         s.Color,
		"font-size":     s.FontSize,
		"font-weight":   s.FontWeight,
		"text-align":    s.TextAlign,
		"display":       s.Display,
		"gap":           s.Gap,
		"border-radius": s.BorderRadius,
	}
	for k, v := range shorthands {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range s.Inline {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Item returns the overlay key for the loop element.
func (l *LoopSpec) Item() string {
	if l.ItemName != "" {
		return l.ItemName
	}
	return "item"
}

// Index returns the overlay key for the loop index.
func (l *LoopSpec) Index() string {
	if l.IndexName != "" {
		return l.IndexName
	}
	return "index"
}

// Walk visits every component reachable from c in depth-first order.
// Returning false from fn stops the walk.
func (c *UIComponent) Walk(fn func(*UIComponent) bool) bool {
	if c == nil {
		return true
	}
	if !fn(c) {
		return false
	}
	for _, child := range c.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
