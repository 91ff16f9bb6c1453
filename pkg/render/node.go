package render

import (
	"github.com/siciyuan404/llm2ui/pkg/registry"
)

// FragmentType is the synthetic node type produced when loop expansion
// at the schema root yields more than one instance.
const FragmentType = "Fragment"

// PlaceholderType is the node type emitted for component types missing
// from the registry.
const PlaceholderType = "UnknownComponent"

// Handler is an event handler wired onto a node. Invoking it reports
// the declared action to the renderer's event callback.
type Handler func(rawEvent any)

// EventCallback receives every event raised through a rendered node.
// The renderer performs no business logic of its own; the host
// application interprets the action.
type EventCallback func(action string, rawEvent any, componentID string)

// Node is one emitted host-runtime node: merged props, style, handlers
// and content, keyed by the (possibly loop-derived) component id.
type Node struct {
	// Key is the reconciliation key: the component id, suffixed with
	// the iteration index for loop-expanded instances.
	Key       string            `json:"key"`
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Props     map[string]any    `json:"props,omitempty"`
	Style     map[string]string `json:"style,omitempty"`
	ClassName string            `json:"className,omitempty"`
	Content   string            `json:"content,omitempty"`
	Children  []*Node           `json:"children,omitempty"`

	// Handlers maps synthesized handler names ("onClick") to wired
	// handlers. Not serialized; the host attaches them.
	Handlers map[string]Handler `json:"-"`

	// Value is the host value produced by the component definition's
	// render capability, when one is registered.
	Value registry.Node `json:"-"`

	// Payload carries diagnostic data for placeholder nodes.
	Payload map[string]any `json:"payload,omitempty"`
}

// HandlerNames lists the wired handler names, for hosts that serialize
// node trees.
func (n *Node) HandlerNames() []string {
	if len(n.Handlers) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Handlers))
	for name := range n.Handlers {
		names = append(names, name)
	}
	return names
}

// PlaceholderFunc builds the fallback node for an unregistered
// component type.
type PlaceholderFunc func(typeName, id string) *Node

func defaultPlaceholder(typeName, id string) *Node {
	return &Node{
		Key:     id,
		ID:      id,
		Type:    PlaceholderType,
		Content: "Unknown component: " + typeName,
		Payload: map[string]any{"type": typeName, "id": id},
	}
}
