// Package render walks a UI Schema tree and emits host-runtime nodes,
// applying conditionals, loop expansion, binding resolution, style
// merging and event wiring along the way.
//
// The walk is synchronous, stateless recursion over immutable inputs:
// the renderer never mutates the schema tree or the caller's data
// context, so a renderer may be shared across concurrent call sites.
// Failures inside a node degrade gracefully: the worst case is a
// placeholder subtree, never an aborted render.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/siciyuan404/llm2ui/pkg/binding"
	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// Options configures a Renderer.
type Options struct {
	Registry *registry.Registry

	// OnEvent receives (action, rawEvent, componentID) for every event
	// raised through a wired handler. Nil means events are dropped.
	OnEvent EventCallback

	// Placeholder overrides the fallback node for unknown component
	// types.
	Placeholder PlaceholderFunc

	Logger *slog.Logger

	// Tracer, when set, records one span per Render call.
	Tracer trace.Tracer
}

// Renderer interprets UI Schema documents against a component registry.
type Renderer struct {
	reg         *registry.Registry
	onEvent     EventCallback
	placeholder PlaceholderFunc
	logger      *slog.Logger
	tracer      trace.Tracer
}

// New creates a Renderer. A nil registry is legal and renders every
// component as a placeholder.
func New(opts Options) *Renderer {
	r := &Renderer{
		reg:         opts.Registry,
		onEvent:     opts.OnEvent,
		placeholder: opts.Placeholder,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
	}
	if r.reg == nil {
		r.reg = registry.New()
	}
	if r.placeholder == nil {
		r.placeholder = defaultPlaceholder
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "render")
	}
	return r
}

// Render walks the schema and returns the emitted root node. A root
// whose condition evaluates false renders nothing and returns (nil,
// nil); a root loop expanding to several instances is wrapped in a
// Fragment node keyed by the root id.
func (r *Renderer) Render(ctx context.Context, s *schema.UISchema) (*Node, error) {
	if s == nil || s.Root == nil {
		return nil, schema.ErrNilRoot
	}

	runID := uuid.NewString()
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "render.schema",
			trace.WithAttributes(
				attribute.String("llm2ui.run_id", runID),
				attribute.String("llm2ui.schema_version", s.Version),
				attribute.String("llm2ui.root_type", s.Root.Type),
			),
		)
		defer span.End()
	}

	nodes := r.renderComponent(ctx, s.Data, s.Root)
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return &Node{Key: s.Root.ID, ID: s.Root.ID, Type: FragmentType, Children: nodes}, nil
	}
}

// renderComponent evaluates one node through the fixed pipeline:
// condition, loop, type lookup, prop/style resolution, event wiring,
// content resolution, emit. It returns zero or more nodes (loops fan
// out, false conditions collapse to nothing).
func (r *Renderer) renderComponent(ctx context.Context, data map[string]any, c *schema.UIComponent) []*Node {
	if c == nil {
		return nil
	}

	// 1. Condition gates the node and its whole subtree.
	if c.Condition != "" && !binding.EvalCondition(c.Condition, data) {
		return nil
	}

	// 2. Loop expansion. The clone drops the loop spec so recursion
	// terminates, and derives a per-iteration id for key stability.
	if c.Loop != nil {
		return r.renderLoop(ctx, data, c)
	}

	// 3. Type lookup; a miss is soft and yields a placeholder.
	def, known := r.reg.Get(c.Type)
	if !known {
		r.logger.Warn("unknown component type", "type", c.Type, "id", c.ID)
		return []*Node{r.placeholder(c.Type, c.ID)}
	}

	// 4. Prop resolution over registry defaults.
	props := r.resolveProps(def, c, data)

	// 5. Style resolution, with bindings in style values interpolated.
	style, className := resolveStyle(c.Style, data)

	// 6. Event wiring.
	handlers := r.wireEvents(c)

	node := &Node{
		Key:       c.ID,
		ID:        c.ID,
		Type:      c.Type,
		Props:     props,
		Style:     style,
		ClassName: className,
		Handlers:  handlers,
	}

	// 7. Children beat text, text beats binding.
	switch {
	case len(c.Children) > 0:
		for _, child := range c.Children {
			node.Children = append(node.Children, r.renderComponent(ctx, data, child)...)
		}
	case c.Text != "":
		node.Content = binding.ResolveString(c.Text, data)
	case c.Binding != "":
		if v, ok := binding.ResolveValue(c.Binding, data); ok {
			node.Content = binding.Stringify(v)
		} else {
			// Failed bindings stay literal so authors can see them.
			node.Content = c.Binding
		}
	}

	// 8. Emit, handing materialization to the registered capability.
	if def.Render != nil {
		children := make([]registry.Node, len(node.Children))
		for i, child := range node.Children {
			children[i] = child
		}
		node.Value = def.Render(props, children)
	}
	return []*Node{node}
}

func (r *Renderer) renderLoop(ctx context.Context, data map[string]any, c *schema.UIComponent) []*Node {
	src, ok := binding.ResolveValue(c.Loop.Source, data)
	if !ok {
		r.logger.Warn("loop source did not resolve", "id", c.ID, "source", c.Loop.Source)
		return nil
	}
	seq, isSeq := src.([]any)
	if !isSeq {
		// Non-array sources expand to an empty fragment, not an error.
		r.logger.Warn("loop source is not a sequence", "id", c.ID, "source", c.Loop.Source)
		return nil
	}

	itemKey := c.Loop.Item()
	indexKey := c.Loop.Index()

	var out []*Node
	for i, elem := range seq {
		// Fresh overlay per iteration; the caller's context is never
		// touched.
		overlay := make(map[string]any, len(data)+2)
		for k, v := range data {
			overlay[k] = v
		}
		overlay[itemKey] = elem
		overlay[indexKey] = i

		clone := *c
		clone.Loop = nil
		clone.ID = fmt.Sprintf("%s-%d", c.ID, i)
		out = append(out, r.renderComponent(ctx, overlay, &clone)...)
	}
	return out
}

// resolveProps layers resolved schema props over the definition's
// defaults. Objects recurse; only string leaves interpolate; arrays and
// non-string primitives pass through untouched.
func (r *Renderer) resolveProps(def registry.Definition, c *schema.UIComponent, data map[string]any) map[string]any {
	if len(def.DefaultProps) == 0 && len(c.Props) == 0 {
		return nil
	}

	props := make(map[string]any, len(def.DefaultProps)+len(c.Props))
	for k, v := range def.DefaultProps {
		props[k] = v
	}
	for k, v := range c.Props {
		props[k] = resolvePropValue(v, data)
	}

	if def.Schema != "" {
		if err := r.reg.ValidateProps(c.Type, props); err != nil {
			// Soft: a prop contract violation renders anyway and is
			// surfaced to the theme author through the log.
			r.logger.Warn("props failed schema validation", "type", c.Type, "id", c.ID, "error", err)
		}
	}
	return props
}

func resolvePropValue(v any, data map[string]any) any {
	switch t := v.(type) {
	case string:
		if binding.IsExpr(t) {
			if resolved, ok := binding.ResolveValue(t, data); ok {
				return resolved
			}
			return t
		}
		return binding.ResolveString(t, data)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, nested := range t {
			out[k] = resolvePropValue(nested, data)
		}
		return out
	default:
		return v
	}
}

func resolveStyle(style *schema.StyleProps, data map[string]any) (map[string]string, string) {
	if style == nil {
		return nil, ""
	}
	merged := style.Resolved()
	for k, v := range merged {
		merged[k] = binding.ResolveString(v, data)
	}
	return merged, style.ClassName
}

func (r *Renderer) wireEvents(c *schema.UIComponent) map[string]Handler {
	if len(c.Events) == 0 {
		return nil
	}
	handlers := make(map[string]Handler, len(c.Events))
	for _, eb := range c.Events {
		eb := eb
		componentID := c.ID
		handlers[HandlerName(eb.Event)] = func(rawEvent any) {
			if r.onEvent != nil {
				r.onEvent(eb.Action, rawEvent, componentID)
			}
		}
	}
	return handlers
}

// HandlerName synthesizes the host handler name for an event:
// "click" → "onClick", "mouseEnter" → "onMouseEnter".
func HandlerName(event string) string {
	if event == "" {
		return "on"
	}
	head := event[:1]
	if head >= "a" && head <= "z" {
		head = string(head[0] - 'a' + 'A')
	}
	return "on" + head + event[1:]
}
