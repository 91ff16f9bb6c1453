package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RenderOperation builds the standard attribute set for one schema
// render.
func RenderOperation(runID, rootType string, componentCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("llm2ui.render.run_id", runID),
		attribute.String("llm2ui.render.root_type", rootType),
		attribute.Int("llm2ui.render.components", componentCount),
	}
}

// PromptOperation builds the standard attribute set for one prompt
// assembly.
func PromptOperation(packID string, tokens int, overBudget bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("llm2ui.prompt.pack", packID),
		attribute.Int("llm2ui.prompt.tokens", tokens),
		attribute.Bool("llm2ui.prompt.over_budget", overBudget),
	}
}

// ThemeOperation builds the standard attribute set for a theme pack
// load or switch.
func ThemeOperation(packID, version string, components int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("llm2ui.theme.id", packID),
		attribute.String("llm2ui.theme.version", version),
		attribute.Int("llm2ui.theme.components", components),
	}
}

// StreamOperation builds the standard attribute set for one streaming
// session event.
func StreamOperation(sessionID string, chunkLen int, done bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("llm2ui.stream.session", sessionID),
		attribute.Int("llm2ui.stream.chunk_bytes", chunkLen),
		attribute.Bool("llm2ui.stream.done", done),
	}
}

// SpanFromContext returns the active span, or a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent attaches an event to the active span, if any.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus marks the active span ok or errored.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
