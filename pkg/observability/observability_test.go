package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "llm2ui", config.ServiceName)
	require.Equal(t, "development", config.Environment)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.Equal(t, 1.0, config.SampleRate)
	require.True(t, config.Enabled)
	require.False(t, config.Insecure)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
}

func TestTrackOperation(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	attrs := []attribute.KeyValue{attribute.String("test.key", "test.value")}
	newCtx, finish := p.TrackOperation(context.Background(), "render.schema", attrs...)
	require.NotNil(t, newCtx)

	time.Sleep(1 * time.Millisecond)
	finish(nil)
}

func TestTrackOperationWithError(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	_, finish := p.TrackOperation(context.Background(), "render.schema")
	finish(errors.New("boom"))
}

func TestRecordMetricsDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	p.RecordRender(ctx, attribute.String("test", "value"))
	p.RecordError(ctx, errors.New("test"))
	p.RecordDuration(ctx, 100*time.Millisecond)
	p.RecordPromptTokens(ctx, 1200)
}

func TestStartSpan(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	newCtx, span := p.StartSpan(context.Background(), "test.span")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestShutdownDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}

func TestRenderOperation(t *testing.T) {
	attrs := RenderOperation("run-123", "Card", 7)
	require.Len(t, attrs, 3)
	require.Equal(t, "llm2ui.render.run_id", string(attrs[0].Key))
	require.Equal(t, "run-123", attrs[0].Value.AsString())
}

func TestPromptOperation(t *testing.T) {
	attrs := PromptOperation("aurora", 950, true)
	require.Len(t, attrs, 3)
	require.Equal(t, "llm2ui.prompt.over_budget", string(attrs[2].Key))
	require.True(t, attrs[2].Value.AsBool())
}

func TestThemeOperation(t *testing.T) {
	attrs := ThemeOperation("aurora", "1.2.0", 12)
	require.Len(t, attrs, 3)
	require.Equal(t, "aurora", attrs[0].Value.AsString())
}

func TestStreamOperation(t *testing.T) {
	attrs := StreamOperation("sess-1", 512, false)
	require.Len(t, attrs, 3)
	require.Equal(t, int64(512), attrs[1].Value.AsInt64())
}

func TestSpanHelpers(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, SpanFromContext(ctx))
	AddSpanEvent(ctx, "test.event", attribute.String("key", "value"))
	SetSpanStatus(ctx, errors.New("test error"))
	SetSpanStatus(ctx, nil)
}
