package promptctx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
	"github.com/siciyuan404/llm2ui/pkg/theme"
)

func testPack(t *testing.T) *theme.Pack {
	t.Helper()
	p, err := theme.New(theme.Manifest{ID: "aurora", Name: "Aurora", Version: "1.0.0"})
	require.NoError(t, err)

	defs := []registry.Definition{
		{
			Type: "Button", DisplayName: "Button", Category: "input",
			Description: "A clickable button.",
			Props: map[string]registry.PropSchema{
				"label":   {Type: "string", Required: true},
				"variant": {Type: "string", Enum: []any{"primary", "ghost"}},
			},
		},
		{Type: "Text", Category: "display"},
		{Type: "Card", Category: "display"},
	}
	for _, def := range defs {
		require.NoError(t, p.Registry.Register(def))
	}

	p.Colors = &theme.ColorScheme{
		Name:   "Aurora Dark",
		Colors: map[string]string{"primary": "#7c3aed", "surface": "#1e1b2e"},
	}

	mkSchema := func(id string) *schema.UISchema {
		return &schema.UISchema{
			Version: schema.Version,
			Root:    &schema.UIComponent{ID: id, Type: "Card"},
		}
	}
	for _, id := range []string{"login", "profile", "dashboard", "settings"} {
		require.NoError(t, p.AddExample(theme.Example{ID: id, Title: id, Schema: mkSchema(id)}))
	}
	require.NoError(t, p.AddExample(theme.Example{ID: "bad", Negative: true, Schema: mkSchema("bad")}))
	return p
}

func TestBuildSections(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})

	text, est := b.Build(context.Background(), Settings{IncludeColors: true})

	t.Run("Section Order", func(t *testing.T) {
		intro := strings.Index(text, "You generate user interfaces")
		comps := strings.Index(text, "## Available components")
		icons := strings.Index(text, "## Icon usage")
		colors := strings.Index(text, "## Color scheme")
		examples := strings.Index(text, "## Examples")
		closing := strings.Index(text, "## Output rules")

		for _, idx := range []int{intro, comps, icons, colors, examples, closing} {
			require.GreaterOrEqual(t, idx, 0)
		}
		assert.True(t, intro < comps && comps < icons && icons < colors && colors < examples && examples < closing)
	})

	t.Run("Component Docs", func(t *testing.T) {
		assert.Contains(t, text, "### Button (Button)")
		assert.Contains(t, text, "label: string (required)")
		assert.Contains(t, text, "one of [primary ghost]")
	})

	t.Run("Colors Listed", func(t *testing.T) {
		assert.Contains(t, text, "primary: #7c3aed")
	})

	t.Run("Examples Fenced", func(t *testing.T) {
		assert.Contains(t, text, "```json")
		assert.Equal(t, 3, est.ExamplesIncluded, "auto mode defaults to first 3")
	})

	t.Run("Estimate Totals", func(t *testing.T) {
		sum := est.Base + est.Components + est.Colors + est.Examples + est.Negative
		assert.Equal(t, sum, est.Total)
		assert.False(t, est.OverBudget)
	})
}

func TestComponentModes(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})
	ctx := context.Background()

	t.Run("Selected", func(t *testing.T) {
		text, _ := b.Build(ctx, Settings{
			ComponentMode:      ComponentsSelected,
			SelectedComponents: []string{"Button"},
		})
		assert.Contains(t, text, "Button")
		assert.NotContains(t, text, "### Card")
	})

	t.Run("Preset Category", func(t *testing.T) {
		text, _ := b.Build(ctx, Settings{ComponentMode: ComponentsPreset, PresetCategory: "display"})
		assert.Contains(t, text, "### Card")
		assert.NotContains(t, text, "### Button")
	})

	t.Run("Unknown Selection Skipped", func(t *testing.T) {
		text, _ := b.Build(ctx, Settings{
			ComponentMode:      ComponentsSelected,
			SelectedComponents: []string{"Ghost"},
		})
		assert.NotContains(t, text, "## Available components")
	})
}

func TestExampleModes(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		text, est := b.Build(ctx, Settings{ExampleMode: ExamplesNone})
		assert.NotContains(t, text, "## Examples")
		assert.Zero(t, est.ExamplesIncluded)
	})

	t.Run("Selected By ID", func(t *testing.T) {
		text, est := b.Build(ctx, Settings{
			ExampleMode:      ExamplesSelected,
			SelectedExamples: []string{"settings"},
		})
		assert.Contains(t, text, "### settings")
		assert.NotContains(t, text, "### login")
		assert.Equal(t, 1, est.ExamplesIncluded)
	})

	t.Run("Auto Capped By Available", func(t *testing.T) {
		_, est := b.Build(ctx, Settings{ExampleCount: 99})
		assert.Equal(t, 4, est.ExamplesIncluded, "only 4 positive examples exist")
	})

	t.Run("Negative Block Opt In", func(t *testing.T) {
		text, _ := b.Build(ctx, Settings{IncludeNegativeExamples: true})
		assert.Contains(t, text, "## Avoid these patterns")
	})
}

func TestAutoOptimize(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})
	ctx := context.Background()

	full := b.Estimate(Settings{IncludeColors: true, ExampleCount: 4})
	require.True(t, full.Total > 100)

	t.Run("Trims Examples First", func(t *testing.T) {
		// A budget that fits once some examples go.
		withoutTwo := b.Estimate(Settings{IncludeColors: true, ExampleCount: 2})
		_, est := b.Build(ctx, Settings{
			IncludeColors: true,
			ExampleCount:  4,
			Budget:        TokenBudget{Max: withoutTwo.Total, AutoOptimize: true},
		})
		assert.False(t, est.OverBudget)
		assert.LessOrEqual(t, est.Total, withoutTwo.Total)
		assert.True(t, est.ColorsIncluded, "colors are dropped only after examples")
		assert.Less(t, est.ExamplesIncluded, 4)
	})

	t.Run("Drops Colors Last", func(t *testing.T) {
		noExtras := b.Estimate(Settings{ExampleMode: ExamplesNone})
		_, est := b.Build(ctx, Settings{
			IncludeColors: true,
			ExampleCount:  4,
			Budget:        TokenBudget{Max: noExtras.Total, AutoOptimize: true},
		})
		assert.False(t, est.OverBudget)
		assert.Zero(t, est.ExamplesIncluded)
		assert.False(t, est.ColorsIncluded)
	})

	t.Run("Unknown Selected ID Never Survives A Trim", func(t *testing.T) {
		// Budget fits exactly one example; "ghost" is not in the pack,
		// so the trim must keep "login" rather than the dead id.
		oneExample := b.Estimate(Settings{
			ExampleMode:      ExamplesSelected,
			SelectedExamples: []string{"login"},
		})
		text, est := b.Build(ctx, Settings{
			ExampleMode:      ExamplesSelected,
			SelectedExamples: []string{"ghost", "login", "profile"},
			Budget:           TokenBudget{Max: oneExample.Total, AutoOptimize: true},
		})
		assert.False(t, est.OverBudget)
		assert.Equal(t, 1, est.ExamplesIncluded)
		assert.Contains(t, text, "### login")
	})

	t.Run("Exhausted Reduction Still Returns", func(t *testing.T) {
		text, est := b.Build(ctx, Settings{
			IncludeColors: true,
			ExampleCount:  4,
			Budget:        TokenBudget{Max: 1, AutoOptimize: true},
		})
		assert.NotEmpty(t, text)
		assert.True(t, est.OverBudget)
		assert.Zero(t, est.ExamplesIncluded)
	})

	t.Run("No Optimization Without Flag", func(t *testing.T) {
		_, est := b.Build(ctx, Settings{
			IncludeColors: true,
			ExampleCount:  4,
			Budget:        TokenBudget{Max: 1},
		})
		assert.True(t, est.OverBudget)
		assert.Equal(t, 4, est.ExamplesIncluded)
	})
}

func TestEstimateTracksEmittedText(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})

	text, est := b.assemble(Settings{IncludeColors: true, IncludeNegativeExamples: true})
	whole := tokens(text, latinCharsPerToken)

	// Sections are ceiled individually, so their sum can exceed the
	// whole-text cost only by the rounding of each non-empty section.
	assert.GreaterOrEqual(t, est.Total, whole)
	assert.LessOrEqual(t, est.Total-whole, 4)
}

func TestBuildWithTracer(t *testing.T) {
	b := NewBuilder(Options{
		Pack:   testPack(t),
		Tracer: noop.NewTracerProvider().Tracer("test"),
	})
	text, est := b.Build(context.Background(), Settings{IncludeColors: true})
	assert.NotEmpty(t, text)
	assert.Positive(t, est.Total)
}

func TestCharsPerToken(t *testing.T) {
	assert.Equal(t, latinCharsPerToken, charsPerToken(""))
	assert.Equal(t, latinCharsPerToken, charsPerToken("en"))
	assert.Equal(t, latinCharsPerToken, charsPerToken("de-DE"))
	assert.Equal(t, logographicCharsPerToken, charsPerToken("zh"))
	assert.Equal(t, logographicCharsPerToken, charsPerToken("zh-Hans-CN"))
	assert.Equal(t, logographicCharsPerToken, charsPerToken("ja"))
	assert.Equal(t, latinCharsPerToken, charsPerToken("!!not-a-tag!!"))
}

func TestEstimateLanguageRatio(t *testing.T) {
	b := NewBuilder(Options{Pack: testPack(t)})
	latin := b.Estimate(Settings{Language: "en"})
	cjk := b.Estimate(Settings{Language: "zh"})
	assert.Greater(t, cjk.Total, latin.Total, "same text costs more tokens at the coarser ratio")
}
