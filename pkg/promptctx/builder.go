// Package promptctx assembles the prompt context that instructs a
// language model to emit UI Schema JSON, under an approximate token
// budget.
//
// Token costs are estimated with a fixed chars-per-token ratio chosen
// by target language, a heuristic rather than a tokenizer. When a budget is
// exceeded with auto-optimization enabled, worked examples are trimmed
// before the color block is dropped: examples cost more per unit value
// than static color docs.
package promptctx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
	"github.com/siciyuan404/llm2ui/pkg/theme"
)

// ComponentMode selects which component docs are included.
type ComponentMode string

const (
	ComponentsAll      ComponentMode = "all"
	ComponentsSelected ComponentMode = "selected"
	ComponentsPreset   ComponentMode = "preset" // one category
)

// ExampleMode selects which worked examples are included.
type ExampleMode string

const (
	ExamplesAuto     ExampleMode = "auto" // first N positive examples
	ExamplesSelected ExampleMode = "selected"
	ExamplesNone     ExampleMode = "none"
)

const defaultExampleCount = 3

// TokenBudget bounds the assembled prompt.
type TokenBudget struct {
	Max          int  `json:"max"`
	AutoOptimize bool `json:"autoOptimize"`
}

// Settings describes one prompt assembly request.
type Settings struct {
	// Language is a BCP 47 tag for the target output language; it
	// selects the chars-per-token ratio.
	Language string `json:"language,omitempty"`

	ComponentMode      ComponentMode `json:"componentMode,omitempty"`
	SelectedComponents []string      `json:"selectedComponents,omitempty"`
	PresetCategory     string        `json:"presetCategory,omitempty"`

	IncludeColors bool `json:"includeColors,omitempty"`

	ExampleMode      ExampleMode `json:"exampleMode,omitempty"`
	ExampleCount     int         `json:"exampleCount,omitempty"`
	SelectedExamples []string    `json:"selectedExamples,omitempty"`

	IncludeNegativeExamples bool `json:"includeNegativeExamples,omitempty"`

	Budget TokenBudget `json:"tokenBudget,omitempty"`
}

// Estimate is the approximate per-section token breakdown.
type Estimate struct {
	Base       int  `json:"base"`
	Components int  `json:"components"`
	Colors     int  `json:"colors"`
	Examples   int  `json:"examples"`
	Negative   int  `json:"negative"`
	Total      int  `json:"total"`
	OverBudget bool `json:"overBudget"`

	// ExamplesIncluded is the example count that survived
	// auto-optimization.
	ExamplesIncluded int `json:"examplesIncluded"`
	// ColorsIncluded reports whether the color block survived.
	ColorsIncluded bool `json:"colorsIncluded"`
}

// Options configures a Builder.
type Options struct {
	Pack *theme.Pack

	Logger *slog.Logger

	// Tracer, when set, records one span per Build call.
	Tracer trace.Tracer
}

// Builder assembles prompts for one theme pack.
type Builder struct {
	pack   *theme.Pack
	logger *slog.Logger
	tracer trace.Tracer
}

// NewBuilder creates a Builder over a pack.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		pack:   opts.Pack,
		logger: opts.Logger,
		tracer: opts.Tracer,
	}
	if b.logger == nil {
		b.logger = slog.Default().With("component", "promptctx", "pack", b.pack.Manifest.ID)
	}
	return b
}

// Estimate computes the approximate token cost of Build(s) without
// applying auto-optimization.
func (b *Builder) Estimate(s Settings) Estimate {
	_, est := b.assemble(s)
	return est
}

// Build assembles the full prompt. With AutoOptimize set and the
// estimate over budget, it re-builds with one fewer example per step,
// then without the color block; when every reduction is exhausted the
// over-budget prompt is still returned, flagged via the estimate, and
// the caller decides.
func (b *Builder) Build(ctx context.Context, s Settings) (string, Estimate) {
	if b.tracer == nil {
		return b.optimize(s)
	}

	_, span := b.tracer.Start(ctx, "prompt.build",
		trace.WithAttributes(
			attribute.String("llm2ui.prompt.pack", b.pack.Manifest.ID),
			attribute.String("llm2ui.prompt.language", s.Language),
		),
	)
	defer span.End()

	text, est := b.optimize(s)
	span.SetAttributes(
		attribute.Int("llm2ui.prompt.tokens", est.Total),
		attribute.Bool("llm2ui.prompt.over_budget", est.OverBudget),
		attribute.Int("llm2ui.prompt.examples", est.ExamplesIncluded),
	)
	return text, est
}

func (b *Builder) optimize(s Settings) (string, Estimate) {
	text, est := b.assemble(s)
	if !s.Budget.AutoOptimize || s.Budget.Max <= 0 || est.Total <= s.Budget.Max {
		return text, est
	}

	if n := b.includedExampleCount(s); n > 0 {
		reduced := b.reduceExamples(s, n-1)
		b.logger.Debug("over budget, trimming an example", "total", est.Total, "max", s.Budget.Max)
		return b.optimize(reduced)
	}
	if s.IncludeColors {
		reduced := s
		reduced.IncludeColors = false
		b.logger.Debug("over budget, dropping color block", "total", est.Total, "max", s.Budget.Max)
		return b.optimize(reduced)
	}

	b.logger.Warn("prompt remains over budget after optimization", "total", est.Total, "max", s.Budget.Max)
	return text, est
}

// reduceExamples trims the example selection to n entries. In selected
// mode the trim runs over the ids that resolve in the pack, so an
// unknown id never survives a trim at the cost of a valid one.
func (b *Builder) reduceExamples(s Settings, n int) Settings {
	out := s
	switch s.ExampleMode {
	case ExamplesSelected:
		resolved := make([]string, 0, len(s.SelectedExamples))
		for _, id := range s.SelectedExamples {
			if _, ok := b.pack.ExampleByID(id); ok {
				resolved = append(resolved, id)
			}
		}
		out.SelectedExamples = resolved[:n]
	default:
		out.ExampleMode = ExamplesAuto
		out.ExampleCount = n
	}
	if n == 0 {
		out.ExampleMode = ExamplesNone
	}
	return out
}

// assemble builds the prompt text and its estimate from the same
// section strings, so the per-section costs account for every character
// actually emitted.
func (b *Builder) assemble(s Settings) (string, Estimate) {
	ratio := charsPerToken(s.Language)

	intro := b.introSection() + "\n"
	components := b.componentSection(s)
	icons := iconRules + "\n"
	closing := closingSection()
	colors := ""
	if s.IncludeColors {
		colors = b.colorSection()
	}
	examples := b.exampleSection(s)
	negative := ""
	if s.IncludeNegativeExamples {
		negative = b.negativeSection()
	}

	text := intro + components + icons + colors + examples + negative + closing

	est := Estimate{
		Base:             tokens(intro+icons+closing, ratio),
		Components:       tokens(components, ratio),
		Colors:           tokens(colors, ratio),
		Examples:         tokens(examples, ratio),
		Negative:         tokens(negative, ratio),
		ExamplesIncluded: b.includedExampleCount(s),
		ColorsIncluded:   s.IncludeColors,
	}
	est.Total = est.Base + est.Components + est.Colors + est.Examples + est.Negative
	if s.Budget.Max > 0 && est.Total > s.Budget.Max {
		est.OverBudget = true
	}
	return text, est
}

func (b *Builder) introSection() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You generate user interfaces for the %s theme.\n", b.pack.Manifest.Name)
	sb.WriteString("Respond with exactly one JSON document in the UI Schema format:\n")
	fmt.Fprintf(&sb, "{\"version\": %q, \"root\": { ... }}\n", schema.Version)
	sb.WriteString("Every component has a unique \"id\" and a \"type\" from the component list below.\n")
	sb.WriteString("Data bindings use {{path}} expressions; conditions and loop sources are paths, never code.\n")
	return sb.String()
}

func (b *Builder) componentSection(s Settings) string {
	defs := b.selectComponents(s)
	if len(defs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Available components\n")
	for _, def := range defs {
		name := def.DisplayName
		if name == "" {
			name = def.Type
		}
		fmt.Fprintf(&sb, "### %s (%s)\n", name, def.Type)
		if def.Category != "" {
			fmt.Fprintf(&sb, "Category: %s\n", def.Category)
		}
		if def.Description != "" {
			sb.WriteString(def.Description)
			sb.WriteString("\n")
		}
		writePropDocs(&sb, def)
		sb.WriteString("\n")
	}
	return sb.String()
}

func writePropDocs(sb *strings.Builder, def registry.Definition) {
	if len(def.Props) == 0 {
		return
	}
	sb.WriteString("Props:\n")
	for _, name := range sortedKeys(def.Props) {
		p := def.Props[name]
		fmt.Fprintf(sb, "- %s: %s", name, p.Type)
		if p.Required {
			sb.WriteString(" (required)")
		}
		if p.Default != nil {
			fmt.Fprintf(sb, " (default %v)", p.Default)
		}
		if len(p.Enum) > 0 {
			fmt.Fprintf(sb, " one of %v", p.Enum)
		}
		if p.Description != "" {
			sb.WriteString(" — ")
			sb.WriteString(p.Description)
		}
		sb.WriteString("\n")
	}
}

func (b *Builder) selectComponents(s Settings) []registry.Definition {
	switch s.ComponentMode {
	case ComponentsSelected:
		var out []registry.Definition
		for _, id := range s.SelectedComponents {
			if def, ok := b.pack.Registry.Get(id); ok {
				out = append(out, def)
			} else {
				b.logger.Warn("selected component not in registry", "type", id)
			}
		}
		return out
	case ComponentsPreset:
		return b.pack.Registry.ByCategory(s.PresetCategory)
	default:
		return b.pack.Registry.All()
	}
}

const iconRules = `## Icon usage
Reference icons by name in an "icon" prop; never embed SVG markup or image data.
Prefer the theme's named icon set over free-form descriptions.
`

func (b *Builder) colorSection() string {
	if b.pack.Colors == nil || len(b.pack.Colors.Colors) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Color scheme: %s\n", b.pack.Colors.Name)
	if b.pack.Colors.Description != "" {
		sb.WriteString(b.pack.Colors.Description)
		sb.WriteString("\n")
	}
	for _, name := range sortedKeys(b.pack.Colors.Colors) {
		fmt.Fprintf(&sb, "- %s: %s\n", name, b.pack.Colors.Colors[name])
	}
	sb.WriteString("\n")
	return sb.String()
}

func (b *Builder) selectedExampleList(s Settings) []theme.Example {
	switch s.ExampleMode {
	case ExamplesNone:
		return nil
	case ExamplesSelected:
		var out []theme.Example
		for _, id := range s.SelectedExamples {
			if e, ok := b.pack.ExampleByID(id); ok {
				out = append(out, e)
			} else {
				b.logger.Warn("selected example not in pack", "id", id)
			}
		}
		return out
	default:
		n := s.ExampleCount
		if n <= 0 {
			n = defaultExampleCount
		}
		positive := b.pack.PositiveExamples()
		if n > len(positive) {
			n = len(positive)
		}
		return positive[:n]
	}
}

func (b *Builder) includedExampleCount(s Settings) int {
	return len(b.selectedExampleList(s))
}

func (b *Builder) exampleSection(s Settings) string {
	examples := b.selectedExampleList(s)
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Examples\n")
	for _, e := range examples {
		writeExample(&sb, e)
	}
	return sb.String()
}

func (b *Builder) negativeSection() string {
	negatives := b.pack.NegativeExamples()
	if len(negatives) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Avoid these patterns\n")
	for _, e := range negatives {
		writeExample(&sb, e)
	}
	return sb.String()
}

func writeExample(sb *strings.Builder, e theme.Example) {
	if e.Title != "" {
		fmt.Fprintf(sb, "### %s\n", e.Title)
	}
	if e.Description != "" {
		sb.WriteString(e.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("```json\n")
	if data, err := json.MarshalIndent(e.Schema, "", "  "); err == nil {
		sb.Write(data)
	}
	sb.WriteString("\n```\n")
}

func closingSection() string {
	return `## Output rules
Output only the JSON document, inside one fenced json block.
Do not invent component types that are not listed above.
Keep every component id unique within the document.
`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
