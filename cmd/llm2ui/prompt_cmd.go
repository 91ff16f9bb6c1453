package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/siciyuan404/llm2ui/pkg/config"
	"github.com/siciyuan404/llm2ui/pkg/observability"
	"github.com/siciyuan404/llm2ui/pkg/promptctx"
	"github.com/siciyuan404/llm2ui/pkg/theme"
)

func promptSettings(cmd *flag.FlagSet, cfg *config.Config) *promptctx.Settings {
	s := &promptctx.Settings{}
	cmd.StringVar(&s.Language, "lang", "", "BCP 47 language tag for token estimation")
	cmd.IntVar(&s.ExampleCount, "examples", 0, "Number of worked examples (0 = default)")
	cmd.BoolVar(&s.IncludeColors, "colors", true, "Include the color scheme block")
	cmd.BoolVar(&s.IncludeNegativeExamples, "negative", false, "Include anti-pattern examples")
	cmd.IntVar(&s.Budget.Max, "budget", cfg.TokenBudget, "Token budget (0 = unlimited)")
	cmd.BoolVar(&s.Budget.AutoOptimize, "optimize", false, "Trim sections to fit the budget")
	return s
}

// applyPromptProfile overlays a render profile's prompt defaults onto
// the settings. Flags the user passed explicitly always win.
func applyPromptProfile(cmd *flag.FlagSet, profile *config.RenderProfile, s *promptctx.Settings, themeID *string) {
	set := make(map[string]bool)
	cmd.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["theme"] && profile.Theme != "" {
		*themeID = profile.Theme
	}
	if !set["lang"] && profile.Prompt.Language != "" {
		s.Language = profile.Prompt.Language
	}
	if !set["budget"] && profile.Prompt.TokenBudget > 0 {
		s.Budget.Max = profile.Prompt.TokenBudget
	}
	if !set["optimize"] {
		s.Budget.AutoOptimize = profile.Prompt.AutoOptimize
	}
	if !set["examples"] && profile.Prompt.ExampleCount > 0 {
		s.ExampleCount = profile.Prompt.ExampleCount
	}
	if !set["colors"] {
		s.IncludeColors = profile.Prompt.IncludeColors
	}
}

func loadPromptPack(cmd *flag.FlagSet, args []string, cfg *config.Config, stderr io.Writer) (*theme.Pack, *promptctx.Settings, int) {
	var themeDir, themeID, profilesDir, platform string
	cmd.StringVar(&themeDir, "theme-dir", cfg.ThemeDir, "Directory containing theme packs")
	cmd.StringVar(&themeID, "theme", cfg.Theme, "Theme pack id to load")
	cmd.StringVar(&profilesDir, "profiles", cfg.ProfilesDir, "Directory containing render profiles")
	cmd.StringVar(&platform, "platform", cfg.Platform, "Platform whose render profile supplies defaults")
	settings := promptSettings(cmd, cfg)

	if err := cmd.Parse(args); err != nil {
		return nil, nil, 2
	}

	// A missing profile is not an error; the flags and env defaults
	// already cover every setting.
	if profile, err := config.LoadProfile(profilesDir, platform); err == nil {
		applyPromptProfile(cmd, profile, settings, &themeID)
	}

	pack, err := theme.LoadPack(os.DirFS(themeDir), themeID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: load theme %q: %v\n", themeID, err)
		return nil, nil, 2
	}
	return pack, settings, 0
}

// runPromptCmd implements `llm2ui prompt`: assemble and print the
// generation prompt for a theme pack.
func runPromptCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	cmd := flag.NewFlagSet("prompt", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	pack, settings, code := loadPromptPack(cmd, args, cfg, stderr)
	if code != 0 {
		return code
	}

	ctx := context.Background()
	opts := promptctx.Options{Pack: pack}

	var obs *observability.Provider
	if cfg.Telemetry {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		var err error
		obs, err = observability.New(ctx, obsCfg)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: telemetry init: %v\n", err)
			return 2
		}
		defer func() { _ = obs.Shutdown(ctx) }()
		opts.Tracer = obs.Tracer()
	}

	text, est := promptctx.NewBuilder(opts).Build(ctx, *settings)
	if obs != nil {
		obs.RecordPromptTokens(ctx, est.Total,
			observability.PromptOperation(pack.Manifest.ID, est.Total, est.OverBudget)...)
	}

	_, _ = fmt.Fprint(stdout, text)
	if est.OverBudget {
		_, _ = fmt.Fprintf(stderr, "Warning: prompt is over budget (%d > %d tokens)\n", est.Total, settings.Budget.Max)
		return 1
	}
	return 0
}

// runEstimateCmd implements `llm2ui estimate`: print the per-section
// token estimate as JSON without emitting the prompt itself.
func runEstimateCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	cmd := flag.NewFlagSet("estimate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	pack, settings, code := loadPromptPack(cmd, args, cfg, stderr)
	if code != 0 {
		return code
	}

	est := promptctx.NewBuilder(promptctx.Options{Pack: pack}).Estimate(*settings)
	out, _ := json.MarshalIndent(est, "", "  ")
	_, _ = fmt.Fprintln(stdout, string(out))
	if est.OverBudget {
		return 1
	}
	return 0
}
