package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/siciyuan404/llm2ui/pkg/config"
	"github.com/siciyuan404/llm2ui/pkg/observability"
	"github.com/siciyuan404/llm2ui/pkg/render"
	"github.com/siciyuan404/llm2ui/pkg/schema"
	"github.com/siciyuan404/llm2ui/pkg/theme"
)

// runRenderCmd implements `llm2ui render`: parse a schema document,
// optionally load a theme pack for its component registry, and print
// the resolved node tree as JSON.
//
// Exit codes:
//
//	0 = rendered
//	2 = runtime error
func runRenderCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	cmd := flag.NewFlagSet("render", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		schemaPath  string
		themeDir    string
		themeID     string
		profilesDir string
		platform    string
		bare        bool
	)
	cmd.StringVar(&schemaPath, "schema", "", "Path to a UI Schema JSON document (REQUIRED)")
	cmd.StringVar(&themeDir, "theme-dir", cfg.ThemeDir, "Directory containing theme packs")
	cmd.StringVar(&themeID, "theme", cfg.Theme, "Theme pack id to load")
	cmd.StringVar(&profilesDir, "profiles", cfg.ProfilesDir, "Directory containing render profiles")
	cmd.StringVar(&platform, "platform", cfg.Platform, "Platform whose render profile supplies defaults")
	cmd.BoolVar(&bare, "bare", false, "Render without a theme pack (every type becomes a placeholder)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --schema is required")
		return 2
	}

	themeSet := false
	cmd.Visit(func(f *flag.Flag) {
		if f.Name == "theme" {
			themeSet = true
		}
	})
	if !themeSet {
		if profile, err := config.LoadProfile(profilesDir, platform); err == nil && profile.Theme != "" {
			themeID = profile.Theme
		}
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	s, err := schema.Parse(data)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	opts := render.Options{}
	if !bare {
		pack, err := theme.LoadPack(os.DirFS(themeDir), themeID)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: load theme %q: %v\n", themeID, err)
			return 2
		}
		opts.Registry = pack.Registry
	}

	ctx := context.Background()
	finish := func(error) {}
	if cfg.Telemetry {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		obs, err := observability.New(ctx, obsCfg)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: telemetry init: %v\n", err)
			return 2
		}
		defer func() { _ = obs.Shutdown(ctx) }()
		opts.Tracer = obs.Tracer()

		count := 0
		s.Root.Walk(func(*schema.UIComponent) bool { count++; return true })
		ctx, finish = obs.TrackOperation(ctx, "render.request",
			observability.RenderOperation(uuid.NewString(), s.Root.Type, count)...)
	}

	node, err := render.New(opts).Render(ctx, s)
	finish(err)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: render: %v\n", err)
		return 2
	}

	out, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: encode node tree: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, string(out))
	return 0
}
