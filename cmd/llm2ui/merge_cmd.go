package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/siciyuan404/llm2ui/pkg/config"
	"github.com/siciyuan404/llm2ui/pkg/layering"
	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// runMergeCmd implements `llm2ui merge` in two modes.
//
// With positional arguments it folds override documents onto a base
// document, left to right, and prints the merged result. With
// --templates it loads every layer file for one component name
// (<name>.<layer>[.qualifier].json) and resolves them through the
// layering store, using the platform/theme qualifiers from the flags or
// the platform's render profile.
//
// Exit codes:
//
//	0 = merged
//	1 = merged document fails validation
//	2 = runtime error
func runMergeCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	cmd := flag.NewFlagSet("merge", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		skipValidate bool
		templatesDir string
		name         string
		profilesDir  string
		platform     string
		themeID      string
	)
	cmd.BoolVar(&skipValidate, "no-validate", false, "Skip validating the merged document")
	cmd.StringVar(&templatesDir, "templates", "", "Directory of component template layers (resolve mode)")
	cmd.StringVar(&name, "name", "", "Component template name to resolve")
	cmd.StringVar(&profilesDir, "profiles", cfg.ProfilesDir, "Directory containing render profiles")
	cmd.StringVar(&platform, "platform", cfg.Platform, "Platform qualifier for layer resolution")
	cmd.StringVar(&themeID, "theme", "", "Theme qualifier for layer resolution")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if templatesDir != "" {
		return resolveTemplates(cmd, templatesDir, name, profilesDir, platform, themeID, skipValidate, stdout, stderr)
	}

	paths := cmd.Args()
	if len(paths) < 2 {
		_, _ = fmt.Fprintln(stderr, "Usage: llm2ui merge [flags] <base.json> <override.json> [override.json...]")
		return 2
	}

	docs := make([]*schema.UISchema, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		var s schema.UISchema
		if err := json.Unmarshal(data, &s); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: decode %s: %v\n", path, err)
			return 2
		}
		docs = append(docs, &s)
	}

	merged := layering.Merge(docs[0], docs[1:]...)
	return printMerged(merged, nil, skipValidate, stdout, stderr)
}

// resolveTemplates registers every layer file for one component name
// and folds the layers matching the platform/theme qualifiers. A render
// profile for the platform supplies qualifier defaults; explicit flags
// win.
func resolveTemplates(cmd *flag.FlagSet, templatesDir, name, profilesDir, platform, themeID string, skipValidate bool, stdout, stderr io.Writer) int {
	if name == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --name is required with --templates")
		return 2
	}

	set := make(map[string]bool)
	cmd.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if profile, err := config.LoadProfile(profilesDir, platform); err == nil {
		if !set["platform"] && profile.Layering.Platform != "" {
			platform = profile.Layering.Platform
		}
		if !set["theme"] && profile.Layering.Theme != "" {
			themeID = profile.Layering.Theme
		}
	}

	matches, err := filepath.Glob(filepath.Join(templatesDir, name+".*.json"))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: scan templates: %v\n", err)
		return 2
	}
	if len(matches) == 0 {
		_, _ = fmt.Fprintf(stderr, "Error: no template layers for %q in %s\n", name, templatesDir)
		return 2
	}

	store := layering.NewStore()
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		var tmpl layering.ComponentTemplate
		if err := json.Unmarshal(data, &tmpl); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: decode %s: %v\n", path, err)
			return 2
		}
		if err := store.Register(name, tmpl); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: register %s: %v\n", path, err)
			return 2
		}
	}

	merged, err := store.Resolve(name, platform, themeID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: resolve %q: %v\n", name, err)
		return 2
	}
	return printMerged(merged.Schema, merged, skipValidate, stdout, stderr)
}

// printMerged validates the folded schema and prints either the bare
// document or, in resolve mode, the full resolution result with its
// styles and contributing layers.
func printMerged(s *schema.UISchema, resolved *layering.Merged, skipValidate bool, stdout, stderr io.Writer) int {
	exit := 0
	if !skipValidate {
		if err := schema.Validate(s); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: merged document is invalid: %v\n", err)
			exit = 1
		}
	}

	var payload any = s
	if resolved != nil {
		payload = resolved
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: encode merged document: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, string(out))
	return exit
}
