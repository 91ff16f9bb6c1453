package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderProfile is a per-platform configuration profile: which theme to
// load, how prompts are assembled, and layering defaults. Profiles let
// one deployment serve web and mobile hosts from the same theme
// directory with different budgets and qualifiers.
type RenderProfile struct {
	Name     string         `yaml:"name" json:"name"`
	Platform string         `yaml:"platform" json:"platform"`
	Theme    string         `yaml:"theme" json:"theme"`
	Prompt   PromptConfig   `yaml:"prompt" json:"prompt"`
	Layering LayeringConfig `yaml:"layering" json:"layering"`
}

// PromptConfig holds prompt-assembly defaults for a profile.
type PromptConfig struct {
	Language      string `yaml:"language,omitempty" json:"language,omitempty"`
	TokenBudget   int    `yaml:"token_budget" json:"token_budget"`
	AutoOptimize  bool   `yaml:"auto_optimize" json:"auto_optimize"`
	ExampleCount  int    `yaml:"example_count,omitempty" json:"example_count,omitempty"`
	IncludeColors bool   `yaml:"include_colors" json:"include_colors"`
}

// LayeringConfig selects the template qualifiers applied on resolve.
type LayeringConfig struct {
	Platform string `yaml:"platform,omitempty" json:"platform,omitempty"`
	Theme    string `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// LoadProfile loads a render profile YAML by platform name. It looks
// for profile_<platform>.yaml in the profiles directory.
func LoadProfile(profilesDir, platform string) (*RenderProfile, error) {
	platform = strings.ToLower(platform)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", platform))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", platform, err)
	}

	var profile RenderProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", platform, err)
	}

	if profile.Platform == "" {
		profile.Platform = platform
	}
	if profile.Layering.Platform == "" {
		profile.Layering.Platform = profile.Platform
	}

	return &profile, nil
}

// LoadAllProfiles loads every profile_*.yaml in a directory, keyed by
// platform name.
func LoadAllProfiles(profilesDir string) (map[string]*RenderProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan profiles dir: %w", err)
	}

	profiles := make(map[string]*RenderProfile, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		platform := strings.TrimSuffix(strings.TrimPrefix(base, "profile_"), ".yaml")
		p, err := LoadProfile(profilesDir, platform)
		if err != nil {
			return nil, err
		}
		profiles[platform] = p
	}
	return profiles, nil
}
