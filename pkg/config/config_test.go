package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siciyuan404/llm2ui/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM2UI_THEME_DIR", "")
	t.Setenv("LLM2UI_THEME", "")
	t.Setenv("LLM2UI_PLATFORM", "")
	t.Setenv("LLM2UI_PROFILES_DIR", "")
	t.Setenv("LLM2UI_LOG_LEVEL", "")
	t.Setenv("LLM2UI_OTLP_ENDPOINT", "")
	t.Setenv("LLM2UI_TOKEN_BUDGET", "")

	cfg := config.Load()

	assert.Equal(t, "themes", cfg.ThemeDir)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, "web", cfg.Platform)
	assert.Equal(t, "profiles", cfg.ProfilesDir)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.Telemetry)
	assert.Zero(t, cfg.TokenBudget)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM2UI_THEME_DIR", "/srv/themes")
	t.Setenv("LLM2UI_THEME", "aurora")
	t.Setenv("LLM2UI_PLATFORM", "mobile")
	t.Setenv("LLM2UI_PROFILES_DIR", "/srv/profiles")
	t.Setenv("LLM2UI_LOG_LEVEL", "DEBUG")
	t.Setenv("LLM2UI_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("LLM2UI_TOKEN_BUDGET", "4000")

	cfg := config.Load()

	assert.Equal(t, "/srv/themes", cfg.ThemeDir)
	assert.Equal(t, "aurora", cfg.Theme)
	assert.Equal(t, "mobile", cfg.Platform)
	assert.Equal(t, "/srv/profiles", cfg.ProfilesDir)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, 4000, cfg.TokenBudget)
}

func TestLoad_BadBudgetIgnored(t *testing.T) {
	t.Setenv("LLM2UI_TOKEN_BUDGET", "not-a-number")
	assert.Zero(t, config.Load().TokenBudget)

	t.Setenv("LLM2UI_TOKEN_BUDGET", "-5")
	assert.Zero(t, config.Load().TokenBudget)
}
