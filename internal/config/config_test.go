package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load or discovery may read.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SENSEI_DB", "SENSEI_LOG_MODE", "SENSEI_LOG_FILE",
		"SENSEI_SERVER_HOST", "SENSEI_SERVER_PORT", "SENSEI_SERVER_CORS_ORIGINS", "SENSEI_SERVER_SESSION_IDLE",
		"SENSEI_LLM_PROVIDER", "SENSEI_LLM_MAX_TOKENS",
		"SENSEI_LLM_GEMINI_API_KEY", "SENSEI_LLM_GEMINI_MODEL", "SENSEI_LLM_OPENAI_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// An explicit file that does not exist is an error.
		t.Fatalf("expected error for explicit missing file, got %+v", cfg)
	}

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "sensei.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /tmp/from-file.db
server:
  port: 9000
  cors_origins: ["http://localhost:5173"]
llm:
  provider: gemini
  gemini:
    api_key: ${TEST_GEMINI_KEY}
    model: gemini-2.5-flash
`), 0o600))

	t.Setenv("TEST_GEMINI_KEY", "from-env-ref")
	t.Setenv("SENSEI_SERVER_PORT", "9100")
	t.Setenv("SENSEI_SERVER_SESSION_IDLE", "30m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.DB)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdle)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "from-env-ref", cfg.LLM.Gemini.APIKey)

	pc, ok := cfg.LLM.ProviderConfig()
	require.True(t, ok)
	assert.Equal(t, "gemini", pc.Provider)
	assert.Equal(t, "from-env-ref", pc.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash", pc.Gemini.Model)
	assert.Zero(t, pc.MaxTokens)
	require.NoError(t, pc.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SENSEI_LLM_PROVIDER=mock\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SENSEI_LLM_PROVIDER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log mode", func(c *Config) { c.Log.Mode = "verbose" }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"no session idle", func(c *Config) { c.Server.SessionIdle = 0 }},
		{"negative tokens", func(c *Config) { c.LLM.MaxTokens = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	d := Default()
	assert.NoError(t, d.Validate())
}

func TestProviderConfigDiscovery(t *testing.T) {
	clearEnv(t)

	_, ok := Default().LLM.ProviderConfig()
	assert.False(t, ok)

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	pc, ok := Default().LLM.ProviderConfig()
	require.True(t, ok)
	assert.Equal(t, "anthropic", pc.Provider)
	assert.Equal(t, "sk-ant", pc.Anthropic.APIKey)
	assert.Equal(t, "claude-haiku", pc.Anthropic.Model)
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sensei.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}
