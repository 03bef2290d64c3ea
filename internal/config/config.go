// Package config loads Sensei's settings from defaults, an optional YAML
// file, a .env file and SENSEI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mirrorsensei/sensei/internal/llm"
)

// EnvPrefix is prepended to every environment override, with dots in the
// key replaced by underscores: llm.gemini.api_key → SENSEI_LLM_GEMINI_API_KEY.
const EnvPrefix = "SENSEI"

// Config is the full application configuration.
type Config struct {
	DB     string       `mapstructure:"db" yaml:"db"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
}

// LogConfig selects the zap encoder and an optional file sink.
type LogConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"` // dev | prod
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host        string        `mapstructure:"host" yaml:"host"`
	Port        int           `mapstructure:"port" yaml:"port"`
	CORSOrigins []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	SessionIdle time.Duration `mapstructure:"session_idle" yaml:"session_idle"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LLMConfig selects and configures the generation backend. An empty
// Provider means "discover from the usual API key variables".
type LLMConfig struct {
	Provider   string         `mapstructure:"provider" yaml:"provider"`
	MaxTokens  int            `mapstructure:"max_tokens" yaml:"max_tokens"`
	Gemini     ProviderConfig `mapstructure:"gemini" yaml:"gemini"`
	OpenAI     ProviderConfig `mapstructure:"openai" yaml:"openai"`
	Anthropic  ProviderConfig `mapstructure:"anthropic" yaml:"anthropic"`
	OpenRouter ProviderConfig `mapstructure:"openrouter" yaml:"openrouter"`
}

// ProviderConfig holds one backend's settings. APIKey may reference an
// environment variable as ${NAME}.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := llm.DefaultConfig()
	return Config{
		Log: LogConfig{Mode: "dev"},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
			SessionIdle: 12 * time.Hour,
		},
		LLM: LLMConfig{
			MaxTokens:  d.MaxTokens,
			Gemini:     ProviderConfig{Model: d.Gemini.Model},
			OpenAI:     ProviderConfig{Model: d.OpenAI.Model},
			Anthropic:  ProviderConfig{Model: d.Anthropic.Model},
			OpenRouter: ProviderConfig{Model: d.OpenRouter.Model},
		},
	}
}

// Load reads .env (if present), then the config file, then the
// environment. cfgFile may be empty, in which case sensei.yaml is looked up
// in the working directory and $HOME/.sensei; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("sensei")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sensei")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM.resolveEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db", d.DB)
	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.session_idle", d.Server.SessionIdle)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	for name, p := range map[string]ProviderConfig{
		"gemini":     d.LLM.Gemini,
		"openai":     d.LLM.OpenAI,
		"anthropic":  d.LLM.Anthropic,
		"openrouter": d.LLM.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", p.APIKey)
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".base_url", p.BaseURL)
	}
}

// Validate checks the settings that do not depend on the chosen backend.
// Backend keys are checked when the provider is built.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("log.mode must be dev or prod, got %q", c.Log.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.SessionIdle <= 0 {
		return fmt.Errorf("server.session_idle must be positive")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	return nil
}

// ProviderConfig converts the LLM section into an llm.Config. With no
// provider set, the first API key found by llm.DiscoverConfig decides.
// The second result is false when no backend could be chosen.
func (l LLMConfig) ProviderConfig() (llm.Config, bool) {
	cfg := llm.DefaultConfig()
	cfg.MaxTokens = l.MaxTokens

	if l.Provider == "" {
		found, ok := llm.DiscoverConfig()
		if !ok {
			return cfg, false
		}
		found.MaxTokens = l.MaxTokens
		cfg = found
	} else {
		cfg.Provider = l.Provider
	}

	g := merge(ProviderConfig{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model, BaseURL: cfg.Gemini.BaseURL}, l.Gemini)
	cfg.Gemini = llm.GeminiConfig{APIKey: g.APIKey, Model: g.Model, BaseURL: g.BaseURL}

	o := merge(ProviderConfig{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL}, l.OpenAI)
	cfg.OpenAI = llm.OpenAIConfig{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL}

	a := merge(ProviderConfig{APIKey: cfg.Anthropic.APIKey, Model: cfg.Anthropic.Model}, l.Anthropic)
	cfg.Anthropic = llm.AnthropicConfig{APIKey: a.APIKey, Model: a.Model}

	r := merge(ProviderConfig{APIKey: cfg.OpenRouter.APIKey, Model: cfg.OpenRouter.Model, BaseURL: cfg.OpenRouter.BaseURL}, l.OpenRouter)
	cfg.OpenRouter = llm.OpenRouterConfig{APIKey: r.APIKey, Model: r.Model, BaseURL: r.BaseURL}
	return cfg, true
}

// merge prefers the configured values over the discovered ones.
func merge(base, over ProviderConfig) ProviderConfig {
	return ProviderConfig{
		APIKey:  firstNonEmpty(over.APIKey, base.APIKey),
		Model:   firstNonEmpty(over.Model, base.Model),
		BaseURL: firstNonEmpty(over.BaseURL, base.BaseURL),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${NAME} references in value.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

func (l *LLMConfig) resolveEnvVars() {
	l.Gemini.APIKey = ResolveEnvVars(l.Gemini.APIKey)
	l.OpenAI.APIKey = ResolveEnvVars(l.OpenAI.APIKey)
	l.Anthropic.APIKey = ResolveEnvVars(l.Anthropic.APIKey)
	l.OpenRouter.APIKey = ResolveEnvVars(l.OpenRouter.APIKey)
}

// WriteDefault writes a commented starter config file to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte(`# Mirror Sensei configuration
# Every key can be overridden with SENSEI_<KEY>, e.g. SENSEI_LLM_GEMINI_API_KEY.
# API keys may reference environment variables as ${GEMINI_API_KEY}.
# Leave llm.provider empty to pick the first backend whose API key is set.

`)
	return os.WriteFile(path, append(header, data...), 0o600)
}
