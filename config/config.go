package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Values are resolved from an
// optional YAML file, NEGOSIM_-prefixed environment variables, and defaults,
// in that order of precedence.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Run    RunConfig    `mapstructure:"run"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig selects the model transport. Provider is resolved once at
// startup; there is no per-request provider switching.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// RunConfig carries the turn-loop settings. TurnDelay is in seconds to match
// the configuration surface; Delay converts it for callers.
type RunConfig struct {
	MaxTurns     int     `mapstructure:"max_turns"`
	TurnDelay    float64 `mapstructure:"turn_delay"`
	FirstSpeaker string  `mapstructure:"first_speaker"`
}

func (r RunConfig) Delay() time.Duration {
	return time.Duration(r.TurnDelay * float64(time.Second))
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	envOpenAIKey = "OPENAI_API_KEY"
	envGeminiKey = "GEMINI_API_KEY"
)

// Load reads configuration from the given file path (optional; empty means
// "config.yaml in the working directory, if present") plus environment
// variables and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("NEGOSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyKeyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 400)

	v.SetDefault("run.max_turns", 12)
	v.SetDefault("run.turn_delay", 0.0)
	v.SetDefault("run.first_speaker", "")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "negotiation")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// applyKeyFallbacks fills the API key from the provider's conventional
// environment variable when no explicit key is configured.
func (c *Config) applyKeyFallbacks() {
	if c.LLM.APIKey != "" {
		return
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		c.LLM.APIKey = os.Getenv(envOpenAIKey)
	case ProviderGemini:
		c.LLM.APIKey = os.Getenv(envGeminiKey)
	}
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider %q (expected %q or %q)",
			c.LLM.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Mongo.URI != "" && c.Mongo.Database == "" {
		return errors.New("mongo.database must be set when mongo.uri is configured")
	}
	return nil
}
