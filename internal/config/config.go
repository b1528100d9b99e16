// Package config loads application settings from defaults, an optional
// YAML file and CIHUI_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/tts"
	"github.com/abhisek/cihui/internal/vocab"
)

// EnvPrefix prefixes every environment override, e.g. CIHUI_LLM_PROVIDER.
const EnvPrefix = "CIHUI"

// Config holds all application settings.
type Config struct {
	Log     LogConfig    `mapstructure:"log"`
	DB      DBConfig     `mapstructure:"db"`
	DataDir string       `mapstructure:"data_dir"`
	LLM     LLMConfig    `mapstructure:"llm"`
	TTS     tts.Settings `mapstructure:"tts"`
	Image   ImageConfig  `mapstructure:"image"`
	Quiz    QuizConfig   `mapstructure:"quiz"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DBConfig locates the sqlite database. An empty path uses the data
// directory.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig overrides provider discovery. Empty fields keep what the
// provider's own API key variable implies.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float64       `mapstructure:"temperature"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ImageConfig shapes illustrations and image imports.
type ImageConfig struct {
	Model       string `mapstructure:"model"`
	Style       string `mapstructure:"style"`
	Concurrency int    `mapstructure:"concurrency"`
}

// QuizConfig tunes quiz sessions.
type QuizConfig struct {
	AutoAdvance bool   `mapstructure:"auto_advance"`
	Seed        uint64 `mapstructure:"seed"`
}

// Load reads configuration. file may be empty to search the default
// location; a missing default file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "cihui"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("db.path", "")
	v.SetDefault("data_dir", "")

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.retry_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.timeout", d.Timeout)

	t := tts.DefaultSettings()
	v.SetDefault("tts.voice", t.Voice)
	v.SetDefault("tts.rate", t.Rate)
	v.SetDefault("tts.volume", t.Volume)
	v.SetDefault("tts.command", t.Command)

	v.SetDefault("image.model", d.Gemini.ImageModel)
	v.SetDefault("image.style", string(vocab.StylePictureBook))
	v.SetDefault("image.concurrency", 3)

	v.SetDefault("quiz.auto_advance", true)
	v.SetDefault("quiz.seed", 0)
}

// LLMProviderConfig builds the provider configuration: the first API key
// found through lookup picks the provider, then the llm section
// overrides provider, model, key and base URL.
func (c *Config) LLMProviderConfig(lookup func(string) string) llm.Config {
	base := llm.DefaultConfig()
	base.Gemini.ImageModel = c.Image.Model
	base.Retry.MaxAttempts = max(c.LLM.RetryAttempts, 1)
	base.Timeout = c.LLM.Timeout

	cfg, _ := llm.DiscoverConfig(base, lookup)
	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}

	switch cfg.Provider {
	case llm.ProviderGemini:
		override(&cfg.Gemini.APIKey, c.LLM.APIKey)
		override(&cfg.Gemini.Model, c.LLM.Model)
	case llm.ProviderOpenAI:
		override(&cfg.OpenAI.APIKey, c.LLM.APIKey)
		override(&cfg.OpenAI.Model, c.LLM.Model)
		override(&cfg.OpenAI.BaseURL, c.LLM.BaseURL)
	case llm.ProviderAnthropic:
		override(&cfg.Anthropic.APIKey, c.LLM.APIKey)
		override(&cfg.Anthropic.Model, c.LLM.Model)
	case llm.ProviderOpenRouter:
		override(&cfg.OpenRouter.APIKey, c.LLM.APIKey)
		override(&cfg.OpenRouter.Model, c.LLM.Model)
		override(&cfg.OpenRouter.BaseURL, c.LLM.BaseURL)
	}
	return cfg
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ContentConfig returns the generation settings.
func (c *Config) ContentConfig() contentgen.Config {
	cc := contentgen.DefaultConfig()
	cc.MaxTokens = c.LLM.MaxTokens
	cc.Temperature = c.LLM.Temperature
	return cc
}

// ImageStyle returns the configured illustration style.
func (c *Config) ImageStyle() vocab.ImageStyle {
	return vocab.ParseImageStyle(c.Image.Style)
}

// ResolveDataDir returns the data directory, creating it.
func (c *Config) ResolveDataDir(defaultDir func() (string, error)) (string, error) {
	if c.DataDir == "" {
		return defaultDir()
	}
	return c.DataDir, os.MkdirAll(c.DataDir, 0o755)
}
