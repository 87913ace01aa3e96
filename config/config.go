package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port              int `yaml:"port"`
		RequestTimeoutSec int `yaml:"request_timeout_sec"`
	} `yaml:"server"`
	OpenAI struct {
		BaseURL         string `yaml:"base_url"`
		Model           string `yaml:"model"`
		FallbackModel   string `yaml:"fallback_model"`
		APIKeyEnv       string `yaml:"api_key_env"`
		APIKey          string `yaml:"-"`
		VerifyKey       bool   `yaml:"verify_key"`
		ProbeTimeoutSec int    `yaml:"probe_timeout_sec"`
		MaxRetries      int    `yaml:"max_retries"`
	} `yaml:"openai"`
	Log struct {
		Dir   string `yaml:"dir"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// EnvFiles are loaded in order before the key is read; earlier files win.
var EnvFiles = []string{".env.local", ".env"}

// Load reads the YAML config at path. A missing file yields the defaults and a
// missing API key leaves APIKey empty; the chat UI degrades instead of exiting.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}
	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	cfg.OpenAI.APIKey = os.Getenv(cfg.OpenAI.APIKeyEnv)
	return cfg, nil
}

func loadEnvFiles() error {
	for _, f := range EnvFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSec == 0 {
		cfg.Server.RequestTimeoutSec = 120
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.FallbackModel == "" {
		cfg.OpenAI.FallbackModel = "gpt-3.5-turbo"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.ProbeTimeoutSec == 0 {
		cfg.OpenAI.ProbeTimeoutSec = 10
	}
	if cfg.OpenAI.MaxRetries < 0 {
		cfg.OpenAI.MaxRetries = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.OpenAI.ProbeTimeoutSec) * time.Second
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
