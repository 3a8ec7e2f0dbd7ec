// Package config loads config.yaml.
package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"couponcast/logging"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxFormBytes   int64         `yaml:"max_form_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model     ModelConfig `yaml:"model"`
	Dashboard struct {
		Model ModelConfig `yaml:"model"`
	} `yaml:"dashboard"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logging.Config `yaml:"log"`
}

// ModelConfig locates a model artifact. An empty Type accepts the type the
// artifact declares.
type ModelConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path. When optional is set a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8000
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Http.MaxFormBytes == 0 {
		c.Http.MaxFormBytes = 64 << 10
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Model.Path == "" {
		c.Model.Path = "model/logistic_model.json"
	}
	if c.Dashboard.Model.Path == "" {
		c.Dashboard.Model.Path = "model/best_dt_model.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
