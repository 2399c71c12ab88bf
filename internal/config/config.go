package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/WillDeJs/http-client/pkg/client"
)

// Config defines configuration for the fetch CLI.
type Config struct {
	URL       string            `yaml:"url"`
	Output    string            `yaml:"output"`
	Bucket    string            `yaml:"bucket"`
	Object    string            `yaml:"object"`
	BlockSize int64             `yaml:"block_size"`
	UserAgent string            `yaml:"user_agent"`
	Progress  bool              `yaml:"progress"`
	Headers   map[string]string `yaml:"headers"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		BlockSize: client.DefaultBlockSize,
	}
}

// yamlConfig is used for YAML unmarshaling with string block size.
type yamlConfig struct {
	URL       string            `yaml:"url"`
	Output    string            `yaml:"output"`
	Bucket    string            `yaml:"bucket"`
	Object    string            `yaml:"object"`
	BlockSize string            `yaml:"block_size"`
	UserAgent string            `yaml:"user_agent"`
	Progress  bool              `yaml:"progress"`
	Headers   map[string]string `yaml:"headers"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Object != "" {
		cfg.Object = yc.Object
	}
	if yc.BlockSize != "" {
		size, err := humanize.ParseBytes(yc.BlockSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse block_size: %w", err)
		}
		cfg.BlockSize = int64(size)
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	cfg.Progress = yc.Progress
	if len(yc.Headers) > 0 {
		cfg.Headers = yc.Headers
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FETCH_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("FETCH_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("FETCH_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("FETCH_OBJECT"); v != "" {
		c.Object = v
	}
	if v := os.Getenv("FETCH_BLOCK_SIZE"); v != "" {
		size, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_BLOCK_SIZE: %w", err)
		}
		c.BlockSize = int64(size)
	}
	if v := os.Getenv("FETCH_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("FETCH_PROGRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse FETCH_PROGRESS: %w", err)
		}
		c.Progress = b
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.Output == "" && c.Bucket == "" {
		return errors.New("config: either output or bucket is required")
	}
	if c.Bucket != "" && c.Object == "" {
		return errors.New("config: object is required when bucket is set")
	}
	if c.BlockSize <= 0 {
		return errors.New("config: block_size must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Object != "" {
		c.Object = override.Object
	}
	if override.BlockSize != 0 {
		c.BlockSize = override.BlockSize
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	for k, v := range override.Headers {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[k] = v
	}
	return c
}
