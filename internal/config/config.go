package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/GITHIYON49/taskmanagementapp/pkg/client"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// DefaultPort is the local bridge server's default listen port.
const DefaultPort = 3549

// Config is <home>/config.yaml. Zero fields fall back to defaults.
type Config struct {
	APIURL       string `yaml:"api_url,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"` // Go duration, e.g. "30s"
	Port         int    `yaml:"port,omitempty"`
	APIKey       string `yaml:"api_key,omitempty"` // bridge server X-API-Key
	Pprof        bool   `yaml:"pprof,omitempty"`
}

// Path returns the config file location under home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Load reads <home>/config.yaml and applies environment overrides. A missing file
// is not an error.
func Load(home string) (*Config, error) {
	var c Config
	data, err := os.ReadFile(Path(home))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Path(home), err)
		}
	}
	c.applyEnv()
	return &c, nil
}

// Save writes c to <home>/config.yaml with owner-only permissions.
func Save(home string, c *Config) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(home), data, 0o600)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TASKBOARD_API_URL"); v != "" {
		c.APIURL = v
	} else if v := os.Getenv("VITE_API_URL"); v != "" && c.APIURL == "" {
		c.APIURL = v
	}
	if v := os.Getenv("TASKBOARD_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("TASKBOARD_POLL_INTERVAL"); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv("TASKBOARD_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
}

// BaseURL returns the backend API URL.
func (c *Config) BaseURL() string {
	if c.APIURL == "" {
		return client.DefaultBaseURL
	}
	return c.APIURL
}

// Interval returns the notification poll interval. Unparseable or non-positive
// values fall back to the default.
func (c *Config) Interval() time.Duration {
	if d, err := time.ParseDuration(c.PollInterval); err == nil && d > 0 {
		return d
	}
	return models.DefaultPollIntervalSec * time.Second
}

// ListenPort returns the bridge server port.
func (c *Config) ListenPort() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
