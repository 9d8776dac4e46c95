package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	xdgAppName = "aide"
	configFile = "config.json"
)

// Config holds the CLI defaults. Every field can be overridden from the
// environment.
type Config struct {
	APIURL         string `json:"api_url" env:"AIDE_API_URL" env-default:"http://localhost:8000"`
	Source         string `json:"source" env:"AIDE_SOURCE" env-default:"local"`
	Policy         string `json:"policy" env:"AIDE_POLICY" env-default:"refetch"`
	HideCompleted  bool   `json:"hide_completed" env:"AIDE_HIDE_COMPLETED"`
	TaskList       string `json:"task_list" env:"AIDE_TASK_LIST" env-default:"@default"`
	Calendar       string `json:"calendar" env:"AIDE_CALENDAR" env-default:"primary"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"AIDE_TIMEOUT_SECONDS" env-default:"10"`
}

// Timeout is the per-request deadline for remote calls.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, falling back to environment and defaults
// when the file does not exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
