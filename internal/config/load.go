package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads a scenario with priority: defaults < file < flags. A nil
// Flags loads defaults and any scenario found in the standard locations.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	path := ""
	if f != nil {
		path = f.Config
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", path, err)
		}
	}

	if f != nil {
		f.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges a YAML scenario file into cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile looks for a scenario in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./scenario.yaml",
		filepath.Join(ConfigDir(), "scenario.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ls-lightcurve")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ls-lightcurve")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "ls-lightcurve")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "ls-lightcurve")
	}
}

// SaveTo writes the scenario to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
