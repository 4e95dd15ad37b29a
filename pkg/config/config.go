// Package config handles loading and saving codewalk configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/codewalk/config.yaml
//   - State:   ~/.local/state/codewalk/ (resume database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "codewalk"

// Walkthrough is a named walkthrough registered in the config, so it can be
// opened by name instead of path.
type Walkthrough struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// AutoplayConfig holds the autoplay defaults.
type AutoplayConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	StaticQuery string `yaml:"static_query,omitempty"` // e.g. "(max-width: 100)", "static", "dynamic"
	Theme       string `yaml:"theme,omitempty"`        // glamour style: auto, dark, light, notty
	Width       int    `yaml:"width,omitempty"`        // static render width, 0 = terminal width
}

// WatchConfig controls live reload.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Config is the top-level configuration for codewalk.
type Config struct {
	Walkthroughs []Walkthrough `yaml:"walkthroughs,omitempty"`
	Autoplay     AutoplayConfig `yaml:"autoplay"`
	UI           UIConfig       `yaml:"ui,omitempty"`
	Watch        WatchConfig    `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Autoplay: AutoplayConfig{
			Enabled:  true,
			Interval: 3 * time.Second,
		},
		UI: UIConfig{
			StaticQuery: "(max-width: 100)",
			Theme:       "auto",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// ConfigDir returns the XDG config directory for codewalk.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for codewalk.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	for i := range cfg.Walkthroughs {
		cfg.Walkthroughs[i].Path = expandHome(cfg.Walkthroughs[i].Path)
	}

	return cfg, nil
}

// Validate rejects values the players cannot work with.
func (c Config) Validate() error {
	if c.Autoplay.Interval < 0 {
		return fmt.Errorf("autoplay.interval must not be negative, got %s", c.Autoplay.Interval)
	}
	if c.UI.Width < 0 {
		return fmt.Errorf("ui.width must not be negative, got %d", c.UI.Width)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindWalkthrough returns the registered walkthrough with the given name, or nil.
func (c Config) FindWalkthrough(name string) *Walkthrough {
	for i := range c.Walkthroughs {
		if strings.EqualFold(c.Walkthroughs[i].Name, name) {
			return &c.Walkthroughs[i]
		}
	}
	return nil
}

// ResolvedPath returns the walkthrough path with ~ expanded.
func (w Walkthrough) ResolvedPath() string {
	return expandHome(w.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
