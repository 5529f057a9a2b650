package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"photoroom/prapi"
)

// Defaults
const (
	DefaultSDKURL      = prapi.DefaultSDKURL
	DefaultImageAPIURL = prapi.DefaultImageAPIURL
	DefaultTimeout     = prapi.DefaultTimeout
	DefaultMaxAttempts = 5
	DefaultOutputDir   = "output"
	DefaultLogLevel    = "warn"
	DefaultDebounce    = 500 * time.Millisecond
)

// Config holds settings read from config.yaml
type Config struct {
	SDKURL      string        `yaml:"sdk_url"`
	ImageAPIURL string        `yaml:"image_api_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	OutputDir   string        `yaml:"output_dir"`
	LogLevel    string        `yaml:"log_level"`
	KeysFile    string        `yaml:"keys_file"`
	Watch       Watch         `yaml:"watch"`

	// Path the settings were read from; empty when defaults only
	Path string `yaml:"-"`
}

// Watch holds remove-background options for watch mode
type Watch struct {
	Format    string        `yaml:"format"`
	Channels  string        `yaml:"channels"`
	Size      string        `yaml:"size"`
	BgColor   string        `yaml:"bg_color"`
	Crop      bool          `yaml:"crop"`
	Despill   bool          `yaml:"despill"`
	OutputDir string        `yaml:"output_dir"`
	Debounce  time.Duration `yaml:"debounce"`
}

// Default returns the settings used when no file exists
func Default() *Config {
	return &Config{
		SDKURL:      DefaultSDKURL,
		ImageAPIURL: DefaultImageAPIURL,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		OutputDir:   DefaultOutputDir,
		LogLevel:    DefaultLogLevel,
		Watch: Watch{
			Format:   "png",
			Channels: "rgba",
			Size:     "full",
			Debounce: DefaultDebounce,
		},
	}
}

// Dir returns the directory holding config.yaml and keys.json,
// $XDG_CONFIG_HOME/photoroom-cli or ~/.config/photoroom-cli
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "photoroom-cli"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "photoroom-cli"), nil
}

// Load reads settings from path. An empty path means config.yaml in Dir,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if cfg.KeysFile == "" {
		cfg.KeysFile = filepath.Join(filepath.Dir(path), "keys.json")
	} else if !filepath.IsAbs(cfg.KeysFile) {
		cfg.KeysFile = filepath.Join(filepath.Dir(path), cfg.KeysFile)
	}
	if cfg.Watch.OutputDir == "" {
		cfg.Watch.OutputDir = cfg.OutputDir
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values
func (c *Config) Validate() error {
	for name, v := range map[string]string{"sdk_url": c.SDKURL, "image_api_url": c.ImageAPIURL} {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config field %s: %q is not an http(s) URL", name, v)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config field timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("config field max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("config missing required field: output_dir")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Watch.Format {
	case "png", "jpg", "webp":
	default:
		return fmt.Errorf("config field watch.format: unsupported format %q", c.Watch.Format)
	}
	switch c.Watch.Channels {
	case "rgba", "alpha":
	default:
		return fmt.Errorf("config field watch.channels: unsupported value %q", c.Watch.Channels)
	}
	return nil
}

// ParseLevel maps a log_level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config field log_level: unknown level %q", name)
}
