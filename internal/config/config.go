package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultStoragePath = ".wordgrab/wordgrab.db"
	DefaultMaxItems    = 200
	DefaultTimeout     = 2 * time.Minute
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	// Platforms maps platform names to opaque credential bundles. A
	// platform is enabled by being present, even with an empty bundle.
	// Bundle keys ending in _env are resolved from the environment into
	// the base key at load time (e.g. bearer_token_env -> bearer_token).
	Platforms map[string]map[string]string `yaml:"platforms"`

	// Exclude lists platforms to skip even when credentials are present.
	Exclude []string `yaml:"exclude"`

	Fetch   FetchConfig   `yaml:"fetch"`
	Storage StorageConfig `yaml:"storage"`
}

type FetchConfig struct {
	MaxItems int      `yaml:"max_items"` // default item cap when the caller gives none
	Timeout  Duration `yaml:"timeout"`   // wall-clock deadline per fetch
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and
// validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Fetch.MaxItems == 0 {
		cfg.Fetch.MaxItems = DefaultMaxItems
	}
	if cfg.Fetch.Timeout.Duration == 0 {
		cfg.Fetch.Timeout.Duration = DefaultTimeout
	}
}

// resolveEnv replaces every bundle key ending in _env with its base key,
// valued from the named environment variable.
func resolveEnv(cfg *Config) {
	for _, bundle := range cfg.Platforms {
		for key, envName := range bundle {
			base, found := strings.CutSuffix(key, "_env")
			if !found || base == "" {
				continue
			}
			bundle[base] = os.Getenv(envName)
			delete(bundle, key)
		}
	}
}

func validate(cfg *Config) error {
	if len(cfg.Platforms) == 0 {
		return errors.New("platforms: at least one platform must be configured")
	}
	for name := range cfg.Platforms {
		if strings.TrimSpace(name) == "" {
			return errors.New("platforms: platform name must not be empty")
		}
		if name != strings.ToLower(name) {
			return fmt.Errorf("platforms: %q: platform names are lowercase", name)
		}
	}
	if cfg.Fetch.MaxItems < 0 {
		return fmt.Errorf("fetch.max_items: must be >= 0, got %d", cfg.Fetch.MaxItems)
	}
	if cfg.Fetch.Timeout.Duration <= 0 {
		return errors.New("fetch.timeout: must be positive")
	}
	return nil
}
