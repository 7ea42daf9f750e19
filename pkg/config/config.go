// Package config loads vellum's configuration: a YAML file with environment
// overrides for deployment-specific values such as the access token. Unknown
// YAML keys are rejected so a typo fails at startup instead of silently
// running with a default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is tried when neither the caller nor VELLUM_CONFIG names a
// file. A missing default file is not an error; the environment alone can
// carry a full configuration.
const DefaultPath = "vellum.yml"

// Config is the full server configuration.
type Config struct {
	// APIRoot is the Gitea API base, e.g. "https://gitea.com/api/v1".
	APIRoot string `yaml:"api_root" validate:"required,url"`
	// Repo is the content repository as "owner/name".
	Repo string `yaml:"repo" validate:"required,contains=/"`
	// Branch is the branch holding the published content.
	Branch string `yaml:"branch"`
	// Token authenticates against the host. Usually set via VELLUM_TOKEN
	// rather than the file. Empty is allowed for public read-only use.
	Token string `yaml:"token"`
	// SquashMerges and InitialWorkflowStatus are accepted for front-end
	// compatibility; vellum has no editorial workflow, so they drive no
	// behavior.
	SquashMerges          bool   `yaml:"squash_merges"`
	InitialWorkflowStatus string `yaml:"initial_workflow_status" validate:"omitempty,oneof=draft review ready"`
	// PageSize is the tree listing page size requested from the host.
	PageSize int `yaml:"page_size" validate:"omitempty,min=1,max=1000"`
	// MediaFolder is where uploaded assets are persisted.
	MediaFolder string `yaml:"media_folder"`
	// Cache selects the content-cache store.
	Cache CacheConfig `yaml:"cache"`
	// ListenAddr is the HTTP listen address of the server.
	ListenAddr string `yaml:"listen_addr"`
}

// CacheConfig selects and tunes the content-addressed cache store.
type CacheConfig struct {
	// Driver is "memory", "badger" or "redis".
	Driver string `yaml:"driver" validate:"omitempty,oneof=memory badger redis"`
	// Path is the badger directory.
	Path string `yaml:"path" validate:"required_if=Driver badger"`
	// Addr is the redis address, e.g. "localhost:6379".
	Addr string `yaml:"addr"`
	// TTL bounds the lifetime of redis entries. Zero keeps them forever,
	// which is safe for content-addressed keys.
	TTL Duration `yaml:"ttl"`
}

// Duration parses YAML strings like "90s" or "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration before any file or environment input.
func Default() Config {
	return Config{
		APIRoot:     "https://gitea.com/api/v1",
		Branch:      "master",
		PageSize:    100,
		MediaFolder: "media",
		Cache:       CacheConfig{Driver: "memory"},
		ListenAddr:  ":8080",
	}
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path falls back to VELLUM_CONFIG, then
// DefaultPath; only the default file may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := false
	if path == "" {
		path = os.Getenv("VELLUM_CONFIG")
	}
	if path == "" {
		path = DefaultPath
		optional = true
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close() //nolint:errcheck
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && optional:
		// Environment-only configuration.
	default:
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv lets the environment override file values, so tokens stay out of
// checked-in configuration.
func applyEnv(cfg *Config) {
	cfg.Token = envOr("VELLUM_TOKEN", cfg.Token)
	cfg.Repo = envOr("VELLUM_REPO", cfg.Repo)
	cfg.APIRoot = envOr("VELLUM_API_ROOT", cfg.APIRoot)
	cfg.Branch = envOr("VELLUM_BRANCH", cfg.Branch)
	cfg.ListenAddr = envOr("VELLUM_LISTEN_ADDR", cfg.ListenAddr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
