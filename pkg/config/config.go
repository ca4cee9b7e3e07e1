// Package config loads linkscope's configuration file.
//
// The file is TOML (config.toml) or YAML (config.yaml / config.yml), chosen
// by extension, and lives in $XDG_CONFIG_HOME/linkscope by default. Missing
// fields keep their defaults. Environment variables override the file, and
// command-line flags override both:
//
//	LINKSCOPE_ADDR             server.addr
//	LINKSCOPE_REDIS_URL        storage.redis_url
//	LINKSCOPE_MONGO_URI        storage.mongo_uri
//	LINKSCOPE_MONGO_DATABASE   storage.mongo_database
//	LINKSCOPE_CACHE_DIR        storage.cache_dir
//
// [LoadDotenv] reads these from a .env file before [Load] runs.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
)

// FileName is the default configuration file name.
const FileName = "config.toml"

// Config is the complete linkscope configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Session SessionConfig `toml:"session" yaml:"session"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Encode  EncodeConfig  `toml:"encode" yaml:"encode"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`

	// UploadRate is the sustained number of uploads per second accepted
	// across all clients; UploadBurst is the bucket size. 0 disables limiting.
	UploadRate  float64 `toml:"upload_rate" yaml:"upload_rate"`
	UploadBurst int     `toml:"upload_burst" yaml:"upload_burst"`

	MaxUploadBytes int64 `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// StorageConfig selects the persistence backends. Empty URLs select the
// in-process fallbacks.
type StorageConfig struct {
	RedisURL      string `toml:"redis_url" yaml:"redis_url"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
	CacheDir      string `toml:"cache_dir" yaml:"cache_dir"`
	SessionDir    string `toml:"session_dir" yaml:"session_dir"`

	// CacheNamespace prefixes cache keys so deployments sharing a Redis
	// instance keep their entries apart.
	CacheNamespace string `toml:"cache_namespace" yaml:"cache_namespace"`
}

// SessionConfig configures session lifetime.
type SessionConfig struct {
	TTL           Duration `toml:"ttl" yaml:"ttl"`
	SweepInterval Duration `toml:"sweep_interval" yaml:"sweep_interval"`
}

// RenderConfig configures static snapshots.
type RenderConfig struct {
	Engine   string `toml:"engine" yaml:"engine"`
	Detailed bool   `toml:"detailed" yaml:"detailed"`
}

// EncodeConfig holds the encoding settings that do not depend on a graph's
// attributes. They are layered over [encode.Suggest] for new sessions.
type EncodeConfig struct {
	LabelDensity float64       `toml:"label_density" yaml:"label_density"`
	NodeSize     encode.Bounds `toml:"node_size" yaml:"node_size"`
	EdgeWidth    encode.Bounds `toml:"edge_width" yaml:"edge_width"`
	Dimensions   int           `toml:"dimensions" yaml:"dimensions"`
	MinLabelZoom float64       `toml:"min_label_zoom" yaml:"min_label_zoom"`
}

// Apply copies the settings onto cfg.
func (e EncodeConfig) Apply(cfg encode.Config) encode.Config {
	cfg.LabelDensity = e.LabelDensity
	cfg.NodeSize = e.NodeSize
	cfg.EdgeWidth = e.EdgeWidth
	cfg.Dimensions = e.Dimensions
	cfg.MinLabelZoom = e.MinLabelZoom
	return cfg
}

// Suggest returns the suggested encoding for a schema with these settings
// applied.
func (e EncodeConfig) Suggest(s graph.Schema) encode.Config {
	return e.Apply(encode.Suggest(s))
}

// Duration is a time.Duration written as a string such as "2h" or "90s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	enc := encode.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			UploadRate:     2,
			UploadBurst:    5,
			MaxUploadBytes: 32 << 20,
		},
		Storage: StorageConfig{
			MongoDatabase: "linkscope",
		},
		Session: SessionConfig{
			TTL:           Duration(2 * time.Hour),
			SweepInterval: Duration(5 * time.Minute),
		},
		Render: RenderConfig{
			Engine: string(nodelink.DefaultEngine),
		},
		Encode: EncodeConfig{
			LabelDensity: enc.LabelDensity,
			NodeSize:     enc.NodeSize,
			EdgeWidth:    enc.EdgeWidth,
			Dimensions:   enc.Dimensions,
			MinLabelZoom: enc.MinLabelZoom,
		},
	}
}

// =============================================================================
// Paths
// =============================================================================

// Dir returns the linkscope config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "linkscope")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), FileName)
}

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "config file %s: expected .toml, .yaml or .yml", path)
}

// =============================================================================
// Load / Save
// =============================================================================

// Load reads the config file at path (the default path if empty), applies
// environment overrides and validates the result. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := Decode(data, path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data into cfg using the format implied by path. Fields
// absent from data are left as they are.
func Decode(data []byte, path string, cfg *Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s: %v", filepath.Base(path), err)
	}
	return nil
}

// Encode writes cfg in the format implied by path.
func Encode(w io.Writer, cfg *Config, path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	if f == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(w).Encode(cfg)
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg, path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.UploadRate < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.upload_rate must not be negative")
	}
	if c.Server.UploadRate > 0 && c.Server.UploadBurst < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.upload_burst must be at least 1 when rate limiting")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_upload_bytes must be positive")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "session.ttl and session.sweep_interval must be positive")
	}
	if u := c.Storage.RedisURL; u != "" {
		if err := errors.ValidateURL(u, "redis", "rediss", "unix"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "storage.redis_url: %s", errors.UserMessage(err))
		}
	}
	if u := c.Storage.MongoURI; u != "" {
		if err := errors.ValidateURL(u, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "storage.mongo_uri: %s", errors.UserMessage(err))
		}
	}
	if _, err := nodelink.ParseEngine(c.Render.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.engine: %v", err)
	}
	// With every attribute channel off, validation needs no schema.
	if err := c.Encode.Apply(encode.DefaultConfig()).Validate(graph.Schema{}); err != nil {
		return err
	}
	return nil
}
