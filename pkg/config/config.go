// Package config loads wrestlerank settings from a TOML file.
//
// A missing file is not an error: every field has a default, and the file
// only needs the values it changes. Command-line flags are applied on top by
// the CLI after Load returns.
//
//	[engine]
//	runs = 8
//	seed = 7
//
//	[engine.anneal]
//	max_iterations = 200000
//
//	[evidence]
//	common_opponent = 0.25
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/cache"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the full configuration.
type Config struct {
	Engine   ranking.Options `toml:"engine"`
	Evidence outcome.Weights `toml:"evidence"`
	Cache    CacheConfig     `toml:"cache"`
	Store    StoreConfig     `toml:"store"`
	Server   ServerConfig    `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// StoreConfig selects and configures ranking persistence.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures `wrestlerank serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	RequestTimeout  Duration `toml:"request_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`

	// MaxRuns and MaxIterations bound the engine options a request may ask
	// for. MaxIterations applies to annealing, local search and PageRank.
	MaxRuns       int `toml:"max_runs"`
	MaxIterations int `toml:"max_iterations"`
}

// Duration is a time.Duration that decodes from TOML strings like "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:   ranking.DefaultOptions(),
		Evidence: outcome.DefaultWeights(),
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  "wrestlerank:",
			TTL:     Duration{cache.TTLRanking},
		},
		Store: StoreConfig{
			Backend:  StoreFile,
			Database: "wrestlerank",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  Duration{2 * time.Minute},
			MaxBodyBytes:    8 << 20,
			ShutdownTimeout: Duration{15 * time.Second},
			MaxRuns:         64,
			MaxIterations:   1_000_000,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/wrestlerank/config.toml, falling back
// to the OS user config directory.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(base, "wrestlerank", "config.toml")
}

// Load reads path over the defaults. When explicit is false a missing file
// yields the defaults; when true (the user passed --config) it is an error.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", source)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", source, undecoded[0].String())
	}
	cfg.Engine.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Evidence.Validate(); err != nil {
		return err
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if !slices.Contains([]string{StoreFile, StoreMongo}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && (c.Store.MongoURI == "" || c.Store.Database == "") {
		return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires mongo_uri and database")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server max_body_bytes must be positive")
	}
	if c.Server.MaxRuns <= 0 || c.Server.MaxIterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server max_runs and max_iterations must be positive")
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
