package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/buildinfo"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/cache"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/config"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wrestlerank"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (tables, JSON, diagrams).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// =============================================================================
// Backend Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. withStore opens the
// configured store; commands that never save skip it.
func (c *CLI) newRunner(ctx context.Context, noCache, withStore bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var st store.Store
	if withStore {
		if st, err = c.newStore(ctx); err != nil {
			ch.Close()
			return nil, err
		}
	}
	r := pipeline.NewRunner(ch, newKeyer(), st, c.Logger)
	r.RankingTTL = c.Config.Cache.TTL.Duration
	return r, nil
}

func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, buildinfo.Version+":")
}

// newCache opens the configured cache. A file cache that cannot be created
// degrades to no caching; a configured Redis that cannot be reached is an
// error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.Config.Cache
	if noCache || cc.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cc.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cc.RedisURL, cc.Prefix)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}

	dir := cc.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("caching disabled", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// newStore opens the configured ranking store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	sc := c.Config.Store
	if sc.Backend == config.StoreMongo {
		ms, err := store.NewMongoStore(ctx, sc.MongoURI, sc.Database)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}

	dir := sc.Dir
	if dir == "" {
		var err error
		if dir, err = store.DefaultDir(); err != nil {
			return nil, err
		}
	}
	fs, err := store.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wrestlerank/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cache.DefaultDir()
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseList splits a comma-separated flag value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
