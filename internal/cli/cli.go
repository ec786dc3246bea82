// Package cli implements the barrace command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/buildinfo"
	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "barrace"

	// Environment variables used as flag defaults.
	envRedisAddr   = "BARRACE_REDIS_ADDR"
	envMongoURI    = "BARRACE_MONGO_URI"
	envCachePrefix = "BARRACE_CACHE_PREFIX"
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

	verbose bool
	cache   cacheFlags
}

// cacheFlags select the artifact cache backend.
type cacheFlags struct {
	backend   string
	dir       string
	redisAddr string
	mongoURI  string
	prefix    string
	disabled  bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "barrace renders bar chart races",
		Long:              `barrace turns a table of values over time into an animated bar chart race: validate inputs, render single frames or whole frame sequences, play a race in the terminal, or serve frames over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.bindGlobalFlags(root)

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.framesCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.defaultsCommand())
	root.AddCommand(c.timelineGraphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cache.prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.cache.prefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.cache.disabled {
		return cache.NewNullCache(), nil
	}
	cfg := cache.Config{
		Backend: c.cache.backend,
		Dir:     c.cache.dir,
		Redis:   cache.RedisConfig{Addr: c.cache.redisAddr},
		Mongo:   cache.MongoConfig{URI: c.cache.mongoURI},
	}
	if cfg.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	return cache.Open(ctx, cfg)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/barrace/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
