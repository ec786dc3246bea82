package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/observability"
)

// bindGlobalFlags registers the persistent flags shared by every command.
// Redis and MongoDB locations and the key prefix default to
// BARRACE_REDIS_ADDR, BARRACE_MONGO_URI and BARRACE_CACHE_PREFIX.
func (c *CLI) bindGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.cache.backend, "cache-backend", cache.BackendFile, "cache backend: file, memory, redis, mongo, none")
	pf.StringVar(&c.cache.dir, "cache-dir", "", "file cache directory (default $XDG_CACHE_HOME/barrace)")
	pf.StringVar(&c.cache.redisAddr, "redis-addr", envOr(envRedisAddr, "localhost:6379"), "redis address for the redis backend")
	pf.StringVar(&c.cache.mongoURI, "mongo-uri", envOr(envMongoURI, "mongodb://localhost:27017"), "MongoDB URI for the mongo backend")
	pf.StringVar(&c.cache.prefix, "cache-prefix", os.Getenv(envCachePrefix), "prefix for cache keys, for instances sharing a backend")
	pf.BoolVar(&c.cache.disabled, "no-cache", false, "disable caching")
}

// preRun applies the global flags before any command runs. With --verbose the
// logger drops to debug level and pipeline, cache and HTTP hooks log through
// it.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Register()
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
