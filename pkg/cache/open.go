package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Dir is the FileCache directory; empty uses DefaultDir.
	Dir        string
	MaxEntries int
	Redis      RedisConfig
	Mongo      MongoConfig
}

// Open creates the configured backend. An empty Backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendMemory:
		return NewMemoryCache(cfg.MaxEntries), nil
	case BackendRedis:
		return NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, cfg.Mongo)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
