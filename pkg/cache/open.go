package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string
	Dir     string // file backend
	URL     string // redis or mongo connection string

	// Namespace prefixes redis keys and names the mongo database.
	Namespace string
}

// DefaultNamespace is used when Options.Namespace is empty.
const DefaultNamespace = "lineage"

// Open creates the configured cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	var (
		c   Cache
		err error
	)
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.URL, ns+":")
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.URL, ns, "renders")
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
