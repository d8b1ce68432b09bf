package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifeline/pkg/cache"
	"github.com/matzehuels/lifeline/pkg/pipeline"
	"github.com/matzehuels/lifeline/pkg/server"
	"github.com/matzehuels/lifeline/pkg/storage"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr        string
	configPath  string
	redisURL    string
	cachePrefix string
	mongoURI    string
	mongoDB     string
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     envOr("LIFELINE_ADDR", ":8080"),
		redisURL: os.Getenv("LIFELINE_REDIS_URL"),
		mongoURI: os.Getenv("LIFELINE_MONGO_URI"),
		mongoDB:  envOr("LIFELINE_MONGO_DB", "lifeline"),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts and artifacts are cached in Redis when --redis-url is set, else in
memory. Saved diagrams go to MongoDB when --mongo-uri is set, else they
live in memory until the server stops.

Routes:
  POST   /v1/layout
  POST   /v1/render?format=svg|json|dot|overview[&save=true]
  GET    /v1/diagrams/{id}
  POST   /v1/diagrams/{id}/render
  DELETE /v1/diagrams/{id}
  GET    /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "layout config file (TOML)")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", opts.redisURL, "Redis URL for the layout cache (env LIFELINE_REDIS_URL)")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", "", "prefix for cache keys shared with other deployments")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB URI for saved diagrams (env LIFELINE_MONGO_URI)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")

	return cmd
}

// runServe wires the cache and store backends and runs the server until
// the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	ch, err := c.serveCache(ctx, opts.redisURL)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.cachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, opts.cachePrefix)
	}
	runner := pipeline.NewRunner(cache.WithHooks(ch), keyer, c.Logger)
	defer runner.Close()

	store, err := c.serveStore(ctx, opts.mongoURI, opts.mongoDB)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	printKeyValue("listen", opts.addr)
	srv := server.New(server.Deps{
		Runner: runner,
		Store:  store,
		Config: cfg,
		Logger: c.Logger,
	})
	return srv.Run(ctx, opts.addr)
}

// serveCache connects to Redis, or falls back to an in-memory cache when
// no URL is set or Redis cannot be reached.
func (c *CLI) serveCache(ctx context.Context, url string) (cache.Cache, error) {
	if url == "" {
		printKeyValue("cache", "memory")
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: url})
	if stderrors.Is(err, cache.ErrUnavailable) {
		printWarning("Redis unavailable, caching in memory")
		c.Logger.Warn("redis unavailable", "err", err)
		return cache.NewMemoryCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	printKeyValue("cache", "redis")
	return rc, nil
}

// serveStore connects to MongoDB, or uses an in-memory store when no URI
// is set. Unlike the cache, a configured but unreachable database is fatal.
func (c *CLI) serveStore(ctx context.Context, uri, db string) (storage.Store, error) {
	if uri == "" {
		printKeyValue("store", "memory")
		return storage.NewMemoryStore(), nil
	}
	s, err := storage.NewMongoStore(ctx, storage.MongoConfig{URI: uri, Database: db})
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	printKeyValue("store", "mongo/"+db)
	return s, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
