package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/config"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/observability/prom"
	"github.com/matzehuels/reflections/pkg/server"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/store"
	"github.com/matzehuels/reflections/pkg/store/memory"
	"github.com/matzehuels/reflections/pkg/store/mongo"
	"github.com/matzehuels/reflections/pkg/store/redis"
)

// serveFlags are the command-line overrides of the [server] and [store]
// configuration sections.
type serveFlags struct {
	addr     string
	store    string
	redisURL string
	mongoURI string
	origins  []string
	metrics  bool
}

// serveCommand creates the serve command that runs the REST API.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long: `Run the REST API server.

The server exposes /login, /logout, /points, /shards and /mosaic.svg, plus
/healthz and /metrics. Storage, sessions and caching are chosen in the
configuration file; the flags below override it.`,
		Example: `  # In-memory server on :8080
  reflections serve

  # Redis-backed server
  reflections serve --store redis --redis-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&flags.store, "store", "", "storage backend: memory, redis, mongo")
	cmd.Flags().StringVar(&flags.redisURL, "redis-url", "", "redis URL for the redis backends")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo-uri", "", "mongo connection string for the mongo backend")
	cmd.Flags().StringSliceVar(&flags.origins, "origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", true, "expose prometheus metrics on /metrics")

	return cmd
}

// apply copies the flags that were set onto cfg.
func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.redisURL != "" {
		cfg.Store.RedisURL = f.redisURL
	}
	if f.mongoURI != "" {
		cfg.Store.MongoURI = f.mongoURI
	}
	if len(f.origins) > 0 {
		cfg.Server.AllowedOrigins = f.origins
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Server.Metrics = f.metrics
	}
}

// runServe wires the configured backends and serves until ctx is done.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := c.Logger.WithPrefix("server")

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	var metrics *prom.Collector
	if cfg.Server.Metrics {
		metrics = prom.NewCollector(appName)
		metrics.Install()
	}

	srv := server.New(server.Options{
		Store:          store.Instrument(b.store, cfg.Store.Backend),
		Sessions:       b.sessions,
		Cache:          b.cache,
		Renderer:       mosaic.NewRenderer(cfg.RendererOptions()...),
		Limits:         storeLimits(cfg),
		SessionTTL:     cfg.Session.TTL.Duration,
		CacheTTL:       cfg.Cache.TTL.Duration,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CookieSecure:   cfg.Server.CookieSecure,
		Metrics:        metrics,
		Logger:         logger,
	})

	printSuccess("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	printKeyValue("Store", cfg.Store.Backend)
	printKeyValue("Sessions", cfg.Session.Backend)
	printKeyValue("Cache", cfg.Cache.Backend)

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printInfo("Server stopped")
	return nil
}

// storeLimits returns the validation limits the store adapters apply.
func storeLimits(cfg config.Config) store.Limits {
	return store.Limits{Shard: cfg.ShardLimits(), PointsMax: cfg.Mosaic.PointsMax, RotationMax: cfg.Mosaic.RotationMax}
}

// backends holds everything runServe has to close on exit.
type backends struct {
	store    store.Store
	sessions session.Store
	cache    cache.Cache
	redis    *goredis.Client
}

// Close releases the backends in reverse order of creation.
func (b *backends) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if b.cache != nil {
		keep(b.cache.Close())
	}
	if b.sessions != nil {
		keep(b.sessions.Close())
	}
	if b.store != nil {
		keep(b.store.Close())
	}
	if b.redis != nil {
		// The redis store closes the shared client itself.
		if _, ok := b.store.(*redis.Store); !ok {
			keep(b.redis.Close())
		}
	}
	return first
}

// openBackends connects the store, session and cache backends named in cfg.
// A single redis client is shared by every redis-backed component.
func openBackends(ctx context.Context, cfg config.Config, logger *log.Logger) (*backends, error) {
	b := &backends{}
	fail := func(err error) (*backends, error) {
		_ = b.Close()
		return nil, err
	}

	redisClient := func() (*goredis.Client, error) {
		if b.redis != nil {
			return b.redis, nil
		}
		opts, err := goredis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.redis = client
		logger.Debug("connected to redis", "addr", opts.Addr)
		return client, nil
	}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisClient()
		if err != nil {
			return fail(err)
		}
		b.store = redis.New(client, redis.WithPrefix(cfg.Store.RedisPrefix))
	case config.BackendMongo:
		s, err := mongo.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return fail(err)
		}
		logger.Debug("connected to mongo", "database", cfg.Store.MongoDatabase)
		b.store = s
	default:
		b.store = memory.New()
	}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		client, err := redisClient()
		if err != nil {
			return fail(err)
		}
		b.sessions = session.NewRedisStore(client, cfg.Store.RedisPrefix)
	case config.BackendFile:
		s, err := session.NewFileStore(cfg.Session.Dir)
		if err != nil {
			return fail(err)
		}
		b.sessions = s
	default:
		b.sessions = session.NewMemoryStore()
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		client, err := redisClient()
		if err != nil {
			return fail(err)
		}
		b.cache = cache.NewRedisCache(client, cfg.Store.RedisPrefix)
	case config.BackendFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return fail(err)
			}
		}
		cc, err := cache.NewFileCache(dir)
		if err != nil {
			return fail(err)
		}
		b.cache = cc
	default:
		b.cache = cache.NewNullCache()
	}

	return b, nil
}
