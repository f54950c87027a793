// Package config loads reflections.toml.
//
// Loading order, lowest priority first:
//  1. [Default] values
//  2. the TOML file, if present
//  3. REFLECTIONS_* environment variables
//
// CLI flags are applied by the commands on top of the result.
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	allowed_origins = ["http://localhost:5173"]
//
//	[store]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[timing]
//	reveal_delay = "300ms"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/interact"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// DefaultPath is the file read when no path is given.
const DefaultPath = "reflections.toml"

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the complete application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	Session Session `toml:"session"`
	Cache   Cache   `toml:"cache"`
	Mosaic  Mosaic  `toml:"mosaic"`
	Timing  Timing  `toml:"timing"`
}

// Server configures the HTTP server.
type Server struct {
	Addr            string   `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	Metrics         bool     `toml:"metrics"`
	CookieSecure    bool     `toml:"cookie_secure"`
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend       string `toml:"backend"`
	RedisURL      string `toml:"redis_url"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Session configures login sessions.
type Session struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`
	Dir     string   `toml:"dir"`
}

// Cache configures the rendered-artifact cache.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// Mosaic holds the geometric and validation limits. The limits are used
// as written by both the editor and the store: a points_max of 0 allows any
// number of points and a rotation_max of 0 disables rotation.
type Mosaic struct {
	Margin      float64 `toml:"margin"`
	Inset       float64 `toml:"inset"`
	EdgeMode    string  `toml:"edge_mode"`
	PointsMax   int     `toml:"points_max"`
	RotationMax int     `toml:"rotation_max"`
	TintMax     int     `toml:"tint_max"`
	GlowMax     int     `toml:"glow_max"`
	PointMax    int     `toml:"point_max"`
}

// Timing holds the interaction delays.
type Timing struct {
	RevealDelay   Duration `toml:"reveal_delay"`
	HoverDelay    Duration `toml:"hover_delay"`
	DebounceDelay Duration `toml:"debounce_delay"`
}

// Duration is a time.Duration written as a string ("300ms") in TOML.
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
	limits := shard.DefaultLimits()
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: Duration{10 * time.Second},
			Metrics:         true,
		},
		Store: Store{
			Backend:       BackendMemory,
			RedisPrefix:   "reflections:",
			MongoDatabase: "reflections",
		},
		Session: Session{
			Backend: BackendMemory,
			TTL:     Duration{24 * time.Hour},
		},
		Cache: Cache{
			Backend: BackendNone,
			TTL:     Duration{time.Hour},
		},
		Mosaic: Mosaic{
			Margin:      viewport.DefaultMargin,
			Inset:       mosaic.DefaultInset,
			EdgeMode:    mosaic.EdgeReject.String(),
			PointsMax:   mosaic.DefaultPointsMax,
			RotationMax: mosaic.DefaultRotationMax,
			TintMax:     limits.TintMax,
			GlowMax:     limits.GlowMax,
			PointMax:    limits.PointMax,
		},
		Timing: Timing{
			RevealDelay:   Duration{interact.DefaultRevealDelay},
			HoverDelay:    Duration{mosaic.DefaultHoverDelay},
			DebounceDelay: Duration{interact.DefaultDebounceDelay},
		},
	}
}

// Load returns Default overlaid with the file at path and the environment.
// A missing file is not an error when path is DefaultPath or empty.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) || explicit {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// Parse decodes TOML text on top of Default.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("REFLECTIONS_ADDR", &c.Server.Addr)
	set("REFLECTIONS_STORE", &c.Store.Backend)
	set("REFLECTIONS_REDIS_URL", &c.Store.RedisURL)
	set("REFLECTIONS_MONGO_URI", &c.Store.MongoURI)
	set("REFLECTIONS_SESSION_STORE", &c.Session.Backend)
	set("REFLECTIONS_CACHE", &c.Cache.Backend)
	if v, ok := lookup("REFLECTIONS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
}

// Validate checks ranges and backend names.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidInput, "config: "+format, args...)
	}

	m := c.Mosaic
	if m.Margin <= 0 || m.Margin >= 1 {
		return invalid("mosaic.margin must be in (0, 1), got %v", m.Margin)
	}
	if m.Inset < 0 {
		return invalid("mosaic.inset cannot be negative")
	}
	if _, ok := mosaic.ParseEdgeMode(m.EdgeMode); !ok {
		return invalid("unknown mosaic.edge_mode %q", m.EdgeMode)
	}
	for name, v := range map[string]int{
		"points_max":   m.PointsMax,
		"rotation_max": m.RotationMax,
		"tint_max":     m.TintMax,
		"glow_max":     m.GlowMax,
		"point_max":    m.PointMax,
	} {
		if v < 0 {
			return invalid("mosaic.%s cannot be negative", name)
		}
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return invalid("store.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return invalid("store.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown store.backend %q", c.Store.Backend)
	}

	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return invalid("session.backend redis needs store.redis_url")
		}
	default:
		return invalid("unknown session.backend %q", c.Session.Backend)
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return invalid("cache.backend redis needs store.redis_url")
		}
	default:
		return invalid("unknown cache.backend %q", c.Cache.Backend)
	}

	for name, d := range map[string]Duration{
		"timing.reveal_delay":   c.Timing.RevealDelay,
		"timing.hover_delay":    c.Timing.HoverDelay,
		"timing.debounce_delay": c.Timing.DebounceDelay,
	} {
		if d.Duration < 0 {
			return invalid("%s cannot be negative", name)
		}
	}
	return nil
}

// MachineConfig returns the interaction machine settings. Clock, logger
// and backend wiring are left to the caller.
func (c Config) MachineConfig() interact.Config {
	return interact.Config{
		RevealDelay:   c.Timing.RevealDelay.Duration,
		HoverDelay:    c.Timing.HoverDelay.Duration,
		DebounceDelay: c.Timing.DebounceDelay.Duration,
		Limits:        c.ShardLimits(),
		PointsMax:     c.Mosaic.PointsMax,
		RotationMax:   c.Mosaic.RotationMax,
		Renderer:      mosaic.NewRenderer(c.RendererOptions()...),
	}
}

// ShardLimits returns the configured shard limits.
func (c Config) ShardLimits() shard.Limits {
	return shard.Limits{TintMax: c.Mosaic.TintMax, GlowMax: c.Mosaic.GlowMax, PointMax: c.Mosaic.PointMax}
}

// RendererOptions returns the renderer options described by the config.
// The edge mode has already been checked by Validate.
func (c Config) RendererOptions() []mosaic.Option {
	edge, _ := mosaic.ParseEdgeMode(c.Mosaic.EdgeMode)
	return []mosaic.Option{
		mosaic.WithMargin(c.Mosaic.Margin),
		mosaic.WithInset(c.Mosaic.Inset),
		mosaic.WithEdgeMode(edge),
	}
}
