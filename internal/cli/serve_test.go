package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/config"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/store/memory"
)

func TestServeFlagsApply(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("metrics", true, "")
	if err := cmd.ParseFlags([]string{"--metrics=false"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	flags := serveFlags{
		addr:     ":9090",
		store:    config.BackendRedis,
		redisURL: "redis://cache:6379/1",
		origins:  []string{"https://example.org"},
		metrics:  false,
	}
	flags.apply(cmd, &cfg)

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != config.BackendRedis || cfg.Store.RedisURL != "redis://cache:6379/1" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.Metrics {
		t.Error("Metrics still enabled")
	}
}

func TestServeFlagsApplyUnset(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("metrics", true, "")

	cfg := config.Default()
	want := cfg
	serveFlags{}.apply(cmd, &cfg)

	if cfg.Server.Addr != want.Server.Addr || cfg.Store.Backend != want.Store.Backend {
		t.Errorf("unset flags changed the config: %+v", cfg)
	}
	if !cfg.Server.Metrics {
		t.Error("unset --metrics disabled metrics")
	}
}

func TestOpenBackendsDefaults(t *testing.T) {
	logger := log.New(io.Discard)

	b, err := openBackends(context.Background(), config.Default(), logger)
	if err != nil {
		t.Fatalf("openBackends: %v", err)
	}
	defer b.Close()

	if _, ok := b.store.(*memory.Store); !ok {
		t.Errorf("store = %T, want memory", b.store)
	}
	if _, ok := b.cache.(cache.NullCache); !ok {
		t.Errorf("cache = %T, want null", b.cache)
	}
	if b.redis != nil {
		t.Error("redis client opened without a redis backend")
	}
}

func TestOpenBackendsFile(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Backend = config.BackendFile
	cfg.Session.Dir = t.TempDir()
	cfg.Cache.Backend = config.BackendFile
	cfg.Cache.Dir = t.TempDir()

	b, err := openBackends(context.Background(), cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("openBackends: %v", err)
	}
	defer b.Close()

	if _, ok := b.sessions.(*session.FileStore); !ok {
		t.Errorf("sessions = %T, want file", b.sessions)
	}
	fc, ok := b.cache.(*cache.FileCache)
	if !ok {
		t.Fatalf("cache = %T, want file", b.cache)
	}
	if fc.Dir() != cfg.Cache.Dir {
		t.Errorf("cache dir = %q, want %q", fc.Dir(), cfg.Cache.Dir)
	}
}

func TestOpenBackendsBadRedisURL(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.RedisURL = "not a url"

	if _, err := openBackends(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Error("expected error for an invalid redis url")
	}
}

func TestStoreLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Mosaic.RotationMax = 5
	cfg.Mosaic.TintMax = 3

	l := storeLimits(cfg)
	if l.RotationMax != 5 || l.Shard.TintMax != 3 || l.PointsMax != cfg.Mosaic.PointsMax {
		t.Errorf("storeLimits = %+v", l)
	}
}
