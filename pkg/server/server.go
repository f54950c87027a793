// Package server exposes the mosaic REST API over HTTP.
//
// Routes:
//
//	POST   /login                {"username": "..."} -> session cookie
//	POST   /logout
//	GET    /points               -> {"points": [[x,y],...], "rotationCount": n}
//	POST   /points               create or replace the working set
//	PUT    /points               replace an existing working set
//	DELETE /points
//	GET    /shards               -> [shard, ...]
//	POST   /shards               -> full list
//	GET    /shards/{id}          -> shard
//	PUT    /shards/{id}          -> full list
//	DELETE /shards/{id}          -> full list
//	POST   /shards/{id}/tarnish  -> shard
//	GET    /mosaic.svg           ?width=&height=
//	GET    /healthz
//	GET    /metrics              when a collector is configured
//
// Every route except /login, /healthz and /metrics requires a session.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/observability/prom"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/store"
)

// CookieName is the session cookie set by /login.
const CookieName = "reflections_session"

// Options configures a Server. Store and Sessions are required.
type Options struct {
	Store          store.Store
	Sessions       session.Store
	Cache          cache.Cache
	Renderer       *mosaic.Renderer
	Limits         store.Limits
	SessionTTL     time.Duration
	CacheTTL       time.Duration
	AllowedOrigins []string
	CookieSecure   bool
	Metrics        *prom.Collector
	Logger         *log.Logger
}

// Server handles the REST API.
type Server struct {
	store    store.Store
	sessions session.Store
	cache    cache.Cache
	keyer    cache.Keyer
	renderer *mosaic.Renderer
	limits   store.Limits
	opts     Options
	logger   *log.Logger
	handler  http.Handler
}

// New builds a server and its router.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Renderer == nil {
		opts.Renderer = mosaic.NewRenderer()
	}
	if opts.Limits == (store.Limits{}) {
		opts.Limits = store.DefaultLimits()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{
		store:    opts.Store,
		sessions: opts.Sessions,
		cache:    opts.Cache,
		keyer:    cache.NewDefaultKeyer(),
		renderer: opts.Renderer,
		limits:   opts.Limits,
		opts:     opts,
		logger:   opts.Logger,
	}
	s.handler = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.opts.Metrics != nil {
		r.Use(metrics(s.opts.Metrics))
	}

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.loadSession)

	r.Get("/healthz", s.healthz)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler())
	}
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/points", func(r chi.Router) {
			r.Get("/", s.getPoints)
			r.Post("/", s.createPoints)
			r.Put("/", s.updatePoints)
			r.Delete("/", s.deletePoints)
		})

		r.Route("/shards", func(r chi.Router) {
			r.Get("/", s.listShards)
			r.Post("/", s.createShard)
			r.Get("/{id}", s.getShard)
			r.Put("/{id}", s.updateShard)
			r.Delete("/{id}", s.deleteShard)
			r.Post("/{id}/tarnish", s.tarnishShard)
		})

		r.Get("/mosaic.svg", s.mosaicSVG)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
