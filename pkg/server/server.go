package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/engine"
)

// Config configures a [Server].
type Config struct {
	// Path is the lineage document served and, with Watch, reloaded.
	Path    string
	Addr    string
	Watch   bool
	Options engine.Options
	Logger  *log.Logger

	// Debounce delays a reload after the last change event.
	Debounce time.Duration
}

// DefaultDebounce is the reload delay after a file change.
const DefaultDebounce = 100 * time.Millisecond

// Server exposes one engine over HTTP. Requests are serialised: the engine
// is not safe for concurrent use.
type Server struct {
	cfg    Config
	logger *log.Logger

	mu  sync.Mutex
	eng *engine.Engine

	notifier *notifier
}

// New loads cfg.Path and creates a server for it.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}
	eng, err := engine.Load(ctx, cfg.Path, cfg.Options)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(eng, cfg), nil
}

// NewWithEngine creates a server around an existing engine. Reload still
// reads cfg.Path.
func NewWithEngine(eng *engine.Engine, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Server{cfg: cfg, logger: cfg.Logger, eng: eng, notifier: newNotifier()}
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
	)
	s.routes(r)
	return r
}

// Reload rebuilds the engine from cfg.Path. On failure the current engine
// keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	eng, err := engine.Load(ctx, s.cfg.Path, s.cfg.Options)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.eng = eng
	s.mu.Unlock()
	s.logger.Info("reloaded", "path", s.cfg.Path, "nodes", eng.Graph().NodeCount(), "edges", eng.Graph().EdgeCount())
	return nil
}

// Serve listens on cfg.Addr until ctx is cancelled, reloading the document
// on change when cfg.Watch is set.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is like Serve with an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watch(egctx)
		})
	}

	eg.Go(func() error {
		s.logger.Info("serving", "addr", "http://"+ln.Addr().String(), "watch", s.cfg.Watch)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// with runs fn while holding the engine lock.
func (s *Server) with(fn func(e *engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.eng)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
