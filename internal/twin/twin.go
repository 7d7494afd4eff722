// Package twin implements an in-memory stand-in for the ordered data stores
// API. It backs the client tests and `ods twin serve`.
package twin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fivetwenty-io/ods-client/internal/constants"
)

// Config holds the twin's settings.
type Config struct {
	Port int
	// APIKey, when set, is the only key accepted. Otherwise any non-empty
	// key is.
	APIKey string
	// SeedFile is loaded into the store on start.
	SeedFile string
	// SnapshotFile receives the store contents on shutdown.
	SnapshotFile string
	Verbose      bool
	// Logger overrides the JSON logger on stdout.
	Logger *slog.Logger
}

// Twin is the twin server: a chi router over a MemoryStore.
type Twin struct {
	Config *Config
	Router *chi.Mux
	Logger *slog.Logger
	Store  *MemoryStore
}

// New creates a twin, loading cfg.SeedFile when set.
func New(cfg *Config) (*Twin, error) {
	logger := cfg.Logger
	if logger == nil {
		level := slog.LevelInfo
		if cfg.Verbose {
			level = slog.LevelDebug
		}

		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	store := NewMemoryStore()

	if cfg.SeedFile != "" {
		snap, err := LoadSnapshot(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("loading seed file: %w", err)
		}

		store.Restore(snap)
		logger.Info("seeded store", "file", cfg.SeedFile, "entries", len(snap.Entries))
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLog(logger))

	NewHandler(store, cfg.APIKey).Routes(r)

	return &Twin{
		Config: cfg,
		Router: r,
		Logger: logger,
		Store:  store,
	}, nil
}

// ServeHTTP implements http.Handler so Twin can be used directly in tests.
func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.Router.ServeHTTP(w, r)
}

// Serve listens on cfg.Port until ctx is cancelled, then shuts down and
// writes the snapshot file if one is configured.
func (t *Twin) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", t.Config.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           t.Router,
		ReadHeaderTimeout: constants.ShortHTTPTimeout,
		ReadTimeout:       constants.DefaultHTTPTimeout,
		WriteTimeout:      constants.DefaultHTTPTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		t.Logger.Info("starting twin", "addr", addr)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving twin: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	t.Logger.Info("shutting down twin")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.TwinShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutting down twin: %w", err)
	}

	if t.Config.SnapshotFile != "" {
		err = SaveSnapshot(t.Config.SnapshotFile, t.Store.Snapshot())
		if err != nil {
			return err
		}

		t.Logger.Info("wrote snapshot", "file", t.Config.SnapshotFile)
	}

	return nil
}

func requestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
