// Package app opens the content, store and logger a process needs and runs
// the HTTP server on top of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"taleforge/internal/config"
	"taleforge/internal/game"
	"taleforge/internal/metrics"
	"taleforge/internal/session"
	"taleforge/internal/web"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// ErrUnknownStore reports a store name OpenStore does not know.
var ErrUnknownStore = errors.New("unknown store")

// Runtime is everything opened from one Config. Close releases the store.
type Runtime struct {
	Config config.Config
	Log    *slog.Logger
	Engine *game.Engine
	Saves  session.Store[game.Session]
	Report game.ValidationReport

	closeStore func() error
}

// Open loads the content catalog and connects the configured save store.
// Content warnings are logged; content errors fail the call.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*Runtime, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	engine, report, err := LoadEngine(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	saves, closeStore, err := OpenStoreOrMemory(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("content loaded",
		"dir", cfg.ContentDir, "stories", len(engine.Catalog.Stories), "warnings", len(report.Warnings))
	return &Runtime{
		Config:     cfg,
		Log:        log,
		Engine:     engine,
		Saves:      saves,
		Report:     report,
		closeStore: closeStore,
	}, nil
}

func (rt *Runtime) Close() error {
	if rt == nil || rt.closeStore == nil {
		return nil
	}
	return rt.closeStore()
}

// LoadEngine builds an engine over the content in cfg.ContentDir.
func LoadEngine(ctx context.Context, cfg config.Config, log *slog.Logger) (*game.Engine, game.ValidationReport, error) {
	catalog, report, err := game.LoadCatalog(ctx, cfg.ContentDir, game.ValidateOptions{StrictBattleOutcomes: cfg.StrictContent})
	for _, w := range report.Warnings {
		log.Warn("content warning", "where", w.Where, "problem", w.Problem)
	}
	if err != nil {
		return nil, report, fmt.Errorf("load content from %s: %w", cfg.ContentDir, err)
	}
	rnd, err := game.NewRand()
	if err != nil {
		return nil, report, err
	}
	return &game.Engine{
		Catalog: catalog,
		Rand:    rnd,
		Policy:  cfg.Policy(),
		Log:     log,
	}, report, nil
}

// OpenStore connects the save store named by cfg.Store. The returned func
// closes it.
func OpenStore(ctx context.Context, cfg config.Config) (session.Store[game.Session], func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return session.NewMemoryStore[game.Session](), func() error { return nil }, nil
	case config.StoreSQLite:
		st, err := session.OpenSQLite[game.Session](cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case config.StoreRedis:
		st, err := session.DialRedis[game.Session](ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownStore, cfg.Store)
	}
}

// OpenStoreOrMemory opens the configured store. When a durable store cannot
// be reached it logs a warning and hands back an in-memory store, so saves
// last only as long as the process.
func OpenStoreOrMemory(ctx context.Context, cfg config.Config, log *slog.Logger) (session.Store[game.Session], func() error, error) {
	st, closeStore, err := OpenStore(ctx, cfg)
	if err == nil {
		return st, closeStore, nil
	}
	if errors.Is(err, ErrUnknownStore) {
		return nil, nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	metrics.StoreFallbacks.Inc()
	log.Warn("save store unavailable, keeping sessions in memory", "store", cfg.Store, "error", err)
	return session.NewMemoryStore[game.Session](), func() error { return nil }, nil
}

// Serve runs the HTTP server until ctx ends, then drains in-flight requests
// for up to shutdownTimeout.
func (rt *Runtime) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              rt.Config.Addr,
		Handler:           web.NewServer(rt.Engine, rt.Saves, rt.Log).Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	serveErr := make(chan error, 1)
	rt.Log.Info("listening", "addr", rt.Config.Addr, "store", rt.Config.Store)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
