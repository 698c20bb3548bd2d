package root

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"taleforge/internal/app"
	"taleforge/internal/config"
	"taleforge/internal/game"
	"taleforge/internal/logging"
	"taleforge/internal/session"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if dir, _ := cmd.Flags().GetString("content"); dir != "" {
		cfg.ContentDir = dir
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

func openEngine(ctx context.Context, cmd *cobra.Command) (*game.Engine, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	e, _, err := app.LoadEngine(ctx, cfg, newLogger(cmd, cfg))
	return e, cfg, err
}

func openStore(ctx context.Context, cmd *cobra.Command, cfg config.Config) (session.Store[game.Session], func(), error) {
	st, closeStore, err := app.OpenStoreOrMemory(ctx, cfg, newLogger(cmd, cfg))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = closeStore()
	}
	return st, cleanup, nil
}

// loadSave fetches a saved session and checks it still fits the content.
func loadSave(ctx context.Context, e *game.Engine, st session.Store[game.Session], id string) (*game.Session, error) {
	saved, ok, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoSave(id)
	}
	s := &saved
	e.Resume(s)
	return s, nil
}

type errNoSave string

func (e errNoSave) Error() string { return "no saved game with id " + string(e) }
