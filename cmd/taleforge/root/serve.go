package root

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taleforge/internal/app"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := app.Open(ctx, cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()
			return rt.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TALEFORGE_ADDR)")
	return cmd
}

