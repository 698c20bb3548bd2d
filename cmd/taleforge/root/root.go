package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taleforge/internal/ui"
)

const Version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taleforge",
		Short:         "Taleforge: branching story RPG engine",
		Long:          "Taleforge runs branching stories with character progression, items, shops and turn-based combat.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().String("content", "", "content directory (overrides TALEFORGE_CONTENT_DIR)")

	cmd.AddCommand(
		newValidateCmd(),
		newInspectCmd(),
		newPlayCmd(),
		newStatusCmd(),
		newJournalCmd(),
		newServeCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
