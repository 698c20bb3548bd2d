package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taleforge/internal/game"
	"taleforge/internal/ui"
)

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the content and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, report, err := game.LoadCatalog(context.Background(), cfg.ContentDir,
				game.ValidateOptions{StrictBattleOutcomes: strict || cfg.StrictContent})
			out := cmd.OutOrStdout()
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render(ui.IconWarn), ui.Key.Render(w.Where), w.Problem)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(out, "%s %s %s\n", ui.Bad.Render(ui.IconError), ui.Key.Render(e.Where), e.Problem)
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d content errors", len(report.Errors))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("content valid: %d stories, %d warnings",
				len(c.Stories), len(report.Warnings))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat combat nodes missing an outcome choice as errors")
	return cmd
}
