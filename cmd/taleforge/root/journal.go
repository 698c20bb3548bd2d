package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taleforge/internal/mapgen"
	"taleforge/internal/ui"
)

func newJournalCmd() *cobra.Command {
	var id, outPath string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Draw a saved character's journey as a PDF map",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cfg, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			st, cleanup, err := openStore(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := loadSave(ctx, e, st, id)
			if err != nil {
				return err
			}
			story, ok := e.Catalog.Story(s.StoryID)
			if !ok {
				return fmt.Errorf("saved game uses unknown story %q", s.StoryID)
			}
			pdf, err := mapgen.Generate(story, mapgen.Journal{
				Title:   fmt.Sprintf("%s: %s", story.Title, s.Player.Name),
				Visited: s.Visited,
				Current: s.Player.CurrentNode,
				Player:  s.Player,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, pdf, 0o600); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconScroll+" wrote "+outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "save id")
	cmd.Flags().StringVar(&outPath, "out", "journal.pdf", "output file")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
