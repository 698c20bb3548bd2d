package root

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"taleforge/internal/game"
	"taleforge/internal/ui"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List stories, foes and classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := openEngine(context.Background(), cmd)
			if err != nil {
				return err
			}
			c := e.Catalog
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Stories"))
			for _, id := range c.StoryIDs() {
				st := c.Stories[id]
				var fights, shops, endings int
				for _, n := range st.Nodes {
					switch {
					case n.IsCombat():
						fights++
					case n.IsShop():
						shops++
					}
					if n.Terminal() {
						endings++
					}
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(id), st.Title,
					ui.Muted.Render(fmt.Sprintf("(%d nodes, %d fights, %d shops, %d endings)", len(st.Nodes), fights, shops, endings)))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.Heading(ui.IconSword, "Foes"))
			for _, id := range slices.Sorted(maps.Keys(c.Monsters)) {
				m := c.Monsters[id]
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(id), m.Name, foeLine(m))
			}
			for _, id := range slices.Sorted(maps.Keys(c.Villains)) {
				v := c.Villains[id]
				fmt.Fprintf(out, "- %s %s %s %s\n", ui.Key.Render(id), v.Name, foeLine(v.Monster), ui.Bad.Render("villain"))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.Heading(ui.IconStar, "Classes"))
			classes := slices.SortedFunc(maps.Values(c.Classes), func(a, b game.ClassDef) int {
				return cmp.Or(cmp.Compare(a.Tier, b.Tier), cmp.Compare(a.ID, b.ID))
			})
			for _, def := range classes {
				line := fmt.Sprintf("- %s %s %s", ui.Key.Render(def.ID), def.Name, ui.Muted.Render(fmt.Sprintf("(tier %d)", def.Tier)))
				if req, ok := c.ClassRequirements[def.ID]; ok && req.RequiredLevel > 0 {
					line += ui.Muted.Render(fmt.Sprintf(" unlocks at level %d", req.RequiredLevel))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func foeLine(m game.Monster) string {
	return ui.Muted.Render(fmt.Sprintf("(%s, %d hp, %d attack)", m.Element, m.Stats.Health, m.Stats.Attack))
}
