package root

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taleforge/internal/game"
	"taleforge/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a saved character's stats and progress",
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
			printStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "save id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func printStatus(out io.Writer, s *game.Session) {
	p := s.Player
	t := game.EffectiveStats(p)
	cs := game.DeriveCombatStats(t.Stats)

	fmt.Fprintln(out, ui.Heading(ui.IconStar, fmt.Sprintf("%s the %s %s", p.Name, p.Race, ui.Label(p.ActiveClass))))
	fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
	fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%s (%s to next level)", ui.Number(p.XP), ui.Number(game.XPToNext(p)))))
	fmt.Fprintln(out, ui.LabelValue(ui.IconHeart+" Hearts", ui.Meter(p.Hearts, t.MaxHearts)))
	fmt.Fprintln(out, ui.LabelValue(ui.IconMana+" Mana", ui.Meter(p.Mana, p.MaxMana)))
	fmt.Fprintln(out, ui.LabelValue(ui.IconCoin+" Gold", ui.Gold.Render(ui.Number(t.Stats.Gold))))
	fmt.Fprintln(out, ui.LabelValue("Element", p.Element))
	fmt.Fprintln(out, ui.LabelValue("Story", fmt.Sprintf("%s at %s (%s)", s.StoryID, p.CurrentNode, s.Phase)))
	fmt.Fprintln(out, "")

	fmt.Fprintln(out, ui.H2.Render("📊 Stats"))
	for _, stat := range game.AllStats {
		if stat == game.StatGold {
			continue
		}
		base, total := p.Stats.Get(stat), t.Stats.Get(stat)
		line := fmt.Sprintf("- %s %d", ui.Key.Render(ui.Label(stat.String())+":"), total)
		if total != base {
			line += ui.Muted.Render(fmt.Sprintf(" (base %d)", base))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, "")

	fmt.Fprintln(out, ui.H2.Render(ui.IconSword+" Combat"))
	fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Physical damage:"), cs.PhysicalDamage)
	fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Magical damage:"), cs.MagicalDamage)
	fmt.Fprintf(out, "- %s %d%%\n", ui.Key.Render("Crit chance:"), cs.CritChance)
	fmt.Fprintf(out, "- %s %d%%\n", ui.Key.Render("Escape chance:"), cs.EscapeChance)
	fmt.Fprintln(out, "")

	if len(p.Classes) > 1 {
		var names []string
		for _, c := range p.Classes {
			names = append(names, fmt.Sprintf("%s (tier %d, from level %d)", ui.Label(c.Name), c.Tier, c.UnlockedAt))
		}
		fmt.Fprintln(out, ui.LabelValue("Classes", strings.Join(names, ", ")))
	}
	if len(p.Spells) > 0 {
		fmt.Fprintln(out, ui.LabelValue("Spells", strings.Join(p.Spells, ", ")))
	}
	if len(p.Skills) > 0 {
		fmt.Fprintln(out, ui.LabelValue("Skills", strings.Join(p.Skills, ", ")))
	}
	printInventory(out, p)
}

func printInventory(out io.Writer, p game.Player) {
	if len(p.Inventory) > 0 {
		fmt.Fprintln(out, ui.H2.Render("🎒 Pack"))
		for _, it := range p.Inventory {
			line := "- " + ui.Key.Render(it.ID) + " " + it.Name
			if it.Quantity > 1 {
				line += ui.Muted.Render(fmt.Sprintf(" x%d", it.Quantity))
			}
			fmt.Fprintln(out, line)
		}
	}
	var worn []string
	for _, slot := range game.AllSlots {
		if it := p.Equipment.Get(slot); it != nil {
			worn = append(worn, fmt.Sprintf("%s: %s", ui.Label(string(slot)), it.Name))
		}
	}
	if len(worn) > 0 {
		fmt.Fprintln(out, ui.LabelValue("Equipped", strings.Join(worn, ", ")))
	}
}
