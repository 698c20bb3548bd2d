package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taleforge/internal/game"
	"taleforge/internal/session"
	"taleforge/internal/ui"
)

const playHelp = `Commands:
  <n>                 take choice n
  r                   roll the die
  f                   fight the foe here
  a | d | e           attack, defend or escape in combat
  cast <spell>        cast a spell in combat
  add <stat> <n>      spend stat points after a level up
  learn spell|skill <id>
  class <id>          take a new class
  use|equip <item>    use or equip an item
  unequip <slot>
  buy|sell <item>     trade at a shop
  s                   show your character
  q                   quit`

func newPlayCmd() *cobra.Command {
	var (
		name, gender, race, class, storyID, resumeID string
		seed                                         uint64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a story in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cfg, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			if seed != 0 {
				e.Rand = game.NewSeededRand(seed, seed+1)
			}
			st, cleanup, err := openStore(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var s *game.Session
			id := resumeID
			if id != "" {
				if s, err = loadSave(ctx, e, st, id); err != nil {
					return err
				}
			} else {
				if storyID == "" {
					if ids := e.Catalog.StoryIDs(); len(ids) > 0 {
						storyID = ids[0]
					}
				}
				p, err := game.NewPlayer(e.Catalog, name, game.Gender(gender), race, class)
				if err != nil {
					return err
				}
				id = st.NewID()
				p.ID = id
				s = game.NewSession(p)
				if err := e.Start(s, storyID); err != nil {
					return err
				}
			}

			t := &terminal{
				e:     e,
				s:     s,
				id:    id,
				saves: st,
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
			}
			fmt.Fprintln(t.out, ui.Muted.Render("save id "+id+" · type ? for help"))
			return t.run(ctx)
		},
	}
	cmd.Flags().StringVar(&name, "name", "Wanderer", "character name")
	cmd.Flags().StringVar(&gender, "gender", string(game.GenderOther), "male, female or other")
	cmd.Flags().StringVar(&race, "race", "Human", "race")
	cmd.Flags().StringVar(&class, "class", "warrior", "starting class")
	cmd.Flags().StringVar(&storyID, "story", "", "story id (default: first story)")
	cmd.Flags().StringVar(&resumeID, "id", "", "resume a saved game")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed the dice for a repeatable run")
	return cmd
}

// terminal drives one session from line-based input.
type terminal struct {
	e     *game.Engine
	s     *game.Session
	id    string
	saves session.Store[game.Session]
	in    *bufio.Scanner
	out   io.Writer

	logSeen int
}

var errQuit = errors.New("quit")

func (t *terminal) run(ctx context.Context) error {
	if err := t.show(); err != nil {
		return err
	}
	for {
		fmt.Fprint(t.out, ui.Key.Render("> "))
		if !t.in.Scan() {
			return t.in.Err()
		}
		if t.s.Phase != game.PhaseCombat {
			t.logSeen = 0
		}
		res, handled, err := t.exec(strings.Fields(t.in.Text()))
		if errors.Is(err, errQuit) {
			fmt.Fprintln(t.out, ui.Muted.Render("Farewell."))
			return nil
		}
		if err != nil {
			return err
		}
		if !handled {
			continue
		}
		t.report(res)
		if res.Died {
			_ = t.saves.Delete(ctx, t.id)
			fmt.Fprintln(t.out, ui.Bad.Render(ui.IconSkull+" You have died. Your tale ends here."))
			return nil
		}
		if err := t.saves.Put(ctx, t.id, t.s.Snapshot()); err != nil {
			fmt.Fprintln(t.out, ui.Warn.Render(ui.IconWarn+" could not save: "+err.Error()))
		}
		if err := t.show(); err != nil {
			return err
		}
		if v, _ := t.e.View(t.s); v.Ended && t.s.Phase == game.PhaseStory && len(v.Choices) == 0 {
			fmt.Fprintln(t.out, ui.Title.Render("The End"))
			return nil
		}
	}
}

// exec runs one command. handled is false when the command only printed
// something.
func (t *terminal) exec(f []string) (res game.StepResult, handled bool, err error) {
	if len(f) == 0 {
		return res, false, t.show()
	}
	arg := strings.Join(f[1:], " ")
	e, s := t.e, t.s
	switch strings.ToLower(f[0]) {
	case "q", "quit":
		return res, false, errQuit
	case "?", "h", "help":
		fmt.Fprintln(t.out, playHelp)
		return res, false, nil
	case "s", "stats":
		printStatus(t.out, s)
		return res, false, nil
	case "r", "roll":
		return e.Roll(s), true, nil
	case "f", "fight":
		res, err = e.EnterCombat(s)
	case "a", "attack":
		res, err = e.CombatAction(s, game.ActionAttack, "")
	case "d", "defend":
		res, err = e.CombatAction(s, game.ActionDefend, "")
	case "e", "escape":
		res, err = e.CombatAction(s, game.ActionEscape, "")
	case "cast":
		res, err = e.CombatAction(s, game.ActionCast, arg)
	case "add":
		if len(f) != 3 {
			return t.usage("add <stat> <n>")
		}
		stat, perr := game.ParseStat(f[1])
		n, nerr := strconv.Atoi(f[2])
		if perr != nil || nerr != nil {
			return t.usage("add <stat> <n>")
		}
		return e.AllocateStats(s, game.StatBlock{stat: n}), true, nil
	case "learn":
		if len(f) != 3 {
			return t.usage("learn spell|skill <id>")
		}
		return e.PickSpellSkill(s, game.PickKind(f[1]), f[2]), true, nil
	case "class":
		return e.SelectClass(s, arg), true, nil
	case "use":
		return e.UseItem(s, arg), true, nil
	case "equip":
		return e.EquipItem(s, arg), true, nil
	case "unequip":
		slot, ok := game.ParseSlot(arg)
		if !ok {
			return t.usage("unequip <slot>")
		}
		return e.UnequipSlot(s, slot), true, nil
	case "buy":
		res, err = e.Buy(s, arg)
	case "sell":
		res, err = e.Sell(s, arg)
	default:
		n, cerr := strconv.Atoi(f[0])
		if cerr != nil {
			return t.usage("type ? for help")
		}
		res, err = e.Choose(s, n-1)
	}
	return res, true, err
}

func (t *terminal) usage(msg string) (game.StepResult, bool, error) {
	fmt.Fprintln(t.out, ui.Muted.Render(msg))
	return game.StepResult{}, false, nil
}

func (t *terminal) report(res game.StepResult) {
	if res.Message != "" {
		fmt.Fprintln(t.out, ui.Warn.Render(res.Message))
	}
	if res.Roll != nil {
		fmt.Fprintln(t.out, ui.LabelValue("🎲 You rolled", *res.Roll))
	}
	if t.logSeen < len(res.CombatLog) {
		for _, line := range res.CombatLog[t.logSeen:] {
			fmt.Fprintln(t.out, ui.Muted.Render("  "+line))
		}
		t.logSeen = len(res.CombatLog)
	}
	if res.Outcome != "" {
		fmt.Fprintln(t.out, ui.H2.Render(ui.IconSword+" Battle result: "+ui.Label(string(res.Outcome))))
	}
	for _, n := range res.Notes {
		fmt.Fprintln(t.out, ui.Good.Render("  "+n))
	}
	if res.Levels > 0 {
		fmt.Fprintf(t.out, "%s %s\n", ui.BadgeLevelUp, ui.Good.Render(fmt.Sprintf("You reached level %d!", t.s.Player.Level)))
	}
}

func (t *terminal) show() error {
	v, err := t.e.View(t.s)
	if err != nil {
		return err
	}
	out := t.out
	p := v.Player
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "%s %s  %s %s  %s %s  %s\n",
		ui.IconHeart, ui.Meter(p.Hearts, v.Totals.MaxHearts),
		ui.IconMana, ui.Meter(p.Mana, p.MaxMana),
		ui.IconCoin, ui.Gold.Render(ui.Number(v.Totals.Stats.Gold)),
		ui.Muted.Render(fmt.Sprintf("level %d, %d xp to next", p.Level, v.XPToNext)))

	switch v.Phase {
	case game.PhaseCombat:
		c := v.Combat
		fmt.Fprintf(out, "%s vs %s  %s %s\n", ui.Key.Render("You"), ui.Bad.Render(c.Foe.Name),
			ui.Meter(c.Player.Health, c.Player.MaxHealth), ui.Meter(c.Monster.Health, c.Monster.MaxHealth))
		fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("round %d: a)ttack d)efend e)scape cast <spell>", c.Round)))
		return nil
	case game.PhaseLevelUp:
		fmt.Fprintln(out, ui.BadgeLevelUp+" "+ui.Key.Render(fmt.Sprintf("%d stat points to spend", v.StatPoints))+ui.Muted.Render(" (add <stat> <n>)"))
		return nil
	case game.PhaseSpellSkill:
		fmt.Fprintln(out, ui.H2.Render("Choose something to learn:"))
		for _, sp := range v.Spells {
			fmt.Fprintf(out, "- learn spell %s %s\n", ui.Key.Render(sp.ID), ui.Muted.Render(fmt.Sprintf("(%s, %d mana)", sp.Type, sp.ManaCost)))
		}
		for _, sk := range v.Skills {
			fmt.Fprintf(out, "- learn skill %s %s\n", ui.Key.Render(sk.ID), ui.Muted.Render(sk.Description))
		}
		return nil
	case game.PhaseClassSelection:
		fmt.Fprintln(out, ui.H2.Render("A new path opens. Choose a class:"))
		for _, c := range v.Classes {
			fmt.Fprintf(out, "- class %s\n", ui.Key.Render(c))
		}
		return nil
	}

	title := v.Node.Title
	if title == "" {
		title = ui.Label(v.Node.ID)
	}
	fmt.Fprintln(out, ui.Heading(ui.IconScroll, title))
	if v.Text != "" {
		fmt.Fprintln(out, ui.Panel.Render(v.Text))
	}
	for _, oc := range v.Choices {
		fmt.Fprintf(out, "  %s %s\n", ui.Key.Render(strconv.Itoa(oc.Index+1)+")"), oc.Choice.Text)
	}
	if v.NeedsRoll {
		fmt.Fprintln(out, ui.Muted.Render("  r) roll the die to find another way"))
	}
	if v.CanFight {
		foe, _ := t.e.Catalog.Foe(v.Node.Monster)
		name := v.Node.Monster
		if foe != nil {
			name = foe.Name
		}
		fmt.Fprintf(out, "  %s %s\n", ui.Key.Render("f)"), ui.Bad.Render("Fight "+name))
	}
	if v.Shop != nil {
		fmt.Fprintln(out, ui.H2.Render(ui.IconShop+" "+v.Shop.Name))
		for _, o := range v.Shop.Offers {
			line := fmt.Sprintf("  buy %s %s %s", ui.Key.Render(o.Item.ID), o.Item.Name, ui.Gold.Render(ui.Number(o.Price)))
			if o.Left != nil {
				line += ui.Muted.Render(fmt.Sprintf(" (%d left)", *o.Left))
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
