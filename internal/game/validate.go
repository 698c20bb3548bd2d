package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ContentError is one finding about the catalog.
type ContentError struct {
	Where   string
	Problem string
}

func (e ContentError) Error() string {
	return e.Where + ": " + e.Problem
}

// ValidationReport splits findings into errors, which make the catalog
// unusable, and warnings, which surface at runtime as a choice that cannot
// advance.
type ValidationReport struct {
	Errors   []ContentError
	Warnings []ContentError
}

// Err joins every error finding, or returns nil.
func (r ValidationReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

type ValidateOptions struct {
	// StrictBattleOutcomes turns a combat node without a choice for every
	// outcome into an error.
	StrictBattleOutcomes bool
}

type validator struct {
	c      *Catalog
	opts   ValidateOptions
	report ValidationReport
}

func (v *validator) errorf(where, format string, args ...any) {
	v.report.Errors = append(v.report.Errors, ContentError{Where: where, Problem: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(where, format string, args ...any) {
	v.report.Warnings = append(v.report.Warnings, ContentError{Where: where, Problem: fmt.Sprintf(format, args...)})
}

func (v *validator) item(where, id string) {
	if _, ok := v.c.Items[id]; !ok {
		v.errorf(where, "unknown item %q", id)
	}
}

func (v *validator) spell(where, id string) {
	if _, ok := v.c.Spells[id]; !ok {
		v.errorf(where, "unknown spell %q", id)
	}
}

func (v *validator) skill(where, id string) {
	if _, ok := v.c.Skills[id]; !ok {
		v.errorf(where, "unknown skill %q", id)
	}
}

func (v *validator) class(where, name string) {
	if _, ok := v.c.Classes[name]; !ok {
		v.errorf(where, "unknown class %q", name)
	}
}

func (v *validator) element(where string, e Element) {
	if e != "" && !e.Valid() {
		v.errorf(where, "unknown element %q", e)
	}
}

// Validate checks every cross reference in the catalog.
func (c *Catalog) Validate(opts ValidateOptions) ValidationReport {
	v := &validator{c: c, opts: opts}
	v.classes()
	v.items()
	v.shops()
	v.spellsAndSkills()
	v.foes()
	for _, id := range c.StoryIDs() {
		v.story(c.Stories[id])
	}
	return v.report
}

func (v *validator) classes() {
	for _, name := range slices.Sorted(maps.Keys(v.c.Classes)) {
		def := v.c.Classes[name]
		where := "class " + name
		for _, e := range def.ElementalRequirements {
			v.element(where, e)
		}
		for _, to := range def.CanChangeTo {
			v.class(where+" canChangeTo", to)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(v.c.ClassRequirements)) {
		req := v.c.ClassRequirements[name]
		where := "classRequirement " + name
		v.class(where, name)
		for _, e := range req.RequiredElements {
			v.element(where, e)
		}
		for _, id := range req.InitialEquipment {
			v.item(where+" initialEquipment", id)
		}
	}
}

func (v *validator) items() {
	for _, id := range slices.Sorted(maps.Keys(v.c.Items)) {
		it := v.c.Items[id]
		where := "item " + id
		if it.ID != "" && it.ID != id {
			v.errorf(where, "id field %q does not match key", it.ID)
		}
		switch it.Type {
		case ItemWeapon, ItemArmor, ItemAccessory, ItemConsumable, ItemQuest:
		default:
			v.errorf(where, "unknown type %q", it.Type)
		}
		if it.SubType != "" && it.SubType != SubRing {
			if _, ok := slotBySub[it.SubType]; !ok {
				v.errorf(where, "unknown subType %q", it.SubType)
			}
		}
		v.element(where, it.Element)
	}
}

func (v *validator) shops() {
	for _, id := range slices.Sorted(maps.Keys(v.c.Shops)) {
		for _, si := range v.c.Shops[id].Items {
			v.item("shop "+id, si.ItemID)
		}
	}
}

func (v *validator) spellsAndSkills() {
	for _, id := range slices.Sorted(maps.Keys(v.c.Spells)) {
		sp := v.c.Spells[id]
		where := "spell " + id
		switch sp.Type {
		case SpellAttack, SpellDefend, SpellHeal:
		default:
			v.errorf(where, "unknown type %q", sp.Type)
		}
		v.element(where, sp.Element)
		for _, cl := range sp.Requirements.Classes {
			v.class(where, cl)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(v.c.Skills)) {
		for _, cl := range v.c.Skills[id].Requirements.Classes {
			v.class("skill "+id, cl)
		}
	}
}

func (v *validator) foes() {
	check := func(where string, m Monster) {
		v.element(where, m.Element)
		for _, id := range m.Spells {
			v.spell(where, id)
		}
		for _, id := range m.SpellUnlocks {
			v.spell(where+" spellUnlocks", id)
		}
		for _, d := range m.DropTable.Items {
			v.item(where+" dropTable", d.ItemID)
		}
		for _, d := range m.DropTable.Equipment {
			v.item(where+" dropTable", d.ItemID)
		}
		for _, r := range m.ClassRewards {
			if r.ClassName != allClasses {
				v.class(where+" classRewards", r.ClassName)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(v.c.Monsters)) {
		check("monster "+id, v.c.Monsters[id])
	}
	for _, id := range slices.Sorted(maps.Keys(v.c.Villains)) {
		vl := v.c.Villains[id]
		where := "villain " + id
		check(where, vl.Monster)
		for _, e := range slices.Concat(vl.Weaknesses, vl.Immunities) {
			v.element(where, e)
		}
	}
}

func (v *validator) story(s *Story) {
	if _, ok := s.Nodes[s.Start]; !ok {
		v.warnf("story "+s.ID, "start node %q does not exist", s.Start)
	}
	for _, nid := range slices.Sorted(maps.Keys(s.Nodes)) {
		n := s.Nodes[nid]
		where := fmt.Sprintf("story %s node %s", s.ID, nid)
		switch n.Type {
		case NodeStory, NodeCombat, NodeShop, NodeChoice, NodeEnding:
		default:
			v.errorf(where, "unknown type %q", n.Type)
		}
		if n.IsCombat() {
			if _, ok := v.c.Foe(n.Monster); !ok {
				v.errorf(where, "unknown monster %q", n.Monster)
			}
			for _, o := range Outcomes {
				if _, ok := n.OutcomeChoice(o); ok {
					continue
				}
				if v.opts.StrictBattleOutcomes {
					v.errorf(where, "no choice for battle outcome %s", o)
				} else {
					v.warnf(where, "no choice for battle outcome %s", o)
				}
			}
		}
		if n.Shop != nil && n.Shop.ShopID != "" {
			if _, ok := v.c.Shops[n.Shop.ShopID]; !ok {
				v.errorf(where, "unknown shop %q", n.Shop.ShopID)
			}
		}
		for i, ch := range n.Choices {
			v.choice(fmt.Sprintf("%s choice %d", where, i), s, ch)
		}
	}
}

func (v *validator) choice(where string, s *Story, ch Choice) {
	switch {
	case ch.Next == "":
		v.warnf(where, "empty next_node")
	case s.Nodes[ch.Next] == nil:
		v.warnf(where, "next_node %q does not exist", ch.Next)
	}
	if ch.BattleResult != "" {
		if _, err := ParseOutcome(string(ch.BattleResult)); err != nil {
			v.errorf(where, "%v", err)
		}
	}
	for _, id := range slices.Concat(ch.ItemRewards, ch.ItemRequirements) {
		v.item(where, id)
	}
	for _, id := range ch.SpellRewards {
		v.spell(where, id)
	}
	for _, id := range ch.SkillRewards {
		v.skill(where, id)
	}
	for _, cl := range ch.ClassRequire {
		v.class(where, cl)
	}
	for _, e := range ch.ElementRequire {
		v.element(where, e)
	}
}
