package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/sheet"
)

// opFunc applies one operation. It reports whether the sheet report should be
// printed afterwards.
type opFunc func(s *sheet.Session, o options, w io.Writer) (bool, error)

// operation is one sheetctl subcommand that acts on a loaded sheet.
type operation struct {
	short string
	// flags names the options the operation reads; see bindFlags.
	flags []string
	run   opFunc
}

var ops = map[string]operation{
	"report": {"Print the derived sheet", nil, func(*sheet.Session, options, io.Writer) (bool, error) { return true, nil }},

	"equip":    {"Equip an inventory item", []string{"item"}, itemOp((*sheet.Session).Equip)},
	"unequip":  {"Unequip an inventory item", []string{"item"}, itemOp((*sheet.Session).Unequip)},
	"toggle":   {"Toggle whether an item is equipped", []string{"item"}, itemOp((*sheet.Session).ToggleEquip)},
	"remove":   {"Remove an item from the inventory", []string{"item"}, itemOp((*sheet.Session).RemoveItem)},
	"add-item": {"Add an item from the catalog", []string{"item"}, addItem},

	"damage": {"Apply damage, scaled by resistances", []string{"amount", "type"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		s.DamageTyped(o.amount, o.damage)
		return true, nil
	}},
	"heal": {"Restore hit points", []string{"amount"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		s.Heal(o.amount)
		return true, nil
	}},
	"temp": {"Grant temporary hit points", []string{"amount"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		s.GrantTempHP(o.amount)
		return true, nil
	}},
	"xp": {"Gain experience", []string{"amount"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		s.GainExperience(o.amount)
		return true, nil
	}},
	"sanity": {"Set sanity, clamped to the class maximum", []string{"amount"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		_, err := s.SetSanity(o.amount)
		return true, err
	}},
	"rest": {"Take a long rest", nil, func(s *sheet.Session, _ options, _ io.Writer) (bool, error) {
		s.LongRest()
		return true, nil
	}},

	"spend":   {"Spend uses of a resource", []string{"resource", "amount"}, resourceOp(func(s *sheet.Session, id string, n int) { s.SpendResource(id, n) })},
	"restore": {"Restore uses of a resource", []string{"resource", "amount"}, resourceOp(func(s *sheet.Session, id string, n int) { s.RestoreResource(id, n) })},
	"refill":  {"Refill a resource to its maximum", []string{"resource"}, resourceOp(func(s *sheet.Session, id string, _ int) { s.RefillResource(id) })},

	"condition-add": {"Add a registered condition", []string{"condition"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		return true, s.AddCondition(condition.ID(o.condition))
	}},
	"condition-remove": {"Remove a condition", []string{"condition"}, func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		s.RemoveCondition(condition.ID(o.condition))
		return true, nil
	}},

	"check":  {"Roll an ability check", []string{"attr", "mode"}, abilityRoll((*sheet.Session).RollCheck)},
	"save":   {"Roll a saving throw", []string{"attr", "mode"}, abilityRoll((*sheet.Session).RollSave)},
	"skill":  {"Roll a skill check", []string{"skill", "mode"}, rollSkill},
	"attack": {"Roll an attack and its damage", []string{"attack", "mode"}, rollAttack},
}

func opNames() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// bindFlags registers the named option flags on cmd.
func bindFlags(cmd *cobra.Command, o *options, names []string) {
	f := cmd.Flags()
	for _, name := range names {
		switch name {
		case "item":
			f.StringVar(&o.item, name, "", "inventory item id, or catalog template id for add-item")
		case "amount":
			f.IntVar(&o.amount, name, 0, "amount to apply")
		case "type":
			f.StringVar(&o.damage, name, "", "damage type")
		case "attr":
			f.StringVar(&o.attr, name, "", "ability id")
		case "skill":
			f.StringVar(&o.skill, name, "", "skill id")
		case "attack":
			f.StringVar(&o.attack, name, "", "attack id")
		case "resource":
			f.StringVar(&o.resource, name, "", "resource id")
		case "condition":
			f.StringVar(&o.condition, name, "", "condition id")
		case "mode":
			f.StringVar(&o.mode, name, "normal", "d20 mode: normal, advantage or disadvantage")
		default:
			panic("sheetctl: unknown option flag " + name)
		}
	}
}

func itemOp[R any](fn func(*sheet.Session, string) R) opFunc {
	return func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		if o.item == "" {
			return false, fmt.Errorf("--item is required")
		}
		fn(s, o.item)
		return true, nil
	}
}

func addItem(s *sheet.Session, o options, w io.Writer) (bool, error) {
	it, err := s.AddFromCatalog(o.item)
	if err != nil {
		return false, err
	}
	_, err = fmt.Fprintf(w, "added %s (%s)\n", it.Name, it.ID)
	return true, err
}

func resourceOp(fn func(*sheet.Session, string, int)) opFunc {
	return func(s *sheet.Session, o options, _ io.Writer) (bool, error) {
		if o.resource == "" {
			return false, fmt.Errorf("--resource is required")
		}
		fn(s, o.resource, o.amount)
		return true, nil
	}
}

func parseMode(name string) (dice.Mode, error) {
	switch name {
	case "", "normal":
		return dice.Normal, nil
	case "advantage", "adv":
		return dice.Advantage, nil
	case "disadvantage", "dis":
		return dice.Disadvantage, nil
	}
	return dice.Normal, fmt.Errorf("unknown d20 mode %q", name)
}

func abilityRoll(fn func(*sheet.Session, ability.ID, dice.Mode) dice.RollResult) opFunc {
	return func(s *sheet.Session, o options, w io.Writer) (bool, error) {
		attr := ability.ID(o.attr)
		if !ability.Valid(attr) {
			return false, fmt.Errorf("unknown ability %q", o.attr)
		}
		mode, err := parseMode(o.mode)
		if err != nil {
			return false, err
		}
		_, err = fmt.Fprintln(w, fn(s, attr, mode).String())
		return false, err
	}
}

func rollSkill(s *sheet.Session, o options, w io.Writer) (bool, error) {
	mode, err := parseMode(o.mode)
	if err != nil {
		return false, err
	}
	res, ok := s.RollSkill(o.skill, mode)
	if !ok {
		return false, fmt.Errorf("unknown skill %q", o.skill)
	}
	_, err = fmt.Fprintln(w, res.String())
	return false, err
}

func rollAttack(s *sheet.Session, o options, w io.Writer) (bool, error) {
	mode, err := parseMode(o.mode)
	if err != nil {
		return false, err
	}
	roll, err := s.RollAttack(o.attack, mode)
	if err != nil {
		return false, err
	}
	tag := ""
	switch {
	case roll.Crit:
		tag = " (critical)"
	case roll.Fumble:
		tag = " (fumble)"
	}
	_, err = fmt.Fprintf(w, "to hit: %s%s\ndamage: %s %s\n", roll.ToHit.String(), tag, roll.Damage.String(), roll.DamageType)
	return false, err
}
