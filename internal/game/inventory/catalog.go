package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
)

// Template is a reusable item definition loaded from YAML. Instantiate turns it
// into an unequipped inventory Item with a fresh id.
type Template struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Type        Type         `yaml:"type"`
	Description string       `yaml:"description"`
	Weight      float64      `yaml:"weight"`
	Quantity    int          `yaml:"quantity"`
	IsShield    bool         `yaml:"is_shield"`
	Armor       *ArmorProps  `yaml:"armor"`
	Weapon      *WeaponProps `yaml:"weapon"`
}

// Validate reports an error if the template is missing required fields or contains illegal values.
//
// Precondition: t is non-nil.
// Postcondition: Returns nil iff the template is well-formed.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !ValidType(t.Type) {
		errs = append(errs, fmt.Errorf("type %q must be one of armor, weapon, ammunition, item", t.Type))
	}
	if t.Quantity < 0 {
		errs = append(errs, errors.New("quantity must be >= 0"))
	}
	if t.Weight < 0 {
		errs = append(errs, errors.New("weight must be >= 0"))
	}
	if t.Type == TypeArmor && t.Armor == nil && !t.IsShield {
		errs = append(errs, errors.New("armor block is required when type is armor"))
	}
	if t.Armor != nil {
		if t.Armor.BaseAC < 0 {
			errs = append(errs, errors.New("armor.base_ac must be >= 0"))
		}
		for id := range t.Armor.LimbACs {
			if !limb.Valid(id) {
				errs = append(errs, fmt.Errorf("armor.limb_acs key %q is not a limb", id))
			}
		}
	}
	if t.Weapon != nil {
		if t.Weapon.Damage != "" {
			if _, err := dice.Parse(t.Weapon.Damage); err != nil {
				errs = append(errs, fmt.Errorf("weapon.damage: %w", err))
			}
		}
		switch t.Weapon.WeaponClass {
		case "", WeaponClassMelee, WeaponClassRanged:
		default:
			errs = append(errs, fmt.Errorf("weapon.weapon_class %q must be melee or ranged", t.Weapon.WeaponClass))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item template validation failed: %v", errs)
	}
	return nil
}

// Catalog holds item templates indexed by id.
type Catalog struct {
	templates map[string]*Template
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{templates: make(map[string]*Template)}
}

// Register adds t to the catalog.
//
// Precondition: t must not be nil.
// Postcondition: Template(t.ID) returns t; returns error if t.ID already registered.
func (c *Catalog) Register(t *Template) error {
	if _, exists := c.templates[t.ID]; exists {
		return fmt.Errorf("inventory: Catalog.Register: template ID %q already registered", t.ID)
	}
	c.templates[t.ID] = t
	return nil
}

// Template returns the template for id and whether it was found.
func (c *Catalog) Template(id string) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// All returns every template sorted by id.
func (c *Catalog) All() []*Template {
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Instantiate creates an unequipped inventory Item from the template with id.
//
// Postcondition: ok is false iff id is not registered; the returned Item has a
// fresh uuid and shares no pointers with the template.
func (c *Catalog) Instantiate(id string) (Item, bool) {
	t, ok := c.templates[id]
	if !ok {
		return Item{}, false
	}
	qty := t.Quantity
	if qty == 0 {
		qty = 1
	}
	it := Item{
		ID:          uuid.New().String(),
		Name:        t.Name,
		Type:        t.Type,
		Description: t.Description,
		Quantity:    qty,
		Weight:      t.Weight,
		IsShield:    t.IsShield,
		Armor:       t.Armor,
		Weapon:      t.Weapon,
	}
	return it.Clone(), true
}

// LoadCatalog reads all .yaml and .yml files in dir as item templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Catalog whose templates all pass Validate, or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read directory %q: %w", dir, err)
	}

	cat := NewCatalog()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot parse file %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("LoadCatalog: invalid template in %q: %w", path, err)
		}
		if err := cat.Register(&t); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %q: %w", path, err)
		}
	}
	return cat, nil
}
