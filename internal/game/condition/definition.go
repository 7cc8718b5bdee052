// Package condition holds status conditions and damage resistances carried
// by a character, plus the YAML registry of known condition definitions.
package condition

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"

	"gopkg.in/yaml.v3"
)

// Definition describes one condition a character may carry.
type Definition struct {
	ID          ID     `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	IconName    string `yaml:"icon_name"`
}

// Validate joins one error per missing required field.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	return errors.Join(errs...)
}

// Registry is the set of known condition definitions.
type Registry struct {
	defs map[ID]*Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: map[ID]*Definition{}}
}

// Register stores def under its ID, replacing any earlier definition.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

func (r *Registry) Get(id ID) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

func (r *Registry) Known(id ID) bool {
	_, ok := r.defs[id]
	return ok
}

// All lists the definitions ordered by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Definition) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// LoadDirectory loads the definitions stored in dir. See LoadFS.
func LoadDirectory(dir string) (*Registry, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS decodes every top-level .yaml or .yml file of fsys as one
// Definition. Unknown keys and repeated IDs are errors.
func LoadFS(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing conditions: %w", err)
	}
	reg := NewRegistry()
	seen := map[ID]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext != ".yaml" && ext != ".yml" {
			continue
		}
		def, err := decodeDefinition(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("condition %q defined in both %s and %s", def.ID, prev, e.Name())
		}
		seen[def.ID] = e.Name()
		reg.Register(def)
	}
	return reg, nil
}

func decodeDefinition(fsys fs.FS, name string) (*Definition, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	var def Definition
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("condition %s: %w", name, err)
	}
	return &def, nil
}
