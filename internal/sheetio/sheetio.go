// Package sheetio imports and exports whole character sheets as versioned
// JSON or YAML documents.
package sheetio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/equipment"
)

// Version is the document version written by this package.
const Version = 1

// ErrUnsupportedVersion is returned when a document carries a version other than Version.
var ErrUnsupportedVersion = errors.New("unsupported sheet version")

// ErrNoCharacter is returned when a document has no character body.
var ErrNoCharacter = errors.New("sheet document has no character")

type document struct {
	Version   int                  `json:"version" yaml:"version"`
	Character *character.Character `json:"character" yaml:"character"`
}

// MarshalJSON encodes c as an indented versioned JSON document.
func MarshalJSON(c *character.Character) ([]byte, error) {
	data, err := json.MarshalIndent(document{Version: Version, Character: c}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding sheet: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a versioned JSON document. Unknown fields are rejected.
//
// Postcondition: the loadout index of the result agrees with its item flags.
func UnmarshalJSON(data []byte) (*character.Character, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding sheet: %w", err)
	}
	return finish(doc)
}

// MarshalYAML encodes c as a versioned YAML document.
func MarshalYAML(c *character.Character) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Version: Version, Character: c}); err != nil {
		return nil, fmt.Errorf("encoding sheet: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a versioned YAML document. Unknown fields are rejected.
func UnmarshalYAML(data []byte) (*character.Character, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding sheet: %w", err)
	}
	return finish(doc)
}

func finish(doc document) (*character.Character, error) {
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Character == nil {
		return nil, ErrNoCharacter
	}
	return normalize(doc.Character), nil
}

// normalize fills collections absent from older or hand-written documents and
// rebuilds the loadout index. It does not resynthesize missing weapon attacks.
func normalize(c *character.Character) *character.Character {
	out := equipment.Reindex(c)
	if out.Attributes == nil {
		out.Attributes = map[ability.ID]int{}
	}
	if out.AttributeBonuses == nil {
		out.AttributeBonuses = map[ability.ID]int{}
	}
	if len(out.Skills) == 0 {
		out.Skills = character.DefaultSkills()
	}
	out.Conditions = condition.Dedupe(out.Conditions)
	if out.Resistances == nil {
		out.Resistances = []condition.Resistance{}
	}
	return out
}

// ReadFile loads a sheet from path. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func ReadFile(path string) (*character.Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", path, err)
	}
	var c *character.Character
	if isYAML(path) {
		c, err = UnmarshalYAML(data)
	} else {
		c, err = UnmarshalJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sheet %q: %w", path, err)
	}
	return c, nil
}

// WriteFile stores c at path in the format implied by its extension.
func WriteFile(path string, c *character.Character) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = MarshalYAML(c)
	} else {
		data, err = MarshalJSON(c)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sheet %q: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
