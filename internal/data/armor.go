package data

import (
	"fmt"
	"os"

	"github.com/fragd/server/internal/world"
	"gopkg.in/yaml.v3"
)

// ArmorEntry holds the absorption of one armor kind.
type ArmorEntry struct {
	Kind   string  `yaml:"kind"` // jacket, combat, body
	Normal float64 `yaml:"normal"`
	Energy float64 `yaml:"energy"`
	Max    int     `yaml:"max"`
}

type armorListFile struct {
	Armor []ArmorEntry `yaml:"armor"`
}

// ArmorTable maps armor kinds to their absorption coefficients.
type ArmorTable struct {
	byKind map[world.ArmorKind]world.ArmorSpec
}

var armorKinds = map[string]world.ArmorKind{
	"jacket": world.ArmorJacket,
	"combat": world.ArmorCombat,
	"body":   world.ArmorBody,
}

// LoadArmorTable loads armor coefficients from YAML.
func LoadArmorTable(path string) (*ArmorTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read armor_list: %w", err)
	}
	return ParseArmorTable(raw)
}

// ParseArmorTable decodes an armor list. Coefficients must lie in [0, 1].
func ParseArmorTable(raw []byte) (*ArmorTable, error) {
	var f armorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse armor_list: %w", err)
	}
	t := &ArmorTable{byKind: make(map[world.ArmorKind]world.ArmorSpec, len(f.Armor))}
	for _, e := range f.Armor {
		kind, ok := armorKinds[e.Kind]
		if !ok {
			return nil, fmt.Errorf("armor_list: unknown kind %q", e.Kind)
		}
		if e.Normal < 0 || e.Normal > 1 || e.Energy < 0 || e.Energy > 1 {
			return nil, fmt.Errorf("armor_list: %s coefficients out of range", e.Kind)
		}
		t.byKind[kind] = world.ArmorSpec{Normal: e.Normal, Energy: e.Energy, Max: e.Max}
	}
	return t, nil
}

// Armor implements sim.ArmorTable.
func (t *ArmorTable) Armor(kind world.ArmorKind) (world.ArmorSpec, bool) {
	spec, ok := t.byKind[kind]
	return spec, ok
}
