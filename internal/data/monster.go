package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MonsterTemplate holds the static stats of one actor class loaded from YAML.
type MonsterTemplate struct {
	Class        string     `yaml:"class"`
	Health       int        `yaml:"health"`
	GibHealth    int        `yaml:"gib_health"`
	Mass         int        `yaml:"mass"`
	Mins         [3]float64 `yaml:"mins"`
	Maxs         [3]float64 `yaml:"maxs"`
	YawSpeed     float64    `yaml:"yaw_speed"`
	SightRange   float64    `yaml:"sight_range"`
	StepSize     float64    `yaml:"step_size"`
	AttackDamage int        `yaml:"attack_damage"`
	Fly          bool       `yaml:"fly"`
	Mechanical   bool       `yaml:"mechanical"`
	AlienBlood   bool       `yaml:"alien_blood"`
}

type monsterListFile struct {
	Monsters []MonsterTemplate `yaml:"monsters"`
}

// MonsterTable holds all monster templates indexed by class name.
type MonsterTable struct {
	templates map[string]*MonsterTemplate
}

// LoadMonsterTable loads monster templates from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	return ParseMonsterTable(raw)
}

// ParseMonsterTable decodes a monster list. Classes must be unique and have
// positive health.
func ParseMonsterTable(raw []byte) (*MonsterTable, error) {
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{templates: make(map[string]*MonsterTemplate, len(f.Monsters))}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		if m.Class == "" {
			return nil, fmt.Errorf("monster %d: missing class", i)
		}
		if m.Health <= 0 {
			return nil, fmt.Errorf("monster %s: health %d", m.Class, m.Health)
		}
		if _, dup := t.templates[m.Class]; dup {
			return nil, fmt.Errorf("monster %s: duplicate class", m.Class)
		}
		if m.Mass == 0 {
			m.Mass = 200
		}
		t.templates[m.Class] = m
	}
	return t, nil
}

// Get returns the template for a class, or nil if not found.
func (t *MonsterTable) Get(class string) *MonsterTemplate {
	return t.templates[class]
}

// Count returns the number of templates loaded.
func (t *MonsterTable) Count() int {
	return len(t.templates)
}
