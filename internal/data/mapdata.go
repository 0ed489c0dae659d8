package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fragd/server/internal/world"
	"gopkg.in/yaml.v3"
)

// MapInfo holds metadata for a single level, loaded from map_list.yaml.
type MapInfo struct {
	Name       string `yaml:"name"`
	File       string `yaml:"file"`
	Title      string `yaml:"title"`
	Deathmatch bool   `yaml:"deathmatch"`
	Coop       bool   `yaml:"coop"`
}

// BrushDef is one solid box of level geometry.
type BrushDef struct {
	Mins    [3]float64 `yaml:"mins"`
	Maxs    [3]float64 `yaml:"maxs"`
	Surface string     `yaml:"surface"`
}

// SpawnPoint places one actor when the level starts.
type SpawnPoint struct {
	Class       string     `yaml:"class"`
	Origin      [3]float64 `yaml:"origin"`
	Yaw         float64    `yaml:"yaw"`
	Target      string     `yaml:"target"`
	TargetName  string     `yaml:"target_name"`
	DeathTarget string     `yaml:"death_target"`
	StandGround bool       `yaml:"stand_ground"`
	GoodGuy     bool       `yaml:"good_guy"`
	Brutal      bool       `yaml:"brutal"`
}

type levelFile struct {
	Brushes []BrushDef   `yaml:"brushes"`
	Spawns  []SpawnPoint `yaml:"spawns"`
}

// Level is a loaded level: metadata, collision geometry and spawn points.
type Level struct {
	Info   MapInfo
	Map    *world.BoxMap
	Spawns []SpawnPoint
}

// MapDataTable provides level lookups by name.
type MapDataTable struct {
	levels map[string]*Level
	order  []string
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMapData loads level metadata from YAML and geometry from per-level files.
// yamlPath: path to map_list.yaml
// levelDir: directory containing the level files named by each entry
func LoadMapData(yamlPath, levelDir string) (*MapDataTable, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	table := &MapDataTable{levels: make(map[string]*Level, len(file.Maps))}
	for _, info := range file.Maps {
		if info.Name == "" {
			continue
		}
		name := info.File
		if name == "" {
			name = info.Name + ".yaml"
		}
		lraw, err := os.ReadFile(filepath.Join(levelDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			// Listed but not shipped; skip.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read level %s: %w", info.Name, err)
		}
		lvl, err := ParseLevel(info, lraw)
		if err != nil {
			return nil, err
		}
		table.levels[info.Name] = lvl
		table.order = append(table.order, info.Name)
	}
	return table, nil
}

// ParseLevel decodes one level file. Every brush must have positive volume.
func ParseLevel(info MapInfo, raw []byte) (*Level, error) {
	var f levelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level %s: %w", info.Name, err)
	}
	m := &world.BoxMap{Name: info.Name, Brushes: make([]world.Brush, 0, len(f.Brushes))}
	for i, b := range f.Brushes {
		for k := 0; k < 3; k++ {
			if b.Mins[k] >= b.Maxs[k] {
				return nil, fmt.Errorf("level %s: brush %d is empty on axis %d", info.Name, i, k)
			}
		}
		m.Brushes = append(m.Brushes, world.Brush{
			Mins:    world.Vec3(b.Mins),
			Maxs:    world.Vec3(b.Maxs),
			Surface: b.Surface,
		})
	}
	for i, s := range f.Spawns {
		if s.Class == "" {
			return nil, fmt.Errorf("level %s: spawn %d has no class", info.Name, i)
		}
	}
	return &Level{Info: info, Map: m, Spawns: f.Spawns}, nil
}

// Count returns the number of levels loaded.
func (t *MapDataTable) Count() int {
	return len(t.levels)
}

// Get returns a level by name, or nil if not found.
func (t *MapDataTable) Get(name string) *Level {
	return t.levels[name]
}

// First returns the first level in list order, or nil when none loaded.
func (t *MapDataTable) First() *Level {
	if len(t.order) == 0 {
		return nil
	}
	return t.levels[t.order[0]]
}
