package data

import (
	"fmt"
	"os"

	"github.com/fragd/server/internal/world"
	"gopkg.in/yaml.v3"
)

// CauseEntry is the obituary text for one means of death.
type CauseEntry struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Self        string `yaml:"self"`
	Kill        string `yaml:"kill"`
	KillSuffix  string `yaml:"kill_suffix"`
}

type causeListFile struct {
	Causes []CauseEntry `yaml:"causes"`
}

// CauseTable resolves obituary text by means of death.
type CauseTable struct {
	byName map[world.Cause]world.CauseInfo
}

// LoadCauseTable loads obituary messages from YAML.
func LoadCauseTable(path string) (*CauseTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cause_list: %w", err)
	}
	return ParseCauseTable(raw)
}

func ParseCauseTable(raw []byte) (*CauseTable, error) {
	var f causeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse cause_list: %w", err)
	}
	t := &CauseTable{byName: make(map[world.Cause]world.CauseInfo, len(f.Causes))}
	for _, e := range f.Causes {
		if e.Name == "" {
			return nil, fmt.Errorf("cause_list: entry without name")
		}
		t.byName[world.Cause(e.Name)] = world.CauseInfo{
			Environment: e.Environment,
			Self:        e.Self,
			Kill:        e.Kill,
			KillSuffix:  e.KillSuffix,
		}
	}
	return t, nil
}

// Cause implements sim.CauseTable.
func (t *CauseTable) Cause(c world.Cause) (world.CauseInfo, bool) {
	info, ok := t.byName[c]
	return info, ok
}

// Count returns the number of causes loaded.
func (t *CauseTable) Count() int {
	return len(t.byName)
}
