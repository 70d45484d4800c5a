package arena

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"turnbattle/internal/battle"
)

// Entry is one character line from a roster file.
type Entry struct {
	Player string      `yaml:"player"`
	Name   string      `yaml:"name"`
	Preset rosterStats `yaml:"stats"`
}

// rosterStats leaves omitted fields nil so they fall back to the defaults.
type rosterStats struct {
	Health   *float64 `yaml:"health"`
	Defense  *float64 `yaml:"defense"`
	Attack   *float64 `yaml:"attack"`
	Accuracy *float64 `yaml:"accuracy"`
	Magic    *float64 `yaml:"magic"`
}

// Stats returns the entry's stats with defaults filled in.
func (e Entry) Stats() battle.Stats {
	out := battle.DefaultStats()
	pick := func(dst, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	pick(&out.Health, e.Preset.Health)
	pick(&out.Defense, e.Preset.Defense)
	pick(&out.Attack, e.Preset.Attack)
	pick(&out.Accuracy, e.Preset.Accuracy)
	pick(&out.Magic, e.Preset.Magic)
	return out
}

// NewPlayer builds the player and its character with the preset stats.
func (e Entry) NewPlayer(opts ...battle.Option) (*battle.Player, error) {
	c := battle.NewCharacter(e.Name, opts...)
	if err := c.SetStats(e.Stats()); err != nil {
		return nil, err
	}
	return battle.NewPlayer(e.Player, c), nil
}

type rosterFile struct {
	Characters []Entry `yaml:"characters"`
}

// LoadRoster reads the characters that will fight in an arena.
func LoadRoster(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(raw)
}

func ParseRoster(raw []byte) ([]Entry, error) {
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	seen := make(map[string]bool, len(f.Characters))
	for i := range f.Characters {
		e := &f.Characters[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse roster: character %d has no name", i+1)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("parse roster: duplicate character %q", e.Name)
		}
		seen[e.Name] = true
		if e.Player == "" {
			e.Player = e.Name
		}
		if err := e.Stats().Validate(); err != nil {
			return nil, fmt.Errorf("parse roster: %s: %w", e.Name, err)
		}
	}
	return f.Characters, nil
}
