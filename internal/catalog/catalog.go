// Package catalog holds the fixed set of team goals a project can be tagged
// with.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gminsights/roadmap-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed goals.yaml
var defaultGoals []byte

type Goal struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon"`
}

type Catalog struct {
	goals []Goal
	byID  map[string]Goal
}

// Default returns the built-in team goals.
func Default() *Catalog {
	c, err := Parse(defaultGoals)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded goals.yaml: %v", err))
	}
	return c
}

// Load reads the catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goals file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Goals []Goal `yaml:"goals"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse goals: %w", err)
	}

	c := &Catalog{byID: make(map[string]Goal, len(doc.Goals))}
	for _, g := range doc.Goals {
		if g.ID == "" {
			return nil, fmt.Errorf("goal %q has no id", g.Label)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("duplicate goal id %q", g.ID)
		}
		c.byID[g.ID] = g
		c.goals = append(c.goals, g)
	}
	return c, nil
}

func (c *Catalog) All() []Goal {
	out := make([]Goal, len(c.goals))
	copy(out, c.goals)
	return out
}

func (c *Catalog) Lookup(id string) (Goal, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// Validate rejects unknown or repeated goal ids.
func (c *Catalog) Validate(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.byID[id]; !ok {
			return &models.ValidationError{Field: "goals", Message: fmt.Sprintf("Unknown goal %q", id)}
		}
		if seen[id] {
			return &models.ValidationError{Field: "goals", Message: fmt.Sprintf("Goal %q listed twice", id)}
		}
		seen[id] = true
	}
	return nil
}
