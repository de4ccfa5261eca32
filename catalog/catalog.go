// Package catalog loads the static competence-goal catalog the planner
// offers for selection.
//
// The catalog is a JSON object keyed by placement (or course) name. Two
// shapes are understood:
//
//	structured: {"1. praktik": {"kompetencemål": "...", "vidensmål": [...], "færdighedsmål": [...]}}
//	combined:   {"Forløb A": "one combined goal statement"}
//
// The structured shape also accepts the English keys primaryGoal,
// knowledgeGoals and skillGoals.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/nomis52/goplan/record"
)

// Goal is one catalog entry.
type Goal struct {
	Primary   string   `json:"primaryGoal"`
	Knowledge []string `json:"knowledgeGoals,omitempty"`
	Skills    []string `json:"skillGoals,omitempty"`
}

// Statements returns every selectable statement: primary, knowledge, skills.
func (g Goal) Statements() []string {
	out := make([]string, 0, 1+len(g.Knowledge)+len(g.Skills))
	if g.Primary != "" {
		out = append(out, g.Primary)
	}
	out = append(out, g.Knowledge...)
	out = append(out, g.Skills...)
	return out
}

type structuredGoal struct {
	Kompetencemaal  string   `json:"kompetencemål"`
	Vidensmaal      []string `json:"vidensmål"`
	Faerdighedsmaal []string `json:"færdighedsmål"`
	PrimaryGoal     string   `json:"primaryGoal"`
	KnowledgeGoals  []string `json:"knowledgeGoals"`
	SkillGoals      []string `json:"skillGoals"`
}

func (s structuredGoal) goal() Goal {
	g := Goal{
		Primary:   s.Kompetencemaal,
		Knowledge: s.Vidensmaal,
		Skills:    s.Faerdighedsmaal,
	}
	if g.Primary == "" {
		g.Primary = s.PrimaryGoal
	}
	if len(g.Knowledge) == 0 {
		g.Knowledge = s.KnowledgeGoals
	}
	if len(g.Skills) == 0 {
		g.Skills = s.SkillGoals
	}
	return g
}

// Catalog is a read-only mapping from key to Goal.
type Catalog struct {
	goals map[string]Goal
	keys  []string
}

// New builds a catalog from goals. The map is copied.
func New(goals map[string]Goal) *Catalog {
	c := &Catalog{goals: make(map[string]Goal, len(goals))}
	for k, g := range goals {
		c.goals[k] = g
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	return c
}

// Empty returns a catalog with no goals.
func Empty() *Catalog {
	return New(nil)
}

// Parse decodes catalog JSON in the given shape.
func Parse(data []byte, shape string) (*Catalog, error) {
	switch shape {
	case record.ShapeStructured:
		var raw map[string]structuredGoal
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding structured catalog: %w", err)
		}
		goals := make(map[string]Goal, len(raw))
		for k, s := range raw {
			goals[k] = s.goal()
		}
		return New(goals), nil
	case record.ShapeCombined:
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding combined catalog: %w", err)
		}
		goals := make(map[string]Goal, len(raw))
		for k, s := range raw {
			goals[k] = Goal{Primary: s}
		}
		return New(goals), nil
	default:
		return nil, fmt.Errorf("unknown catalog shape %q", shape)
	}
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path, shape string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data, shape)
}

// Load reads the catalog at path. Failures are logged and yield an empty
// catalog; there is no retry.
func Load(path, shape string, logger *slog.Logger) *Catalog {
	c, err := LoadFile(path, shape)
	if err != nil {
		logger.Error("failed to load goal catalog", "path", path, "error", err)
		return Empty()
	}
	logger.Info("goal catalog loaded", "path", path, "entries", c.Len())
	return c
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Lookup returns the goal stored under key.
func (c *Catalog) Lookup(key string) (Goal, bool) {
	g, ok := c.goals[key]
	return g, ok
}

// Statements returns the selectable statements for key, or nil if unknown.
func (c *Catalog) Statements(key string) []string {
	g, ok := c.goals[key]
	if !ok {
		return nil
	}
	return g.Statements()
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.goals)
}
