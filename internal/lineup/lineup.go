package lineup

import (
	_ "embed"
	"fmt"
	"sync"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"

	"gopkg.in/yaml.v3"
)

//go:embed lineups.yaml
var defaultsYAML []byte

// Template is one position of a formation in relative (0-1) coordinates.
type Template struct {
	Name  string      `yaml:"name" json:"name"`
	X     float64     `yaml:"x" json:"x"`
	Y     float64     `yaml:"y" json:"y"`
	Shape state.Shape `yaml:"shape" json:"shape"`
	Color string      `yaml:"color" json:"color"`
}

// Lineup is a named formation.
type Lineup struct {
	Key         string     `yaml:"key" json:"key"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Positions   []Template `yaml:"positions" json:"positions"`
}

var (
	defaults     []Lineup
	defaultsErr  error
	defaultsOnce sync.Once
)

// Parse decodes a YAML list of lineups.
func Parse(data []byte) ([]Lineup, error) {
	var out []Lineup
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("lineup: unmarshal: %w", err)
	}
	for i, l := range out {
		if l.Key == "" {
			return nil, fmt.Errorf("lineup: entry %d has no key", i)
		}
		for j, t := range l.Positions {
			if !t.Shape.Valid() {
				return nil, fmt.Errorf("lineup: %s position %d: unknown shape %q", l.Key, j, t.Shape)
			}
		}
	}
	return out, nil
}

// Defaults returns the built-in formations in catalog order.
func Defaults() ([]Lineup, error) {
	defaultsOnce.Do(func() {
		defaults, defaultsErr = Parse(defaultsYAML)
	})
	return defaults, defaultsErr
}

// Get returns the built-in formation with the given key.
func Get(key string) (Lineup, error) {
	all, err := Defaults()
	if err != nil {
		return Lineup{}, err
	}
	for _, l := range all {
		if l.Key == key {
			return l, nil
		}
	}
	return Lineup{}, fmt.Errorf("lineup: unknown lineup %q", key)
}

// Expand places the formation on a surface of the given size.
func (l Lineup) Expand(size geometry.Size) []state.Position {
	out := make([]state.Position, 0, len(l.Positions))
	for _, t := range l.Positions {
		out = append(out, state.Position{
			X:     t.X * size.Width,
			Y:     t.Y * size.Height,
			Shape: t.Shape,
			Color: t.Color,
			Label: t.Name,
		})
	}
	return out
}

// FromPositions captures positions placed on a surface of the given size as a
// relative formation.
func FromPositions(key string, positions []state.Position, size geometry.Size) Lineup {
	l := Lineup{Key: key, Name: key}
	if size.Empty() {
		return l
	}
	for _, p := range positions {
		l.Positions = append(l.Positions, Template{
			Name:  p.Label,
			X:     p.X / size.Width,
			Y:     p.Y / size.Height,
			Shape: p.Shape,
			Color: p.Color,
		})
	}
	return l
}
