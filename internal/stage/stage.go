package stage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDuplicateStage = errors.New("duplicate stage")
var ErrDuplicateAlias = errors.New("duplicate alias")
var ErrNoAliases = errors.New("stage has no aliases")

// NoStartStage may never be the first stage of an ordering.
const NoStartStage = "Security Hall"

type Stage struct {
	Name    string
	Aliases []string
}

// Key is the short config key for the stage: its first alias, lowercased.
func (s Stage) Key() string {
	return strings.ToLower(s.Aliases[0])
}

// Catalog is fixed once built. Lookups never mutate it, so a Catalog is
// safe to share between goroutines.
type Catalog struct {
	stages  []Stage
	byName  map[string]int // lowercased canonical name -> index
	byAlias map[string]int // lowercased alias -> index
}

func NewCatalog(stages []Stage) (*Catalog, error) {
	c := &Catalog{
		stages:  make([]Stage, 0, len(stages)),
		byName:  make(map[string]int, len(stages)),
		byAlias: make(map[string]int),
	}
	for i, s := range stages {
		if len(s.Aliases) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoAliases, s.Name)
		}
		name := strings.ToLower(s.Name)
		if _, ok := c.byName[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStage, s.Name)
		}
		c.byName[name] = i
		for _, a := range s.Aliases {
			key := strings.ToLower(a)
			if j, ok := c.byAlias[key]; ok && j != i {
				return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateAlias, a, stages[j].Name, s.Name)
			}
			c.byAlias[key] = i
		}
		c.stages = append(c.stages, Stage{Name: s.Name, Aliases: append([]string(nil), s.Aliases...)})
	}
	return c, nil
}

// Resolve maps free text to a canonical stage name. Canonical names win over
// aliases; there is no partial matching.
func (c *Catalog) Resolve(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	if i, ok := c.byName[in]; ok {
		return c.stages[i].Name, true
	}
	if i, ok := c.byAlias[in]; ok {
		return c.stages[i].Name, true
	}
	return "", false
}

func (c *Catalog) Contains(name string) bool {
	i, ok := c.byName[strings.ToLower(name)]
	return ok && c.stages[i].Name == name
}

// Stages returns a copy in declaration order.
func (c *Catalog) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	for i, s := range c.stages {
		out[i] = Stage{Name: s.Name, Aliases: append([]string(nil), s.Aliases...)}
	}
	return out
}

func (c *Catalog) Names() []string {
	out := make([]string, len(c.stages))
	for i, s := range c.stages {
		out[i] = s.Name
	}
	return out
}

func (c *Catalog) Len() int { return len(c.stages) }

// Key returns the config key for a canonical name, or "" if unknown.
func (c *Catalog) Key(name string) string {
	if !c.Contains(name) {
		return ""
	}
	return c.stages[c.byName[strings.ToLower(name)]].Key()
}
