package phases

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"
)

var (
	ErrEmptyPhaseID      = errors.New("phase id must not be empty")
	ErrDuplicatePhase    = errors.New("duplicate phase id")
	ErrUnknownDependency = errors.New("phase requires an unknown phase")
	ErrDependencyCycle   = errors.New("phase dependency cycle")
)

// Phase is one step of the guided content workflow.
type Phase struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Order        int               `json:"order"`
	Requires     []string          `json:"requires"`
	RequiredPlan entitlements.Tier `json:"required_plan"`
}

// Catalog is an immutable, validated set of phases. It is safe for
// concurrent use.
type Catalog struct {
	byID    map[string]Phase
	ordered []Phase
}

// NewCatalog validates the phase definitions and builds a catalog.
// Duplicate ids, requirements on unknown phases and cycles are rejected.
func NewCatalog(defs ...Phase) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]Phase, len(defs)),
		ordered: make([]Phase, 0, len(defs)),
	}

	for _, def := range defs {
		id := strings.TrimSpace(def.ID)
		if id == "" {
			return nil, ErrEmptyPhaseID
		}
		if _, ok := c.byID[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePhase, id)
		}
		p := def
		p.ID = id
		p.Requires = append([]string(nil), def.Requires...)
		if !p.RequiredPlan.Valid() {
			p.RequiredPlan = entitlements.TierFree
		}
		c.byID[id] = p
		c.ordered = append(c.ordered, p)
	}

	for _, p := range c.ordered {
		for _, dep := range p.Requires {
			if _, ok := c.byID[dep]; !ok {
				return nil, fmt.Errorf("%w: %s requires %s", ErrUnknownDependency, p.ID, dep)
			}
		}
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	sort.SliceStable(c.ordered, func(i, j int) bool {
		return c.ordered[i].Order < c.ordered[j].Order
	})
	return c, nil
}

// MustCatalog is NewCatalog that panics on an invalid definition.
func MustCatalog(defs ...Phase) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// checkAcyclic runs Kahn's algorithm over the requires edges.
func (c *Catalog) checkAcyclic() error {
	indegree := make(map[string]int, len(c.byID))
	dependents := make(map[string][]string, len(c.byID))
	for _, p := range c.ordered {
		for _, dep := range p.Requires {
			indegree[p.ID]++
			dependents[dep] = append(dependents[dep], p.ID)
		}
	}

	queue := make([]string, 0, len(indegree))
	for _, p := range c.ordered {
		if indegree[p.ID] == 0 {
			queue = append(queue, p.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited == len(c.ordered) {
		return nil
	}

	stuck := make([]string, 0)
	for _, p := range c.ordered {
		if indegree[p.ID] > 0 {
			stuck = append(stuck, p.ID)
		}
	}
	return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
}

// Lookup returns the phase with the given id.
func (c *Catalog) Lookup(id string) (Phase, bool) {
	p, ok := c.byID[id]
	if !ok {
		return Phase{}, false
	}
	p.Requires = append([]string(nil), p.Requires...)
	return p, true
}

// Has reports whether the catalog defines the phase.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Ordered returns a copy of all phases sorted by Order (stable for ties).
func (c *Catalog) Ordered() []Phase {
	out := make([]Phase, len(c.ordered))
	for i, p := range c.ordered {
		p.Requires = append([]string(nil), p.Requires...)
		out[i] = p
	}
	return out
}

// Len returns the number of phases in the catalog.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
