package carry

import (
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
)

// Registry resolves host parts to their carryable.
type Registry struct {
	hierarchy host.Hierarchy
	byID      map[models.EntityID]*Carryable
}

func NewRegistry(h host.Hierarchy) *Registry {
	return &Registry{hierarchy: h, byID: make(map[models.EntityID]*Carryable)}
}

func (r *Registry) Add(c *Carryable) {
	r.byID[c.ID()] = c
}

func (r *Registry) Remove(id models.EntityID) {
	delete(r.byID, id)
}

func (r *Registry) Get(id models.EntityID) (*Carryable, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Resolve walks up from part to the nearest registered carryable.
func (r *Registry) Resolve(part models.EntityID) (*Carryable, bool) {
	for cur := part; cur.Valid(); cur = r.hierarchy.Parent(cur) {
		if c, ok := r.byID[cur]; ok {
			return c, true
		}
	}
	return nil, false
}

// CarriedBy returns the carryable the agent is holding, if any.
func (r *Registry) CarriedBy(agent models.AgentID) (*Carryable, bool) {
	for _, c := range r.byID {
		if b := c.Binding(); b.Kind == BindAgent && b.Agent == agent {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int { return len(r.byID) }
