package carry

import (
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
)

// Animator is the fire-and-forget animation collaborator.
type Animator interface {
	PlayCarryAnimation(agent models.AgentID, tag string)
	StopAnimation(agent models.AgentID)
}

// Space is the slice of the spatial host a carryable needs.
type Space interface {
	host.Posing
	host.Jointing
	host.Hierarchy
	host.Lifecycle
}

// AgentRef names an agent together with the body part it carries on.
type AgentRef struct {
	ID   models.AgentID
	Body models.EntityID
}

type nopAnimator struct{}

func (nopAnimator) PlayCarryAnimation(models.AgentID, string) {}
func (nopAnimator) StopAnimation(models.AgentID)              {}

// NopAnimator discards animation requests.
var NopAnimator Animator = nopAnimator{}
