package collector

import (
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
)

// Space is what the collector needs from the host, including the cosmetic
// setters used by the fade.
type Space interface {
	host.Hierarchy
	host.Contacts
	host.Timers
	host.Lifecycle

	SetAnchored(id models.EntityID, anchored bool)
	SetCanCollide(id models.EntityID, v bool)
	SetTransparency(id models.EntityID, v float64)
}

type CarryableResolver interface {
	Resolve(part models.EntityID) (*carry.Carryable, bool)
}

type FixtureResolver interface {
	Get(root models.EntityID) (*fixture.Fixture, bool)
	Resolve(part models.EntityID) (*fixture.Fixture, bool)
}

// Roster picks who gets credited. The collector never targets the depositor.
type Roster interface {
	FirstEligible() (models.AgentID, bool)
}

// Scorer is the fire-and-forget economy collaborator.
type Scorer interface {
	AddScore(agent models.AgentID, amount int64)
}
