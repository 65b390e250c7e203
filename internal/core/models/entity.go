package models

import (
	"strconv"

	"github.com/google/uuid"
)

// EntityID identifies one physical object instance in the host world.
// Zero is never assigned.
type EntityID uint64

const NoEntity EntityID = 0

func (id EntityID) String() string { return "e" + strconv.FormatUint(uint64(id), 10) }

func (id EntityID) Valid() bool { return id != NoEntity }

// JointID identifies a rigid joint between two parts.
type JointID uint64

const NoJoint JointID = 0

func (id JointID) String() string { return "j" + strconv.FormatUint(uint64(id), 10) }

// AgentID identifies a player session. It outlives reconnects, so it is a uuid
// rather than a host entity.
type AgentID uuid.UUID

var NoAgent AgentID

func NewAgentID() AgentID { return AgentID(uuid.New()) }

func ParseAgentID(s string) (AgentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NoAgent, err
	}
	return AgentID(u), nil
}

func (a AgentID) String() string { return uuid.UUID(a).String() }

func (a AgentID) Valid() bool { return a != NoAgent }

// MarshalText lets AgentID travel as a plain string in JSON envelopes.
func (a AgentID) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AgentID) UnmarshalText(b []byte) error {
	id, err := ParseAgentID(string(b))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// Tags classify host parts. Fixtures and probes filter overlap and contact
// results by tag rather than by concrete type.
const (
	TagCrate     = "crate"
	TagPallet    = "pallet"
	TagRack      = "rack"
	TagShelf     = "shelf"
	TagCollector = "collector"
	TagProbe     = "probe"
	TagVehicle   = "vehicle"
	TagAgentBody = "agent_body"
	TagConveyor  = "conveyor"
	TagSpawner   = "spawner"

	// TagAttachment marks zero-size child geometry that defines a storage slot.
	TagAttachment = "attachment"
)
