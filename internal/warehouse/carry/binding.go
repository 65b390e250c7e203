package carry

import "github.com/zeusync/warehouse/internal/core/models"

// BindingKind says what a carryable is welded to.
type BindingKind uint8

const (
	BindFree BindingKind = iota
	// BindCarrier is a plain weld to an arbitrary part.
	BindCarrier
	// BindAgent is an agent's body.
	BindAgent
	// BindFixture is a storage fixture root; Fixture names it.
	BindFixture
)

func (k BindingKind) String() string {
	switch k {
	case BindFree:
		return "free"
	case BindCarrier:
		return "carrier"
	case BindAgent:
		return "agent"
	case BindFixture:
		return "fixture"
	default:
		return "unknown"
	}
}

// Binding is the carryable's attachment state. The joint is owned by the
// carryable and destroyed on detach.
type Binding struct {
	Kind    BindingKind
	Carrier models.EntityID
	Joint   models.JointID
	Agent   models.AgentID
	Fixture models.EntityID
}

func (b Binding) Free() bool { return b.Kind == BindFree }

// AttachOption qualifies an attach with who the carrier is.
type AttachOption func(*attachConfig)

type attachConfig struct {
	kind    BindingKind
	agent   models.AgentID
	fixture models.EntityID
	release func()
}

// AsAgentCarry records agent as the carrying agent so a later detach stops
// its carry animation.
func AsAgentCarry(agent models.AgentID) AttachOption {
	return func(c *attachConfig) {
		c.kind = BindAgent
		c.agent = agent
	}
}

// InFixture records the holding fixture. release runs once when the
// carryable leaves it by any path, including destruction.
func InFixture(root models.EntityID, release func()) AttachOption {
	return func(c *attachConfig) {
		c.kind = BindFixture
		c.fixture = root
		c.release = release
	}
}

// Prompts are the player-facing affordances on a carryable.
type Prompts struct {
	PickUp bool
	Drop   bool
}
