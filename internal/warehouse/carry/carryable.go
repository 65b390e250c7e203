// Package carry implements the attachable crate and its carrier bindings.
package carry

import (
	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// CarryAnimation is the tag requested when an agent starts carrying.
const CarryAnimation = "Carry"

// Tuning positions a carried object in front of the agent's torso.
type Tuning struct {
	// ChestGap is the clearance between torso and object along the facing.
	ChestGap float64
	// Drop is the vertical offset applied to the carry pose.
	Drop float64
}

func DefaultTuning() Tuning {
	return Tuning{ChestGap: 0.2, Drop: -0.3}
}

// Option configures a Carryable.
type Option func(*Carryable)

func WithTuning(t Tuning) Option {
	return func(c *Carryable) { c.tuning = t }
}

func WithAnimator(a Animator) Option {
	return func(c *Carryable) {
		if a != nil {
			c.anim = a
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(c *Carryable) {
		if l != nil {
			c.logger = l
		}
	}
}

// Carryable is a crate that can be welded to exactly one carrier at a time.
// It is driven from the simulation goroutine only; the AlreadyAttached result
// is the only exclusion between competing carriers.
type Carryable struct {
	id      models.EntityID
	space   Space
	anim    Animator
	tuning  Tuning
	logger  log.Log
	binding Binding
	release func()
	prompts Prompts
}

// New wraps an existing host part. The carryable detaches itself when the
// part is destroyed.
func New(id models.EntityID, space Space, opts ...Option) *Carryable {
	c := &Carryable{
		id:      id,
		space:   space,
		anim:    NopAnimator,
		tuning:  DefaultTuning(),
		logger:  log.Nop(),
		prompts: Prompts{PickUp: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(log.String("component", "carryable"), log.Stringer("entity", id))
	space.OnDestroying(id, c.Detach)
	return c
}

func (c *Carryable) ID() models.EntityID { return c.id }

func (c *Carryable) Binding() Binding { return c.binding }

func (c *Carryable) Prompts() Prompts { return c.prompts }

// Attach welds the carryable to carrier at pose. It fails with
// ErrAlreadyAttached unless the carryable is free and carrier holds no joint
// from it.
func (c *Carryable) Attach(carrier models.EntityID, pose physics.Pose, opts ...AttachOption) error {
	if !c.binding.Free() {
		return ErrAlreadyAttached
	}
	if !c.space.Exists(carrier) {
		return ErrUnknownCarrier
	}
	for _, j := range c.space.JointsTo(carrier) {
		if j.Part0 == c.id {
			return ErrAlreadyAttached
		}
	}

	cfg := attachConfig{kind: BindCarrier}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := c.space.SetPose(c.id, pose); err != nil {
		return errors.Wrapf(err, "carry: move %s", c.id)
	}
	joint, err := c.space.CreateJoint(c.id, carrier)
	if err != nil {
		return errors.Wrapf(err, "carry: weld %s to %s", c.id, carrier)
	}

	c.binding = Binding{
		Kind:    cfg.kind,
		Carrier: carrier,
		Joint:   joint,
		Agent:   cfg.agent,
		Fixture: cfg.fixture,
	}
	c.release = cfg.release
	c.prompts = Prompts{PickUp: false, Drop: true}
	c.logger.Debug("attached",
		log.Stringer("carrier", carrier),
		log.Stringer("kind", cfg.kind),
	)
	return nil
}

// Detach frees the carryable. Calling it on a free carryable does nothing.
func (c *Carryable) Detach() {
	if c.binding.Free() {
		return
	}
	prev, release := c.binding, c.release
	c.space.DestroyJoint(prev.Joint)
	c.binding = Binding{}
	c.release = nil
	c.prompts = Prompts{PickUp: true, Drop: false}

	if prev.Agent.Valid() {
		c.anim.StopAnimation(prev.Agent)
	}
	if release != nil {
		release()
	}
	c.logger.Debug("detached", log.Stringer("carrier", prev.Carrier))
}

// CarryPose is where the carryable sits when held by body: in front of the
// torso along its facing, lowered by the tuning drop.
func (c *Carryable) CarryPose(body models.EntityID) (physics.Pose, error) {
	torso, ok := c.space.Pose(body)
	if !ok {
		return physics.Pose{}, ErrUnknownCarrier
	}
	torsoSize, _ := c.space.Size(body)
	size, _ := c.space.Size(c.id)

	reach := size.Z/2 + torsoSize.Z/2 + c.tuning.ChestGap
	offset := torso.LookVector().Scale(reach).Add(physics.V(0, c.tuning.Drop, 0))
	return torso.Translate(offset), nil
}

// AttachToAgent welds the carryable in front of the agent and requests the
// carry animation.
func (c *Carryable) AttachToAgent(agent AgentRef) error {
	if len(c.space.JointsTo(agent.Body)) > 0 {
		return ErrAgentBusy
	}
	pose, err := c.CarryPose(agent.Body)
	if err != nil {
		return err
	}
	if err = c.Attach(agent.Body, pose, AsAgentCarry(agent.ID)); err != nil {
		return err
	}
	c.anim.PlayCarryAnimation(agent.ID, CarryAnimation)
	return nil
}

// PickUp is the agent-facing pick up interaction.
func (c *Carryable) PickUp(agent AgentRef) error {
	if !c.prompts.PickUp {
		return ErrPromptDisabled
	}
	return c.AttachToAgent(agent)
}

// Drop releases the carryable from the agent holding it into open space.
func (c *Carryable) Drop(agent models.AgentID) error {
	if !c.prompts.Drop {
		return ErrPromptDisabled
	}
	if c.binding.Kind != BindAgent || c.binding.Agent != agent {
		return ErrNotCarrier
	}
	c.Detach()
	return c.space.SetParent(c.id, models.NoEntity)
}
