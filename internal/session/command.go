package session

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/vehicle"
)

type CommandType string

const (
	CmdJoin        CommandType = "join"
	CmdLeave       CommandType = "leave"
	CmdMove        CommandType = "move"
	CmdPickUp      CommandType = "pick_up"
	CmdDrop        CommandType = "drop"
	CmdTake        CommandType = "take"
	CmdSit         CommandType = "sit"
	CmdStand       CommandType = "stand"
	CmdDriverInput CommandType = "driver_input"
	CmdTouch       CommandType = "touch"
)

// Command is one agent request. Targets are scene names ("rack-a") or entity
// ids ("e12").
type Command struct {
	Type    CommandType
	Agent   models.AgentID
	Target  string
	Other   string
	Key     string
	Pressed bool
	Pose    physics.Pose
}

type envelope struct {
	cmd   Command
	reply chan error
}

// Apply executes cmd against the world. It must run on the loop goroutine.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Type {
	case CmdJoin:
		return s.spawnBody(cmd.Agent)
	case CmdLeave:
		return s.removeBody(cmd.Agent)
	case CmdTouch:
		a, err := s.resolve(cmd.Target)
		if err != nil {
			return err
		}
		b, err := s.resolve(cmd.Other)
		if err != nil {
			return err
		}
		s.world.Touch(a, b)
		return nil
	}

	ref, err := s.agentRef(cmd.Agent)
	if err != nil {
		return err
	}
	switch cmd.Type {
	case CmdMove:
		return s.world.SetPose(ref.Body, cmd.Pose)
	case CmdPickUp:
		c, err := s.crate(cmd.Target)
		if err != nil {
			return err
		}
		return c.PickUp(ref)
	case CmdDrop:
		c, ok := s.crates.CarriedBy(ref.ID)
		if !ok {
			return ErrNotCarrying
		}
		return c.Drop(ref.ID)
	case CmdTake:
		id, err := s.resolve(cmd.Target)
		if err != nil {
			return err
		}
		f, ok := s.fixtures.Resolve(id)
		if !ok {
			return errors.Wrapf(ErrUnknownTarget, "%q is not a fixture", cmd.Target)
		}
		return f.Take(ref)
	case CmdSit:
		id, err := s.resolve(cmd.Target)
		if err != nil {
			return err
		}
		h, ok := s.fleet.Resolve(id)
		if !ok {
			return errors.Wrapf(vehicle.ErrNoVehicle, "%q", cmd.Target)
		}
		return s.fleet.Sit(h, ref)
	case CmdStand:
		return s.fleet.Stand(ref.ID)
	case CmdDriverInput:
		return s.fleet.DriverInput(ref.ID, vehicle.Key(strings.ToUpper(cmd.Key)), cmd.Pressed)
	default:
		return errors.Wrapf(ErrUnknownCommand, "%q", cmd.Type)
	}
}

func (s *Session) agentRef(agent models.AgentID) (carry.AgentRef, error) {
	body, ok := s.agents[agent]
	if !ok {
		return carry.AgentRef{}, errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	return carry.AgentRef{ID: agent, Body: body}, nil
}

func (s *Session) crate(target string) (*carry.Carryable, error) {
	id, err := s.resolve(target)
	if err != nil {
		return nil, err
	}
	c, ok := s.crates.Resolve(id)
	if !ok {
		return nil, errors.Wrapf(carry.ErrNotCarryable, "%q", target)
	}
	return c, nil
}

// resolve maps a scene name or an "e<n>" id to a live entity.
func (s *Session) resolve(target string) (models.EntityID, error) {
	if id, ok := s.names[target]; ok && s.world.Exists(id) {
		return id, nil
	}
	if rest, ok := strings.CutPrefix(target, "e"); ok {
		if n, err := strconv.ParseUint(rest, 10, 64); err == nil {
			id := models.EntityID(n)
			if s.world.Exists(id) {
				return id, nil
			}
		}
	}
	return models.NoEntity, errors.Wrapf(ErrUnknownTarget, "%q", target)
}
