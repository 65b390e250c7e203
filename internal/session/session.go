// Package session is the composition root of a running warehouse. It builds
// the world from a config, owns the frame loop and serializes agent commands
// onto it.
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/config"
	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/economy"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/collector"
	"github.com/zeusync/warehouse/internal/warehouse/conveyor"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
	"github.com/zeusync/warehouse/internal/warehouse/spawner"
	"github.com/zeusync/warehouse/internal/warehouse/vehicle"
)

const (
	inboxSize       = 256
	rollbackTimeout = 5 * time.Second
)

// Bodies spawn here, spaced along X so they never start in contact.
var (
	bodySpawn   = physics.V(0, 2.5, 10)
	bodySize    = physics.V(2, 2, 1)
	bodySpacing = 3.0
)

type Session struct {
	cfg    *config.Config
	logger log.Log
	world  *host.World
	outlet busOutlet
	roster collector.Roster
	econ   *economy.Service

	crates     *carry.Registry
	fixtures   *fixture.Registry
	fleet      *vehicle.Fleet
	collectors []*collector.Collector
	spawners   []*spawner.Spawner
	belts      []*conveyor.Belt

	names   map[string]models.EntityID
	agents  map[models.AgentID]models.EntityID
	joined  int
	spawned int

	inbox chan envelope
	done  chan struct{}
}

// New builds the scene. A fixture, collector or vehicle that cannot resolve
// its parts aborts construction with fixture.ErrMissingDependency.
func New(cfg *config.Config, events bus.EventBus, econ *economy.Service, logger log.Log) (*Session, error) {
	if cfg == nil || events == nil || econ == nil {
		return nil, errors.Wrap(fixture.ErrMissingDependency, "session")
	}
	if logger == nil {
		logger = log.Nop()
	}
	world := host.NewWorld(logger)
	s := &Session{
		cfg:      cfg,
		logger:   logger.With(log.String("component", "session")),
		world:    world,
		outlet:   busOutlet{events: events, logger: logger},
		roster:   econ,
		econ:     econ,
		crates:   carry.NewRegistry(world),
		fixtures: fixture.NewRegistry(world),
		names:    make(map[string]models.EntityID),
		agents:   make(map[models.AgentID]models.EntityID),
		inbox:    make(chan envelope, inboxSize),
		done:     make(chan struct{}),
	}
	s.fleet = vehicle.NewFleet(world, s.outlet, logger)
	if err := s.build(cfg.Scene); err != nil {
		return nil, err
	}
	s.logger.Info("scene built",
		log.Int("parts", world.PartCount()),
		log.Int("fixtures", s.fixtures.Len()),
		log.Int("crates", s.crates.Len()),
		log.Int("vehicles", s.fleet.Len()))
	return s, nil
}

func (s *Session) World() *host.World { return s.world }

func (s *Session) Crates() *carry.Registry { return s.crates }

func (s *Session) Fixtures() *fixture.Registry { return s.fixtures }

func (s *Session) Fleet() *vehicle.Fleet { return s.fleet }

// Lookup returns the entity built for a scene name.
func (s *Session) Lookup(name string) (models.EntityID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// Body returns the body part of a joined agent.
func (s *Session) Body(agent models.AgentID) (models.EntityID, bool) {
	id, ok := s.agents[agent]
	return id, ok
}

func (s *Session) spawnBody(agent models.AgentID) error {
	if _, ok := s.agents[agent]; ok {
		return errors.Wrapf(ErrAlreadyJoined, "%s", agent)
	}
	pose := physics.At(bodySpawn.Add(physics.V(float64(s.joined)*bodySpacing, 0, 0)))
	s.joined++
	body := s.world.AddPart(host.PartSpec{
		Name:     "agent-" + agent.String()[:8],
		Tags:     []string{models.TagAgentBody},
		Pose:     pose,
		Size:     bodySize,
		Anchored: true,
	})
	s.agents[agent] = body
	s.logger.Info("agent joined", log.Stringer("agent", agent), log.Stringer("body", body))
	return nil
}

// removeBody releases everything the agent holds before the body goes away.
func (s *Session) removeBody(agent models.AgentID) error {
	body, ok := s.agents[agent]
	if !ok {
		return errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	if _, seated := s.fleet.Seated(agent); seated {
		if err := s.fleet.Stand(agent); err != nil {
			s.logger.Warn("stand on leave", log.Stringer("agent", agent), log.Error(err))
		}
	}
	if c, carrying := s.crates.CarriedBy(agent); carrying {
		if err := c.Drop(agent); err != nil {
			s.logger.Warn("drop on leave", log.Stringer("agent", agent), log.Error(err))
		}
	}
	delete(s.agents, agent)
	s.world.Destroy(body)
	s.logger.Info("agent left", log.Stringer("agent", agent))
	return nil
}

// Tick drains queued commands and advances the world by one frame. It must
// run on the loop goroutine.
func (s *Session) Tick() {
	for {
		select {
		case env := <-s.inbox:
			env.reply <- s.Apply(env.cmd)
		default:
			s.world.Step(s.cfg.Tuning.TickInterval())
			return
		}
	}
}

// Run drives Tick at the configured rate until ctx ends.
func (s *Session) Run(ctx context.Context) error {
	interval := s.cfg.Tuning.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	s.logger.Info("session running", log.Duration("tick", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopping",
				log.Uint64("frames", s.world.Frame()),
				log.Int("pending_timers", s.world.Scheduler().Pending()))
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Submit queues cmd for the next frame and waits for its result.
func (s *Session) Submit(ctx context.Context, cmd Command) error {
	env := envelope{cmd: cmd, reply: make(chan error, 1)}
	select {
	case s.inbox <- env:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-env.reply:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join opens the agent's ledger and then spawns its body. The ledger load
// happens on the caller's goroutine so storage never stalls a frame. If the
// body cannot spawn the ledger is closed again.
func (s *Session) Join(ctx context.Context, agent models.AgentID) (int64, error) {
	balance, err := s.econ.Join(ctx, agent)
	if err != nil {
		return 0, err
	}
	if err := s.Submit(ctx, Command{Type: CmdJoin, Agent: agent}); err != nil {
		leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		if leaveErr := s.econ.Leave(leaveCtx, agent); leaveErr != nil {
			s.logger.Warn("ledger rollback failed", log.Stringer("agent", agent), log.Error(leaveErr))
		}
		return 0, err
	}
	return balance, nil
}

// Leave removes the body and then saves the ledger.
func (s *Session) Leave(ctx context.Context, agent models.AgentID) error {
	err := s.Submit(ctx, Command{Type: CmdLeave, Agent: agent})
	if leaveErr := s.econ.Leave(ctx, agent); leaveErr != nil && !errors.Is(leaveErr, economy.ErrUnknownAgent) {
		return leaveErr
	}
	return err
}

// Close saves every open ledger. Call it after Run returns.
func (s *Session) Close(ctx context.Context) error {
	for _, c := range s.collectors {
		c.Close()
	}
	for _, sp := range s.spawners {
		sp.Stop()
	}
	for _, b := range s.belts {
		b.Stop()
	}
	return s.econ.Close(ctx)
}
