package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/config"
	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/economy"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
	"github.com/zeusync/warehouse/internal/warehouse/vehicle"
)

func testConfig() *config.Config {
	c := config.Default()
	c.Scene = config.Scene{
		Crates: []config.Crate{
			{Placement: config.Placement{Name: "c1", Pos: config.V(0, 1, 0), Size: config.V(1, 1, 1)}},
		},
		Fixtures: []config.Fixture{
			{
				Placement: config.Placement{Name: "r1", Pos: config.V(20, 0.5, 0), Size: config.V(4, 1, 2)},
				Kind:      "rack",
				Slots:     []config.Vec{config.V(-1, 0.5, 0), config.V(1, 0.5, 0)},
			},
		},
		Collectors: []config.Collector{
			{Placement: config.Placement{Name: "bay", Pos: config.V(-20, 0.5, 0), Size: config.V(4, 1, 4)}},
		},
		Vehicles: []config.Vehicle{
			{
				Placement: config.Placement{Name: "lift", Pos: config.V(0, 1, -30), Size: config.V(2, 2, 4)},
				Model:     "forklift",
				Seat:      config.Mount{Offset: config.V(0, 1, 0.5), Size: config.V(1, 0.4, 1)},
				Probes:    []config.Mount{{Offset: config.V(0, -0.5, -3), Size: config.V(2, 0.2, 2)}},
			},
		},
	}
	return c
}

type harness struct {
	s      *Session
	events bus.EventBus
	econ   *economy.Service
	pushes []bus.Event
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{events: bus.New()}
	h.econ = economy.NewService(economy.NewMemoryStore(), nil, h.events, log.Nop())
	require.NoError(t, h.econ.Listen())
	for _, typ := range []string{EventPlayAnimation, EventStopAnimation, EventToggleDriving} {
		_, err := h.events.Subscribe(typ, func(e bus.Event) error {
			h.pushes = append(h.pushes, e)
			return nil
		})
		require.NoError(t, err)
	}
	s, err := New(cfg, h.events, h.econ, log.Nop())
	require.NoError(t, err)
	h.s = s
	return h
}

func (h *harness) join(t *testing.T) models.AgentID {
	t.Helper()
	agent := models.NewAgentID()
	_, err := h.econ.Join(context.Background(), agent)
	require.NoError(t, err)
	require.NoError(t, h.s.Apply(Command{Type: CmdJoin, Agent: agent}))
	return agent
}

func (h *harness) ticks(n int) {
	for range n {
		h.s.Tick()
	}
}

func (h *harness) types() []string {
	out := make([]string, 0, len(h.pushes))
	for _, e := range h.pushes {
		out = append(out, e.Type())
	}
	return out
}

func TestNewBuildsScene(t *testing.T) {
	h := newHarness(t, config.Default())
	s := h.s

	for _, name := range []string{"rack-a", "pallet-a", "shelf-a", "crate-1", "bay", "dock", "belt-a", "forklift-1", "semi-1"} {
		_, ok := s.Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, 3, s.Fixtures().Len())
	assert.Equal(t, 3, s.Fleet().Len())
	assert.Equal(t, 2, s.Crates().Len())

	semi, _ := s.Lookup("semi-1")
	hnd, ok := s.Fleet().Resolve(semi)
	require.True(t, ok)
	assert.Len(t, s.Fleet().Probes(hnd), 2)

	rack, _ := s.Lookup("rack-a")
	f, ok := s.Fixtures().Get(rack)
	require.True(t, ok)
	assert.Equal(t, 4, f.Capacity())
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	cfg := testConfig()
	cfg.Scene.Vehicles = append(cfg.Scene.Vehicles, config.Vehicle{
		Placement: config.Placement{Name: "semi", Pos: config.V(40, 1, 0), Size: config.V(3, 3, 14)},
		Model:     "semi_truck",
		Seat:      config.Mount{Offset: config.V(0, 1, -5), Size: config.V(1, 0.4, 1)},
	})
	events := bus.New()
	econ := economy.NewService(nil, nil, events, log.Nop())

	_, err := New(cfg, events, econ, log.Nop())
	assert.ErrorIs(t, err, fixture.ErrMissingDependency)

	_, err = New(testConfig(), events, nil, log.Nop())
	assert.ErrorIs(t, err, fixture.ErrMissingDependency)

	cfg = testConfig()
	cfg.Scene.Fixtures[0].Slots = nil
	_, err = New(cfg, events, econ, log.Nop())
	assert.ErrorIs(t, err, fixture.ErrMissingDependency)
}

func TestCarryIntoRackTakeAndCollect(t *testing.T) {
	h := newHarness(t, testConfig())
	s := h.s
	agent := h.join(t)
	crateID, _ := s.Lookup("c1")
	crate, _ := s.Crates().Get(crateID)

	require.NoError(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: "c1"}))
	assert.Equal(t, carry.BindAgent, crate.Binding().Kind)
	assert.Equal(t, []string{EventPlayAnimation}, h.types())
	carried, ok := s.Crates().CarriedBy(agent)
	require.True(t, ok)
	assert.Equal(t, crateID, carried.ID())

	// touching the rack hands the crate over to the lowest slot
	require.NoError(t, s.Apply(Command{Type: CmdTouch, Target: "c1", Other: "r1"}))
	rackID, _ := s.Lookup("r1")
	assert.Equal(t, carry.BindFixture, crate.Binding().Kind)
	assert.Equal(t, rackID, crate.Binding().Fixture)
	assert.Equal(t, []string{EventPlayAnimation, EventStopAnimation}, h.types())

	require.NoError(t, s.Apply(Command{Type: CmdTake, Agent: agent, Target: "r1"}))
	assert.Equal(t, carry.BindAgent, crate.Binding().Kind)
	rack, _ := s.Fixtures().Get(rackID)
	assert.Zero(t, rack.Count())

	require.NoError(t, s.Apply(Command{Type: CmdTouch, Target: "c1", Other: "bay"}))
	balance, _ := h.econ.Balance(agent)
	assert.Equal(t, int64(10), balance)

	h.ticks(70)
	assert.False(t, s.World().Exists(crateID))
	_, ok = s.Lookup("c1")
	assert.False(t, ok)
	_, ok = s.Crates().CarriedBy(agent)
	assert.False(t, ok)
}

func TestDropAndLeaveRelease(t *testing.T) {
	h := newHarness(t, testConfig())
	s := h.s
	agent := h.join(t)

	assert.ErrorIs(t, s.Apply(Command{Type: CmdDrop, Agent: agent}), ErrNotCarrying)
	require.NoError(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: "c1"}))
	require.NoError(t, s.Apply(Command{Type: CmdDrop, Agent: agent}))
	_, ok := s.Crates().CarriedBy(agent)
	assert.False(t, ok)

	require.NoError(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: "c1"}))
	body, _ := s.Body(agent)
	require.NoError(t, s.Apply(Command{Type: CmdLeave, Agent: agent}))
	assert.False(t, s.World().Exists(body))
	crateID, _ := s.Lookup("c1")
	crate, _ := s.Crates().Get(crateID)
	assert.True(t, crate.Binding().Free())
	assert.True(t, crate.Prompts().PickUp)
}

func TestDriveForklift(t *testing.T) {
	h := newHarness(t, testConfig())
	s := h.s
	agent := h.join(t)
	other := h.join(t)
	liftID, _ := s.Lookup("lift")
	start, _ := s.World().Pose(liftID)

	require.NoError(t, s.Apply(Command{Type: CmdSit, Agent: agent, Target: "lift"}))
	assert.Equal(t, []string{EventToggleDriving}, h.types())
	assert.True(t, h.pushes[0].Data().(Driving).Driving)

	assert.ErrorIs(t, s.Apply(Command{Type: CmdDriverInput, Agent: other, Key: "w", Pressed: true}), vehicle.ErrNotOccupant)
	require.NoError(t, s.Apply(Command{Type: CmdDriverInput, Agent: agent, Key: "w", Pressed: true}))
	h.ticks(30)

	moved, _ := s.World().Pose(liftID)
	assert.Less(t, moved.Pos.Z, start.Pos.Z-5)
	body, _ := s.Body(agent)
	bodyPose, _ := s.World().Pose(body)
	assert.InDelta(t, moved.Pos.Z, bodyPose.Pos.Z, 3)

	require.NoError(t, s.Apply(Command{Type: CmdStand, Agent: agent}))
	require.Len(t, h.pushes, 2)
	assert.False(t, h.pushes[1].Data().(Driving).Driving)
}

func TestApplyErrors(t *testing.T) {
	h := newHarness(t, testConfig())
	s := h.s
	stranger := models.NewAgentID()
	agent := h.join(t)

	assert.ErrorIs(t, s.Apply(Command{Type: CmdPickUp, Agent: stranger, Target: "c1"}), ErrUnknownAgent)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdJoin, Agent: agent}), ErrAlreadyJoined)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: "nope"}), ErrUnknownTarget)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: "r1"}), carry.ErrNotCarryable)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdTake, Agent: agent, Target: "c1"}), ErrUnknownTarget)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdSit, Agent: agent, Target: "r1"}), vehicle.ErrNoVehicle)
	assert.ErrorIs(t, s.Apply(Command{Type: "dance", Agent: agent}), ErrUnknownCommand)
	assert.ErrorIs(t, s.Apply(Command{Type: CmdLeave, Agent: stranger}), ErrUnknownAgent)

	crateID, _ := s.Lookup("c1")
	require.NoError(t, s.Apply(Command{Type: CmdPickUp, Agent: agent, Target: crateID.String()}))
}

func TestRunServesSubmittedCommands(t *testing.T) {
	cfg := testConfig()
	cfg.Tuning.TickRateHz = 240
	h := newHarness(t, cfg)
	s := h.s

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- s.Run(ctx) }()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	agent := models.NewAgentID()
	balance, err := s.Join(callCtx, agent)
	require.NoError(t, err)
	assert.Zero(t, balance)
	require.NoError(t, s.Submit(callCtx, Command{Type: CmdPickUp, Agent: agent, Target: "c1"}))
	assert.ErrorIs(t, s.Submit(callCtx, Command{Type: CmdPickUp, Agent: agent, Target: "c1"}), carry.ErrPromptDisabled)
	require.NoError(t, s.Leave(callCtx, agent))
	_, ok := h.econ.Balance(agent)
	assert.False(t, ok)

	cancel()
	require.NoError(t, <-stopped)
	assert.ErrorIs(t, s.Submit(callCtx, Command{Type: CmdStand, Agent: agent}), ErrClosed)
	require.NoError(t, s.Close(callCtx))
}

func TestJoinRollsBackLedgerWhenBodyCannotSpawn(t *testing.T) {
	h := newHarness(t, testConfig())
	s := h.s

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	agent := models.NewAgentID()
	_, err := s.Join(callCtx, agent)
	require.ErrorIs(t, err, ErrClosed)
	_, ok := h.econ.Balance(agent)
	assert.False(t, ok)
	_, ok = h.econ.FirstEligible()
	assert.False(t, ok)
}

func TestJoinRejectsOpenLedger(t *testing.T) {
	h := newHarness(t, testConfig())
	agent := h.join(t)
	h.econ.AddScore(agent, 30)

	_, err := h.s.Join(context.Background(), agent)
	require.ErrorIs(t, err, economy.ErrAlreadyJoined)
	balance, ok := h.econ.Balance(agent)
	require.True(t, ok)
	assert.EqualValues(t, 30, balance)
}
