package collector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
)

type award struct {
	agent  models.AgentID
	amount int64
}

type ledger struct {
	agents []models.AgentID
	awards []award
}

func (l *ledger) FirstEligible() (models.AgentID, bool) {
	if len(l.agents) == 0 {
		return models.NoAgent, false
	}
	return l.agents[0], true
}

func (l *ledger) AddScore(agent models.AgentID, amount int64) {
	l.awards = append(l.awards, award{agent, amount})
}

type env struct {
	world     *host.World
	crates    *carry.Registry
	fixtures  *fixture.Registry
	ledger    *ledger
	collector *Collector
}

func newEnv(t *testing.T) *env {
	t.Helper()
	w := host.NewWorld(log.Nop())
	e := &env{
		world:    w,
		crates:   carry.NewRegistry(w),
		fixtures: fixture.NewRegistry(w),
		ledger:   &ledger{agents: []models.AgentID{models.NewAgentID(), models.NewAgentID()}},
	}
	id := w.AddPart(host.PartSpec{Name: "BoxCollector", Tags: []string{models.TagCollector}, Pose: physics.At(physics.V(0, 0, 0)), Size: physics.V(4, 2, 4), Anchored: true})
	c, err := New(id, DefaultSettings(), Deps{Space: w, Crates: e.crates, Fixtures: e.fixtures, Roster: e.ledger, Scorer: e.ledger})
	require.NoError(t, err)
	e.collector = c
	return e
}

func (e *env) crate(pos physics.Vec3) *carry.Carryable {
	c := carry.New(e.world.AddPart(host.PartSpec{Name: "Box", Tags: []string{models.TagCrate}, Pose: physics.At(pos), Size: physics.V(1, 1, 1)}), e.world)
	e.crates.Add(c)
	return c
}

func (e *env) pallet(t *testing.T, pos physics.Vec3, slots int) *fixture.Fixture {
	t.Helper()
	return e.storage(t, fixture.Pallet, pos, slots)
}

func (e *env) storage(t *testing.T, kind fixture.Kind, pos physics.Vec3, slots int) *fixture.Fixture {
	t.Helper()
	root := e.world.AddPart(host.PartSpec{Name: kind.String(), Tags: []string{kind.Tag()}, Pose: physics.At(pos), Size: physics.V(2, 0.2, 2), Anchored: kind != fixture.Pallet})
	for i := range slots {
		e.world.AddPart(host.PartSpec{
			Name:    fmt.Sprintf("Slot%d", i),
			Tags:    []string{models.TagAttachment},
			Pose:    physics.At(pos.Add(physics.V(0, float64(i), 0))),
			Parent:  root,
			NoTouch: true,
		})
	}
	f, err := fixture.New(root, fixture.DefaultSettings(kind), e.world, e.crates, log.Nop())
	require.NoError(t, err)
	e.fixtures.Add(f)
	return f
}

func TestCrateScoresUnitValueAndFades(t *testing.T) {
	e := newEnv(t)
	c := e.crate(physics.V(10, 0, 0))

	amount, err := e.collector.HandleContact(c.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 10, amount)
	require.Len(t, e.ledger.awards, 1)
	assert.Equal(t, award{e.ledger.agents[0], 10}, e.ledger.awards[0])

	assert.True(t, e.world.Anchored(c.ID()))
	assert.False(t, e.world.CanCollide(c.ID()))

	e.world.Step(time.Second)
	assert.InDelta(t, 0.5, e.world.Transparency(c.ID()), 1e-9)
	assert.True(t, e.world.Exists(c.ID()))

	e.world.Step(time.Second)
	assert.False(t, e.world.Exists(c.ID()))
}

func TestLoadedFixtureScoresPerOccupant(t *testing.T) {
	e := newEnv(t)
	p := e.pallet(t, physics.V(20, 0, 0), 4)
	for i := range 4 {
		require.NoError(t, p.HandleContact(e.crate(physics.V(30+2*float64(i), 0, 0)).ID()))
	}
	children := e.world.Children(p.Root())

	amount, err := e.collector.HandleContact(p.Root())
	require.NoError(t, err)
	assert.EqualValues(t, 40, amount)
	require.Len(t, e.ledger.awards, 1)
	assert.EqualValues(t, 40, e.ledger.awards[0].amount)
	assert.False(t, p.Enabled())

	e.world.Step(2 * time.Second)
	assert.False(t, e.world.Exists(p.Root()))
	for _, child := range children {
		assert.False(t, e.world.Exists(child))
	}
	_, ok := e.fixtures.Get(p.Root())
	assert.False(t, ok)
}

func TestStoredCrateConsumesItsFixture(t *testing.T) {
	e := newEnv(t)
	p := e.pallet(t, physics.V(20, 0, 0), 2)
	a, b := e.crate(physics.V(30, 0, 0)), e.crate(physics.V(32, 0, 0))
	require.NoError(t, p.HandleContact(a.ID()))
	require.NoError(t, p.HandleContact(b.ID()))

	amount, err := e.collector.HandleContact(b.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 20, amount)

	_, err = e.collector.HandleContact(a.ID())
	require.ErrorIs(t, err, ErrAlreadyConsumed)
	assert.Len(t, e.ledger.awards, 1)
}

func TestRackCrateIsCollectedAlone(t *testing.T) {
	e := newEnv(t)
	rack := e.storage(t, fixture.Rack, physics.V(20, 0, 0), 2)
	a, b := e.crate(physics.V(30, 0, 0)), e.crate(physics.V(32, 0, 0))
	require.NoError(t, rack.HandleContact(a.ID()))
	require.NoError(t, rack.HandleContact(b.ID()))

	amount, err := e.collector.HandleContact(b.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 10, amount)
	assert.Equal(t, 1, rack.Count())
	assert.True(t, rack.Enabled())
	assert.Equal(t, models.NoEntity, e.world.Parent(b.ID()))
	assert.Equal(t, carry.BindFixture, a.Binding().Kind)

	e.world.Step(2 * time.Second)
	assert.False(t, e.world.Exists(b.ID()))
	assert.True(t, e.world.Exists(a.ID()))
	assert.True(t, e.world.Exists(rack.Root()))
}

func TestEmptyFixtureIsIgnored(t *testing.T) {
	e := newEnv(t)
	p := e.pallet(t, physics.V(20, 0, 0), 2)

	_, err := e.collector.HandleContact(p.Root())
	require.ErrorIs(t, err, ErrEmptyFixture)
	assert.True(t, e.world.Exists(p.Root()))
	assert.True(t, p.Enabled())
	assert.Empty(t, e.ledger.awards)
}

func TestCrateIsCreditedOnce(t *testing.T) {
	e := newEnv(t)
	c := e.crate(physics.V(10, 0, 0))
	_, err := e.collector.HandleContact(c.ID())
	require.NoError(t, err)
	_, err = e.collector.HandleContact(c.ID())
	require.ErrorIs(t, err, ErrAlreadyConsumed)
	assert.Len(t, e.ledger.awards, 1)
}

func TestCarriedCrateIsReleased(t *testing.T) {
	e := newEnv(t)
	body := e.world.AddPart(host.PartSpec{Name: "UpperTorso", Pose: physics.At(physics.V(-10, 3, 0)), Size: physics.V(2, 2, 1)})
	c := e.crate(physics.V(10, 0, 0))
	require.NoError(t, c.AttachToAgent(carry.AgentRef{ID: e.ledger.agents[1], Body: body}))

	_, err := e.collector.HandleContact(c.ID())
	require.NoError(t, err)
	assert.Empty(t, e.world.JointsTo(body))
}

func TestNoEligibleAgentStillConsumes(t *testing.T) {
	e := newEnv(t)
	e.ledger.agents = nil
	c := e.crate(physics.V(10, 0, 0))

	amount, err := e.collector.HandleContact(c.ID())
	require.ErrorIs(t, err, ErrNoEligibleAgent)
	assert.EqualValues(t, 10, amount)
	e.world.Step(2 * time.Second)
	assert.False(t, e.world.Exists(c.ID()))
}

func TestUnknownContact(t *testing.T) {
	e := newEnv(t)
	wall := e.world.AddPart(host.PartSpec{Name: "Wall", Size: physics.V(1, 1, 1)})
	_, err := e.collector.HandleContact(wall)
	require.ErrorIs(t, err, ErrNotCollectable)
}

func TestFreeCrateSlidingIntoCollector(t *testing.T) {
	e := newEnv(t)
	c := e.crate(physics.V(3, 0, 0))
	e.world.SetVelocity(c.ID(), physics.V(-60, 0, 0))

	e.world.Step(time.Second / 60)
	require.Len(t, e.ledger.awards, 1)
}

func TestNewRequiresDependencies(t *testing.T) {
	w := host.NewWorld(log.Nop())
	_, err := New(1, DefaultSettings(), Deps{Space: w})
	require.ErrorIs(t, err, fixture.ErrMissingDependency)
}
