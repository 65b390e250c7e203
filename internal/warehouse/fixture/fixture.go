// Package fixture implements storage fixtures: racks, pallets and shelves that
// take carryables into discrete slots on contact.
package fixture

import (
	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/debounce"
	"github.com/zeusync/warehouse/internal/warehouse/slots"
)

// Space is the slice of the spatial host a fixture needs.
type Space interface {
	host.Posing
	host.Jointing
	host.Hierarchy
	host.Contacts
	host.Timers
}

// CarryableResolver maps a contacted part to its carryable.
type CarryableResolver interface {
	Resolve(part models.EntityID) (*carry.Carryable, bool)
}

// Fixture composes a slot allocator, a debouncer and the attachment points
// discovered under its root part.
type Fixture struct {
	root       models.EntityID
	settings   Settings
	space      Space
	carryables CarryableResolver
	alloc      *slots.Allocator[*carry.Carryable]
	debouncer  *debounce.Debouncer
	logger     log.Log
	contactSub host.Subscription
	take       bool
}

// New discovers the slots under root and subscribes to its contacts.
func New(root models.EntityID, settings Settings, space Space, carryables CarryableResolver, logger log.Log) (*Fixture, error) {
	if space == nil || carryables == nil {
		return nil, errors.Wrapf(ErrMissingDependency, "%s %s", settings.Kind, root)
	}
	if logger == nil {
		logger = log.Nop()
	}
	points, err := slots.Discover(space, root)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingDependency, "%s %s: %v", settings.Kind, root, err)
	}

	f := &Fixture{
		root:       root,
		settings:   settings,
		space:      space,
		carryables: carryables,
		alloc:      slots.NewAllocator[*carry.Carryable](settings.Policy),
		debouncer:  debounce.New(space, settings.Debounce),
		logger: logger.With(
			log.String("component", "fixture"),
			log.Stringer("kind", settings.Kind),
			log.Stringer("root", root),
		),
	}
	if err = f.alloc.RegisterPoints(points); err != nil {
		return nil, errors.Wrapf(err, "%s %s", settings.Kind, root)
	}
	f.alloc.OnOccupancyChange(func(bool) { f.refreshTake() })
	f.contactSub = space.OnContact(root, func(c host.Contact) {
		if err := f.HandleContact(c.Other); err != nil {
			f.logger.Debug("contact ignored", log.Stringer("other", c.Other), log.Error(err))
		}
	})
	f.logger.Info("fixture registered", log.Int("slots", f.alloc.Capacity()))
	return f, nil
}

func (f *Fixture) Root() models.EntityID { return f.root }

func (f *Fixture) Kind() Kind { return f.settings.Kind }

func (f *Fixture) Capacity() int { return f.alloc.Capacity() }

// Count is the number of stored carryables.
func (f *Fixture) Count() int { return f.alloc.Count() }

func (f *Fixture) Occupants() []*carry.Carryable { return f.alloc.Occupants() }

func (f *Fixture) Points() []slots.Point { return f.alloc.Points() }

// TakeEnabled reports whether the take interaction is currently offered.
func (f *Fixture) TakeEnabled() bool { return f.take }

func (f *Fixture) Enabled() bool { return !f.debouncer.Disabled() }

// SetEnabled locks or unlocks the fixture. While disabled every contact and
// take is ignored.
func (f *Fixture) SetEnabled(enabled bool) {
	f.debouncer.SetDisabled(!enabled)
	f.refreshTake()
}

func (f *Fixture) refreshTake() {
	f.take = f.settings.Take && f.Enabled() && f.alloc.Count() > 0
}

// HandleContact stores the carryable owning part in the next free slot.
func (f *Fixture) HandleContact(part models.EntityID) error {
	if f.debouncer.Disabled() {
		return ErrDisabled
	}
	c, ok := f.carryables.Resolve(part)
	if !ok {
		return carry.ErrNotCarryable
	}
	if c.Binding().Kind == carry.BindFixture {
		return ErrHeldByFixture
	}
	point, ok := f.alloc.FindFree()
	if !ok {
		return slots.ErrNoFreeSlot
	}
	if !f.debouncer.TryEnter(c.ID()) {
		return ErrDebounced
	}
	f.debouncer.ScheduleExit(c.ID(), f.settings.Grace)

	rootPose, ok := f.space.Pose(f.root)
	if !ok {
		return host.ErrUnknownEntity
	}
	size, _ := f.space.Size(c.ID())
	pose := point.World(rootPose).Translate(physics.V(0, size.Y/2, 0))

	c.Detach()
	release := func() { f.alloc.Release(point) }
	if err := c.Attach(f.root, pose, carry.InFixture(f.root, release)); err != nil {
		return err
	}
	if err := f.alloc.Occupy(point, c); err != nil {
		c.Detach()
		return err
	}
	if err := f.space.SetParent(c.ID(), f.root); err != nil {
		f.logger.Warn("reparent failed", log.Stringer("carryable", c.ID()), log.Error(err))
	}
	f.logger.Debug("stored",
		log.Stringer("carryable", c.ID()),
		log.String("slot", point.Name),
		log.Int("count", f.alloc.Count()),
	)
	return nil
}

// Take moves the top-most stored carryable into the agent's hands.
func (f *Fixture) Take(agent carry.AgentRef) error {
	if f.debouncer.Disabled() {
		return ErrDisabled
	}
	if !f.settings.Take {
		return ErrNoTakeAffordance
	}
	point, c, ok := f.alloc.FindOccupied()
	if !ok {
		return slots.ErrNoOccupiedSlot
	}
	if len(f.space.JointsTo(agent.Body)) > 0 {
		return carry.ErrAgentBusy
	}

	c.Detach()
	err := c.AttachToAgent(agent)
	if perr := f.space.SetParent(c.ID(), models.NoEntity); perr != nil {
		f.logger.Warn("reparent failed", log.Stringer("carryable", c.ID()), log.Error(perr))
	}
	f.alloc.Release(point)
	if err != nil {
		return err
	}
	f.logger.Debug("taken",
		log.Stringer("carryable", c.ID()),
		log.Stringer("agent", agent.ID),
		log.String("slot", point.Name),
	)
	return nil
}

// Close stops reacting to contacts.
func (f *Fixture) Close() {
	if f.contactSub != nil {
		f.contactSub.Cancel()
	}
}
