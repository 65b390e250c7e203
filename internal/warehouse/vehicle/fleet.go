package vehicle

import (
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
	"github.com/zeusync/warehouse/internal/warehouse/probe"
)

type (
	// Handle indexes a vehicle in its Fleet.
	Handle int
	// ProbeHandle indexes a probe in its Fleet.
	ProbeHandle int
)

// Fleet owns every vehicle and probe. Vehicles and probes never point at each
// other directly: Link records handles after both sides exist.
type Fleet struct {
	space    Space
	notifier DrivingNotifier
	logger   log.Log

	vehicles []*Vehicle
	probes   []*probe.Detector
	seated   map[models.AgentID]Handle
	tick     host.Subscription
}

func NewFleet(space Space, notifier DrivingNotifier, logger log.Log) *Fleet {
	if logger == nil {
		logger = log.Nop()
	}
	return &Fleet{
		space:    space,
		notifier: notifier,
		logger:   logger.With(log.String("component", "fleet")),
		seated:   make(map[models.AgentID]Handle),
	}
}

func (f *Fleet) AddVehicle(spec Spec) (Handle, error) {
	if !f.space.Exists(spec.Root) || !f.space.Exists(spec.Seat) {
		return -1, errors.Wrapf(fixture.ErrMissingDependency, "%s %s: seat", spec.Model, spec.Root)
	}
	v := &Vehicle{
		spec:     spec,
		handling: spec.Model.Handling(),
		fleet:    f,
		logger:   f.logger.With(log.Stringer("model", spec.Model), log.Stringer("vehicle", spec.Root)),
	}
	f.vehicles = append(f.vehicles, v)
	return Handle(len(f.vehicles) - 1), nil
}

func (f *Fleet) AddProbe(d *probe.Detector) ProbeHandle {
	f.probes = append(f.probes, d)
	return ProbeHandle(len(f.probes) - 1)
}

// Link attaches probe p to vehicle h. The probe stops seeing the vehicle's
// own parts.
func (f *Fleet) Link(h Handle, p ProbeHandle) error {
	v, err := f.Vehicle(h)
	if err != nil {
		return err
	}
	d, err := f.probe(p)
	if err != nil {
		return err
	}
	v.probes = append(v.probes, p)
	d.Exclude(v.spec.Root)
	return nil
}

// Validate checks every vehicle was linked to the probes its model needs.
func (f *Fleet) Validate() error {
	for _, v := range f.vehicles {
		if want := v.spec.Model.Probes(); len(v.probes) < want {
			return errors.Wrapf(fixture.ErrMissingDependency, "%s %s: %d of %d probes linked",
				v.spec.Model, v.spec.Root, len(v.probes), want)
		}
	}
	return nil
}

func (f *Fleet) Vehicle(h Handle) (*Vehicle, error) {
	if h < 0 || int(h) >= len(f.vehicles) {
		return nil, ErrUnknownHandle
	}
	return f.vehicles[h], nil
}

func (f *Fleet) probe(h ProbeHandle) (*probe.Detector, error) {
	if h < 0 || int(h) >= len(f.probes) {
		return nil, ErrUnknownHandle
	}
	return f.probes[h], nil
}

// Probes returns the detectors linked to h in link order.
func (f *Fleet) Probes(h Handle) []*probe.Detector {
	v, err := f.Vehicle(h)
	if err != nil {
		return nil
	}
	out := make([]*probe.Detector, 0, len(v.probes))
	for _, p := range v.probes {
		if d, err := f.probe(p); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Resolve finds the vehicle owning part.
func (f *Fleet) Resolve(part models.EntityID) (Handle, bool) {
	for cur := part; cur.Valid(); cur = f.space.Parent(cur) {
		for i, v := range f.vehicles {
			if v.spec.Root == cur {
				return Handle(i), true
			}
		}
	}
	return -1, false
}

// Sit puts agent in the vehicle's seat.
func (f *Fleet) Sit(h Handle, agent carry.AgentRef) error {
	if _, ok := f.seated[agent.ID]; ok {
		return ErrAlreadySeated
	}
	v, err := f.Vehicle(h)
	if err != nil {
		return err
	}
	if err = v.sit(agent); err != nil {
		return err
	}
	f.seated[agent.ID] = h
	return nil
}

// Stand takes agent out of whatever vehicle it occupies.
func (f *Fleet) Stand(agent models.AgentID) error {
	h, ok := f.seated[agent]
	if !ok {
		return ErrNotOccupant
	}
	delete(f.seated, agent)
	return f.vehicles[h].stand(agent)
}

// DriverInput routes a key event to the vehicle the agent occupies. Input from
// anyone else is rejected.
func (f *Fleet) DriverInput(agent models.AgentID, key Key, pressed bool) error {
	h, ok := f.seated[agent]
	if !ok {
		return ErrNotOccupant
	}
	return f.vehicles[h].input(key, pressed)
}

// Seated reports which vehicle agent occupies.
func (f *Fleet) Seated(agent models.AgentID) (Handle, bool) {
	h, ok := f.seated[agent]
	return h, ok
}

// Tick drives every occupied vehicle.
func (f *Fleet) Tick(dt time.Duration) {
	for _, v := range f.vehicles {
		v.drive(dt)
	}
}

// Start hooks driving into the frame loop.
func (f *Fleet) Start(ticker interface {
	OnTick(fn host.TickFunc) host.Subscription
}) {
	if f.tick == nil {
		f.tick = ticker.OnTick(f.Tick)
	}
}

func (f *Fleet) Len() int { return len(f.vehicles) }
