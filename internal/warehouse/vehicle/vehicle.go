// Package vehicle implements drivable vehicles: seat occupancy, driver input
// and the pallet probes they carry.
package vehicle

import (
	stderrors "errors"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
)

type Space interface {
	host.Posing
	host.Jointing
	host.Hierarchy
}

// DrivingNotifier tells a client it started or stopped driving.
type DrivingNotifier interface {
	ToggleDriving(agent models.AgentID, driving bool)
}

// Spec places a vehicle in the world.
type Spec struct {
	Model Model
	Root  models.EntityID
	Seat  models.EntityID
}

// Vehicle is one drivable model. Probes are linked afterwards through the
// owning Fleet.
type Vehicle struct {
	spec     Spec
	handling Handling
	fleet    *Fleet
	logger   log.Log

	occupant  carry.AgentRef
	seatJoint models.JointID
	probes    []ProbeHandle

	throttle   float64
	steer      float64
	actuator   Actuator
	headlights bool
}

func (v *Vehicle) Model() Model { return v.spec.Model }

func (v *Vehicle) Root() models.EntityID { return v.spec.Root }

func (v *Vehicle) Seat() models.EntityID { return v.spec.Seat }

func (v *Vehicle) Occupant() (models.AgentID, bool) {
	return v.occupant.ID, v.occupant.ID.Valid()
}

// Actuator is the last commanded fork (forklift) or roof (semi-truck) target.
func (v *Vehicle) Actuator() Actuator { return v.actuator }

func (v *Vehicle) Headlights() bool { return v.headlights }

func (v *Vehicle) Throttle() float64 { return v.throttle }

func (v *Vehicle) Steer() float64 { return v.steer }

func (v *Vehicle) space() Space { return v.fleet.space }

func (v *Vehicle) sit(agent carry.AgentRef) error {
	if v.occupant.ID.Valid() {
		return ErrSeatTaken
	}
	seatPose, ok := v.space().Pose(v.spec.Seat)
	if !ok {
		return host.ErrUnknownEntity
	}
	seatSize, _ := v.space().Size(v.spec.Seat)
	bodySize, _ := v.space().Size(agent.Body)
	if err := v.space().SetPose(agent.Body, seatPose.Translate(physics.V(0, seatSize.Y/2+bodySize.Y/2, 0))); err != nil {
		return err
	}
	joint, err := v.space().CreateJoint(agent.Body, v.spec.Seat)
	if err != nil {
		return err
	}
	v.occupant, v.seatJoint = agent, joint
	v.occupancyChanged(agent.ID, true)
	return nil
}

func (v *Vehicle) stand(agent models.AgentID) error {
	if !v.occupant.ID.Valid() || v.occupant.ID != agent {
		return ErrNotOccupant
	}
	body := v.occupant.Body
	v.space().DestroyJoint(v.seatJoint)
	if seatPose, ok := v.space().Pose(v.spec.Seat); ok {
		side := seatPose.Rotate(physics.V(4, 0, 0))
		_ = v.space().SetPose(body, physics.Pose{Pos: seatPose.Pos.Add(side), Yaw: seatPose.Yaw})
	}
	v.occupant, v.seatJoint = carry.AgentRef{}, models.NoJoint
	v.occupancyChanged(agent, false)
	return nil
}

func (v *Vehicle) occupancyChanged(agent models.AgentID, occupied bool) {
	if !occupied {
		v.throttle, v.steer = 0, 0
		v.actuator = Hold
	}
	if v.spec.Model == Truck {
		v.headlights = occupied
	}
	v.logger.Info("occupancy changed", log.Stringer("agent", agent), log.Bool("occupied", occupied))
	v.fleet.notifier.ToggleDriving(agent, occupied)
}

// input applies one key event from the occupant.
func (v *Vehicle) input(key Key, pressed bool) error {
	switch key {
	case KeyW, KeyS:
		v.throttle = axis(pressed, key == KeyW)
		return nil
	case KeyA, KeyD:
		v.steer = axis(pressed, key == KeyD)
		return nil
	}

	direction := Hold
	var err error
	if pressed {
		switch v.spec.Model {
		case Forklift:
			switch key {
			case KeyQ:
				direction = Raise
			case KeyE:
				direction = Lower
			case KeyF:
				err = v.toggleLock()
			}
		case SemiTruck:
			switch key {
			case KeyQ:
				direction = Lower
			case KeyE:
				direction = Raise
			case KeyF:
				err = v.lockAll()
			case KeyG:
				v.unlockAll()
			}
		}
	}
	if v.spec.Model != Truck {
		v.actuator = direction
	}
	return err
}

func axis(pressed, positive bool) float64 {
	switch {
	case !pressed:
		return 0
	case positive:
		return 1
	default:
		return -1
	}
}

func (v *Vehicle) toggleLock() error {
	d, err := v.fleet.probe(v.probes[0])
	if err != nil {
		return err
	}
	if d.IsLocked() {
		d.TryUnlock()
		return nil
	}
	return d.TryLock()
}

func (v *Vehicle) lockAll() error {
	var errs []error
	for _, h := range v.probes {
		d, err := v.fleet.probe(h)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err = d.TryLock(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(stderrors.Join(errs...), "vehicle: lock probes")
	}
	return nil
}

func (v *Vehicle) unlockAll() {
	for _, h := range v.probes {
		if d, err := v.fleet.probe(h); err == nil {
			d.TryUnlock()
		}
	}
}

// drive moves the whole assembly kinematically: the seat, its driver, probes
// and welded pallets follow the root.
func (v *Vehicle) drive(dt time.Duration) {
	if !v.occupant.ID.Valid() || v.throttle == 0 {
		return
	}
	pose, ok := v.space().Pose(v.spec.Root)
	if !ok {
		return
	}
	secs := dt.Seconds()
	pose.Yaw -= v.steer * v.handling.SteerRate * secs * v.throttle
	pose.Pos = pose.Pos.Add(pose.LookVector().Scale(v.throttle * v.handling.MaxSpeed * secs))
	_ = v.space().SetPose(v.spec.Root, pose)
}
