// Package conveyor moves free parts resting on a belt.
package conveyor

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

type Space interface {
	host.Posing
	host.Querying
	host.Jointing
	Anchored(id models.EntityID) bool
	SetVelocity(id models.EntityID, v physics.Vec3)
	OnTick(fn host.TickFunc) host.Subscription
}

// contactDepth is how far above the belt surface a part still counts as
// resting on it.
const contactDepth = 0.5

// Belt pushes everything resting on it along its facing at Speed studs per
// second. Velocity is reapplied every tick because the host clears it after
// integrating.
type Belt struct {
	id    models.EntityID
	speed float64
	space Space
	sub   host.Subscription
}

func New(id models.EntityID, speed float64, space Space) *Belt {
	return &Belt{id: id, speed: speed, space: space}
}

func (b *Belt) Start() {
	if b.sub == nil {
		b.sub = b.space.OnTick(b.Tick)
	}
}

func (b *Belt) Stop() {
	if b.sub != nil {
		b.sub.Cancel()
		b.sub = nil
	}
}

// Riders are the free parts currently on the belt, by id.
func (b *Belt) Riders() []models.EntityID {
	pose, ok := b.space.Pose(b.id)
	if !ok {
		return nil
	}
	size, _ := b.space.Size(b.id)
	surface := physics.Volume{
		Pose: pose.Translate(physics.V(0, size.Y/2+contactDepth/2, 0)),
		Size: physics.V(size.X, contactDepth, size.Z),
	}
	var out []models.EntityID
	for _, id := range b.space.Overlap(surface, b.id) {
		if b.space.Anchored(id) || len(b.space.JointsFrom(id)) > 0 || len(b.space.JointsTo(id)) > 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (b *Belt) Tick(time.Duration) {
	pose, ok := b.space.Pose(b.id)
	if !ok {
		b.Stop()
		return
	}
	v := pose.LookVector().Scale(b.speed)
	for _, id := range b.Riders() {
		b.space.SetVelocity(id, v)
	}
}
