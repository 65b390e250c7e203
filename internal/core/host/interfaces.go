package host

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// The narrow interfaces below are what simulation components consume. World
// implements all of them; tests may substitute any single one.

type Posing interface {
	Pose(id models.EntityID) (physics.Pose, bool)
	SetPose(id models.EntityID, pose physics.Pose) error
	Size(id models.EntityID) (physics.Vec3, bool)
}

type Jointing interface {
	CreateJoint(part0, part1 models.EntityID) (models.JointID, error)
	DestroyJoint(id models.JointID)
	JointExists(id models.JointID) bool
	// JointsTo lists joints whose Part1 (the carrier side) is id, by JointID.
	JointsTo(id models.EntityID) []Joint
	// JointsFrom lists joints whose Part0 (the attached side) is id, by JointID.
	JointsFrom(id models.EntityID) []Joint
}

type Hierarchy interface {
	Exists(id models.EntityID) bool
	Name(id models.EntityID) string
	HasTag(id models.EntityID, tag string) bool
	Parent(id models.EntityID) models.EntityID
	SetParent(id, parent models.EntityID) error
	Children(id models.EntityID) []models.EntityID
}

type Querying interface {
	// Overlap returns every part whose bounds intersect vol, ordered by id.
	// Excluded ids and their descendants are filtered out.
	Overlap(vol physics.Volume, exclude ...models.EntityID) []models.EntityID
}

type Contacts interface {
	OnContact(id models.EntityID, handler ContactHandler) Subscription
}

// Timers schedules deferred work on simulated time. Tasks cannot be cancelled
// and their completion is not observable.
type Timers interface {
	After(delay time.Duration, fn func())
	Now() time.Duration
}

type Lifecycle interface {
	Destroy(id models.EntityID)
	OnDestroying(id models.EntityID, fn func())
}

// Space is the whole spatial-host boundary.
type Space interface {
	Posing
	Jointing
	Hierarchy
	Querying
	Contacts
	Timers
	Lifecycle
}

// Joint rigidly connects Part0 to Part1. Part1 is the carrier.
type Joint struct {
	ID    models.JointID
	Part0 models.EntityID
	Part1 models.EntityID
}

// Contact is delivered to the subscriber registered on Self.
type Contact struct {
	Self  models.EntityID
	Other models.EntityID
}

type ContactHandler func(Contact)

type Subscription interface {
	Cancel()
}

// PartSpec describes a part to add to the world.
type PartSpec struct {
	Name   string
	Tags   []string
	Pose   physics.Pose
	Size   physics.Vec3
	Parent models.EntityID
	// Anchored parts never integrate velocity.
	Anchored bool
	// NoTouch parts never raise contacts (probes, invisible volumes).
	NoTouch bool
}
