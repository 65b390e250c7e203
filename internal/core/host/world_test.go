package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

func cube(name string, pos physics.Vec3, tags ...string) PartSpec {
	return PartSpec{Name: name, Tags: tags, Pose: physics.At(pos), Size: physics.V(1, 1, 1)}
}

func TestHierarchyAndTags(t *testing.T) {
	w := NewWorld(nil)
	root := w.AddPart(cube("Rack", physics.V(0, 0, 0), models.TagRack))
	child := w.AddPart(PartSpec{Name: "Leg", Parent: root, Size: physics.V(1, 1, 1)})

	assert.Equal(t, root, w.Parent(child))
	assert.Equal(t, []models.EntityID{child}, w.Children(root))
	assert.Equal(t, root, w.Root(child))
	assert.True(t, w.HasTag(root, models.TagRack))
	assert.False(t, w.HasTag(child, models.TagRack))

	require.ErrorIs(t, w.SetParent(root, child), ErrParentCycle)
	require.NoError(t, w.SetParent(child, models.NoEntity))
	assert.Empty(t, w.Children(root))
}

func TestSetPoseCarriesChildrenAndJoinedParts(t *testing.T) {
	w := NewWorld(nil)
	pallet := w.AddPart(cube("Pallet", physics.V(0, 0, 0), models.TagPallet))
	crate := w.AddPart(cube("Crate", physics.V(0, 1, 0), models.TagCrate))
	_, err := w.CreateJoint(crate, pallet)
	require.NoError(t, err)

	require.NoError(t, w.SetPose(pallet, physics.At(physics.V(10, 0, 0))))
	pose, _ := w.Pose(crate)
	assert.True(t, pose.Pos.ApproxEqual(physics.V(10, 1, 0), 1e-9))
}

func TestJointQueries(t *testing.T) {
	w := NewWorld(nil)
	a := w.AddPart(cube("A", physics.V(0, 0, 0)))
	b := w.AddPart(cube("B", physics.V(0, 0, 0)))

	_, err := w.CreateJoint(a, a)
	require.ErrorIs(t, err, ErrSelfJoint)

	j, err := w.CreateJoint(a, b)
	require.NoError(t, err)
	assert.Len(t, w.JointsTo(b), 1)
	assert.Len(t, w.JointsFrom(a), 1)
	assert.Empty(t, w.JointsTo(a))

	w.Destroy(a)
	assert.False(t, w.JointExists(j))
	assert.Empty(t, w.JointsTo(b))
}

func TestOverlapExcludesDescendants(t *testing.T) {
	w := NewWorld(nil)
	vehicle := w.AddPart(cube("Forklift", physics.V(0, 0, 0)))
	probe := w.AddPart(PartSpec{Name: "Probe", Parent: vehicle, Pose: physics.At(physics.V(0, 0, 0)), Size: physics.V(2, 2, 2), NoTouch: true})
	pallet := w.AddPart(cube("Pallet", physics.V(0.5, 0, 0)))
	w.AddPart(cube("Far", physics.V(50, 0, 0)))

	got := w.Overlap(physics.Volume{Pose: physics.At(physics.V(0, 0, 0)), Size: physics.V(2, 2, 2)}, vehicle)
	assert.Equal(t, []models.EntityID{pallet}, got)
	assert.NotContains(t, got, probe)
}

func TestContactsFireOnOverlapStartOnly(t *testing.T) {
	w := NewWorld(nil)
	rack := w.AddPart(PartSpec{Name: "Rack", Pose: physics.At(physics.V(0, 0, 0)), Size: physics.V(2, 2, 2), Anchored: true})
	crate := w.AddPart(cube("Crate", physics.V(5, 0, 0)))

	var hits []models.EntityID
	w.OnContact(rack, func(c Contact) { hits = append(hits, c.Other) })

	w.Step(time.Millisecond)
	assert.Empty(t, hits)

	require.NoError(t, w.SetPose(crate, physics.At(physics.V(1, 0, 0))))
	w.Step(time.Millisecond)
	w.Step(time.Millisecond)
	assert.Equal(t, []models.EntityID{crate}, hits, "a sustained overlap is one contact")

	require.NoError(t, w.SetPose(crate, physics.At(physics.V(9, 0, 0))))
	w.Step(time.Millisecond)
	require.NoError(t, w.SetPose(crate, physics.At(physics.V(1, 0, 0))))
	w.Step(time.Millisecond)
	assert.Len(t, hits, 2, "leaving and re-entering is a new contact")
}

func TestJoinedPartsDoNotTouch(t *testing.T) {
	w := NewWorld(nil)
	rack := w.AddPart(PartSpec{Name: "Rack", Size: physics.V(2, 2, 2), Anchored: true})
	crate := w.AddPart(cube("Crate", physics.V(0, 0, 0)))
	_, err := w.CreateJoint(crate, rack)
	require.NoError(t, err)

	fired := 0
	w.OnContact(rack, func(Contact) { fired++ })
	w.Step(time.Millisecond)
	assert.Zero(t, fired)
}

func TestSchedulerOrderAndNoCancellation(t *testing.T) {
	w := NewWorld(nil)
	var order []string
	w.After(2*time.Second, func() { order = append(order, "late") })
	w.After(time.Second, func() { order = append(order, "first") })
	w.After(time.Second, func() { order = append(order, "second") })

	w.Step(500 * time.Millisecond)
	assert.Empty(t, order)
	w.Step(500 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, order)
	w.Step(time.Second)
	assert.Equal(t, []string{"first", "second", "late"}, order)
	assert.Zero(t, w.Scheduler().Pending())
}

func TestIntegrateMovesOnlyFreeParts(t *testing.T) {
	w := NewWorld(nil)
	free := w.AddPart(cube("Free", physics.V(0, 0, 0)))
	anchored := w.AddPart(PartSpec{Name: "Fixed", Size: physics.V(1, 1, 1), Anchored: true})

	w.SetVelocity(free, physics.V(2, 0, 0))
	w.SetVelocity(anchored, physics.V(2, 0, 0))
	w.Step(time.Second)

	p, _ := w.Pose(free)
	assert.InDelta(t, 2, p.Pos.X, 1e-9)
	q, _ := w.Pose(anchored)
	assert.InDelta(t, 0, q.Pos.X, 1e-9)
	assert.Equal(t, physics.Vec3{}, w.Velocity(free), "velocity is cleared after integration")
}

func TestDestroyRunsHooksAndRemovesSubtree(t *testing.T) {
	w := NewWorld(nil)
	root := w.AddPart(cube("Pallet", physics.V(0, 0, 0)))
	child := w.AddPart(PartSpec{Name: "Board", Parent: root, Size: physics.V(1, 1, 1)})
	called := 0
	w.OnDestroying(child, func() { called++ })

	w.Destroy(root)
	assert.False(t, w.Exists(root))
	assert.False(t, w.Exists(child))
	assert.Equal(t, 1, called)
	assert.Zero(t, w.PartCount())
}
