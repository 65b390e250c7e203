package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

func TestDiscoverReadsAttachmentChildren(t *testing.T) {
	w := host.NewWorld(log.Nop())
	root := w.AddPart(host.PartSpec{Name: "Rack", Tags: []string{models.TagRack}, Pose: physics.Pose{Pos: physics.V(10, 0, 0), Yaw: 0.5}, Size: physics.V(4, 6, 2), Anchored: true})
	base := physics.Pose{Pos: physics.V(10, 0, 0), Yaw: 0.5}
	w.AddPart(host.PartSpec{Name: "Upper", Tags: []string{models.TagAttachment}, Pose: base.Mul(physics.At(physics.V(0, 3, 0))), Parent: root, NoTouch: true})
	w.AddPart(host.PartSpec{Name: "Frame", Pose: base, Parent: root})
	w.AddPart(host.PartSpec{Name: "Lower", Tags: []string{models.TagAttachment}, Pose: base.Mul(physics.At(physics.V(0, 1, 0))), Parent: root, NoTouch: true})

	pts, err := Discover(w, root)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "Upper", pts[0].Name)
	assert.InDelta(t, 3.0, pts[0].Key, 1e-9)
	assert.InDelta(t, 1.0, pts[1].Key, 1e-9)

	world := pts[1].World(base)
	assert.True(t, world.Pos.ApproxEqual(physics.V(10, 1, 0), 1e-9))
}

func TestDiscoverWithoutPoints(t *testing.T) {
	w := host.NewWorld(log.Nop())
	root := w.AddPart(host.PartSpec{Name: "Pallet", Size: physics.V(2, 0.2, 2)})
	_, err := Discover(w, root)
	require.ErrorIs(t, err, ErrNoAttachmentPoints)

	_, err = Discover(w, models.EntityID(999))
	require.ErrorIs(t, err, host.ErrUnknownEntity)
}
