package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookVectorDefaultsToNegativeZ(t *testing.T) {
	assert.True(t, Pose{}.LookVector().ApproxEqual(V(0, 0, -1), 1e-9))
	quarter := Pose{Yaw: math.Pi / 2}
	assert.True(t, quarter.LookVector().ApproxEqual(V(-1, 0, 0), 1e-9))
}

func TestMulAndToLocalAreInverse(t *testing.T) {
	parent := Pose{Pos: V(3, 1, -2), Yaw: 0.7}
	local := Pose{Pos: V(0.5, 2, 1), Yaw: -0.2}
	world := parent.Mul(local)
	back := parent.ToLocal(world)
	assert.True(t, back.Pos.ApproxEqual(local.Pos, 1e-9))
	assert.InDelta(t, local.Yaw, back.Yaw, 1e-9)
}

func TestRotatedBoundsGrow(t *testing.T) {
	v := Volume{Pose: Pose{Yaw: math.Pi / 4}, Size: V(2, 2, 2)}
	b := v.Bounds()
	assert.InDelta(t, math.Sqrt2, b.Max.X, 1e-9)
	assert.InDelta(t, 1, b.Max.Y, 1e-9)
}

func TestOverlaps(t *testing.T) {
	a := Volume{Pose: At(V(0, 0, 0)), Size: V(2, 2, 2)}
	b := Volume{Pose: At(V(1.5, 0, 0)), Size: V(2, 2, 2)}
	c := Volume{Pose: At(V(5, 0, 0)), Size: V(2, 2, 2)}
	assert.True(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, c))
}
