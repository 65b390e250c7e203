package spawner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

func newSpawner(t *testing.T, settings Settings) (*host.World, *Spawner, *[]physics.Vec3) {
	t.Helper()
	w := host.NewWorld(log.Nop())
	pad := w.AddPart(host.PartSpec{Name: "BoxSpawner", Tags: []string{models.TagSpawner}, Pose: physics.At(physics.V(0, 10, 0)), Size: physics.V(2, 0.2, 2), Anchored: true, NoTouch: true})
	var sizes []physics.Vec3
	factory := func(pose physics.Pose, size physics.Vec3) (models.EntityID, error) {
		sizes = append(sizes, size)
		return w.AddPart(host.PartSpec{Name: "Box", Tags: []string{models.TagCrate}, Pose: pose, Size: size, Anchored: true}), nil
	}
	s := New(pad, settings, w, factory, log.Nop())
	s.Start()
	return w, s, &sizes
}

func TestSpawnsEveryInterval(t *testing.T) {
	w, s, _ := newSpawner(t, DefaultSettings())

	for range 40 {
		w.Step(50 * time.Millisecond)
	}
	assert.Equal(t, 1, s.Live())

	w.Step(2 * time.Second)
	assert.Equal(t, 2, s.Live())

	s.Stop()
	w.Step(10 * time.Second)
	assert.Equal(t, 2, s.Live())
}

func TestLongFrameSpawnsOnce(t *testing.T) {
	w, s, _ := newSpawner(t, DefaultSettings())

	w.Step(10 * DefaultSettings().Interval)
	assert.Equal(t, 1, s.Live())

	w.Step(DefaultSettings().Interval / 2)
	assert.Equal(t, 1, s.Live(), "elapsed restarts after a spawn")
	w.Step(DefaultSettings().Interval / 2)
	assert.Equal(t, 2, s.Live())
}

func TestLimitCountsOnlyLiveCrates(t *testing.T) {
	settings := DefaultSettings()
	settings.Limit = 1
	w, s, _ := newSpawner(t, settings)

	first, err := s.Spawn()
	require.NoError(t, err)
	_, err = s.Spawn()
	require.ErrorIs(t, err, ErrLimitReached)

	w.Destroy(first)
	_, err = s.Spawn()
	require.NoError(t, err)
}

func TestSizesAreDeterministicPerSeed(t *testing.T) {
	settings := DefaultSettings()
	settings.Sizes = []physics.Vec3{physics.V(1, 1, 1), physics.V(2, 1, 2), physics.V(1, 2, 1)}
	settings.Seed = 99

	_, a, sa := newSpawner(t, settings)
	_, b, sb := newSpawner(t, settings)
	for range 8 {
		_, err := a.Spawn()
		require.NoError(t, err)
		_, err = b.Spawn()
		require.NoError(t, err)
	}
	assert.Equal(t, *sa, *sb)
}
