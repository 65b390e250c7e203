package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
)

func TestPerCarryableGrace(t *testing.T) {
	w := host.NewWorld(log.Nop())
	d := New(w, PerCarryable)

	assert.True(t, d.TryEnter(1))
	assert.False(t, d.TryEnter(1))
	assert.True(t, d.TryEnter(2), "other carryables are unaffected")

	d.ScheduleExit(1, time.Second)
	w.Step(500 * time.Millisecond)
	assert.False(t, d.TryEnter(1))

	w.Step(500 * time.Millisecond)
	assert.True(t, d.TryEnter(1))
}

func TestFixtureWideRejectsEveryone(t *testing.T) {
	w := host.NewWorld(log.Nop())
	d := New(w, FixtureWide)

	assert.True(t, d.TryEnter(1))
	assert.False(t, d.TryEnter(2))

	d.ScheduleExit(1, 100*time.Millisecond)
	w.Step(100 * time.Millisecond)
	assert.True(t, d.TryEnter(2))
}

func TestLateExitIsHarmless(t *testing.T) {
	w := host.NewWorld(log.Nop())
	d := New(w, PerCarryable)

	d.ScheduleExit(models.EntityID(9), time.Millisecond)
	w.Step(time.Millisecond)
	assert.True(t, d.TryEnter(9))
}

func TestDisabledFlag(t *testing.T) {
	d := New(host.NewWorld(log.Nop()), PerCarryable)
	assert.False(t, d.Disabled())
	d.SetDisabled(true)
	assert.True(t, d.Disabled())
}
