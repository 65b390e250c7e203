// Package debounce suppresses duplicate contact processing while an attach
// for the same carryable is still settling.
package debounce

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
)

type Mode uint8

const (
	// PerCarryable tracks in-flight carryables individually.
	PerCarryable Mode = iota
	// FixtureWide holds one flag for the whole fixture: while any entry is in
	// flight every other carryable is rejected as well.
	FixtureWide
)

// Debouncer is owned by one fixture. Exits run on the host scheduler and
// cannot be cancelled.
type Debouncer struct {
	timers   host.Timers
	mode     Mode
	inFlight map[models.EntityID]struct{}
	busy     bool
	disabled bool
}

func New(timers host.Timers, mode Mode) *Debouncer {
	return &Debouncer{
		timers:   timers,
		mode:     mode,
		inFlight: make(map[models.EntityID]struct{}),
	}
}

// TryEnter admits id unless it (or, fixture-wide, anything) is in flight.
func (d *Debouncer) TryEnter(id models.EntityID) bool {
	if d.mode == FixtureWide {
		if d.busy {
			return false
		}
		d.busy = true
		return true
	}
	if _, ok := d.inFlight[id]; ok {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

// ScheduleExit releases id after delay regardless of how its attach went.
func (d *Debouncer) ScheduleExit(id models.EntityID, delay time.Duration) {
	d.timers.After(delay, func() { d.exit(id) })
}

func (d *Debouncer) exit(id models.EntityID) {
	if d.mode == FixtureWide {
		d.busy = false
		return
	}
	delete(d.inFlight, id)
}

// SetDisabled locks the fixture administratively. Callers check Disabled
// before consulting TryEnter.
func (d *Debouncer) SetDisabled(disabled bool) { d.disabled = disabled }

func (d *Debouncer) Disabled() bool { return d.disabled }
