package host

import (
	"cmp"
	"slices"
	"time"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// TickFunc runs once per Step, before integration.
type TickFunc func(dt time.Duration)

type ticker struct {
	fn     TickFunc
	active bool
}

func (t *ticker) Cancel() { t.active = false }

// OnTick registers fn to run every frame until the returned subscription is
// cancelled.
func (w *World) OnTick(fn TickFunc) Subscription {
	t := &ticker{fn: fn, active: true}
	w.tickers = append(w.tickers, t)
	return t
}

// Step advances the world by dt: per-frame hooks, velocity integration,
// contact detection, then due timers.
func (w *World) Step(dt time.Duration) {
	w.frame++
	w.clock += dt

	w.tickers = slices.DeleteFunc(w.tickers, func(t *ticker) bool { return !t.active })
	for _, t := range slices.Clone(w.tickers) {
		if t.active {
			t.fn(dt)
		}
	}

	w.integrate(dt)
	w.detectContacts()

	if ran := w.timers.RunDue(); ran > 0 {
		w.logger.Debug("timers fired", log.Int("count", ran), log.Uint64("frame", w.frame))
	}
}

// integrate moves free parts by their velocity and then clears it; anything
// that wants sustained motion (conveyors) re-applies velocity every frame.
func (w *World) integrate(dt time.Duration) {
	secs := dt.Seconds()
	ids := make([]models.EntityID, 0, len(w.parts))
	for id, p := range w.parts {
		if p.anchored || p.velocity == (physics.Vec3{}) || len(w.jointsByPart[id]) > 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p, ok := w.parts[id]
		if !ok {
			continue
		}
		_ = w.SetPose(id, p.pose.Translate(p.velocity.Scale(secs)))
		p.velocity = physics.Vec3{}
	}
}

// detectContacts fires a contact for every pair that started overlapping this
// frame. Parts in the same assembly (shared model root or joined) never touch.
func (w *World) detectContacts() {
	assembly := w.assemblies()
	current := make(map[pairKey]struct{})
	for id, p := range w.parts {
		if p.noTouch || !w.contacts.hasSubscribers(id) {
			continue
		}
		bounds := p.volume().Bounds()
		for _, other := range w.grid.query(bounds) {
			if other == id {
				continue
			}
			op := w.parts[other]
			if op.noTouch || assembly.find(id) == assembly.find(other) {
				continue
			}
			if op.volume().Bounds().Intersects(bounds) {
				current[makePair(id, other)] = struct{}{}
			}
		}
	}

	var fresh []pairKey
	for k := range current {
		if _, was := w.contacts.touching[k]; !was {
			fresh = append(fresh, k)
		}
	}
	w.contacts.touching = current
	slices.SortFunc(fresh, func(x, y pairKey) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		return cmp.Compare(x.b, y.b)
	})
	for _, k := range fresh {
		w.Touch(k.a, k.b)
	}
}

type unionFind map[models.EntityID]models.EntityID

func (u unionFind) find(id models.EntityID) models.EntityID {
	root, ok := u[id]
	if !ok || root == id {
		return id
	}
	r := u.find(root)
	u[id] = r
	return r
}

func (u unionFind) union(a, b models.EntityID) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u[ra] = rb
	}
}

func (w *World) assemblies() unionFind {
	u := make(unionFind, len(w.parts))
	for id := range w.parts {
		u.union(id, w.Root(id))
	}
	for _, j := range w.joints {
		u.union(j.Part0, j.Part1)
	}
	return u
}
