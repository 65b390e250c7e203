package host

import (
	"cmp"
	"slices"
	"time"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

var _ Space = (*World)(nil)

type part struct {
	id       models.EntityID
	name     string
	tags     map[string]struct{}
	pose     physics.Pose
	size     physics.Vec3
	parent   models.EntityID
	children []models.EntityID

	anchored     bool
	noTouch      bool
	canCollide   bool
	transparency float64
	velocity     physics.Vec3

	onDestroying []func()
}

func (p *part) volume() physics.Volume {
	return physics.Volume{Pose: p.pose, Size: p.size}
}

// World is an in-process spatial host. It is owned by one simulation loop and
// is not safe for concurrent use.
type World struct {
	logger log.Log

	parts      map[models.EntityID]*part
	nextEntity models.EntityID

	joints       map[models.JointID]Joint
	jointsByPart map[models.EntityID][]models.JointID
	nextJoint    models.JointID

	grid     *grid
	contacts *contactTable
	timers   *Scheduler
	tickers  []*ticker
	clock    time.Duration
	frame    uint64
}

func NewWorld(logger log.Log) *World {
	if logger == nil {
		logger = log.Nop()
	}
	w := &World{
		logger:       logger.With(log.String("component", "host")),
		parts:        make(map[models.EntityID]*part),
		joints:       make(map[models.JointID]Joint),
		jointsByPart: make(map[models.EntityID][]models.JointID),
		grid:         newGrid(defaultCellSize),
		contacts:     newContactTable(),
	}
	w.timers = NewScheduler(w.Now)
	return w
}

// AddPart inserts a part and returns its id.
func (w *World) AddPart(spec PartSpec) models.EntityID {
	w.nextEntity++
	p := &part{
		id:         w.nextEntity,
		name:       spec.Name,
		tags:       make(map[string]struct{}, len(spec.Tags)),
		pose:       spec.Pose,
		size:       spec.Size,
		anchored:   spec.Anchored,
		noTouch:    spec.NoTouch,
		canCollide: true,
	}
	for _, t := range spec.Tags {
		p.tags[t] = struct{}{}
	}
	w.parts[p.id] = p
	if spec.Parent.Valid() {
		if parent, ok := w.parts[spec.Parent]; ok {
			p.parent = parent.id
			parent.children = append(parent.children, p.id)
		}
	}
	w.grid.insert(p.id, p.volume().Bounds())
	return p.id
}

func (w *World) Exists(id models.EntityID) bool {
	_, ok := w.parts[id]
	return ok
}

func (w *World) Name(id models.EntityID) string {
	if p, ok := w.parts[id]; ok {
		return p.name
	}
	return ""
}

func (w *World) HasTag(id models.EntityID, tag string) bool {
	p, ok := w.parts[id]
	if !ok {
		return false
	}
	_, has := p.tags[tag]
	return has
}

func (w *World) Parent(id models.EntityID) models.EntityID {
	if p, ok := w.parts[id]; ok {
		return p.parent
	}
	return models.NoEntity
}

// SetParent moves id under parent in the hierarchy. It does not move the part
// or create joints. NoEntity reparents to the world root.
func (w *World) SetParent(id, parent models.EntityID) error {
	p, ok := w.parts[id]
	if !ok {
		return ErrUnknownEntity
	}
	if parent.Valid() {
		if _, ok := w.parts[parent]; !ok {
			return ErrUnknownEntity
		}
		for cur := parent; cur.Valid(); cur = w.parts[cur].parent {
			if cur == id {
				return ErrParentCycle
			}
		}
	}
	if p.parent == parent {
		return nil
	}
	if old, ok := w.parts[p.parent]; ok {
		old.children = slices.DeleteFunc(old.children, func(c models.EntityID) bool { return c == id })
	}
	p.parent = parent
	if parent.Valid() {
		w.parts[parent].children = append(w.parts[parent].children, id)
	}
	return nil
}

func (w *World) Children(id models.EntityID) []models.EntityID {
	if p, ok := w.parts[id]; ok {
		return slices.Clone(p.children)
	}
	return nil
}

// Descendants returns every part below id, depth first.
func (w *World) Descendants(id models.EntityID) []models.EntityID {
	var out []models.EntityID
	var walk func(models.EntityID)
	walk = func(cur models.EntityID) {
		p, ok := w.parts[cur]
		if !ok {
			return
		}
		for _, c := range p.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// Root returns the top-most ancestor of id (id itself when it has no parent).
func (w *World) Root(id models.EntityID) models.EntityID {
	cur := id
	for {
		p, ok := w.parts[cur]
		if !ok || !p.parent.Valid() {
			return cur
		}
		cur = p.parent
	}
}

func (w *World) Pose(id models.EntityID) (physics.Pose, bool) {
	if p, ok := w.parts[id]; ok {
		return p.pose, true
	}
	return physics.Pose{}, false
}

func (w *World) Size(id models.EntityID) (physics.Vec3, bool) {
	if p, ok := w.parts[id]; ok {
		return p.size, true
	}
	return physics.Vec3{}, false
}

// SetPose pivots id to pose. Everything rigidly connected to id (its
// descendants and its joint assembly) moves with it.
func (w *World) SetPose(id models.EntityID, pose physics.Pose) error {
	p, ok := w.parts[id]
	if !ok {
		return ErrUnknownEntity
	}
	delta := pose.Mul(p.pose.Inverse())
	for _, moved := range w.rigidGroup(id) {
		mp := w.parts[moved]
		mp.pose = delta.Mul(mp.pose)
		w.grid.update(moved, mp.volume().Bounds())
	}
	return nil
}

// rigidGroup is id, its descendants, and every part joined to any of those,
// transitively.
func (w *World) rigidGroup(id models.EntityID) []models.EntityID {
	seen := map[models.EntityID]struct{}{id: {}}
	queue := []models.EntityID{id}
	out := []models.EntityID{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		next := slices.Clone(w.parts[cur].children)
		for _, jid := range w.jointsByPart[cur] {
			j := w.joints[jid]
			next = append(next, j.Part0, j.Part1)
		}
		for _, n := range next {
			if _, ok := seen[n]; ok {
				continue
			}
			if _, ok := w.parts[n]; !ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return out
}

func (w *World) SetAnchored(id models.EntityID, anchored bool) {
	if p, ok := w.parts[id]; ok {
		p.anchored = anchored
	}
}

func (w *World) Anchored(id models.EntityID) bool {
	p, ok := w.parts[id]
	return ok && p.anchored
}

func (w *World) SetCanCollide(id models.EntityID, v bool) {
	if p, ok := w.parts[id]; ok {
		p.canCollide = v
	}
}

func (w *World) CanCollide(id models.EntityID) bool {
	p, ok := w.parts[id]
	return ok && p.canCollide
}

func (w *World) SetTransparency(id models.EntityID, v float64) {
	if p, ok := w.parts[id]; ok {
		p.transparency = v
	}
}

func (w *World) Transparency(id models.EntityID) float64 {
	if p, ok := w.parts[id]; ok {
		return p.transparency
	}
	return 0
}

func (w *World) SetVelocity(id models.EntityID, v physics.Vec3) {
	if p, ok := w.parts[id]; ok {
		p.velocity = v
	}
}

func (w *World) Velocity(id models.EntityID) physics.Vec3 {
	if p, ok := w.parts[id]; ok {
		return p.velocity
	}
	return physics.Vec3{}
}

// OnDestroying registers fn to run just before id is removed.
func (w *World) OnDestroying(id models.EntityID, fn func()) {
	if p, ok := w.parts[id]; ok {
		p.onDestroying = append(p.onDestroying, fn)
	}
}

// Destroy removes id, its descendants, and every joint touching them.
func (w *World) Destroy(id models.EntityID) {
	p, ok := w.parts[id]
	if !ok {
		return
	}
	for _, c := range slices.Clone(p.children) {
		w.Destroy(c)
	}
	for _, fn := range p.onDestroying {
		fn()
	}
	for _, jid := range slices.Clone(w.jointsByPart[id]) {
		w.DestroyJoint(jid)
	}
	if parent, ok := w.parts[p.parent]; ok {
		parent.children = slices.DeleteFunc(parent.children, func(c models.EntityID) bool { return c == id })
	}
	w.grid.remove(id)
	w.contacts.forget(id)
	delete(w.parts, id)
	delete(w.jointsByPart, id)
}

func (w *World) CreateJoint(part0, part1 models.EntityID) (models.JointID, error) {
	if part0 == part1 {
		return models.NoJoint, ErrSelfJoint
	}
	if !w.Exists(part0) || !w.Exists(part1) {
		return models.NoJoint, ErrUnknownEntity
	}
	w.nextJoint++
	j := Joint{ID: w.nextJoint, Part0: part0, Part1: part1}
	w.joints[j.ID] = j
	w.jointsByPart[part0] = append(w.jointsByPart[part0], j.ID)
	w.jointsByPart[part1] = append(w.jointsByPart[part1], j.ID)
	return j.ID, nil
}

func (w *World) DestroyJoint(id models.JointID) {
	j, ok := w.joints[id]
	if !ok {
		return
	}
	delete(w.joints, id)
	drop := func(c models.JointID) bool { return c == id }
	w.jointsByPart[j.Part0] = slices.DeleteFunc(w.jointsByPart[j.Part0], drop)
	w.jointsByPart[j.Part1] = slices.DeleteFunc(w.jointsByPart[j.Part1], drop)
}

func (w *World) JointExists(id models.JointID) bool {
	_, ok := w.joints[id]
	return ok
}

func (w *World) JointsTo(id models.EntityID) []Joint {
	return w.jointsWhere(id, func(j Joint) bool { return j.Part1 == id })
}

func (w *World) JointsFrom(id models.EntityID) []Joint {
	return w.jointsWhere(id, func(j Joint) bool { return j.Part0 == id })
}

func (w *World) jointsWhere(id models.EntityID, keep func(Joint) bool) []Joint {
	var out []Joint
	for _, jid := range w.jointsByPart[id] {
		if j := w.joints[jid]; keep(j) {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b Joint) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Overlap answers a box query from the spatial grid.
func (w *World) Overlap(vol physics.Volume, exclude ...models.EntityID) []models.EntityID {
	excluded := make(map[models.EntityID]struct{})
	for _, ex := range exclude {
		excluded[ex] = struct{}{}
		for _, d := range w.Descendants(ex) {
			excluded[d] = struct{}{}
		}
	}
	var out []models.EntityID
	for _, id := range w.grid.query(vol.Bounds()) {
		if _, skip := excluded[id]; skip {
			continue
		}
		if physics.Overlaps(w.parts[id].volume(), vol) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func (w *World) OnContact(id models.EntityID, handler ContactHandler) Subscription {
	return w.contacts.subscribe(id, handler)
}

// Touch delivers a contact between a and b immediately, to subscribers of both.
func (w *World) Touch(a, b models.EntityID) {
	if !w.Exists(a) || !w.Exists(b) {
		return
	}
	w.contacts.fire(Contact{Self: a, Other: b})
	if w.Exists(a) && w.Exists(b) {
		w.contacts.fire(Contact{Self: b, Other: a})
	}
}

func (w *World) After(delay time.Duration, fn func()) {
	w.timers.After(delay, fn)
}

func (w *World) Now() time.Duration { return w.clock }

func (w *World) Frame() uint64 { return w.frame }

func (w *World) Scheduler() *Scheduler { return w.timers }

// PartCount is the number of live parts.
func (w *World) PartCount() int { return len(w.parts) }
