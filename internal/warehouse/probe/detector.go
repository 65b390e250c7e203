// Package probe implements the pallet detector mounted on vehicles.
package probe

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
	"github.com/zeusync/warehouse/pkg/sequence"
)

type Space interface {
	host.Posing
	host.Jointing
	host.Hierarchy
	host.Querying
}

// FixtureLookup finds the storage fixture hosted by a pallet root.
type FixtureLookup interface {
	Get(root models.EntityID) (*fixture.Fixture, bool)
}

// Detector is a non-colliding volume that welds the nearest pallet to itself.
type Detector struct {
	probe    models.EntityID
	space    Space
	fixtures FixtureLookup
	logger   log.Log
	weld     physics.Pose
	exclude  []models.EntityID

	held  models.EntityID
	joint models.JointID
}

type Option func(*Detector)

// WithWeld sets the pallet pose relative to the probe while locked.
func WithWeld(local physics.Pose) Option {
	return func(d *Detector) { d.weld = local }
}

func New(probe models.EntityID, space Space, fixtures FixtureLookup, logger log.Log, opts ...Option) (*Detector, error) {
	if !space.Exists(probe) {
		return nil, errors.Wrapf(ErrUnknownProbe, "probe %s", probe)
	}
	if logger == nil {
		logger = log.Nop()
	}
	d := &Detector{
		probe:    probe,
		space:    space,
		fixtures: fixtures,
		logger:   logger.With(log.String("component", "probe"), log.Stringer("probe", probe)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Detector) ID() models.EntityID { return d.probe }

// Exclude keeps the given parts (and their descendants) out of the overlap
// query, typically the vehicle carrying the probe.
func (d *Detector) Exclude(ids ...models.EntityID) {
	d.exclude = append(d.exclude, ids...)
}

// Held is the last locked pallet, valid only while IsLocked.
func (d *Detector) Held() models.EntityID {
	if !d.IsLocked() {
		return models.NoEntity
	}
	return d.held
}

// IsLocked reports whether the held pallet still carries a joint.
func (d *Detector) IsLocked() bool {
	return d.held.Valid() && d.space.JointExists(d.joint) && len(d.space.JointsFrom(d.held)) > 0
}

// TryLock welds the nearest pallet overlapping the probe. It does nothing when
// already locked and returns ErrProbeMiss when nothing is in range.
func (d *Detector) TryLock() error {
	if d.IsLocked() {
		return nil
	}
	probePose, ok := d.space.Pose(d.probe)
	if !ok {
		return ErrUnknownProbe
	}
	size, _ := d.space.Size(d.probe)

	hits := d.space.Overlap(physics.Volume{Pose: probePose, Size: size}, append([]models.EntityID{d.probe}, d.exclude...)...)
	candidates := d.pallets(hits)
	pallet, found := sequence.MinBy(sequence.From(candidates), func(id models.EntityID) float64 {
		pose, _ := d.space.Pose(id)
		return pose.Pos.Distance(probePose.Pos)
	})
	if !found {
		d.logger.Warn("no pallet in range", log.Int("hits", len(hits)))
		return ErrProbeMiss
	}

	palletPose, _ := d.space.Pose(pallet)
	reach := palletPose.Pos.Distance(probePose.Pos)
	if err := d.space.SetPose(pallet, probePose.Mul(d.weld)); err != nil {
		return errors.Wrapf(err, "probe: move pallet %s", pallet)
	}
	joint, err := d.space.CreateJoint(pallet, d.probe)
	if err != nil {
		return errors.Wrapf(err, "probe: weld pallet %s", pallet)
	}
	d.held, d.joint = pallet, joint
	if f, ok := d.lookup(pallet); ok {
		f.SetEnabled(false)
	}
	d.logger.Info("pallet locked", log.Stringer("pallet", pallet), log.Int("candidates", len(candidates)), log.Float64("reach", reach))
	return nil
}

// TryUnlock releases the held pallet and re-enables its fixture.
func (d *Detector) TryUnlock() {
	if !d.held.Valid() {
		return
	}
	pallet := d.held
	d.space.DestroyJoint(d.joint)
	d.held, d.joint = models.NoEntity, models.NoJoint
	if f, ok := d.lookup(pallet); ok {
		f.SetEnabled(true)
	}
	d.logger.Info("pallet unlocked", log.Stringer("pallet", pallet))
}

// pallets maps overlap hits to distinct pallet roots that are not already
// welded to something, ordered by id.
func (d *Detector) pallets(hits []models.EntityID) []models.EntityID {
	seen := make(map[models.EntityID]struct{})
	var out []models.EntityID
	for _, hit := range hits {
		root, ok := d.palletOf(hit)
		if !ok {
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		if len(d.space.JointsFrom(root)) > 0 {
			continue
		}
		out = append(out, root)
	}
	slices.Sort(out)
	return out
}

func (d *Detector) palletOf(part models.EntityID) (models.EntityID, bool) {
	for cur := part; cur.Valid(); cur = d.space.Parent(cur) {
		if d.space.HasTag(cur, models.TagPallet) {
			return cur, true
		}
	}
	return models.NoEntity, false
}

func (d *Detector) lookup(pallet models.EntityID) (*fixture.Fixture, bool) {
	if d.fixtures == nil {
		return nil, false
	}
	return d.fixtures.Get(pallet)
}
