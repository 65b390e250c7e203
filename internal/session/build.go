package session

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/config"
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/collector"
	"github.com/zeusync/warehouse/internal/warehouse/conveyor"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
	"github.com/zeusync/warehouse/internal/warehouse/probe"
	"github.com/zeusync/warehouse/internal/warehouse/spawner"
	"github.com/zeusync/warehouse/internal/warehouse/vehicle"
)

// build populates the world from the scene. Fixtures come before vehicles so
// probes can resolve pallets, and the fleet is validated last.
func (s *Session) build(scene config.Scene) error {
	for _, p := range scene.Parts {
		s.addPart(p.Placement, host.PartSpec{Tags: p.Tags, Anchored: p.Anchored})
	}
	for _, c := range scene.Crates {
		if _, err := s.addCrate(c.Name, c.Pose(), c.Size.Vec3()); err != nil {
			return err
		}
	}
	for _, f := range scene.Fixtures {
		if err := s.addFixture(f); err != nil {
			return err
		}
	}
	for _, c := range scene.Collectors {
		if err := s.addCollector(c); err != nil {
			return err
		}
	}
	for _, sp := range scene.Spawners {
		s.addSpawner(sp)
	}
	for _, c := range scene.Conveyors {
		id := s.addPart(c.Placement, host.PartSpec{Tags: []string{models.TagConveyor}, Anchored: true})
		belt := conveyor.New(id, c.Speed, s.world)
		belt.Start()
		s.belts = append(s.belts, belt)
	}
	for _, v := range scene.Vehicles {
		if err := s.addVehicle(v); err != nil {
			return err
		}
	}
	if err := s.fleet.Validate(); err != nil {
		return err
	}
	s.fleet.Start(s.world)
	return nil
}

func (s *Session) addPart(p config.Placement, spec host.PartSpec) models.EntityID {
	spec.Name = p.Name
	spec.Pose = p.Pose()
	spec.Size = p.Size.Vec3()
	id := s.world.AddPart(spec)
	if p.Name != "" {
		s.names[p.Name] = id
	}
	return id
}

// addCrate is also the spawner factory.
func (s *Session) addCrate(name string, pose physics.Pose, size physics.Vec3) (models.EntityID, error) {
	if name == "" {
		s.spawned++
		name = fmt.Sprintf("crate-s%d", s.spawned)
	}
	id := s.world.AddPart(host.PartSpec{Name: name, Tags: []string{models.TagCrate}, Pose: pose, Size: size})
	s.names[name] = id
	c := carry.New(id, s.world,
		carry.WithTuning(carry.Tuning{ChestGap: s.cfg.Tuning.ChestGap, Drop: s.cfg.Tuning.CarryDrop}),
		carry.WithAnimator(s.outlet),
		carry.WithLogger(s.logger),
	)
	s.crates.Add(c)
	s.world.OnDestroying(id, func() {
		s.crates.Remove(id)
		delete(s.names, name)
	})
	return id, nil
}

func (s *Session) fixtureSettings(kind fixture.Kind) fixture.Settings {
	settings := fixture.DefaultSettings(kind)
	if t, ok := s.cfg.Tuning.Fixtures[kind.String()]; ok {
		if t.Grace > 0 {
			settings.Grace = t.Grace.Std()
		}
		if t.Take != nil {
			settings.Take = *t.Take
		}
	}
	return settings
}

func (s *Session) addFixture(fc config.Fixture) error {
	kind, err := fixture.ParseKind(fc.Kind)
	if err != nil {
		return errors.Wrapf(err, "fixture %q", fc.Name)
	}
	root := s.addPart(fc.Placement, host.PartSpec{
		Tags:     []string{kind.Tag()},
		Anchored: kind != fixture.Pallet,
	})
	rootPose := fc.Pose()
	for i, offset := range fc.Slots {
		s.world.AddPart(host.PartSpec{
			Name:    fmt.Sprintf("%s/slot-%d", fc.Name, i+1),
			Tags:    []string{models.TagAttachment},
			Pose:    rootPose.Mul(physics.At(offset.Vec3())),
			Parent:  root,
			NoTouch: true,
		})
	}
	f, err := fixture.New(root, s.fixtureSettings(kind), s.world, s.crates, s.logger)
	if err != nil {
		return errors.Wrapf(err, "fixture %q", fc.Name)
	}
	s.fixtures.Add(f)
	return nil
}

func (s *Session) addCollector(cc config.Collector) error {
	id := s.addPart(cc.Placement, host.PartSpec{Tags: []string{models.TagCollector}, Anchored: true})
	c, err := collector.New(id, collector.Settings{
		UnitValue: s.cfg.Tuning.UnitValue,
		Fade:      s.cfg.Tuning.Fade.Std(),
		FadeSteps: s.cfg.Tuning.FadeSteps,
	}, collector.Deps{
		Space:    s.world,
		Crates:   s.crates,
		Fixtures: s.fixtures,
		Roster:   s.roster,
		Scorer:   s.outlet,
		Logger:   s.logger,
	})
	if err != nil {
		return errors.Wrapf(err, "collector %q", cc.Name)
	}
	s.collectors = append(s.collectors, c)
	return nil
}

func (s *Session) addSpawner(sc config.Spawner) {
	id := s.addPart(sc.Placement, host.PartSpec{Tags: []string{models.TagSpawner}, Anchored: true, NoTouch: true})
	settings := spawner.Settings{Interval: sc.Interval.Std(), Seed: sc.Seed, Limit: sc.Limit}
	for _, size := range sc.Sizes {
		settings.Sizes = append(settings.Sizes, size.Vec3())
	}
	sp := spawner.New(id, settings, s.world, func(pose physics.Pose, size physics.Vec3) (models.EntityID, error) {
		return s.addCrate("", pose, size)
	}, s.logger)
	sp.Start()
	s.spawners = append(s.spawners, sp)
}

func (s *Session) addVehicle(vc config.Vehicle) error {
	model, err := vehicle.ParseModel(vc.Model)
	if err != nil {
		return errors.Wrapf(err, "vehicle %q", vc.Name)
	}
	root := s.addPart(vc.Placement, host.PartSpec{Tags: []string{models.TagVehicle}, Anchored: true})
	rootPose := vc.Pose()
	mount := func(suffix string, m config.Mount, tags []string, noTouch bool) models.EntityID {
		return s.world.AddPart(host.PartSpec{
			Name:     vc.Name + "/" + suffix,
			Tags:     tags,
			Pose:     rootPose.Mul(physics.At(m.Offset.Vec3())),
			Size:     m.Size.Vec3(),
			Parent:   root,
			Anchored: true,
			NoTouch:  noTouch,
		})
	}
	seat := mount("seat", vc.Seat, nil, true)
	h, err := s.fleet.AddVehicle(vehicle.Spec{Model: model, Root: root, Seat: seat})
	if err != nil {
		return err
	}
	for i, m := range vc.Probes {
		id := mount(fmt.Sprintf("probe-%d", i+1), m, []string{models.TagProbe}, true)
		d, err := probe.New(id, s.world, s.fixtures, s.logger, probe.WithWeld(physics.At(m.Weld.Vec3())))
		if err != nil {
			return errors.Wrapf(err, "vehicle %q probe %d", vc.Name, i+1)
		}
		if err := s.fleet.Link(h, s.fleet.AddProbe(d)); err != nil {
			return err
		}
	}
	return nil
}
