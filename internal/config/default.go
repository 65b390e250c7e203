package config

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

func boolPtr(b bool) *bool { return &b }

// Default is a small playable warehouse.
func Default() *Config {
	return &Config{
		Server: Server{
			WebSocketAddr: ":8080",
			QUICAddr:      ":8443",
			LogLevel:      "info",
		},
		Tuning: Tuning{
			TickRateHz: 30,
			UnitValue:  10,
			Fade:       Duration(2 * time.Second),
			FadeSteps:  10,
			ChestGap:   0.2,
			CarryDrop:  -0.3,
			Fixtures: map[string]FixtureTuning{
				"rack":   {Grace: Duration(time.Second), Take: boolPtr(true)},
				"pallet": {Grace: Duration(time.Second), Take: boolPtr(true)},
				"shelf":  {Grace: Duration(100 * time.Millisecond), Take: boolPtr(false)},
			},
		},
		Scene: Scene{
			Parts: []Part{
				{Placement: Placement{Name: "floor", Pos: V(0, -0.5, 0), Size: V(200, 1, 200)}, Anchored: true},
			},
			Crates: []Crate{
				{Placement: Placement{Name: "crate-1", Pos: V(-6, 1, 4), Size: V(2, 2, 2)}},
				{Placement: Placement{Name: "crate-2", Pos: V(-9, 1, 4), Size: V(2, 2, 2)}},
			},
			Fixtures: []Fixture{
				{
					Placement: Placement{Name: "rack-a", Pos: V(10, 0.5, 0), Size: V(4, 1, 2)},
					Kind:      "rack",
					Slots:     []Vec{V(-1, 0.5, 0), V(1, 0.5, 0), V(-1, 3, 0), V(1, 3, 0)},
				},
				{
					Placement: Placement{Name: "pallet-a", Pos: V(0, 0.25, -12), Size: V(4, 0.5, 4)},
					Kind:      "pallet",
					Slots:     []Vec{V(-1, 0.25, -1), V(1, 0.25, -1), V(-1, 0.25, 1), V(1, 0.25, 1)},
				},
				{
					Placement: Placement{Name: "shelf-a", Pos: V(-14, 1, 0), Size: V(2, 2, 6)},
					Kind:      "shelf",
					Slots:     []Vec{V(0, 1, -2), V(0, 1, 0), V(0, 1, 2)},
				},
			},
			Spawners: []Spawner{
				{
					Placement: Placement{Name: "dock", Pos: V(20, 3, 10), Size: V(2, 1, 2)},
					Interval:  Duration(5 * time.Second),
					Sizes:     []Vec{V(2, 2, 2), V(1.5, 1.5, 1.5)},
					Seed:      1,
					Limit:     24,
				},
			},
			Conveyors: []Conveyor{
				{Placement: Placement{Name: "belt-a", Pos: V(20, 0.5, 0), Size: V(4, 1, 20)}, Speed: 4},
			},
			Collectors: []Collector{
				{Placement: Placement{Name: "bay", Pos: V(0, 0.5, 24), Size: V(8, 1, 8)}},
			},
			Vehicles: []Vehicle{
				{
					Placement: Placement{Name: "forklift-1", Pos: V(0, 1, -20), Yaw: math.Pi, Size: V(2, 2, 4)},
					Model:     "forklift",
					Seat:      Mount{Offset: V(0, 1, 0.5), Size: V(1, 0.4, 1)},
					Probes:    []Mount{{Offset: V(0, -0.5, -3), Size: V(2, 0.2, 2), Weld: V(0, 0.35, 0)}},
				},
				{
					Placement: Placement{Name: "truck-1", Pos: V(8, 1.5, -24), Size: V(3, 3, 8)},
					Model:     "truck",
					Seat:      Mount{Offset: V(0, 1, -2.5), Size: V(1, 0.4, 1)},
				},
				{
					Placement: Placement{Name: "semi-1", Pos: V(20, 1.5, -28), Size: V(3, 3, 14)},
					Model:     "semi_truck",
					Seat:      Mount{Offset: V(0, 1, -5.5), Size: V(1, 0.4, 1)},
					Probes: []Mount{
						{Offset: V(0, 1.6, 1), Size: V(2.5, 0.2, 4), Weld: V(0, 0.35, 0)},
						{Offset: V(0, 1.6, 5), Size: V(2.5, 0.2, 4), Weld: V(0, 0.35, 0)},
					},
				},
			},
		},
	}
}

// Check rejects documents the schema cannot express.
func (c *Config) Check() error {
	seen := make(map[string]struct{})
	add := func(name string) error {
		if _, dup := seen[name]; dup {
			return errors.Wrapf(ErrDuplicateName, "%q", name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, p := range c.Scene.placements() {
		if err := add(p.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s Scene) placements() []Placement {
	var out []Placement
	for _, p := range s.Parts {
		out = append(out, p.Placement)
	}
	for _, p := range s.Crates {
		out = append(out, p.Placement)
	}
	for _, p := range s.Fixtures {
		out = append(out, p.Placement)
	}
	for _, p := range s.Spawners {
		out = append(out, p.Placement)
	}
	for _, p := range s.Conveyors {
		out = append(out, p.Placement)
	}
	for _, p := range s.Collectors {
		out = append(out, p.Placement)
	}
	for _, p := range s.Vehicles {
		out = append(out, p.Placement)
	}
	return out
}
