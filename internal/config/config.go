// Package config describes a warehouse session: listener addresses, gameplay
// tuning, persistence and the scene to build. Documents are YAML or JSON and
// are validated against an embedded schema before decoding.
package config

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

type Config struct {
	Server      Server      `json:"server" yaml:"server"`
	Tuning      Tuning      `json:"tuning" yaml:"tuning"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
	Scene       Scene       `json:"scene" yaml:"scene"`
}

type Server struct {
	WebSocketAddr string `json:"websocket_addr" yaml:"websocket_addr"`
	QUICAddr      string `json:"quic_addr,omitempty" yaml:"quic_addr,omitempty"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
}

type Tuning struct {
	TickRateHz int      `json:"tick_rate_hz" yaml:"tick_rate_hz"`
	UnitValue  int64    `json:"unit_value" yaml:"unit_value"`
	Fade       Duration `json:"fade" yaml:"fade"`
	FadeSteps  int      `json:"fade_steps" yaml:"fade_steps"`
	ChestGap   float64  `json:"chest_gap" yaml:"chest_gap"`
	CarryDrop  float64  `json:"carry_drop" yaml:"carry_drop"`

	Fixtures map[string]FixtureTuning `json:"fixtures" yaml:"fixtures"`
}

// FixtureTuning overrides the behavior of one fixture kind.
type FixtureTuning struct {
	Grace Duration `json:"grace" yaml:"grace"`
	Take  *bool    `json:"take,omitempty" yaml:"take,omitempty"`
}

// TickInterval is the simulated time advanced per frame.
func (t Tuning) TickInterval() time.Duration {
	if t.TickRateHz <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(t.TickRateHz)
}

type Persistence struct {
	// SQLitePath enables the ledger store. Empty keeps balances in memory.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	// JournalDir enables the compressed score journal.
	JournalDir string `json:"journal_dir,omitempty" yaml:"journal_dir,omitempty"`
}

type Scene struct {
	Parts      []Part      `json:"parts,omitempty" yaml:"parts,omitempty"`
	Crates     []Crate     `json:"crates,omitempty" yaml:"crates,omitempty"`
	Fixtures   []Fixture   `json:"fixtures,omitempty" yaml:"fixtures,omitempty"`
	Spawners   []Spawner   `json:"spawners,omitempty" yaml:"spawners,omitempty"`
	Conveyors  []Conveyor  `json:"conveyors,omitempty" yaml:"conveyors,omitempty"`
	Collectors []Collector `json:"collectors,omitempty" yaml:"collectors,omitempty"`
	Vehicles   []Vehicle   `json:"vehicles,omitempty" yaml:"vehicles,omitempty"`
}

// Placement is a named box in world space.
type Placement struct {
	Name string  `json:"name" yaml:"name"`
	Pos  Vec     `json:"pos" yaml:"pos"`
	Yaw  float64 `json:"yaw,omitempty" yaml:"yaw,omitempty"`
	Size Vec     `json:"size" yaml:"size"`
}

func (p Placement) Pose() physics.Pose {
	return physics.Pose{Pos: p.Pos.Vec3(), Yaw: p.Yaw}
}

// Part is static scenery.
type Part struct {
	Placement `yaml:",inline"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Anchored  bool     `json:"anchored" yaml:"anchored"`
}

type Crate struct {
	Placement `yaml:",inline"`
}

type Fixture struct {
	Placement `yaml:",inline"`
	Kind      string `json:"kind" yaml:"kind"`
	// Slots are attachment point offsets local to the fixture.
	Slots []Vec `json:"slots" yaml:"slots"`
}

type Spawner struct {
	Placement `yaml:",inline"`
	Interval  Duration `json:"interval" yaml:"interval"`
	Sizes     []Vec    `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Seed      int64    `json:"seed,omitempty" yaml:"seed,omitempty"`
	Limit     int      `json:"limit,omitempty" yaml:"limit,omitempty"`
}

type Conveyor struct {
	Placement `yaml:",inline"`
	Speed     float64 `json:"speed" yaml:"speed"`
}

type Collector struct {
	Placement `yaml:",inline"`
}

type Vehicle struct {
	Placement `yaml:",inline"`
	Model     string `json:"model" yaml:"model"`
	// Seat and probe offsets are local to the vehicle.
	Seat   Mount   `json:"seat" yaml:"seat"`
	Probes []Mount `json:"probes,omitempty" yaml:"probes,omitempty"`
}

// Mount is a sub-part placed relative to its owner.
type Mount struct {
	Offset Vec `json:"offset" yaml:"offset"`
	Size   Vec `json:"size" yaml:"size"`
	// Weld is where a locked pallet sits relative to the probe.
	Weld Vec `json:"weld,omitempty" yaml:"weld,omitempty"`
}
