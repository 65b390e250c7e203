// Package spawner drops new crates into the world at a fixed interval.
package spawner

import (
	"math/rand"
	"time"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// Factory creates a crate centred at pose.
type Factory func(pose physics.Pose, size physics.Vec3) (models.EntityID, error)

type Space interface {
	host.Posing
	Counter
	OnTick(fn host.TickFunc) host.Subscription
}

// Counter reports how many crates are alive; used to cap spawning.
type Counter interface {
	Exists(id models.EntityID) bool
}

type Settings struct {
	Interval time.Duration
	// Sizes is the crate size pool; one is picked per spawn.
	Sizes []physics.Vec3
	Seed  int64
	// Limit caps live crates from this spawner. Zero means no cap.
	Limit int
}

func DefaultSettings() Settings {
	return Settings{
		Interval: 2 * time.Second,
		Sizes:    []physics.Vec3{physics.V(1, 1, 1)},
		Seed:     1,
	}
}

type Spawner struct {
	id       models.EntityID
	space    Space
	factory  Factory
	settings Settings
	rng      *rand.Rand
	logger   log.Log
	elapsed  time.Duration
	live     []models.EntityID
	sub      host.Subscription
}

func New(id models.EntityID, settings Settings, space Space, factory Factory, logger log.Log) *Spawner {
	if logger == nil {
		logger = log.Nop()
	}
	if len(settings.Sizes) == 0 {
		settings.Sizes = DefaultSettings().Sizes
	}
	return &Spawner{
		id:       id,
		space:    space,
		factory:  factory,
		settings: settings,
		rng:      rand.New(rand.NewSource(settings.Seed)),
		logger:   logger.With(log.String("component", "spawner"), log.Stringer("spawner", id)),
	}
}

// Start hooks the spawner into the frame loop.
func (s *Spawner) Start() {
	if s.sub == nil {
		s.sub = s.space.OnTick(s.Tick)
	}
}

func (s *Spawner) Stop() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
}

// Tick accumulates simulated time and spawns at most one crate per frame
// once the interval has elapsed. A long frame does not spawn a backlog.
func (s *Spawner) Tick(dt time.Duration) {
	if s.settings.Interval <= 0 {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.settings.Interval {
		return
	}
	s.elapsed = 0
	if _, err := s.Spawn(); err != nil {
		s.logger.Debug("spawn skipped", log.Error(err))
	}
}

// Spawn creates one crate on top of the spawner.
func (s *Spawner) Spawn() (models.EntityID, error) {
	if s.settings.Limit > 0 && s.Live() >= s.settings.Limit {
		return models.NoEntity, ErrLimitReached
	}
	pose, ok := s.space.Pose(s.id)
	if !ok {
		return models.NoEntity, host.ErrUnknownEntity
	}
	size := s.settings.Sizes[s.rng.Intn(len(s.settings.Sizes))]
	id, err := s.factory(pose, size)
	if err != nil {
		s.logger.Error("crate factory failed", log.Error(err))
		return models.NoEntity, err
	}
	s.live = append(s.live, id)
	s.logger.Debug("crate spawned", log.Stringer("crate", id))
	return id, nil
}

// Live counts spawned crates that still exist.
func (s *Spawner) Live() int {
	n := 0
	for _, id := range s.live {
		if s.space.Exists(id) {
			s.live[n] = id
			n++
		}
	}
	s.live = s.live[:n]
	return n
}
