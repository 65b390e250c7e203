// Package collector turns delivered crates and loaded fixtures into score.
package collector

import (
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/warehouse/carry"
	"github.com/zeusync/warehouse/internal/warehouse/fixture"
)

type Settings struct {
	// UnitValue is credited per crate.
	UnitValue int64
	Fade      time.Duration
	FadeSteps int
}

func DefaultSettings() Settings {
	return Settings{UnitValue: 10, Fade: 2 * time.Second, FadeSteps: 10}
}

// Collector is a terminal sink. Whatever it consumes is faded out and
// destroyed; its value goes to the first eligible agent.
type Collector struct {
	id       models.EntityID
	space    Space
	crates   CarryableResolver
	fixtures FixtureResolver
	roster   Roster
	scorer   Scorer
	settings Settings
	logger   log.Log
	consumed map[models.EntityID]struct{}
	sub      host.Subscription
}

type Deps struct {
	Space    Space
	Crates   CarryableResolver
	Fixtures FixtureResolver
	Roster   Roster
	Scorer   Scorer
	Logger   log.Log
}

// New subscribes the collector part to contacts.
func New(id models.EntityID, settings Settings, deps Deps) (*Collector, error) {
	if deps.Space == nil || deps.Crates == nil || deps.Fixtures == nil || deps.Roster == nil || deps.Scorer == nil {
		return nil, errors.Wrapf(fixture.ErrMissingDependency, "collector %s", id)
	}
	if !deps.Space.Exists(id) {
		return nil, errors.Wrapf(host.ErrUnknownEntity, "collector %s", id)
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Nop()
	}
	c := &Collector{
		id:       id,
		space:    deps.Space,
		crates:   deps.Crates,
		fixtures: deps.Fixtures,
		roster:   deps.Roster,
		scorer:   deps.Scorer,
		settings: settings,
		logger:   logger.With(log.String("component", "collector"), log.Stringer("collector", id)),
		consumed: make(map[models.EntityID]struct{}),
	}
	c.sub = deps.Space.OnContact(id, func(ct host.Contact) {
		if _, err := c.HandleContact(ct.Other); err != nil {
			c.logger.Debug("contact ignored", log.Stringer("other", ct.Other), log.Error(err))
		}
	})
	return c, nil
}

func (c *Collector) ID() models.EntityID { return c.id }

// HandleContact consumes whatever part belongs to and returns the amount
// credited. A fixture touching directly is consumed whole. A stored crate
// takes its whole fixture along only on a pallet; off a rack or shelf it is
// collected alone.
func (c *Collector) HandleContact(part models.EntityID) (int64, error) {
	if crate, ok := c.crates.Resolve(part); ok {
		b := crate.Binding()
		if b.Kind == carry.BindFixture {
			if f, ok := c.fixtures.Get(b.Fixture); ok && f.Kind() == fixture.Pallet {
				return c.consumeFixture(f)
			}
		}
		return c.consumeCrate(crate)
	}
	if f, ok := c.fixtures.Resolve(part); ok {
		return c.consumeFixture(f)
	}
	return 0, ErrNotCollectable
}

func (c *Collector) consumeCrate(crate *carry.Carryable) (int64, error) {
	id := crate.ID()
	if !c.claim(id) {
		return 0, ErrAlreadyConsumed
	}
	stored := crate.Binding().Kind == carry.BindFixture
	crate.Detach()
	if stored {
		if err := c.space.SetParent(id, models.NoEntity); err != nil {
			c.logger.Warn("unparent failed", log.Stringer("crate", id), log.Error(err))
		}
	}
	fadeOut(c.space, id, c.settings.Fade, c.settings.FadeSteps)
	return c.award(c.settings.UnitValue, log.Stringer("crate", id))
}

func (c *Collector) consumeFixture(f *fixture.Fixture) (int64, error) {
	root := f.Root()
	if _, done := c.consumed[root]; done {
		return 0, ErrAlreadyConsumed
	}
	n := f.Count()
	if n == 0 {
		return 0, ErrEmptyFixture
	}
	c.claim(root)
	for _, crate := range f.Occupants() {
		c.claim(crate.ID())
	}
	f.SetEnabled(false)
	fadeOut(c.space, root, c.settings.Fade, c.settings.FadeSteps)
	return c.award(c.settings.UnitValue*int64(n),
		log.Stringer("fixture", root),
		log.Int("count", n),
	)
}

func (c *Collector) claim(id models.EntityID) bool {
	if _, done := c.consumed[id]; done {
		return false
	}
	c.consumed[id] = struct{}{}
	c.space.OnDestroying(id, func() { delete(c.consumed, id) })
	return true
}

func (c *Collector) award(amount int64, fields ...log.Field) (int64, error) {
	agent, ok := c.roster.FirstEligible()
	if !ok {
		c.logger.Warn("nothing credited", append(fields, log.Int64("amount", amount))...)
		return amount, ErrNoEligibleAgent
	}
	c.scorer.AddScore(agent, amount)
	c.logger.Info("collected", append(fields, log.Stringer("agent", agent), log.Int64("amount", amount))...)
	return amount, nil
}

func (c *Collector) Close() {
	if c.sub != nil {
		c.sub.Cancel()
	}
}
