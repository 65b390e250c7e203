package host

import (
	"slices"

	"github.com/zeusync/warehouse/internal/core/models"
)

type contactSub struct {
	id      uint64
	owner   models.EntityID
	handler ContactHandler
	table   *contactTable
	active  bool
}

func (s *contactSub) Cancel() {
	if !s.active {
		return
	}
	s.active = false
	subs := s.table.subs[s.owner]
	s.table.subs[s.owner] = slices.DeleteFunc(subs, func(c *contactSub) bool { return c == s })
}

type pairKey struct{ a, b models.EntityID }

func makePair(a, b models.EntityID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// contactTable holds contact subscriptions and the set of part pairs that were
// overlapping at the end of the previous step.
type contactTable struct {
	nextID   uint64
	subs     map[models.EntityID][]*contactSub
	touching map[pairKey]struct{}
}

func newContactTable() *contactTable {
	return &contactTable{
		subs:     make(map[models.EntityID][]*contactSub),
		touching: make(map[pairKey]struct{}),
	}
}

func (t *contactTable) subscribe(id models.EntityID, h ContactHandler) Subscription {
	t.nextID++
	s := &contactSub{id: t.nextID, owner: id, handler: h, table: t, active: true}
	t.subs[id] = append(t.subs[id], s)
	return s
}

func (t *contactTable) hasSubscribers(id models.EntityID) bool {
	return len(t.subs[id]) > 0
}

func (t *contactTable) fire(c Contact) {
	for _, s := range slices.Clone(t.subs[c.Self]) {
		if s.active {
			s.handler(c)
		}
	}
}

func (t *contactTable) forget(id models.EntityID) {
	for _, s := range t.subs[id] {
		s.active = false
	}
	delete(t.subs, id)
	for k := range t.touching {
		if k.a == id || k.b == id {
			delete(t.touching, k)
		}
	}
}
