package fixture

import (
	"cmp"
	"slices"

	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
)

type registrySpace interface {
	host.Hierarchy
	host.Lifecycle
}

// Registry indexes fixtures by root part. Entries drop out when the root is
// destroyed.
type Registry struct {
	space  registrySpace
	byRoot map[models.EntityID]*Fixture
}

func NewRegistry(space registrySpace) *Registry {
	return &Registry{space: space, byRoot: make(map[models.EntityID]*Fixture)}
}

func (r *Registry) Add(f *Fixture) {
	root := f.Root()
	r.byRoot[root] = f
	r.space.OnDestroying(root, func() {
		f.Close()
		delete(r.byRoot, root)
	})
}

func (r *Registry) Get(root models.EntityID) (*Fixture, bool) {
	f, ok := r.byRoot[root]
	return f, ok
}

// Resolve walks up from part to the nearest fixture root.
func (r *Registry) Resolve(part models.EntityID) (*Fixture, bool) {
	for cur := part; cur.Valid(); cur = r.space.Parent(cur) {
		if f, ok := r.byRoot[cur]; ok {
			return f, true
		}
	}
	return nil, false
}

// All lists fixtures by root id.
func (r *Registry) All() []*Fixture {
	out := make([]*Fixture, 0, len(r.byRoot))
	for _, f := range r.byRoot {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *Fixture) int { return cmp.Compare(a.Root(), b.Root()) })
	return out
}

func (r *Registry) Len() int { return len(r.byRoot) }
