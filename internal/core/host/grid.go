package host

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

const defaultCellSize = 4.0

type cellKey uint64

// grid is a uniform spatial hash. Cells are keyed by the xxhash of their
// integer coordinates; a hash collision only costs an extra bounds check.
type grid struct {
	cellSize float64
	cells    map[cellKey]map[models.EntityID]struct{}
	occupied map[models.EntityID][]cellKey
}

func newGrid(cellSize float64) *grid {
	return &grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[models.EntityID]struct{}),
		occupied: make(map[models.EntityID][]cellKey),
	}
}

func hashCell(x, y, z int64) cellKey {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(x))
	binary.LittleEndian.PutUint64(buf[8:], uint64(y))
	binary.LittleEndian.PutUint64(buf[16:], uint64(z))
	return cellKey(xxhash.Sum64(buf[:]))
}

func (g *grid) cellRange(b physics.AABB) (lo, hi [3]int64) {
	lo = [3]int64{g.coord(b.Min.X), g.coord(b.Min.Y), g.coord(b.Min.Z)}
	hi = [3]int64{g.coord(b.Max.X), g.coord(b.Max.Y), g.coord(b.Max.Z)}
	return lo, hi
}

func (g *grid) coord(v float64) int64 {
	return int64(math.Floor(v / g.cellSize))
}

func (g *grid) keys(b physics.AABB) []cellKey {
	lo, hi := g.cellRange(b)
	var out []cellKey
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				out = append(out, hashCell(x, y, z))
			}
		}
	}
	return out
}

func (g *grid) insert(id models.EntityID, b physics.AABB) {
	keys := g.keys(b)
	for _, k := range keys {
		set, ok := g.cells[k]
		if !ok {
			set = make(map[models.EntityID]struct{})
			g.cells[k] = set
		}
		set[id] = struct{}{}
	}
	g.occupied[id] = keys
}

func (g *grid) remove(id models.EntityID) {
	for _, k := range g.occupied[id] {
		if set, ok := g.cells[k]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(g.cells, k)
			}
		}
	}
	delete(g.occupied, id)
}

func (g *grid) update(id models.EntityID, b physics.AABB) {
	g.remove(id)
	g.insert(id, b)
}

// query returns candidate ids whose cells intersect b, sorted and unique.
func (g *grid) query(b physics.AABB) []models.EntityID {
	seen := make(map[models.EntityID]struct{})
	var out []models.EntityID
	for _, k := range g.keys(b) {
		for id := range g.cells[k] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
